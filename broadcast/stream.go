package broadcast

import (
	"bidhub/session"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var (
	PathNotificationStream = "/v1/notifications/stream"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// RegisterStreamHandler exposes the topic of the caller as a websocket. The subscription lives as long
// as the connection.
func RegisterStreamHandler(r *gin.Engine, hub *Hub, middleWares ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, middleWares...), func(c *gin.Context) {
		handleStream(c, hub)
	})
	r.GET(PathNotificationStream, handlers...)
}

func handleStream(c *gin.Context, hub *Hub) {
	sec := session.MustFindSecurityContext(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.Warnf("failed to upgrade stream connection of %s: %v", sec.Identity.ID, err)
		return
	}
	sub := hub.Subscribe(RecipientTopic(sec.Identity.ID))

	go readPump(conn, sub)
	writePump(conn, sub)
}

func writePump(conn *websocket.Conn, sub *Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.Close()
		_ = conn.Close()
	}()

	for {
		select {
		case message, ok := <-sub.Messages():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only drains control frames, it ends the subscription once the peer goes away.
func readPump(conn *websocket.Conn, sub *Subscription) {
	defer sub.Close()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.Debugf("stream of subscriber %s closed: %v", sub.ID, err)
			}
			return
		}
	}
}
