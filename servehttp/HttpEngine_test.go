package servehttp_test

import (
	"bidhub/servehttp"
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestStartHTTPServer(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should serve until the context is done", func(t *testing.T) {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).To(BeNil())
		addr := listener.Addr().String()
		Expect(listener.Close()).To(BeNil())

		engine := gin.New()
		engine.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- servehttp.StartHTTPServer(ctx, addr, engine) }()

		Eventually(func() int {
			resp, err := http.Get("http://" + addr + "/ping")
			if err != nil {
				return 0
			}
			_ = resp.Body.Close()
			return resp.StatusCode
		}, 3*time.Second, 50*time.Millisecond).Should(Equal(http.StatusOK))

		cancel()
		Eventually(done, 5*time.Second).Should(Receive(BeNil()))
	})

	t.Run("should return listen errors", func(t *testing.T) {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).To(BeNil())
		defer listener.Close()

		err = servehttp.StartHTTPServer(context.Background(), listener.Addr().String(), gin.New())
		Expect(err).ToNot(BeNil())
	})
}
