package notification

import (
	"bidhub/common"
	"bidhub/session"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	PathNotifications = "/v1/notifications"
)

func RegisterNotificationsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathNotifications, middleWares...)
	g.GET("", handleListRecent)
	g.GET("/count", handleCount)
	g.POST("/read", handleMarkAllRead)
	g.DELETE("/read", handleDeleteAllRead)
	g.POST("/:id/read", handleMarkRead)
	g.DELETE("/:id", handleDeleteNotification)
}

func handleListRecent(c *gin.Context) {
	sec := session.MustFindSecurityContext(c)
	limit := common.QueryInt(c, "limit", 0)
	details, err := ListRecentFunc(c.Request.Context(), sec.Identity.ID, limit)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, details)
}

func handleCount(c *gin.Context) {
	sec := session.MustFindSecurityContext(c)
	counts, err := CountNotificationsFunc(c.Request.Context(), sec.Identity.ID)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, counts)
}

func handleMarkRead(c *gin.Context) {
	sec := session.MustFindSecurityContext(c)
	id := common.BindingPathID(c)
	if err := MarkReadFunc(c.Request.Context(), id, sec.Identity.ID); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func handleMarkAllRead(c *gin.Context) {
	sec := session.MustFindSecurityContext(c)
	if err := MarkAllReadFunc(c.Request.Context(), sec.Identity.ID); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func handleDeleteAllRead(c *gin.Context) {
	sec := session.MustFindSecurityContext(c)
	deleted, err := DeleteAllReadFunc(c.Request.Context(), sec.Identity.ID)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func handleDeleteNotification(c *gin.Context) {
	sec := session.MustFindSecurityContext(c)
	id := common.BindingPathID(c)
	if err := DeleteNotificationFunc(c.Request.Context(), id, sec.Identity.ID); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}
