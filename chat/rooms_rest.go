package chat

import (
	"bidhub/bizerror"
	"bidhub/common"
	"bidhub/session"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathRooms = "/v1/rooms"
)

// RegisterRoomsRestAPI mounts the room routes. createGuards run only in front of room creation.
func RegisterRoomsRestAPI(r *gin.Engine, createGuards []gin.HandlerFunc, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathRooms, middleWares...)
	createHandlers := append(append([]gin.HandlerFunc{}, createGuards...), handleCreateRoom)
	g.POST("", createHandlers...)
	g.GET("", handleListRooms)
	g.GET("/:id", handleDetailRoom)
}

func handleCreateRoom(c *gin.Context) {
	sec := session.MustFindSecurityContext(c)
	creation := RoomCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	room, err := GetOrCreateRoomFunc(c.Request.Context(), sec.Identity.ID, creation.UserID)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &RoomDetail{Room: *room, OtherUserID: creation.UserID})
}

func handleListRooms(c *gin.Context) {
	sec := session.MustFindSecurityContext(c)
	rooms, err := ListRoomsFunc(c.Request.Context(), sec.Identity.ID)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, rooms)
}

func handleDetailRoom(c *gin.Context) {
	sec := session.MustFindSecurityContext(c)
	id := common.BindingPathID(c)
	room, err := DetailRoomFunc(c.Request.Context(), id, sec.Identity.ID)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, room)
}
