package bidding

import (
	"bidhub/bizerror"
	"bidhub/client/s3"
	"bidhub/common"
	"bidhub/domain"
	"bidhub/session"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathWorkUnits = "/v1/work-units"
	PathBids      = "/v1/bids"

	FilesFormField = "file"
)

func RegisterWorkUnitsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathWorkUnits, middleWares...)
	g.POST("", handleCreateWorkUnit)
	g.GET("/:id", handleDetailWorkUnit)
	g.PUT("/:id", handleUpdateWorkUnit)
	g.DELETE("/:id", handleDeleteWorkUnit)
}

func RegisterBidsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathBids, middleWares...)
	g.POST("", handleSubmitBid)
	g.GET("", handleQueryBids)
	g.GET("/:id", handleDetailBid)
	g.DELETE("/:id", handleDeleteBid)
	g.POST("/:id/accept", handleAcceptBid)
	g.POST("/:id/reject", handleRejectBid)
	g.PUT("/:id/files", handleUploadBidFiles)
}

func handleCreateWorkUnit(c *gin.Context) {
	creation := domain.WorkUnitCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	w, err := CreateWorkUnitFunc(c.Request.Context(), &creation, session.MustFindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, w)
}

func handleDetailWorkUnit(c *gin.Context) {
	id := common.BindingPathID(c)
	detail, err := DetailWorkUnitFunc(c.Request.Context(), id)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func handleUpdateWorkUnit(c *gin.Context) {
	id := common.BindingPathID(c)
	updating := domain.WorkUnitUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	w, err := UpdateWorkUnitFunc(c.Request.Context(), id, &updating, session.MustFindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, w)
}

func handleDeleteWorkUnit(c *gin.Context) {
	id := common.BindingPathID(c)
	if err := DeleteWorkUnitFunc(c.Request.Context(), id, session.MustFindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func handleSubmitBid(c *gin.Context) {
	creation := domain.BidCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	bid, err := SubmitFunc(c.Request.Context(), &creation, session.MustFindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, bid)
}

func handleQueryBids(c *gin.Context) {
	query := domain.BidQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	bids, err := QueryBidsFunc(c.Request.Context(), &query, session.MustFindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, bids)
}

func handleDetailBid(c *gin.Context) {
	id := common.BindingPathID(c)
	bid, err := DetailBidFunc(c.Request.Context(), id, session.MustFindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, bid)
}

func handleDeleteBid(c *gin.Context) {
	id := common.BindingPathID(c)
	if err := DeleteBidFunc(c.Request.Context(), id, session.MustFindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func handleAcceptBid(c *gin.Context) {
	id := common.BindingPathID(c)
	bid, err := AcceptFunc(c.Request.Context(), id, session.MustFindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, bid)
}

func handleRejectBid(c *gin.Context) {
	id := common.BindingPathID(c)
	bid, err := RejectFunc(c.Request.Context(), id, session.MustFindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, bid)
}

// handleUploadBidFiles checks the bid accepts a delivery, stores the archive then latches the files flag.
func handleUploadBidFiles(c *gin.Context) {
	sec := session.MustFindSecurityContext(c)
	id := common.BindingPathID(c)
	if err := CheckFilesUploadableFunc(c.Request.Context(), id, sec); err != nil {
		panic(err)
	}

	fileHeader, err := c.FormFile(FilesFormField)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	file, err := fileHeader.Open()
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	defer file.Close()

	if err := s3.PutObjectFunc(c.Request.Context(), s3.BidFilesKey(id, fileHeader.Filename), file); err != nil {
		panic(err)
	}
	bid, err := MarkFilesUploadedFunc(c.Request.Context(), id, sec)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, bid)
}
