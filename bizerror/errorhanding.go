package bizerror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

type sentinelRespond struct {
	err     error
	status  int
	code    string
	message string
}

var sentinelResponds = []sentinelRespond{
	{ErrUnauthenticated, http.StatusUnauthorized, "common.unauthenticated", "unauthenticated"},
	{ErrForbidden, http.StatusForbidden, "security.forbidden", "access forbidden"},
	{ErrNotFound, http.StatusNotFound, "common.record_not_found", "record not found"},
	{gorm.ErrRecordNotFound, http.StatusNotFound, "common.record_not_found", "record not found"},

	{ErrInvalidTitle, http.StatusUnprocessableEntity, "work_unit.invalid_title", "invalid title"},
	{ErrInvalidAmount, http.StatusUnprocessableEntity, "bid.invalid_amount", "invalid amount"},
	{ErrDescriptionTooLong, http.StatusUnprocessableEntity, "common.description_too_long", "description too long"},
	{ErrAlreadyBid, http.StatusConflict, "bid.already_bid", "bid already exists"},
	{ErrWorkUnitAwarded, http.StatusConflict, "work_unit.awarded", "work unit is already awarded"},

	{ErrNotModifiable, http.StatusConflict, "bid.not_modifiable", "bid is not modifiable"},
	{ErrBidNotAccepted, http.StatusConflict, "bid.not_accepted", "bid is not accepted"},
	{ErrFilesAlreadyUploaded, http.StatusConflict, "bid.files_already_uploaded", "files already uploaded"},

	{ErrInvalidMessage, http.StatusUnprocessableEntity, "notification.invalid_message", "invalid notification message"},

	{ErrSameUser, http.StatusUnprocessableEntity, "room.same_user", "cannot start a conversation with yourself"},
	{ErrPairingConflict, http.StatusServiceUnavailable, "room.pairing_conflict", "room pairing conflict"},
}

func ErrorHandling() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handle(c)
		c.Next()
	}
}

func handle(c *gin.Context) {
	if ret := recover(); ret != nil {
		err, ok := ret.(error)
		if !ok {
			err = fmt.Errorf("%v", ret)
		}
		HandleError(c, err)
	} else {
		if err := c.Errors.Last(); err != nil {
			HandleError(c, err)
		}
	}
}

func HandleError(c *gin.Context, err error) {
	logrus.Error(err)

	genericErr := err
	var ginErr *gin.Error
	if errors.As(err, &ginErr) {
		genericErr = ginErr.Err
	}

	var bizErr BizError
	if errors.As(genericErr, &bizErr) {
		respond := bizErr.Respond()
		c.JSON(respond.Status, &ErrorBody{Code: respond.Code, Message: respond.Message, Data: respond.Data})
		c.Abort()
		return
	}

	// bad request:  io.EOF (no body).
	if errors.Is(genericErr, io.EOF) {
		c.JSON(http.StatusBadRequest, &ErrorBody{Code: "bad_request.body_not_found", Message: "body not found"})
		c.Abort()
		return
	}
	// bad request: json syntax Error
	var syntaxErr *json.SyntaxError
	if errors.As(genericErr, &syntaxErr) {
		c.JSON(http.StatusBadRequest, &ErrorBody{Code: "bad_request.invalid_body_format", Message: "invalid body format", Data: syntaxErr.Error()})
		c.Abort()
		return
	}
	// validation failed
	var validationErr validator.ValidationErrors
	if errors.As(genericErr, &validationErr) {
		c.JSON(http.StatusBadRequest, &ErrorBody{Code: "bad_request.validation_failed", Message: "validation failed", Data: validationErr.Error()})
		c.Abort()
		return
	}

	for _, s := range sentinelResponds {
		if errors.Is(genericErr, s.err) {
			c.JSON(s.status, &ErrorBody{Code: s.code, Message: s.message})
			c.Abort()
			return
		}
	}

	c.JSON(http.StatusInternalServerError, &ErrorBody{Code: "common.internal_server_error", Message: err.Error()})
	c.Abort()
}
