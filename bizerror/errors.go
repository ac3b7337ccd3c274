package bizerror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")

	ErrInvalidTitle       = errors.New("invalid title")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrDescriptionTooLong = errors.New("description too long")
	ErrAlreadyBid         = errors.New("bidder already has a bid on this work unit")
	ErrWorkUnitAwarded    = errors.New("work unit is already awarded")

	ErrNotModifiable        = errors.New("bid is not modifiable")
	ErrBidNotAccepted       = errors.New("bid is not accepted")
	ErrFilesAlreadyUploaded = errors.New("files already uploaded")

	ErrInvalidMessage = errors.New("invalid notification message")

	ErrSameUser        = errors.New("cannot pair a user with itself")
	ErrPairingConflict = errors.New("room pairing conflict")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}

// ErrPartialFailure reports a batch that stopped after Done of Total items.
type ErrPartialFailure struct {
	Done  int
	Total int
	Cause error
}

func (e *ErrPartialFailure) Unwrap() error {
	return e.Cause
}
func (e *ErrPartialFailure) Error() string {
	return fmt.Sprintf("partial failure: %d of %d done: %v", e.Done, e.Total, e.Cause)
}
func (e *ErrPartialFailure) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusInternalServerError, Code: "common.partial_failure", Message: e.Error(),
		Data: map[string]int{"done": e.Done, "total": e.Total}, Cause: e.Cause}
}
