package bizerror_test

import (
	"bidhub/bizerror"
	"errors"
	"net/http"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Errors", func() {
	Describe("ErrBadParam", func() {
		It("should return default message if cause is nil", func() {
			err := bizerror.ErrBadParam{}
			Expect(err.Error()).To(Equal("common.bad_param"))
			Expect(err.Respond().Message).To(Equal("common.bad_param"))
		})
		It("should invoke the Error() function of cause property if cause is not nil", func() {
			err := bizerror.ErrBadParam{Cause: bizerror.ErrForbidden}
			Expect(err.Error()).To(Equal("forbidden"))
			Expect(errors.Is(&err, bizerror.ErrForbidden)).To(BeTrue())
			Expect(*err.Respond()).To(Equal(bizerror.BizErrorDetail{Status: http.StatusBadRequest,
				Code: "common.bad_param", Message: "forbidden"}))
		})
	})

	Describe("ErrPartialFailure", func() {
		It("should report progress and unwrap the cause", func() {
			cause := errors.New("store unavailable")
			err := &bizerror.ErrPartialFailure{Done: 1, Total: 3, Cause: cause}
			Expect(err.Error()).To(Equal("partial failure: 1 of 3 done: store unavailable"))
			Expect(errors.Is(err, cause)).To(BeTrue())

			respond := err.Respond()
			Expect(respond.Status).To(Equal(http.StatusInternalServerError))
			Expect(respond.Code).To(Equal("common.partial_failure"))
			Expect(respond.Data).To(Equal(map[string]int{"done": 1, "total": 3}))
		})
	})
})
