package servehttp

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const CodeTooManyRequests = "common.too_many_requests"

// RateLimit rejects requests exceeding the limiter with 429.
func RateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			logrus.WithField("path", c.FullPath()).Warn("request rate limited")
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				gin.H{"code": CodeTooManyRequests, "message": "too many requests", "data": nil})
			return
		}
		c.Next()
	}
}

// NewLimiter allows perSecond requests per second with an equal burst, at least one.
func NewLimiter(perSecond float64) *rate.Limiter {
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}
