package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	"github.com/go-petr/bank-backoffice/pkg/web"
)

// Throttle bounds the number of requests processed concurrently. Requests
// beyond the limit wait until a slot frees up or the request context is done,
// in which case they get 503.
func Throttle(maxConcurrent int64) gin.HandlerFunc {
	sem := semaphore.NewWeighted(maxConcurrent)

	return func(c *gin.Context) {
		if err := sem.Acquire(c.Request.Context(), 1); err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, web.Error(err))
			return
		}
		defer sem.Release(1)

		c.Next()
	}
}
