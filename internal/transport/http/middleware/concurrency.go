package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "campus-leave/internal/transport/http/response"
)

// ConcurrencyLimit caps in-flight requests so the database pool is not swamped.
func ConcurrencyLimit(max int64) gin.HandlerFunc {
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if !sem.TryAcquire(1) {
			c.AbortWithStatusJSON(resp.CodeTooManyRequests, resp.Error(resp.CodeTooManyRequests, "Server busy"))
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
