package middleware

import (
	"github.com/gin-gonic/gin"

	resp "campus-leave/internal/transport/http/response"
)

// RecoveryEnvelope is the ginzap recovery handler: the panic is already
// logged with its stack, the client only sees the generic envelope.
func RecoveryEnvelope(c *gin.Context, _ any) {
	c.AbortWithStatusJSON(resp.CodeServerError, resp.Error(resp.CodeServerError, ""))
}
