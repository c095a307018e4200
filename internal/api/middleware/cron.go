package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lokercirebon/jobportal/internal/utils"
)

// RequireCronSecret guards scheduler-triggered endpoints. An empty secret
// disables the endpoints entirely.
func RequireCronSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			abort(c, http.StatusServiceUnavailable, utils.CodeUnavailable, "cron tidak dikonfigurasi")
			return
		}
		got := bearer(c)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			abort(c, http.StatusUnauthorized, utils.CodeUnauthorized, "unauthorized")
			return
		}
		c.Next()
	}
}
