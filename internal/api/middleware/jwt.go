package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lokercirebon/jobportal/internal/security"
	"github.com/lokercirebon/jobportal/internal/utils"
)

const (
	ctxClaims = "claims"
	ctxUserID = "user_id"
	ctxRole   = "role"
)

type apiError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

func abort(c *gin.Context, status int, code utils.Code, msg string) {
	c.AbortWithStatusJSON(status, apiError{Code: code, Message: msg})
}

func bearer(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

// JWTAuth verifies the bearer token and stores its claims on the context.
// Browsers cannot set headers on websocket upgrades, so a token query
// parameter is accepted as well.
func JWTAuth(tokens *security.TokenIssuer, now func() time.Time) gin.HandlerFunc {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return func(c *gin.Context) {
		raw := bearer(c)
		if raw == "" {
			raw = c.Query("token")
		}
		if raw == "" {
			abort(c, http.StatusUnauthorized, utils.CodeUnauthorized, "token tidak ditemukan")
			return
		}

		claims, err := tokens.Parse(raw, now())
		if err != nil {
			abort(c, http.StatusUnauthorized, utils.CodeUnauthorized, "token tidak valid atau kedaluwarsa")
			return
		}

		c.Set(ctxClaims, claims)
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, string(claims.Role))
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by JWTAuth.
func ClaimsFrom(c *gin.Context) (*security.Claims, bool) {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*security.Claims)
	return claims, ok && claims != nil
}

// OptionalJWT stores claims when a valid token is present and never aborts.
func OptionalJWT(tokens *security.TokenIssuer, now func() time.Time) gin.HandlerFunc {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return func(c *gin.Context) {
		if raw := bearer(c); raw != "" {
			if claims, err := tokens.Parse(raw, now()); err == nil {
				c.Set(ctxClaims, claims)
				c.Set(ctxUserID, claims.UserID)
				c.Set(ctxRole, string(claims.Role))
			}
		}
		c.Next()
	}
}
