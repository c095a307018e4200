package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lokercirebon/jobportal/internal/api/middleware"
	"github.com/lokercirebon/jobportal/internal/models"
	"github.com/lokercirebon/jobportal/internal/security"
	"github.com/lokercirebon/jobportal/internal/services"
	"github.com/lokercirebon/jobportal/internal/utils"
)

type APIError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}

	var ae *utils.AppError
	if errors.As(err, &ae) && ae.Code != utils.CodeInternal {
		c.JSON(status, APIError{
			Code:    ae.Code,
			Message: ae.Message,
		})
		return
	}

	c.JSON(status, APIError{
		Code:    utils.CodeInternal,
		Message: http.StatusText(status),
	})
}

func bindJSON(c *gin.Context, op string, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "format permintaan tidak valid", err))
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}

// gate resolves the authenticated caller into the profile a handler needs.
type gate struct {
	auth services.AuthService
}

func (g gate) claims(c *gin.Context) (*security.Claims, bool) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		writeError(c, utils.E(utils.CodeUnauthorized, "Auth", "unauthorized", nil))
		return nil, false
	}
	return claims, true
}

func (g gate) user(c *gin.Context) (*models.User, bool) {
	claims, ok := g.claims(c)
	if !ok {
		return nil, false
	}
	u, err := g.auth.Authenticate(c.Request.Context(), claims)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return u, true
}

func (g gate) jobseeker(c *gin.Context) (*services.JobseekerIdentity, bool) {
	claims, ok := g.claims(c)
	if !ok {
		return nil, false
	}
	id, err := g.auth.RequireJobseeker(c.Request.Context(), claims)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return id, true
}

func (g gate) recruiter(c *gin.Context) (*services.RecruiterIdentity, bool) {
	claims, ok := g.claims(c)
	if !ok {
		return nil, false
	}
	id, err := g.auth.RequireRecruiter(c.Request.Context(), claims)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return id, true
}

func (g gate) admin(c *gin.Context) (*models.User, bool) {
	claims, ok := g.claims(c)
	if !ok {
		return nil, false
	}
	u, err := g.auth.RequireAdmin(c.Request.Context(), claims)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return u, true
}
