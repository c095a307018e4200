package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lokercirebon/jobportal/internal/services"
)

type AuthHandler struct {
	gate
}

func NewAuthHandler(auth services.AuthService) *AuthHandler {
	return &AuthHandler{gate: gate{auth: auth}}
}

func (h *AuthHandler) RegisterJobseeker(c *gin.Context) {
	var req services.RegisterInput
	if !bindJSON(c, "AuthHandler.RegisterJobseeker", &req) {
		return
	}
	u, js, err := h.auth.RegisterJobseeker(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": u, "jobseeker": js})
}

func (h *AuthHandler) RegisterRecruiter(c *gin.Context) {
	var req services.RegisterInput
	if !bindJSON(c, "AuthHandler.RegisterRecruiter", &req) {
		return
	}
	u, err := h.auth.RegisterRecruiter(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": u})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, "AuthHandler.Login", &req) {
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := h.claims(c)
	if !ok {
		return
	}
	me, err := h.auth.Me(c.Request.Context(), claims)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, me)
}
