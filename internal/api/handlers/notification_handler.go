package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lokercirebon/jobportal/internal/services"
)

type NotificationHandler struct {
	gate
	svc services.NotificationService
}

func NewNotificationHandler(auth services.AuthService, svc services.NotificationService) *NotificationHandler {
	return &NotificationHandler{gate: gate{auth: auth}, svc: svc}
}

func (h *NotificationHandler) List(c *gin.Context) {
	u, ok := h.user(c)
	if !ok {
		return
	}
	items, err := h.svc.List(c.Request.Context(), u.ID, c.Query("unread") == "true", int64(queryInt(c, "limit")))
	if err != nil {
		writeError(c, err)
		return
	}
	unread, err := h.svc.UnreadCount(c.Request.Context(), u.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "unread": unread})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	u, ok := h.user(c)
	if !ok {
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), u.ID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	u, ok := h.user(c)
	if !ok {
		return
	}
	n, err := h.svc.MarkAllRead(c.Request.Context(), u.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}
