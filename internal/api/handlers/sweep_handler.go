package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lokercirebon/jobportal/internal/services"
)

type SweepHandler struct {
	svc     services.SweepService
	timeout time.Duration
	now     func() time.Time
}

func NewSweepHandler(svc services.SweepService, timeout time.Duration) *SweepHandler {
	return &SweepHandler{svc: svc, timeout: timeout, now: func() time.Time { return time.Now().UTC() }}
}

// Run is called by an external scheduler.
func (h *SweepHandler) Run(c *gin.Context) {
	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	res, err := h.svc.Run(ctx, h.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
