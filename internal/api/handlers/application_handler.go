package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lokercirebon/jobportal/internal/models"
	"github.com/lokercirebon/jobportal/internal/services"
)

type ApplicationHandler struct {
	gate
	svc services.ApplicationService
}

func NewApplicationHandler(auth services.AuthService, svc services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{gate: gate{auth: auth}, svc: svc}
}

func (h *ApplicationHandler) Apply(c *gin.Context) {
	id, ok := h.jobseeker(c)
	if !ok {
		return
	}
	var req services.ApplyInput
	if !bindJSON(c, "ApplicationHandler.Apply", &req) {
		return
	}
	app, err := h.svc.Apply(c.Request.Context(), id.Jobseeker, c.Param("slug"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

func (h *ApplicationHandler) ListMine(c *gin.Context) {
	id, ok := h.jobseeker(c)
	if !ok {
		return
	}
	apps, err := h.svc.ListMine(c.Request.Context(), id.Jobseeker)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": apps})
}

func (h *ApplicationHandler) GetMine(c *gin.Context) {
	id, ok := h.jobseeker(c)
	if !ok {
		return
	}
	app, err := h.svc.GetMine(c.Request.Context(), id.Jobseeker, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	id, ok := h.jobseeker(c)
	if !ok {
		return
	}
	app, err := h.svc.Withdraw(c.Request.Context(), id.Jobseeker, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *ApplicationHandler) ConfirmOffer(c *gin.Context) {
	id, ok := h.jobseeker(c)
	if !ok {
		return
	}
	res, err := h.svc.ConfirmOffer(c.Request.Context(), id.Jobseeker, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ApplicationHandler) ListForJob(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	status := models.ApplicationStatus(strings.ToUpper(c.Query("status")))
	apps, err := h.svc.ListForJob(c.Request.Context(), id.Recruiter, c.Param("id"), status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": apps})
}

func (h *ApplicationHandler) GetForRecruiter(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	app, err := h.svc.GetForRecruiter(c.Request.Context(), id.Recruiter, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

type UpdateStatusRequest struct {
	Status models.ApplicationStatus `json:"status"`
	Notes  *string                  `json:"notes,omitempty"`
}

func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !bindJSON(c, "ApplicationHandler.UpdateStatus", &req) {
		return
	}
	app, err := h.svc.UpdateStatus(c.Request.Context(), id.Recruiter, c.Param("id"), req.Status, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

type BatchStatusRequest struct {
	IDs    []string                 `json:"ids"`
	Status models.ApplicationStatus `json:"status"`
}

func (h *ApplicationHandler) BatchUpdateStatus(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	var req BatchStatusRequest
	if !bindJSON(c, "ApplicationHandler.BatchUpdateStatus", &req) {
		return
	}
	apps, err := h.svc.BatchUpdateStatus(c.Request.Context(), id.Recruiter, req.IDs, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": apps})
}

func (h *ApplicationHandler) Match(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	res, err := h.svc.MatchApplicants(c.Request.Context(), id.Recruiter, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": res})
}
