package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lokercirebon/jobportal/internal/models"
	"github.com/lokercirebon/jobportal/internal/services"
)

type InterviewHandler struct {
	gate
	svc services.InterviewService
}

func NewInterviewHandler(auth services.AuthService, svc services.InterviewService) *InterviewHandler {
	return &InterviewHandler{gate: gate{auth: auth}, svc: svc}
}

func (h *InterviewHandler) Schedule(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	var req services.ScheduleInput
	if !bindJSON(c, "InterviewHandler.Schedule", &req) {
		return
	}
	iv, err := h.svc.Schedule(c.Request.Context(), id.Recruiter, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, iv)
}

func (h *InterviewHandler) Reschedule(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	var req services.RescheduleInput
	if !bindJSON(c, "InterviewHandler.Reschedule", &req) {
		return
	}
	iv, err := h.svc.Reschedule(c.Request.Context(), id.Recruiter, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, iv)
}

func (h *InterviewHandler) RescheduleParticipant(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	var req services.RescheduleInput
	if !bindJSON(c, "InterviewHandler.RescheduleParticipant", &req) {
		return
	}
	iv, err := h.svc.RescheduleParticipant(c.Request.Context(), id.Recruiter, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, iv)
}

func (h *InterviewHandler) Complete(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	iv, err := h.svc.Complete(c.Request.Context(), id.Recruiter, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, iv)
}

func (h *InterviewHandler) ListForRecruiter(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	status := models.InterviewStatus(strings.ToUpper(c.Query("status")))
	items, err := h.svc.ListForRecruiter(c.Request.Context(), id.Recruiter, status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *InterviewHandler) Get(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	iv, err := h.svc.Get(c.Request.Context(), id.Recruiter, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, iv)
}

func (h *InterviewHandler) ListMine(c *gin.Context) {
	id, ok := h.jobseeker(c)
	if !ok {
		return
	}
	items, err := h.svc.ListForJobseeker(c.Request.Context(), id.Jobseeker)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *InterviewHandler) Respond(c *gin.Context) {
	id, ok := h.jobseeker(c)
	if !ok {
		return
	}
	var req services.RespondInput
	if !bindJSON(c, "InterviewHandler.Respond", &req) {
		return
	}
	p, err := h.svc.Respond(c.Request.Context(), id.Jobseeker, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
