package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lokercirebon/jobportal/internal/models"
	"github.com/lokercirebon/jobportal/internal/services"
)

type ResignationHandler struct {
	gate
	svc services.ResignationService
}

func NewResignationHandler(auth services.AuthService, svc services.ResignationService) *ResignationHandler {
	return &ResignationHandler{gate: gate{auth: auth}, svc: svc}
}

func (h *ResignationHandler) Submit(c *gin.Context) {
	id, ok := h.jobseeker(c)
	if !ok {
		return
	}
	var req services.SubmitResignationInput
	if !bindJSON(c, "ResignationHandler.Submit", &req) {
		return
	}
	res, err := h.svc.Submit(c.Request.Context(), id.Jobseeker, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *ResignationHandler) ListMine(c *gin.Context) {
	id, ok := h.jobseeker(c)
	if !ok {
		return
	}
	items, err := h.svc.ListMine(c.Request.Context(), id.Jobseeker)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *ResignationHandler) ListForRecruiter(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	status := models.ResignationStatus(strings.ToUpper(c.Query("status")))
	items, err := h.svc.ListForRecruiter(c.Request.Context(), id.Recruiter, status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *ResignationHandler) Process(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	var req services.ProcessResignationInput
	if !bindJSON(c, "ResignationHandler.Process", &req) {
		return
	}
	res, err := h.svc.Process(c.Request.Context(), id.Recruiter, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ResignationHandler) Get(c *gin.Context) {
	u, ok := h.user(c)
	if !ok {
		return
	}
	res, err := h.svc.Get(c.Request.Context(), u, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
