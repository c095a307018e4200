package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lokercirebon/jobportal/internal/models"
	"github.com/lokercirebon/jobportal/internal/services"
)

type ContractHandler struct {
	gate
	svc services.ContractService
}

func NewContractHandler(auth services.AuthService, svc services.ContractService) *ContractHandler {
	return &ContractHandler{gate: gate{auth: auth}, svc: svc}
}

func registrationStatus(c *gin.Context) models.RegistrationStatus {
	return models.RegistrationStatus(strings.ToUpper(c.Query("status")))
}

func (h *ContractHandler) Register(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	var req services.RegisterContractInput
	if !bindJSON(c, "ContractHandler.Register", &req) {
		return
	}
	reg, err := h.svc.Register(c.Request.Context(), id.Recruiter, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reg)
}

func (h *ContractHandler) ListForCompany(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	list, err := h.svc.ListForCompany(c.Request.Context(), id.Recruiter, registrationStatus(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ContractHandler) AcceptedApplicants(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	apps, err := h.svc.AcceptedApplicants(c.Request.Context(), id.Recruiter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": apps})
}

func (h *ContractHandler) GetForRecruiter(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	reg, err := h.svc.GetForRecruiter(c.Request.Context(), id.Recruiter, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reg)
}

func (h *ContractHandler) Resubmit(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	var req services.RegisterContractInput
	// an empty body resubmits the same workers
	if c.Request.ContentLength != 0 && !bindJSON(c, "ContractHandler.Resubmit", &req) {
		return
	}
	reg, err := h.svc.Resubmit(c.Request.Context(), id.Recruiter, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reg)
}

type TerminateRequest struct {
	Reason string `json:"reason"`
}

func (h *ContractHandler) TerminateWorker(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	var req TerminateRequest
	if !bindJSON(c, "ContractHandler.TerminateWorker", &req) {
		return
	}
	w, err := h.svc.TerminateWorker(c.Request.Context(), id.Recruiter, c.Param("id"), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *ContractHandler) List(c *gin.Context) {
	if _, ok := h.admin(c); !ok {
		return
	}
	items, err := h.svc.List(c.Request.Context(), registrationStatus(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *ContractHandler) Get(c *gin.Context) {
	if _, ok := h.admin(c); !ok {
		return
	}
	reg, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reg)
}

func (h *ContractHandler) Process(c *gin.Context) {
	admin, ok := h.admin(c)
	if !ok {
		return
	}
	var req services.ProcessContractInput
	if !bindJSON(c, "ContractHandler.Process", &req) {
		return
	}
	reg, err := h.svc.Process(c.Request.Context(), admin, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reg)
}

func (h *ContractHandler) SummaryPDF(c *gin.Context) {
	if _, ok := h.admin(c); !ok {
		return
	}
	b, err := h.svc.SummaryPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="kontrak-%s.pdf"`, c.Param("id")))
	c.Data(http.StatusOK, "application/pdf", b)
}
