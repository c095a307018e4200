package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lokercirebon/jobportal/internal/models"
	pgrepo "github.com/lokercirebon/jobportal/internal/repositories/postgres"
	"github.com/lokercirebon/jobportal/internal/services"
)

type AdminHandler struct {
	gate
	svc services.AdminService
}

func NewAdminHandler(auth services.AuthService, svc services.AdminService) *AdminHandler {
	return &AdminHandler{gate: gate{auth: auth}, svc: svc}
}

type ReasonRequest struct {
	Reason string `json:"reason"`
}

func (h *AdminHandler) ListCompanies(c *gin.Context) {
	if _, ok := h.admin(c); !ok {
		return
	}
	page, err := h.svc.ListCompanies(c.Request.Context(), pgrepo.CompanyFilter{
		Status: models.CompanyStatus(strings.ToUpper(c.Query("status"))),
		Search: c.Query("search"),
		Limit:  queryInt(c, "limit"),
		Offset: queryInt(c, "offset"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *AdminHandler) VerifyCompany(c *gin.Context) {
	admin, ok := h.admin(c)
	if !ok {
		return
	}
	company, err := h.svc.VerifyCompany(c.Request.Context(), admin, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *AdminHandler) RejectCompany(c *gin.Context) {
	admin, ok := h.admin(c)
	if !ok {
		return
	}
	var req ReasonRequest
	if !bindJSON(c, "AdminHandler.RejectCompany", &req) {
		return
	}
	company, err := h.svc.RejectCompany(c.Request.Context(), admin, c.Param("id"), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *AdminHandler) SuspendCompany(c *gin.Context) {
	admin, ok := h.admin(c)
	if !ok {
		return
	}
	var req ReasonRequest
	if !bindJSON(c, "AdminHandler.SuspendCompany", &req) {
		return
	}
	company, err := h.svc.SuspendCompany(c.Request.Context(), admin, c.Param("id"), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

type VerifyRecruiterRequest struct {
	Verified bool `json:"verified"`
}

func (h *AdminHandler) SetRecruiterVerified(c *gin.Context) {
	admin, ok := h.admin(c)
	if !ok {
		return
	}
	var req VerifyRecruiterRequest
	if !bindJSON(c, "AdminHandler.SetRecruiterVerified", &req) {
		return
	}
	rec, err := h.svc.SetRecruiterVerified(c.Request.Context(), admin, c.Param("id"), req.Verified)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *AdminHandler) ApproveJob(c *gin.Context) {
	admin, ok := h.admin(c)
	if !ok {
		return
	}
	job, err := h.svc.ApproveJob(c.Request.Context(), admin, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *AdminHandler) RejectJob(c *gin.Context) {
	admin, ok := h.admin(c)
	if !ok {
		return
	}
	job, err := h.svc.RejectJob(c.Request.Context(), admin, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

type UserStatusRequest struct {
	Status models.AccountStatus `json:"status"`
}

func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	admin, ok := h.admin(c)
	if !ok {
		return
	}
	var req UserStatusRequest
	if !bindJSON(c, "AdminHandler.SetUserStatus", &req) {
		return
	}
	u, err := h.svc.SetUserStatus(c.Request.Context(), admin, c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *AdminHandler) Pending(c *gin.Context) {
	if _, ok := h.admin(c); !ok {
		return
	}
	counts, err := h.svc.Pending(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *AdminHandler) Stats(c *gin.Context) {
	if _, ok := h.admin(c); !ok {
		return
	}
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListJobseekers filters by status=employed|rejected|active; all or empty lists everyone.
func (h *AdminHandler) ListJobseekers(c *gin.Context) {
	if _, ok := h.admin(c); !ok {
		return
	}
	state := strings.ToUpper(c.Query("status"))
	if state == "ALL" {
		state = ""
	}
	page, err := h.svc.ListJobseekers(c.Request.Context(), pgrepo.JobseekerFilter{
		State:  models.SeekerState(state),
		Search: c.Query("search"),
		Limit:  queryInt(c, "limit"),
		Offset: queryInt(c, "offset"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *AdminHandler) JobseekerStats(c *gin.Context) {
	if _, ok := h.admin(c); !ok {
		return
	}
	stats, err := h.svc.JobseekerStats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListAudit pages newest first; pass the last id seen as after_id.
func (h *AdminHandler) ListAudit(c *gin.Context) {
	if _, ok := h.admin(c); !ok {
		return
	}
	after, _ := strconv.ParseInt(c.Query("after_id"), 10, 64)
	logs, err := h.svc.ListAudit(c.Request.Context(), pgrepo.AuditFilter{
		AfterID:      after,
		ResourceType: c.Query("resource_type"),
		ActorID:      c.Query("actor_id"),
		Limit:        queryInt(c, "limit"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	resp := gin.H{"items": logs}
	if n := len(logs); n > 0 {
		resp["next_after_id"] = logs[n-1].ID
	}
	c.JSON(http.StatusOK, resp)
}
