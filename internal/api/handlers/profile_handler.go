package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lokercirebon/jobportal/internal/services"
)

type ProfileHandler struct {
	gate
	svc services.ProfileService
}

func NewProfileHandler(auth services.AuthService, svc services.ProfileService) *ProfileHandler {
	return &ProfileHandler{gate: gate{auth: auth}, svc: svc}
}

func (h *ProfileHandler) GetJobseeker(c *gin.Context) {
	id, ok := h.jobseeker(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, id.Jobseeker)
}

func (h *ProfileHandler) EmploymentStatus(c *gin.Context) {
	id, ok := h.jobseeker(c)
	if !ok {
		return
	}
	status, err := h.svc.EmploymentStatus(c.Request.Context(), id.Jobseeker)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *ProfileHandler) UpdateJobseeker(c *gin.Context) {
	id, ok := h.jobseeker(c)
	if !ok {
		return
	}
	var req services.JobseekerProfileInput
	if !bindJSON(c, "ProfileHandler.UpdateJobseeker", &req) {
		return
	}
	js, err := h.svc.UpdateJobseeker(c.Request.Context(), id.Jobseeker.ID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, js)
}

// Onboard only needs an authenticated user; the recruiter profile does not exist yet.
func (h *ProfileHandler) Onboard(c *gin.Context) {
	u, ok := h.user(c)
	if !ok {
		return
	}
	var req services.OnboardInput
	if !bindJSON(c, "ProfileHandler.Onboard", &req) {
		return
	}
	rec, err := h.svc.Onboard(c.Request.Context(), u, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *ProfileHandler) GetRecruiter(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, id.Recruiter)
}

func (h *ProfileHandler) Dashboard(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	dash, err := h.svc.RecruiterDashboard(c.Request.Context(), id.Recruiter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (h *ProfileHandler) ResubmitCompany(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	var req services.CompanyInput
	if !bindJSON(c, "ProfileHandler.ResubmitCompany", &req) {
		return
	}
	company, err := h.svc.ResubmitCompany(c.Request.Context(), id.Recruiter, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *ProfileHandler) ListCompanies(c *gin.Context) {
	page, err := h.svc.ListPublicCompanies(c.Request.Context(), c.Query("search"), queryInt(c, "limit"), queryInt(c, "offset"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ProfileHandler) GetCompany(c *gin.Context) {
	company, err := h.svc.GetPublicCompany(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}
