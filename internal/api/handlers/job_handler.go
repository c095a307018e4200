package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lokercirebon/jobportal/internal/api/middleware"
	"github.com/lokercirebon/jobportal/internal/models"
	pgrepo "github.com/lokercirebon/jobportal/internal/repositories/postgres"
	"github.com/lokercirebon/jobportal/internal/services"
)

type JobHandler struct {
	gate
	svc services.JobService
}

func NewJobHandler(auth services.AuthService, svc services.JobService) *JobHandler {
	return &JobHandler{gate: gate{auth: auth}, svc: svc}
}

func splitQuery(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.QueryArray(key) {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func jobFilter(c *gin.Context) pgrepo.JobFilter {
	f := pgrepo.JobFilter{
		Search:     strings.TrimSpace(c.Query("search")),
		Location:   strings.TrimSpace(c.Query("location")),
		Types:      splitQuery(c, "type"),
		Categories: splitQuery(c, "category"),
		Status:     models.JobStatus(strings.ToUpper(c.Query("status"))),
		Sort:       c.Query("sort"),
		Limit:      queryInt(c, "limit"),
		Offset:     queryInt(c, "offset"),
	}
	if v := c.Query("max_experience"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.MaxExperience = &n
		}
	}
	return f
}

func (h *JobHandler) ListPublic(c *gin.Context) {
	page, err := h.svc.ListPublic(c.Request.Context(), jobFilter(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetPublic reports has_applied when the caller is a signed-in jobseeker.
func (h *JobHandler) GetPublic(c *gin.Context) {
	var jobseekerID string
	if claims, ok := middleware.ClaimsFrom(c); ok && claims.Role == models.RoleJobseeker {
		if id, err := h.auth.RequireJobseeker(c.Request.Context(), claims); err == nil {
			jobseekerID = id.Jobseeker.ID
		}
	}
	view, err := h.svc.GetPublic(c.Request.Context(), c.Param("slug"), jobseekerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *JobHandler) Categories(c *gin.Context) {
	cats, err := h.svc.Categories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": cats})
}

func (h *JobHandler) HomeStats(c *gin.Context) {
	stats, err := h.svc.HomeStats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *JobHandler) FeaturedJobs(c *gin.Context) {
	jobs, err := h.svc.FeaturedJobs(c.Request.Context(), queryInt(c, "limit"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": jobs})
}

func (h *JobHandler) TopCompanies(c *gin.Context) {
	companies, err := h.svc.TopCompanies(c.Request.Context(), queryInt(c, "limit"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": companies})
}

func (h *JobHandler) Create(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	var req services.JobInput
	if !bindJSON(c, "JobHandler.Create", &req) {
		return
	}
	job, err := h.svc.Create(c.Request.Context(), id.Recruiter, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) Update(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	var req services.JobInput
	if !bindJSON(c, "JobHandler.Update", &req) {
		return
	}
	job, err := h.svc.Update(c.Request.Context(), id.Recruiter, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Toggle(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	job, err := h.svc.Toggle(c.Request.Context(), id.Recruiter, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Delete(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id.Recruiter, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *JobHandler) GetForRecruiter(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	view, err := h.svc.GetForRecruiter(c.Request.Context(), id.Recruiter, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *JobHandler) ListForRecruiter(c *gin.Context) {
	id, ok := h.recruiter(c)
	if !ok {
		return
	}
	page, err := h.svc.ListForRecruiter(c.Request.Context(), id.Recruiter, jobFilter(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *JobHandler) ListAll(c *gin.Context) {
	if _, ok := h.admin(c); !ok {
		return
	}
	page, err := h.svc.ListAll(c.Request.Context(), jobFilter(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
