package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lokercirebon/jobportal/internal/api/handlers"
	"github.com/lokercirebon/jobportal/internal/api/middleware"
	"github.com/lokercirebon/jobportal/internal/models"
	"github.com/lokercirebon/jobportal/internal/security"
)

type Deps struct {
	Auth         *handlers.AuthHandler
	Profile      *handlers.ProfileHandler
	Job          *handlers.JobHandler
	Application  *handlers.ApplicationHandler
	Interview    *handlers.InterviewHandler
	Contract     *handlers.ContractHandler
	Resignation  *handlers.ResignationHandler
	Admin        *handlers.AdminHandler
	Notification *handlers.NotificationHandler
	WS           *handlers.WSHandler
	Sweep        *handlers.SweepHandler

	Tokens       *security.TokenIssuer
	LoginLimiter gin.HandlerFunc
	CronSecret   string
	Now          func() time.Time
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	jwtAuth := middleware.JWTAuth(d.Tokens, d.Now)
	limit := d.LoginLimiter
	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}

	v1 := r.Group("/api/v1")

	// public
	v1.GET("/jobs", d.Job.ListPublic)
	v1.GET("/jobs/:slug", middleware.OptionalJWT(d.Tokens, d.Now), d.Job.GetPublic)
	v1.GET("/companies", d.Profile.ListCompanies)
	v1.GET("/companies/:slug", d.Profile.GetCompany)
	v1.GET("/home/stats", d.Job.HomeStats)
	v1.GET("/home/categories", d.Job.Categories)
	v1.GET("/home/featured-jobs", d.Job.FeaturedJobs)
	v1.GET("/home/top-companies", d.Job.TopCompanies)

	auth := v1.Group("/auth")
	auth.POST("/register/jobseeker", limit, d.Auth.RegisterJobseeker)
	auth.POST("/register/recruiter", limit, d.Auth.RegisterRecruiter)
	auth.POST("/login", limit, d.Auth.Login)
	auth.GET("/me", jwtAuth, d.Auth.Me)

	// any signed-in user
	authed := v1.Group("/")
	authed.Use(jwtAuth)
	authed.GET("/notifications", d.Notification.List)
	authed.POST("/notifications/read-all", d.Notification.MarkAllRead)
	authed.POST("/notifications/:id/read", d.Notification.MarkRead)
	authed.GET("/resignations/:id", d.Resignation.Get)

	js := v1.Group("/jobseeker")
	js.Use(jwtAuth, middleware.RequireRole(models.RoleJobseeker))
	js.GET("/profile", d.Profile.GetJobseeker)
	js.PUT("/profile", d.Profile.UpdateJobseeker)
	js.GET("/status", d.Profile.EmploymentStatus)
	js.POST("/jobs/:slug/apply", d.Application.Apply)
	js.GET("/applications", d.Application.ListMine)
	js.GET("/applications/:id", d.Application.GetMine)
	js.POST("/applications/:id/withdraw", d.Application.Withdraw)
	js.POST("/applications/:id/confirm", d.Application.ConfirmOffer)
	js.GET("/interviews", d.Interview.ListMine)
	js.POST("/interview-participants/:id/respond", d.Interview.Respond)
	js.GET("/resignations", d.Resignation.ListMine)
	js.POST("/resignations", d.Resignation.Submit)

	rec := v1.Group("/recruiter")
	rec.Use(jwtAuth, middleware.RequireRole(models.RoleRecruiter))
	rec.POST("/onboarding", d.Profile.Onboard)
	rec.GET("/profile", d.Profile.GetRecruiter)
	rec.GET("/dashboard", d.Profile.Dashboard)
	rec.POST("/company/resubmit", d.Profile.ResubmitCompany)

	rec.GET("/jobs", d.Job.ListForRecruiter)
	rec.POST("/jobs", d.Job.Create)
	rec.GET("/jobs/:id", d.Job.GetForRecruiter)
	rec.PUT("/jobs/:id", d.Job.Update)
	rec.DELETE("/jobs/:id", d.Job.Delete)
	rec.POST("/jobs/:id/toggle", d.Job.Toggle)
	rec.GET("/jobs/:id/applications", d.Application.ListForJob)
	rec.POST("/jobs/:id/match", d.Application.Match)

	rec.POST("/applications/batch-status", d.Application.BatchUpdateStatus)
	rec.GET("/applications/:id", d.Application.GetForRecruiter)
	rec.PATCH("/applications/:id/status", d.Application.UpdateStatus)

	rec.GET("/interviews", d.Interview.ListForRecruiter)
	rec.POST("/interviews", d.Interview.Schedule)
	rec.GET("/interviews/:id", d.Interview.Get)
	rec.POST("/interviews/:id/reschedule", d.Interview.Reschedule)
	rec.POST("/interviews/:id/complete", d.Interview.Complete)
	rec.POST("/interview-participants/:id/reschedule", d.Interview.RescheduleParticipant)

	rec.GET("/contracts", d.Contract.ListForCompany)
	rec.POST("/contracts", d.Contract.Register)
	rec.GET("/contracts/accepted-applicants", d.Contract.AcceptedApplicants)
	rec.GET("/contracts/:id", d.Contract.GetForRecruiter)
	rec.POST("/contracts/:id/resubmit", d.Contract.Resubmit)
	rec.POST("/contract-workers/:id/terminate", d.Contract.TerminateWorker)

	rec.GET("/resignations", d.Resignation.ListForRecruiter)
	rec.POST("/resignations/:id/process", d.Resignation.Process)

	admin := v1.Group("/admin")
	admin.Use(jwtAuth, middleware.RequireAdmin())
	admin.GET("/companies", d.Admin.ListCompanies)
	admin.POST("/companies/:id/verify", d.Admin.VerifyCompany)
	admin.POST("/companies/:id/reject", d.Admin.RejectCompany)
	admin.POST("/companies/:id/suspend", d.Admin.SuspendCompany)
	admin.PATCH("/recruiters/:id/verification", d.Admin.SetRecruiterVerified)
	admin.GET("/jobs", d.Job.ListAll)
	admin.POST("/jobs/:id/approve", d.Admin.ApproveJob)
	admin.POST("/jobs/:id/reject", d.Admin.RejectJob)
	admin.GET("/contracts", d.Contract.List)
	admin.GET("/contracts/:id", d.Contract.Get)
	admin.POST("/contracts/:id/process", d.Contract.Process)
	admin.GET("/contracts/:id/pdf", d.Contract.SummaryPDF)
	admin.PATCH("/users/:id/status", d.Admin.SetUserStatus)
	admin.GET("/pending", d.Admin.Pending)
	admin.GET("/stats", d.Admin.Stats)
	admin.GET("/jobseekers", d.Admin.ListJobseekers)
	admin.GET("/jobseekers/stats", d.Admin.JobseekerStats)
	admin.GET("/audit-logs", d.Admin.ListAudit)

	r.GET("/ws/notifications", jwtAuth, d.WS.Notifications)

	internal := r.Group("/internal")
	internal.Use(middleware.RequireCronSecret(d.CronSecret))
	internal.POST("/sweeps", d.Sweep.Run)
}
