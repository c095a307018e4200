package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lokercirebon/jobportal/internal/api/handlers"
	"github.com/lokercirebon/jobportal/internal/security"
)

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens, err := security.NewTokenIssuer("routes-secret")
	if err != nil {
		t.Fatal(err)
	}
	r := gin.New()
	RegisterRoutes(r, Deps{
		Auth:         handlers.NewAuthHandler(nil),
		Profile:      handlers.NewProfileHandler(nil, nil),
		Job:          handlers.NewJobHandler(nil, nil),
		Application:  handlers.NewApplicationHandler(nil, nil),
		Interview:    handlers.NewInterviewHandler(nil, nil),
		Contract:     handlers.NewContractHandler(nil, nil),
		Resignation:  handlers.NewResignationHandler(nil, nil),
		Admin:        handlers.NewAdminHandler(nil, nil),
		Notification: handlers.NewNotificationHandler(nil, nil),
		WS:           handlers.NewWSHandler(nil, nil, nil),
		Sweep:        handlers.NewSweepHandler(nil, time.Minute),
		Tokens:       tokens,
		CronSecret:   "cron",
	})
	return r
}

func TestRoutesRegisterAndGuard(t *testing.T) {
	t.Parallel()

	r := newEngine(t)
	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/ping", http.StatusOK},
		{http.MethodGet, "/api/v1/auth/me", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/jobseeker/applications", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/recruiter/applications/batch-status", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/admin/audit-logs", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/admin/jobseekers/stats", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/jobseeker/status", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/recruiter/dashboard", http.StatusUnauthorized},
		{http.MethodGet, "/ws/notifications", http.StatusUnauthorized},
		{http.MethodPost, "/internal/sweeps", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		if w.Code != tc.want {
			t.Errorf("%s %s = %d, want %d", tc.method, tc.path, w.Code, tc.want)
		}
	}
}
