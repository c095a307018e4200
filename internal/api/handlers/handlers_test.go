package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lokercirebon/jobportal/internal/api/middleware"
	"github.com/lokercirebon/jobportal/internal/models"
	pgrepo "github.com/lokercirebon/jobportal/internal/repositories/postgres"
	"github.com/lokercirebon/jobportal/internal/security"
	"github.com/lokercirebon/jobportal/internal/services"
	"github.com/lokercirebon/jobportal/internal/utils"
)

func init() { gin.SetMode(gin.TestMode) }

var testNow = time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)

// stubAuth resolves identities from the token claims without storage.
type stubAuth struct {
	services.AuthService
	jobseekers map[string]*models.Jobseeker
	login      func(email, password string) (*services.LoginResult, error)
}

func (s *stubAuth) user(claims *security.Claims) *models.User {
	return &models.User{ID: claims.UserID, Email: claims.Email, Role: claims.Role, Status: models.AccountActive}
}

func (s *stubAuth) Authenticate(_ context.Context, claims *security.Claims) (*models.User, error) {
	return s.user(claims), nil
}

func (s *stubAuth) RequireJobseeker(_ context.Context, claims *security.Claims) (*services.JobseekerIdentity, error) {
	if claims.Role != models.RoleJobseeker {
		return nil, utils.E(utils.CodeForbidden, "stub", "akses ditolak", nil)
	}
	js, ok := s.jobseekers[claims.UserID]
	if !ok {
		return nil, utils.E(utils.CodeProfileNotFound, "stub", "profil tidak ditemukan", nil)
	}
	return &services.JobseekerIdentity{User: s.user(claims), Jobseeker: js}, nil
}

func (s *stubAuth) RequireAdmin(_ context.Context, claims *security.Claims) (*models.User, error) {
	if claims.Role != models.RoleAdmin {
		return nil, utils.E(utils.CodeForbidden, "stub", "akses ditolak", nil)
	}
	return s.user(claims), nil
}

func (s *stubAuth) Login(_ context.Context, email, password string) (*services.LoginResult, error) {
	return s.login(email, password)
}

type stubJobs struct {
	services.JobService
	gotJobseekerID string
}

func (s *stubJobs) GetPublic(_ context.Context, slug, jobseekerID string) (*services.JobView, error) {
	s.gotJobseekerID = jobseekerID
	if slug != "backend" {
		return nil, utils.E(utils.CodeNotFound, "stub", "lowongan tidak ditemukan", nil)
	}
	return &services.JobView{Job: models.Job{Slug: slug, Status: models.JobActive}, IsActive: true}, nil
}

type stubApplications struct {
	services.ApplicationService
	err error
}

func (s *stubApplications) Apply(_ context.Context, js *models.Jobseeker, slug string, in services.ApplyInput) (*models.Application, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Application{ID: "app-1", JobseekerID: js.ID, Status: models.AppPending, CoverLetter: in.CoverLetter}, nil
}

type stubAdmin struct {
	services.AdminService
	gotFilter  pgrepo.AuditFilter
	gotSeekers pgrepo.JobseekerFilter
}

func (s *stubAdmin) ListJobseekers(_ context.Context, f pgrepo.JobseekerFilter) (*services.JobseekerPageAdmin, error) {
	s.gotSeekers = f
	return &services.JobseekerPageAdmin{Items: []pgrepo.JobseekerSummary{}}, nil
}

func (s *stubAdmin) ListAudit(_ context.Context, f pgrepo.AuditFilter) ([]models.AuditLog, error) {
	s.gotFilter = f
	return []models.AuditLog{{ID: 9}, {ID: 7}}, nil
}

type testServer struct {
	engine *gin.Engine
	tokens *security.TokenIssuer
}

func newServer(t *testing.T, register func(r *gin.Engine, auth gin.HandlerFunc, opt gin.HandlerFunc)) *testServer {
	t.Helper()
	tokens, err := security.NewTokenIssuer("handler-secret")
	if err != nil {
		t.Fatal(err)
	}
	now := func() time.Time { return testNow }
	r := gin.New()
	register(r, middleware.JWTAuth(tokens, now), middleware.OptionalJWT(tokens, now))
	return &testServer{engine: r, tokens: tokens}
}

func (s *testServer) token(t *testing.T, id string, role models.UserRole) string {
	t.Helper()
	raw, _, err := s.tokens.Issue(&models.User{ID: id, Email: id + "@loker.id", Role: role}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) APIError {
	t.Helper()
	var e APIError
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return e
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.GET("/coded", func(c *gin.Context) {
		writeError(c, utils.E(utils.CodeConflict, "op", "lamaran sudah ada", errors.New("pq: duplicate key")))
	})
	r.GET("/internal", func(c *gin.Context) {
		writeError(c, utils.E(utils.CodeInternal, "op", "failed to load job", errors.New("dial tcp: refused")))
	})
	srv := &testServer{engine: r}

	w := srv.do(http.MethodGet, "/coded", "", "")
	if e := decodeError(t, w); w.Code != http.StatusConflict || e.Code != utils.CodeConflict || e.Message != "lamaran sudah ada" {
		t.Fatalf("coded: %d %+v", w.Code, e)
	}
	w = srv.do(http.MethodGet, "/internal", "", "")
	e := decodeError(t, w)
	if w.Code != http.StatusInternalServerError || e.Code != utils.CodeInternal {
		t.Fatalf("internal: %d %+v", w.Code, e)
	}
	if strings.Contains(w.Body.String(), "dial tcp") || strings.Contains(w.Body.String(), "failed to load") {
		t.Fatalf("internal detail leaked: %s", w.Body.String())
	}
}

func TestLoginHandler(t *testing.T) {
	t.Parallel()

	auth := &stubAuth{login: func(email, password string) (*services.LoginResult, error) {
		if password != "rahasia123" {
			return nil, utils.E(utils.CodeUnauthorized, "stub", "email atau password salah", nil)
		}
		return &services.LoginResult{Token: "tok", ExpiresAt: testNow.Add(time.Hour)}, nil
	}}
	h := NewAuthHandler(auth)
	srv := newServer(t, func(r *gin.Engine, _, _ gin.HandlerFunc) { r.POST("/login", h.Login) })

	if w := srv.do(http.MethodPost, "/login", "", `{"email":"a@b.id","password":"rahasia123"}`); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"token":"tok"`) {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	if w := srv.do(http.MethodPost, "/login", "", `{"email":"a@b.id","password":"salah"}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: %d", w.Code)
	}
	w := srv.do(http.MethodPost, "/login", "", `{not json`)
	if e := decodeError(t, w); w.Code != http.StatusBadRequest || e.Code != utils.CodeInvalidArgument {
		t.Fatalf("bad body: %d %+v", w.Code, e)
	}
}

func TestGetPublicJobOptionalIdentity(t *testing.T) {
	t.Parallel()

	auth := &stubAuth{jobseekers: map[string]*models.Jobseeker{"u-js": {ID: "js-1", UserID: "u-js"}}}
	jobs := &stubJobs{}
	h := NewJobHandler(auth, jobs)
	srv := newServer(t, func(r *gin.Engine, _, opt gin.HandlerFunc) { r.GET("/jobs/:slug", opt, h.GetPublic) })

	if w := srv.do(http.MethodGet, "/jobs/backend", "", ""); w.Code != http.StatusOK || jobs.gotJobseekerID != "" {
		t.Fatalf("anonymous: %d jobseeker=%q", w.Code, jobs.gotJobseekerID)
	}
	if w := srv.do(http.MethodGet, "/jobs/backend", srv.token(t, "u-js", models.RoleJobseeker), ""); w.Code != http.StatusOK || jobs.gotJobseekerID != "js-1" {
		t.Fatalf("jobseeker: %d jobseeker=%q", w.Code, jobs.gotJobseekerID)
	}
	if w := srv.do(http.MethodGet, "/jobs/backend", "garbage", ""); w.Code != http.StatusOK {
		t.Fatalf("bad token must fall back to anonymous, got %d", w.Code)
	}
	if w := srv.do(http.MethodGet, "/jobs/unknown", "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown: %d", w.Code)
	}
}

func TestApplyHandler(t *testing.T) {
	t.Parallel()

	auth := &stubAuth{jobseekers: map[string]*models.Jobseeker{"u-js": {ID: "js-1", UserID: "u-js"}}}
	apps := &stubApplications{}
	h := NewApplicationHandler(auth, apps)
	srv := newServer(t, func(r *gin.Engine, jwt, _ gin.HandlerFunc) { r.POST("/jobs/:slug/apply", jwt, h.Apply) })

	if w := srv.do(http.MethodPost, "/jobs/backend/apply", "", `{}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: %d", w.Code)
	}
	if w := srv.do(http.MethodPost, "/jobs/backend/apply", srv.token(t, "u-new", models.RoleJobseeker), `{}`); w.Code != http.StatusNotFound {
		t.Fatalf("no profile: %d", w.Code)
	}
	if w := srv.do(http.MethodPost, "/jobs/backend/apply", srv.token(t, "u-rec", models.RoleRecruiter), `{}`); w.Code != http.StatusForbidden {
		t.Fatalf("recruiter: %d", w.Code)
	}

	tok := srv.token(t, "u-js", models.RoleJobseeker)
	w := srv.do(http.MethodPost, "/jobs/backend/apply", tok, `{"cover_letter":"Halo"}`)
	if w.Code != http.StatusCreated || !strings.Contains(w.Body.String(), `"cover_letter":"Halo"`) {
		t.Fatalf("apply: %d %s", w.Code, w.Body.String())
	}

	apps.err = utils.E(utils.CodeConflict, "stub", "anda sudah melamar lowongan ini", nil)
	if w := srv.do(http.MethodPost, "/jobs/backend/apply", tok, `{}`); w.Code != http.StatusConflict {
		t.Fatalf("duplicate: %d", w.Code)
	}
}

func TestListAuditCursor(t *testing.T) {
	t.Parallel()

	admin := &stubAdmin{}
	h := NewAdminHandler(&stubAuth{}, admin)
	srv := newServer(t, func(r *gin.Engine, jwt, _ gin.HandlerFunc) { r.GET("/audit", jwt, h.ListAudit) })

	if w := srv.do(http.MethodGet, "/audit", srv.token(t, "u-rec", models.RoleRecruiter), ""); w.Code != http.StatusForbidden {
		t.Fatalf("recruiter: %d", w.Code)
	}

	w := srv.do(http.MethodGet, "/audit?after_id=12&resource_type=company&limit=2", srv.token(t, "u-admin", models.RoleAdmin), "")
	if w.Code != http.StatusOK {
		t.Fatalf("admin: %d %s", w.Code, w.Body.String())
	}
	want := pgrepo.AuditFilter{AfterID: 12, ResourceType: "company", Limit: 2}
	if admin.gotFilter != want {
		t.Fatalf("filter = %+v, want %+v", admin.gotFilter, want)
	}
	var body struct {
		NextAfterID int64 `json:"next_after_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.NextAfterID != 7 {
		t.Fatalf("next_after_id = %d (%v)", body.NextAfterID, err)
	}
}

func TestListJobseekersStatusFilter(t *testing.T) {
	t.Parallel()

	admin := &stubAdmin{}
	h := NewAdminHandler(&stubAuth{}, admin)
	srv := newServer(t, func(r *gin.Engine, jwt, _ gin.HandlerFunc) { r.GET("/jobseekers", jwt, h.ListJobseekers) })
	tok := srv.token(t, "u-admin", models.RoleAdmin)

	if w := srv.do(http.MethodGet, "/jobseekers?status=employed&search=budi", tok, ""); w.Code != http.StatusOK {
		t.Fatalf("employed: %d %s", w.Code, w.Body.String())
	}
	if admin.gotSeekers.State != models.SeekerEmployed || admin.gotSeekers.Search != "budi" {
		t.Fatalf("filter = %+v", admin.gotSeekers)
	}

	if w := srv.do(http.MethodGet, "/jobseekers?status=all", tok, ""); w.Code != http.StatusOK {
		t.Fatalf("all: %d", w.Code)
	}
	if admin.gotSeekers.State != "" {
		t.Fatalf("status=all should not filter, got %q", admin.gotSeekers.State)
	}
}
