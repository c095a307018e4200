package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lokercirebon/jobportal/internal/models"
	"github.com/lokercirebon/jobportal/internal/security"
	"github.com/lokercirebon/jobportal/internal/utils"
)

const minPasswordLength = 8

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type JobseekerIdentity struct {
	User      *models.User
	Jobseeker *models.Jobseeker
}

// RecruiterIdentity carries the recruiter with its Company loaded.
type RecruiterIdentity struct {
	User      *models.User
	Recruiter *models.Recruiter
}

type Me struct {
	User      *models.User      `json:"user"`
	Jobseeker *models.Jobseeker `json:"jobseeker,omitempty"`
	Recruiter *models.Recruiter `json:"recruiter,omitempty"`
	// Onboarded is false for recruiters without a profile yet.
	Onboarded bool `json:"onboarded"`
}

type AuthService interface {
	RegisterJobseeker(ctx context.Context, in RegisterInput) (*models.User, *models.Jobseeker, error)
	RegisterRecruiter(ctx context.Context, in RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	Authenticate(ctx context.Context, claims *security.Claims) (*models.User, error)
	RequireJobseeker(ctx context.Context, claims *security.Claims) (*JobseekerIdentity, error)
	RequireRecruiter(ctx context.Context, claims *security.Claims) (*RecruiterIdentity, error)
	RequireAdmin(ctx context.Context, claims *security.Claims) (*models.User, error)
	Me(ctx context.Context, claims *security.Claims) (*Me, error)
}

type authService struct {
	Deps
	tokens *security.TokenIssuer
}

func NewAuthService(d Deps, tokens *security.TokenIssuer) AuthService {
	return &authService{Deps: d.withDefaults(), tokens: tokens}
}

func (s *authService) validateRegister(op string, in *RegisterInput) error {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if _, err := mail.ParseAddress(in.Email); err != nil || in.Email == "" {
		return utils.E(utils.CodeInvalidArgument, op, "format email tidak valid", nil)
	}
	if len(in.Password) < minPasswordLength {
		return utils.E(utils.CodeInvalidArgument, op, "password minimal 8 karakter", nil)
	}
	if in.FirstName == "" {
		return utils.E(utils.CodeInvalidArgument, op, "nama depan wajib diisi", nil)
	}
	return nil
}

func (s *authService) newUser(op string, in RegisterInput, role models.UserRole, now time.Time) (*models.User, error) {
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}
	return &models.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		Status:       models.AccountActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (s *authService) createUser(ctx context.Context, op string, u *models.User) error {
	if err := s.Repos.Users.Create(ctx, u); err != nil {
		if errors.Is(err, utils.ErrDuplicate) {
			return utils.E(utils.CodeConflict, op, "email sudah terdaftar", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to create user", err)
	}
	return nil
}

func (s *authService) RegisterJobseeker(ctx context.Context, in RegisterInput) (*models.User, *models.Jobseeker, error) {
	const op = "AuthService.RegisterJobseeker"

	if err := s.validateRegister(op, &in); err != nil {
		return nil, nil, err
	}
	now := s.Clock.Now()
	user, err := s.newUser(op, in, models.RoleJobseeker, now)
	if err != nil {
		return nil, nil, err
	}
	js := &models.Jobseeker{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Email:           in.Email,
		Phone:           strings.TrimSpace(in.Phone),
		IsLookingForJob: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		if err := s.createUser(ctx, op, user); err != nil {
			return err
		}
		if err := s.Repos.Jobseekers.Create(ctx, js); err != nil {
			return utils.E(utils.CodeInternal, op, "failed to create jobseeker profile", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return user, js, nil
}

// RegisterRecruiter creates the account only; the profile comes from onboarding.
func (s *authService) RegisterRecruiter(ctx context.Context, in RegisterInput) (*models.User, error) {
	const op = "AuthService.RegisterRecruiter"

	if err := s.validateRegister(op, &in); err != nil {
		return nil, err
	}
	user, err := s.newUser(op, in, models.RoleRecruiter, s.Clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.createUser(ctx, op, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	const op = "AuthService.Login"

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email dan password wajib diisi", nil)
	}

	user, err := s.Repos.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeUnauthorized, op, "email atau password salah", nil)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}
	if err := utils.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, utils.E(utils.CodeUnauthorized, op, "email atau password salah", nil)
	}
	if user.Status != models.AccountActive {
		return nil, utils.E(utils.CodeAccountInactive, op, "akun tidak aktif", nil)
	}

	now := s.Clock.Now()
	if err := s.Repos.Users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update last login", err)
	}
	user.LastLoginAt = &now

	token, exp, err := s.tokens.Issue(user, now)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to issue token", err)
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

func (s *authService) Authenticate(ctx context.Context, claims *security.Claims) (*models.User, error) {
	const op = "AuthService.Authenticate"

	if claims == nil || claims.UserID == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, "unauthorized", nil)
	}
	if claims.Expired(s.Clock.Now()) {
		return nil, utils.E(utils.CodeUnauthorized, op, "token expired", nil)
	}

	user, err := s.Repos.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeUnauthorized, op, "unauthorized", nil)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}
	if user.Status != models.AccountActive {
		return nil, utils.E(utils.CodeAccountInactive, op, "akun tidak aktif", nil)
	}
	return user, nil
}

func (s *authService) requireRole(ctx context.Context, op string, claims *security.Claims, role models.UserRole) (*models.User, error) {
	user, err := s.Authenticate(ctx, claims)
	if err != nil {
		return nil, err
	}
	if user.Role != role {
		return nil, utils.E(utils.CodeForbidden, op, "forbidden", nil)
	}
	return user, nil
}

func (s *authService) RequireJobseeker(ctx context.Context, claims *security.Claims) (*JobseekerIdentity, error) {
	const op = "AuthService.RequireJobseeker"

	user, err := s.requireRole(ctx, op, claims, models.RoleJobseeker)
	if err != nil {
		return nil, err
	}
	js, err := s.Repos.Jobseekers.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeProfileNotFound, op, "profil jobseeker tidak ditemukan", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load jobseeker", err)
	}
	return &JobseekerIdentity{User: user, Jobseeker: js}, nil
}

func (s *authService) RequireRecruiter(ctx context.Context, claims *security.Claims) (*RecruiterIdentity, error) {
	const op = "AuthService.RequireRecruiter"

	user, err := s.requireRole(ctx, op, claims, models.RoleRecruiter)
	if err != nil {
		return nil, err
	}
	rec, err := s.Repos.Recruiters.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeProfileNotFound, op, "profil recruiter tidak ditemukan", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load recruiter", err)
	}
	return &RecruiterIdentity{User: user, Recruiter: rec}, nil
}

func (s *authService) RequireAdmin(ctx context.Context, claims *security.Claims) (*models.User, error) {
	return s.requireRole(ctx, "AuthService.RequireAdmin", claims, models.RoleAdmin)
}

func (s *authService) Me(ctx context.Context, claims *security.Claims) (*Me, error) {
	const op = "AuthService.Me"

	user, err := s.Authenticate(ctx, claims)
	if err != nil {
		return nil, err
	}
	out := &Me{User: user, Onboarded: true}

	switch user.Role {
	case models.RoleJobseeker:
		js, err := s.Repos.Jobseekers.GetByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeInternal, op, "failed to load jobseeker", err)
		}
		out.Jobseeker = js
		out.Onboarded = js != nil
	case models.RoleRecruiter:
		rec, err := s.Repos.Recruiters.GetByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeInternal, op, "failed to load recruiter", err)
		}
		out.Recruiter = rec
		out.Onboarded = rec != nil
	}
	return out, nil
}
