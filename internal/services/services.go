package services

import (
	"context"
	"errors"
	"time"

	"github.com/lokercirebon/jobportal/internal/models"
	pgrepo "github.com/lokercirebon/jobportal/internal/repositories/postgres"
	"github.com/lokercirebon/jobportal/internal/utils"
	"github.com/sirupsen/logrus"
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// Notifier delivers notifications. Delivery failures are the notifier's concern.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, models.Notification) {}

type Repos struct {
	Users        pgrepo.UserRepository
	Jobseekers   pgrepo.JobseekerRepository
	Companies    pgrepo.CompanyRepository
	Recruiters   pgrepo.RecruiterRepository
	Jobs         pgrepo.JobRepository
	Applications pgrepo.ApplicationRepository
	Interviews   pgrepo.InterviewRepository
	Contracts    pgrepo.ContractRepository
	Resignations pgrepo.ResignationRepository
	Audit        pgrepo.AuditRepository
}

// Deps is shared by every service constructor.
type Deps struct {
	Repos    Repos
	Tx       TransactionManager
	Clock    Clock
	Notifier Notifier
	Log      *logrus.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Tx == nil {
		d.Tx = noopTransactionManager{}
	}
	if d.Clock == nil {
		d.Clock = realClock{}
	}
	if d.Notifier == nil {
		d.Notifier = noopNotifier{}
	}
	if d.Log == nil {
		d.Log = logrus.New()
	}
	return d
}

// outbox collects notifications inside a transaction and sends them after commit.
type outbox []models.Notification

func (o *outbox) add(userID string, typ models.NotificationType, title, message, link string) {
	if userID == "" {
		return
	}
	*o = append(*o, models.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
		Link:    link,
	})
}

func (o outbox) flush(ctx context.Context, n Notifier, now time.Time) {
	for _, item := range o {
		item.CreatedAt = now
		n.Notify(ctx, item)
	}
}

func recruiterUserID(ctx context.Context, repos Repos, recruiterID string) string {
	rec, err := repos.Recruiters.GetByID(ctx, recruiterID)
	if err != nil {
		return ""
	}
	return rec.UserID
}

// ownedJob loads a job and checks it belongs to the recruiter's company.
func ownedJob(ctx context.Context, repos Repos, op string, rec *models.Recruiter, jobID string) (*models.Job, error) {
	job, err := repos.Jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "lowongan tidak ditemukan", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load job", err)
	}
	if job.CompanyID != rec.CompanyID {
		return nil, utils.E(utils.CodeForbidden, op, "lowongan bukan milik perusahaan anda", nil)
	}
	return job, nil
}

func jobseekerUserID(ctx context.Context, repos Repos, jobseekerID string) string {
	js, err := repos.Jobseekers.GetByID(ctx, jobseekerID)
	if err != nil {
		return ""
	}
	return js.UserID
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
