package services

import (
	"context"
	"time"

	"github.com/lokercirebon/jobportal/internal/cache"
	"github.com/lokercirebon/jobportal/internal/models"
	"github.com/lokercirebon/jobportal/internal/utils"
	"github.com/sirupsen/logrus"
)

const (
	// InterviewGrace is how long after its start an open interview is closed automatically.
	InterviewGrace = 24 * time.Hour

	sweepBatch     = 500
	sweepMaxRounds = 100
	sweepLockTTL   = 5 * time.Minute
)

type SweepResult struct {
	CompletedInterviews int64 `json:"completed_interviews"`
	CompletedContracts  int64 `json:"completed_contracts"`
	ExpiredJobs         int64 `json:"expired_jobs"`
	// Skipped is set when another sweep held the lock.
	Skipped bool `json:"skipped"`
}

type SweepService interface {
	// Run advances every time-dependent state as of now. Running it again with
	// the same now changes nothing.
	Run(ctx context.Context, now time.Time) (*SweepResult, error)
}

type sweepService struct {
	Deps
	locker cache.Locker
}

// NewSweepService runs without cross-process locking when locker is nil.
func NewSweepService(d Deps, locker cache.Locker) SweepService {
	return &sweepService{Deps: d.withDefaults(), locker: locker}
}

func (s *sweepService) Run(ctx context.Context, now time.Time) (*SweepResult, error) {
	const op = "SweepService.Run"

	res := &SweepResult{}
	if s.locker != nil {
		unlock, ok, err := s.locker.TryLock(ctx, cache.KeySweepLock, sweepLockTTL)
		if err != nil {
			return nil, utils.E(utils.CodeUnavailable, op, "failed to acquire sweep lock", err)
		}
		if !ok {
			res.Skipped = true
			return res, nil
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				s.Log.WithError(err).Warn("sweep unlock failed")
			}
		}()
	}

	var err error
	if res.CompletedInterviews, err = s.rounds(ctx, func(ctx context.Context) (int64, error) {
		return s.interviewBatch(ctx, now)
	}); err != nil {
		return nil, utils.Internal(op, "interview sweep failed", err)
	}
	if res.CompletedContracts, err = s.rounds(ctx, func(ctx context.Context) (int64, error) {
		return s.contractBatch(ctx, now)
	}); err != nil {
		return nil, utils.Internal(op, "contract sweep failed", err)
	}
	if res.ExpiredJobs, err = s.rounds(ctx, func(ctx context.Context) (int64, error) {
		return s.jobBatch(ctx, now)
	}); err != nil {
		return nil, utils.Internal(op, "job sweep failed", err)
	}

	s.Log.WithFields(logrus.Fields{
		"now":                  now,
		"completed_interviews": res.CompletedInterviews,
		"completed_contracts":  res.CompletedContracts,
		"expired_jobs":         res.ExpiredJobs,
	}).Info("sweep finished")
	return res, nil
}

// rounds repeats batch until it reports nothing left, up to sweepMaxRounds.
func (s *sweepService) rounds(ctx context.Context, batch func(context.Context) (int64, error)) (int64, error) {
	var total int64
	for i := 0; i < sweepMaxRounds; i++ {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := batch(ctx)
		if err != nil {
			return total, err
		}
		total += n
		if n < sweepBatch {
			return total, nil
		}
	}
	s.Log.WithField("total", total).Warn("sweep stopped at round limit")
	return total, nil
}

func (s *sweepService) interviewBatch(ctx context.Context, now time.Time) (int64, error) {
	var (
		n   int64
		box outbox
	)
	err := s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		ivs, err := s.Repos.Interviews.LockOverdue(ctx, now.Add(-InterviewGrace), sweepBatch)
		if err != nil {
			return err
		}
		for i := range ivs {
			iv := &ivs[i]
			done, err := s.Repos.Interviews.CompleteParticipants(ctx, iv.ID, []models.ParticipantStatus{
				models.ParticipantPending, models.ParticipantAccepted, models.ParticipantRescheduleRequested,
			}, now)
			if err != nil {
				return err
			}
			moved, err := completeInterviewApplications(ctx, s.Repos, done, now)
			if err != nil {
				return err
			}
			iv.Status = models.InterviewCompleted
			iv.UpdatedAt = now
			if err := s.Repos.Interviews.Update(ctx, iv); err != nil {
				return err
			}
			for _, a := range moved {
				box.add(jobseekerUserID(ctx, s.Repos, a.JobseekerID), models.NotifyInterviewCompleted,
					"Interview selesai", "Interview "+iv.Title+" telah selesai", "/jobseeker/applications/"+a.ID)
			}
		}
		n = int64(len(ivs))
		return nil
	})
	if err != nil {
		return 0, err
	}
	box.flush(ctx, s.Notifier, now)
	return n, nil
}

func (s *sweepService) contractBatch(ctx context.Context, now time.Time) (int64, error) {
	var (
		n   int64
		box outbox
	)
	err := s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		workers, err := s.Repos.Contracts.LockExpiredWorkers(ctx, now, sweepBatch)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(workers))
		for _, w := range workers {
			ids = append(ids, w.ID)
		}
		done, err := s.Repos.Contracts.CompleteWorkers(ctx, ids, now)
		if err != nil {
			return err
		}
		for _, w := range done {
			if err := releaseWorker(ctx, s.Repos, w.ApplicationID, w.JobseekerID, now); err != nil {
				return err
			}
			box.add(jobseekerUserID(ctx, s.Repos, w.JobseekerID), models.NotifyContractEnded,
				"Kontrak selesai", "Kontrak anda sebagai "+w.JobTitle+" telah berakhir", "/jobseeker/applications/"+w.ApplicationID)
		}
		n = int64(len(done))
		return nil
	})
	if err != nil {
		return 0, err
	}
	box.flush(ctx, s.Notifier, now)
	return n, nil
}

func (s *sweepService) jobBatch(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := s.Tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		jobs, err := s.Repos.Jobs.LockOverdueActive(ctx, now, sweepBatch)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(jobs))
		for _, j := range jobs {
			ids = append(ids, j.ID)
		}
		n, err = s.Repos.Jobs.Expire(ctx, ids, now)
		return err
	})
	return n, err
}
