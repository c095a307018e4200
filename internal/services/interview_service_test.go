package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lokercirebon/jobportal/internal/models"
	"github.com/lokercirebon/jobportal/internal/utils"
)

type interviewFixture struct {
	env  *testEnv
	rec  *models.Recruiter
	job  *models.Job
	js   []*models.Jobseeker
	apps []*models.Application
	svc  InterviewService
}

func newInterviewFixture(t *testing.T, n int) *interviewFixture {
	t.Helper()
	env := newTestEnv(t)
	c := env.addCompany("PT Maju", models.CompanyVerified)
	rec := env.addRecruiter(c, true)
	job := env.addJob(rec, "backend", models.JobActive)
	f := &interviewFixture{env: env, rec: rec, job: job, svc: NewInterviewService(env.deps)}
	for i := 0; i < n; i++ {
		js := env.addJobseeker(string(rune('A' + i)))
		f.js = append(f.js, js)
		f.apps = append(f.apps, env.addApplication(job, js, models.AppShortlisted))
	}
	return f
}

func (f *interviewFixture) schedule(t *testing.T, at time.Time, apps ...*models.Application) *models.Interview {
	t.Helper()
	ids := make([]string, 0, len(apps))
	for _, a := range apps {
		ids = append(ids, a.ID)
	}
	iv, err := f.svc.Schedule(context.Background(), f.rec, ScheduleInput{
		JobID:          f.job.ID,
		ApplicationIDs: ids,
		ScheduledAt:    at,
	})
	if err != nil {
		t.Fatalf("Schedule() error = %v", err)
	}
	return iv
}

func TestScheduleMovesApplications(t *testing.T) {
	t.Parallel()

	f := newInterviewFixture(t, 2)
	iv := f.schedule(t, testEpoch.Add(48*time.Hour), f.apps[0], f.apps[1])

	if iv.Status != models.InterviewScheduled || iv.Duration != defaultInterviewDuration {
		t.Fatalf("unexpected interview %+v", iv)
	}
	if len(iv.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(iv.Participants))
	}
	for _, a := range f.apps {
		if s := f.env.application(a.ID).Status; s != models.AppInterviewScheduled {
			t.Fatalf("application status = %s, want INTERVIEW_SCHEDULED", s)
		}
	}
	if f.env.notes.count(models.NotifyInterviewInvite) != 2 {
		t.Fatalf("expected one invite per participant")
	}
}

func TestScheduleRejectsActiveInterview(t *testing.T) {
	t.Parallel()

	f := newInterviewFixture(t, 1)
	f.schedule(t, testEpoch.Add(48*time.Hour), f.apps[0])

	_, err := f.svc.Schedule(context.Background(), f.rec, ScheduleInput{
		JobID:          f.job.ID,
		ApplicationIDs: []string{f.apps[0].ID},
		ScheduledAt:    testEpoch.Add(72 * time.Hour),
	})
	wantCode(t, err, utils.CodeConflict)
}

func TestScheduleConcurrentSchedulesOnce(t *testing.T) {
	t.Parallel()

	f := newInterviewFixture(t, 1)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok, confl int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(day int) {
			defer wg.Done()
			_, err := f.svc.Schedule(context.Background(), f.rec, ScheduleInput{
				JobID:          f.job.ID,
				ApplicationIDs: []string{f.apps[0].ID},
				ScheduledAt:    testEpoch.AddDate(0, 0, day),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case utils.IsCode(err, utils.CodeConflict):
				confl++
			default:
				t.Errorf("unexpected error %v", err)
			}
		}(i + 2)
	}
	wg.Wait()
	if ok != 1 || confl != 1 {
		t.Fatalf("expected 1 success and 1 conflict, got %d/%d", ok, confl)
	}

	f.env.st.mu.Lock()
	n := len(f.env.st.participants)
	f.env.st.mu.Unlock()
	if n != 1 {
		t.Fatalf("participants = %d, want 1", n)
	}
}

func TestScheduleValidation(t *testing.T) {
	t.Parallel()

	f := newInterviewFixture(t, 1)
	ctx := context.Background()

	_, err := f.svc.Schedule(ctx, f.rec, ScheduleInput{JobID: f.job.ID, ScheduledAt: testEpoch.Add(time.Hour)})
	wantCode(t, err, utils.CodeInvalidArgument)

	_, err = f.svc.Schedule(ctx, f.rec, ScheduleInput{
		JobID: f.job.ID, ApplicationIDs: []string{f.apps[0].ID}, ScheduledAt: testEpoch.Add(-time.Hour),
	})
	wantCode(t, err, utils.CodeInvalidArgument)

	accepted := f.env.addApplication(f.job, f.env.addJobseeker("Z"), models.AppAccepted)
	_, err = f.svc.Schedule(ctx, f.rec, ScheduleInput{
		JobID: f.job.ID, ApplicationIDs: []string{accepted.ID}, ScheduledAt: testEpoch.Add(time.Hour),
	})
	wantCode(t, err, utils.CodeInvalidTransition)

	other := f.env.addJob(f.rec, "frontend", models.JobActive)
	_, err = f.svc.Schedule(ctx, f.rec, ScheduleInput{
		JobID: other.ID, ApplicationIDs: []string{f.apps[0].ID}, ScheduledAt: testEpoch.Add(time.Hour),
	})
	wantCode(t, err, utils.CodeInvalidArgument)
}

func TestRespond(t *testing.T) {
	t.Parallel()

	f := newInterviewFixture(t, 2)
	iv := f.schedule(t, testEpoch.Add(48*time.Hour), f.apps[0], f.apps[1])
	ctx := context.Background()

	partOf := func(appID string) string {
		for _, p := range iv.Participants {
			if p.ApplicationID == appID {
				return p.ID
			}
		}
		t.Fatalf("no participant for %s", appID)
		return ""
	}
	p0, p1 := partOf(f.apps[0].ID), partOf(f.apps[1].ID)

	_, err := f.svc.Respond(ctx, f.js[1], p0, RespondInput{Status: models.ParticipantAccepted})
	wantCode(t, err, utils.CodeForbidden)

	_, err = f.svc.Respond(ctx, f.js[0], p0, RespondInput{Status: models.ParticipantRescheduleRequested, Message: "sibuk"})
	wantCode(t, err, utils.CodeInvalidArgument)

	got, err := f.svc.Respond(ctx, f.js[0], p0, RespondInput{Status: models.ParticipantAccepted})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if got.Status != models.ParticipantAccepted || got.RespondedAt == nil {
		t.Fatalf("unexpected participant %+v", got)
	}

	_, err = f.svc.Respond(ctx, f.js[0], p0, RespondInput{Status: models.ParticipantDeclined})
	wantCode(t, err, utils.CodeInvalidTransition)

	_, err = f.svc.Respond(ctx, f.js[1], p1, RespondInput{
		Status:  models.ParticipantRescheduleRequested,
		Message: "bentrok dengan ujian kampus",
	})
	if err != nil {
		t.Fatalf("Respond() reschedule request error = %v", err)
	}
	if f.env.notes.count(models.NotifyInterviewResponse) != 2 {
		t.Fatalf("expected recruiter notified twice")
	}
}

func TestRescheduleWholeInterviewResetsParticipants(t *testing.T) {
	t.Parallel()

	f := newInterviewFixture(t, 2)
	iv := f.schedule(t, testEpoch.Add(48*time.Hour), f.apps[0], f.apps[1])
	ctx := context.Background()

	p0 := iv.Participants[0]
	if _, err := f.svc.Respond(ctx, jobseekerOf(f, p0.ApplicationID), p0.ID, RespondInput{Status: models.ParticipantAccepted}); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}

	at := testEpoch.Add(96 * time.Hour)
	got, err := f.svc.Reschedule(ctx, f.rec, iv.ID, RescheduleInput{ScheduledAt: at, Reason: "ruang rapat dipakai"})
	if err != nil {
		t.Fatalf("Reschedule() error = %v", err)
	}
	if got.Status != models.InterviewRescheduled || !got.ScheduledAt.Equal(at) {
		t.Fatalf("unexpected interview %+v", got)
	}
	for _, p := range got.Participants {
		if p.Status != models.ParticipantPending || p.RespondedAt != nil {
			t.Fatalf("participant not reset: %+v", p)
		}
	}
	if n := f.env.notes.count(models.NotifyInterviewReschedule); n != 2 {
		t.Fatalf("expected 2 reschedule notices, got %d", n)
	}
}

func TestRescheduleParticipantDetaches(t *testing.T) {
	t.Parallel()

	f := newInterviewFixture(t, 2)
	iv := f.schedule(t, testEpoch.Add(48*time.Hour), f.apps[0], f.apps[1])
	ctx := context.Background()

	moved := iv.Participants[0]
	at := testEpoch.Add(120 * time.Hour)
	detached, err := f.svc.RescheduleParticipant(ctx, f.rec, moved.ID, RescheduleInput{ScheduledAt: at})
	if err != nil {
		t.Fatalf("RescheduleParticipant() error = %v", err)
	}
	if detached.ID == iv.ID || detached.Status != models.InterviewRescheduled {
		t.Fatalf("expected a new RESCHEDULED interview, got %+v", detached)
	}
	if p := f.env.participant(moved.ID); p.InterviewID != detached.ID || p.Status != models.ParticipantPending {
		t.Fatalf("participant not moved: %+v", p)
	}
	if src := f.env.interview(iv.ID); src.Status != models.InterviewScheduled {
		t.Fatalf("source interview status = %s, want SCHEDULED", src.Status)
	}

	// moving the last participant cancels the source
	last := iv.Participants[1]
	if _, err := f.svc.RescheduleParticipant(ctx, f.rec, last.ID, RescheduleInput{ScheduledAt: at}); err != nil {
		t.Fatalf("RescheduleParticipant() error = %v", err)
	}
	if src := f.env.interview(iv.ID); src.Status != models.InterviewCancelled {
		t.Fatalf("source interview status = %s, want CANCELLED", src.Status)
	}
}

func TestCompleteInterview(t *testing.T) {
	t.Parallel()

	f := newInterviewFixture(t, 2)
	at := testEpoch.Add(2 * time.Hour)
	iv := f.schedule(t, at, f.apps[0], f.apps[1])
	ctx := context.Background()

	accepted := iv.Participants[0]
	if _, err := f.svc.Respond(ctx, jobseekerOf(f, accepted.ApplicationID), accepted.ID, RespondInput{Status: models.ParticipantAccepted}); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}

	_, err := f.svc.Complete(ctx, f.rec, iv.ID)
	wantCode(t, err, utils.CodeInvalidTransition)

	f.env.clock.Set(at.Add(time.Hour))
	got, err := f.svc.Complete(ctx, f.rec, iv.ID)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got.Status != models.InterviewCompleted {
		t.Fatalf("status = %s, want COMPLETED", got.Status)
	}
	if s := f.env.application(accepted.ApplicationID).Status; s != models.AppInterviewCompleted {
		t.Fatalf("accepted participant application = %s, want INTERVIEW_COMPLETED", s)
	}
	pending := iv.Participants[1]
	if s := f.env.application(pending.ApplicationID).Status; s != models.AppInterviewScheduled {
		t.Fatalf("unanswered participant application = %s, want INTERVIEW_SCHEDULED", s)
	}
	if f.env.notes.count(models.NotifyInterviewCompleted) != 1 {
		t.Fatalf("expected a single completion notice")
	}

	_, err = f.svc.Complete(ctx, f.rec, iv.ID)
	wantCode(t, err, utils.CodeInvalidTransition)
}

func TestInterviewGetChecksCompany(t *testing.T) {
	t.Parallel()

	f := newInterviewFixture(t, 1)
	iv := f.schedule(t, testEpoch.Add(48*time.Hour), f.apps[0])
	foreign := f.env.addRecruiter(f.env.addCompany("PT Lain", models.CompanyVerified), true)

	_, err := f.svc.Get(context.Background(), foreign, iv.ID)
	wantCode(t, err, utils.CodeForbidden)
	_, err = f.svc.Reschedule(context.Background(), foreign, iv.ID, RescheduleInput{ScheduledAt: testEpoch.Add(72 * time.Hour)})
	wantCode(t, err, utils.CodeForbidden)

	got, err := f.svc.Get(context.Background(), f.rec, iv.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Participants) != 1 {
		t.Fatalf("expected participants loaded")
	}
}

func jobseekerOf(f *interviewFixture, appID string) *models.Jobseeker {
	for i, a := range f.apps {
		if a.ID == appID {
			return f.js[i]
		}
	}
	return nil
}
