package services

import (
	"github.com/lokercirebon/jobportal/internal/models"
	"github.com/lokercirebon/jobportal/internal/utils"
)

// schedulableStatuses may be invited to an interview.
var schedulableStatuses = []models.ApplicationStatus{
	models.AppPending, models.AppReviewing, models.AppShortlisted, models.AppInterviewScheduled,
}

func statusIn(s models.ApplicationStatus, set []models.ApplicationStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// recruiterTransition checks a manual status change by a recruiter.
// Interview states are only reached through the interview flow.
func recruiterTransition(op string, from, to models.ApplicationStatus) error {
	if !to.Valid() {
		return utils.E(utils.CodeInvalidArgument, op, "status tidak valid", nil)
	}
	switch to {
	case models.AppReviewing, models.AppShortlisted:
		if !statusIn(from, []models.ApplicationStatus{models.AppPending, models.AppReviewing, models.AppShortlisted}) {
			return utils.E(utils.CodeInvalidTransition, op, "status lamaran tidak dapat diubah", nil)
		}
		if to.Rank() < from.Rank() {
			return utils.E(utils.CodeInvalidTransition, op, "status lamaran tidak dapat mundur", nil)
		}
		return nil
	case models.AppAccepted, models.AppRejected:
		if from != models.AppInterviewCompleted {
			return utils.E(utils.CodeInvalidTransition, op, "keputusan hanya dapat diberikan setelah interview selesai", nil)
		}
		return nil
	case models.AppInterviewScheduled, models.AppInterviewCompleted:
		return utils.E(utils.CodeInvalidTransition, op, "gunakan penjadwalan interview untuk status ini", nil)
	default:
		return utils.E(utils.CodeInvalidTransition, op, "status lamaran tidak dapat diubah", nil)
	}
}

func canWithdraw(s models.ApplicationStatus) bool {
	switch s {
	case models.AppWithdrawn, models.AppAccepted, models.AppRejected, models.AppResigned:
		return false
	}
	return true
}
