package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lokercirebon/jobportal/internal/models"
	"gorm.io/datatypes"
)

const (
	AuditCompanyVerify   = "company.verify"
	AuditCompanyReject   = "company.reject"
	AuditCompanySuspend  = "company.suspend"
	AuditRecruiterVerify = "recruiter.verify"
	AuditJobApprove      = "job.approve"
	AuditJobReject       = "job.reject"
	AuditContractProcess = "contract.process"
	AuditUserStatus      = "user.status"
)

func writeAudit(ctx context.Context, repos Repos, actorID, action, resourceType, resourceID string, meta map[string]any, at time.Time) error {
	var raw datatypes.JSON
	if len(meta) > 0 {
		b, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		raw = datatypes.JSON(b)
	}
	return repos.Audit.Create(ctx, &models.AuditLog{
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Metadata:     raw,
		CreatedAt:    at,
	})
}
