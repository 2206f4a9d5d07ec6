package approvals

import (
	"context"
	"fmt"

	"bidops-backend/internal/application/notifications"
	"bidops-backend/internal/domain"
	"bidops-backend/internal/pkg/apperr"
	"bidops-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// FinalizeResult is returned by a successful Finalize.
type FinalizeResult struct {
	PackID uuid.UUID `json:"packId"`
}

// Finalize moves the pack's opportunity to Submission once every active
// approval is accepted. Running it again re-applies the same fields.
func (s *Service) Finalize(ctx context.Context, tenantID, packID uuid.UUID) (*FinalizeResult, error) {
	var notes []domain.Notification
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pack, err := loadPack(tx, tenantID, packID)
		if err != nil {
			return err
		}
		rows, err := activeApprovals(tx, packID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return apperr.Precondition("No approvals configured for this pack")
		}
		for _, a := range rows {
			if !domain.IsFinalizeAccepted(a.Status) {
				return apperr.Precondition("All approvals must be APPROVED before finalizing (%s is %s)", a.Type, a.Status)
			}
		}

		if err := tx.Model(&domain.Opportunity{}).
			Where("opportunity_id = ? AND tenant_id = ?", pack.OpportunityID, tenantID).
			Updates(map[string]interface{}{
				"stage":  domain.StageSubmission,
				"status": domain.OpportunityStatusReady,
			}).Error; err != nil {
			return err
		}

		if s.Notifier != nil {
			manager := constants.Manager
			notes, err = s.Notifier.Notify(tx, notifications.Message{
				TenantID: tenantID,
				Role:     &manager,
				Kind:     domain.NotifyPackFinalized,
				Title:    fmt.Sprintf("Pricing pack v%d finalized for %s", pack.Version, pack.Opportunity.Title),
				Payload: map[string]interface{}{
					"pack_id":        packID,
					"opportunity_id": pack.OpportunityID,
				},
			})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("pack_id", packID.String()).Msg("pricing pack finalized")
	s.Notifier.Deliver(ctx, notes)
	return &FinalizeResult{PackID: packID}, nil
}
