package approvals

import (
	"context"

	"bidops-backend/internal/domain"
	"bidops-backend/internal/pkg/pagination"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewRow is one pack on the review dashboard with its opportunity, client
// and active approvals. Ready uses the same accepted set as Finalize.
type ReviewRow struct {
	domain.PricingPack
	Ready bool `json:"ready"`
}

// Review lists the tenant's packs, most recently updated first.
func (s *Service) Review(ctx context.Context, tenantID uuid.UUID, p pagination.Params) ([]ReviewRow, int64, error) {
	base := func() *gorm.DB {
		return s.DB.WithContext(ctx).Model(&domain.PricingPack{}).
			Joins(`JOIN "Opportunities" ON "Opportunities".opportunity_id = "PricingPacks".opportunity_id`).
			Where(`"Opportunities".tenant_id = ?`, tenantID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var packs []domain.PricingPack
	err := base().
		Preload("Opportunity.Client").
		Preload("Approvals", func(db *gorm.DB) *gorm.DB {
			return db.Where("archived_at IS NULL").Order(`"createdAt" ASC`).Order("seq ASC")
		}).
		Order(`"PricingPacks"."updatedAt" DESC`).
		Offset(p.Offset).Limit(p.Limit).
		Find(&packs).Error
	if err != nil {
		return nil, 0, err
	}

	rows := make([]ReviewRow, 0, len(packs))
	for _, pack := range packs {
		rows = append(rows, ReviewRow{PricingPack: pack, Ready: chainAccepted(pack.Approvals)})
	}
	return rows, total, nil
}

func chainAccepted(rows []domain.Approval) bool {
	if len(rows) == 0 {
		return false
	}
	for _, a := range rows {
		if !domain.IsFinalizeAccepted(a.Status) {
			return false
		}
	}
	return true
}
