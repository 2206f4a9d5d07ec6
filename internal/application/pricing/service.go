package pricing

import (
	"context"
	"errors"

	"bidops-backend/internal/application/fx"
	"bidops-backend/internal/application/opportunities"
	"bidops-backend/internal/domain"
	"bidops-backend/internal/infrastructure/database"
	"bidops-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const maxVersionAttempts = 5

// Options is the pricing configuration fixed at construction.
type Options struct {
	MinMarginFraction decimal.Decimal
	BaseCurrency      string
}

type Service struct {
	DB      *gorm.DB
	Options Options
}

// Result is returned by RecalcPack.
type Result struct {
	Pack       *domain.PricingPack `json:"pack"`
	BaseCost   decimal.Decimal     `json:"baseCost"`
	TotalPrice decimal.Decimal     `json:"totalPrice"`
	Breakdown  Breakdown           `json:"breakdown"`
}

// RecalcPack prices the current BoQ and inserts the next pack version. The
// snapshot read, version lookup and insert share one transaction; a conflict
// on (opportunity_id, version) retries the whole transaction.
func (s *Service) RecalcPack(ctx context.Context, tenantID, opportunityID uuid.UUID, ov Overrides) (*Result, error) {
	var lastErr error
	for attempt := 1; attempt <= maxVersionAttempts; attempt++ {
		res, err := s.recalcOnce(ctx, tenantID, opportunityID, ov)
		if err == nil {
			log.Info().
				Str("opportunity_id", opportunityID.String()).
				Int("version", res.Pack.Version).
				Str("total_price", res.TotalPrice.String()).
				Msg("pricing pack created")
			return res, nil
		}
		if !database.IsUniqueViolation(err) {
			return nil, err
		}
		lastErr = err
		log.Warn().
			Str("opportunity_id", opportunityID.String()).
			Int("attempt", attempt).
			Msg("pack version conflict, retrying")
	}
	log.Error().Err(lastErr).Str("opportunity_id", opportunityID.String()).Msg("pack version retries exhausted")
	return nil, apperr.Conflict("Concurrent recalculation in progress, please retry")
}

func (s *Service) recalcOnce(ctx context.Context, tenantID, opportunityID uuid.UUID, ov Overrides) (*Result, error) {
	var res *Result
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := opportunities.EnsureOwned(tx, tenantID, opportunityID); err != nil {
			return err
		}

		var items []domain.BoqItem
		if err := tx.Where("opportunity_id = ?", opportunityID).Order("line_no ASC").Find(&items).Error; err != nil {
			return err
		}
		rates, err := fx.RatesFor(tx, tenantID)
		if err != nil {
			return err
		}
		base, err := s.baseCurrency(tx, tenantID)
		if err != nil {
			return err
		}

		b, err := Calculate(items, rates, base, ov, s.Options.MinMarginFraction)
		if err != nil {
			return err
		}

		var maxVersion int
		if err := tx.Model(&domain.PricingPack{}).
			Where("opportunity_id = ?", opportunityID).
			Select("COALESCE(MAX(version), 0)").
			Scan(&maxVersion).Error; err != nil {
			return err
		}

		pack := &domain.PricingPack{
			OpportunityID: opportunityID,
			Version:       maxVersion + 1,
			BaseCost:      b.BaseCost,
			Overheads:     b.Overheads,
			Contingency:   b.Contingency,
			FxRate:        b.FxRate,
			Margin:        b.Margin,
			TotalPrice:    b.TotalPrice,
		}
		if err := tx.Create(pack).Error; err != nil {
			return err
		}
		res = &Result{Pack: pack, BaseCost: b.BaseCost, TotalPrice: b.TotalPrice, Breakdown: b}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// baseCurrency prefers the tenant's own base currency over the configured default.
func (s *Service) baseCurrency(tx *gorm.DB, tenantID uuid.UUID) (string, error) {
	var tenant domain.Tenant
	err := tx.Where("tenant_id = ?", tenantID).Limit(1).Find(&tenant).Error
	if err != nil {
		return "", err
	}
	if tenant.BaseCurrency != "" {
		return tenant.BaseCurrency, nil
	}
	if s.Options.BaseCurrency != "" {
		return s.Options.BaseCurrency, nil
	}
	return "QAR", nil
}

// Current returns the highest version pack of the opportunity.
func (s *Service) Current(ctx context.Context, tenantID, opportunityID uuid.UUID) (*domain.PricingPack, error) {
	db := s.DB.WithContext(ctx)
	if err := opportunities.EnsureOwned(db, tenantID, opportunityID); err != nil {
		return nil, err
	}
	var pack domain.PricingPack
	err := db.Where("opportunity_id = ?", opportunityID).Order("version DESC").First(&pack).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("No pricing pack for this opportunity")
	}
	if err != nil {
		return nil, err
	}
	return &pack, nil
}

// ListPacks returns every version, newest first.
func (s *Service) ListPacks(ctx context.Context, tenantID, opportunityID uuid.UUID) ([]domain.PricingPack, error) {
	db := s.DB.WithContext(ctx)
	if err := opportunities.EnsureOwned(db, tenantID, opportunityID); err != nil {
		return nil, err
	}
	var packs []domain.PricingPack
	if err := db.Where("opportunity_id = ?", opportunityID).Order("version DESC").Find(&packs).Error; err != nil {
		return nil, err
	}
	return packs, nil
}
