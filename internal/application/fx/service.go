package fx

import (
	"context"
	"strings"

	"bidops-backend/internal/domain"
	"bidops-backend/internal/pkg/apperr"
	"bidops-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service manages the per-tenant FX rate table.
type Service struct {
	DB *gorm.DB
}

// List returns the tenant's rates ordered by currency.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]domain.FxRate, error) {
	var rates []domain.FxRate
	if err := s.DB.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("currency ASC").Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

// Upsert sets the rate for (tenant, currency), keeping a single row per pair.
func (s *Service) Upsert(ctx context.Context, tenantID uuid.UUID, currency string, rate decimal.Decimal) (*domain.FxRate, error) {
	code := validation.NormalizeCurrency(currency)
	if !validation.IsValidCurrency(code) {
		return nil, apperr.Validation("Invalid currency code: %s", strings.TrimSpace(currency))
	}
	if !rate.IsPositive() {
		return nil, apperr.Validation("rate_to_base must be greater than 0")
	}

	row := domain.FxRate{TenantID: tenantID, Currency: code, RateToBase: rate}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "currency"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate_to_base", "updatedAt"}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}

	var saved domain.FxRate
	if err := s.DB.WithContext(ctx).Where("tenant_id = ? AND currency = ?", tenantID, code).First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

// Delete removes the rate for (tenant, currency).
func (s *Service) Delete(ctx context.Context, tenantID uuid.UUID, currency string) error {
	code := validation.NormalizeCurrency(currency)
	res := s.DB.WithContext(ctx).Where("tenant_id = ? AND currency = ?", tenantID, code).Delete(&domain.FxRate{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("No FX rate configured for currency %s", code)
	}
	return nil
}

// RatesFor loads the tenant's rates keyed by upper-cased currency. Pass the
// caller's transaction so the snapshot matches the rest of the read.
func RatesFor(tx *gorm.DB, tenantID uuid.UUID) (map[string]decimal.Decimal, error) {
	var rows []domain.FxRate
	if err := tx.Where("tenant_id = ?", tenantID).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		out[strings.ToUpper(r.Currency)] = r.RateToBase
	}
	return out, nil
}
