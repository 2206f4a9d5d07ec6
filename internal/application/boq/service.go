package boq

import (
	"context"
	"errors"
	"strings"

	"bidops-backend/internal/application/opportunities"
	"bidops-backend/internal/domain"
	"bidops-backend/internal/pkg/apperr"
	"bidops-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service stores Bill-of-Quantities lines. BaseCurrency is used for lines
// created without a currency.
type Service struct {
	DB           *gorm.DB
	BaseCurrency string
}

// ItemInput carries the optional fields of a BoQ line. Nil means "not sent".
type ItemInput struct {
	LineNo       *int
	Description  *string
	Qty          *decimal.Decimal
	UnitCost     *decimal.Decimal
	UnitCurrency *string
	Markup       *decimal.Decimal
	CustomFields datatypes.JSON
}

func (s *Service) List(ctx context.Context, tenantID, opportunityID uuid.UUID) ([]domain.BoqItem, error) {
	db := s.DB.WithContext(ctx)
	if err := opportunities.EnsureOwned(db, tenantID, opportunityID); err != nil {
		return nil, err
	}
	var items []domain.BoqItem
	if err := db.Where("opportunity_id = ?", opportunityID).Order("line_no ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) Create(ctx context.Context, tenantID, opportunityID uuid.UUID, in ItemInput) (*domain.BoqItem, error) {
	item := &domain.BoqItem{
		OpportunityID: opportunityID,
		Qty:           decimal.Zero,
		UnitCost:      decimal.Zero,
		Markup:        decimal.Zero,
		UnitCurrency:  s.baseCurrency(),
	}
	if err := apply(item, in); err != nil {
		return nil, err
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := opportunities.EnsureOwned(tx, tenantID, opportunityID); err != nil {
			return err
		}
		if in.LineNo == nil {
			var maxLine int
			if err := tx.Model(&domain.BoqItem{}).
				Where("opportunity_id = ?", opportunityID).
				Select("COALESCE(MAX(line_no), 0)").
				Scan(&maxLine).Error; err != nil {
				return err
			}
			item.LineNo = maxLine + 1
		}
		return tx.Create(item).Error
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Update changes only the fields present in the input and recomputes unit_price.
func (s *Service) Update(ctx context.Context, tenantID, itemID uuid.UUID, in ItemInput) (*domain.BoqItem, error) {
	var item domain.BoqItem
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.loadOwned(tx, tenantID, itemID, &item); err != nil {
			return err
		}
		if err := apply(&item, in); err != nil {
			return err
		}
		return tx.Save(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Service) Delete(ctx context.Context, tenantID, itemID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item domain.BoqItem
		if err := s.loadOwned(tx, tenantID, itemID, &item); err != nil {
			return err
		}
		return tx.Delete(&item).Error
	})
}

func (s *Service) loadOwned(tx *gorm.DB, tenantID, itemID uuid.UUID, item *domain.BoqItem) error {
	err := tx.Where("boq_item_id = ?", itemID).First(item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("BoQ item not found")
	}
	if err != nil {
		return err
	}
	if err := opportunities.EnsureOwned(tx, tenantID, item.OpportunityID); err != nil {
		return apperr.NotFound("BoQ item not found")
	}
	return nil
}

func (s *Service) baseCurrency() string {
	if s.BaseCurrency == "" {
		return "QAR"
	}
	return s.BaseCurrency
}

func apply(item *domain.BoqItem, in ItemInput) error {
	if in.LineNo != nil {
		if *in.LineNo < 1 {
			return apperr.Validation("lineNo must be a positive integer")
		}
		item.LineNo = *in.LineNo
	}
	if in.Description != nil {
		item.Description = strings.TrimSpace(*in.Description)
	}
	if in.Qty != nil {
		if in.Qty.IsNegative() {
			return apperr.Validation("qty must not be negative")
		}
		item.Qty = *in.Qty
	}
	if in.UnitCost != nil {
		if in.UnitCost.IsNegative() {
			return apperr.Validation("unitCost must not be negative")
		}
		item.UnitCost = *in.UnitCost
	}
	if in.UnitCurrency != nil {
		code := validation.NormalizeCurrency(*in.UnitCurrency)
		if !validation.IsValidCurrency(code) {
			return apperr.Validation("Invalid currency code: %s", *in.UnitCurrency)
		}
		item.UnitCurrency = code
	}
	if in.Markup != nil {
		item.Markup = *in.Markup
	}
	if in.CustomFields != nil {
		item.CustomFields = in.CustomFields
	}
	item.UnitPrice = UnitPrice(item.UnitCost, item.Markup)
	return nil
}

// UnitPrice is unit_cost × (1 + markup).
func UnitPrice(unitCost, markup decimal.Decimal) decimal.Decimal {
	return unitCost.Mul(decimal.NewFromInt(1).Add(markup))
}
