package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FxRate converts one unit of Currency into the tenant base currency.
// At most one row exists per (tenant, currency).
type FxRate struct {
	FxRateID   uuid.UUID       `gorm:"column:fx_rate_id;type:uuid;primaryKey" json:"fx_rate_id"`
	TenantID   uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:idx_fx_tenant_currency" json:"tenant_id"`
	Currency   string          `gorm:"column:currency;type:varchar(8);not null;uniqueIndex:idx_fx_tenant_currency" json:"currency"`
	RateToBase decimal.Decimal `gorm:"column:rate_to_base;type:numeric;not null" json:"rate_to_base"`
	CreatedAt  time.Time       `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt  time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
}

func (FxRate) TableName() string {
	return "FxRates"
}

func (f *FxRate) BeforeCreate(tx *gorm.DB) error {
	if f.FxRateID == uuid.Nil {
		f.FxRateID = uuid.New()
	}
	return nil
}
