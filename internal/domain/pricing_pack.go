package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PricingPack is an immutable priced version of an opportunity. Recalculation
// always inserts the next version; the unique index rejects duplicates.
type PricingPack struct {
	PackID        uuid.UUID       `gorm:"column:pack_id;type:uuid;primaryKey" json:"pack_id"`
	OpportunityID uuid.UUID       `gorm:"column:opportunity_id;type:uuid;not null;uniqueIndex:idx_pack_opportunity_version" json:"opportunity_id"`
	Version       int             `gorm:"column:version;not null;uniqueIndex:idx_pack_opportunity_version" json:"version"`
	BaseCost      decimal.Decimal `gorm:"column:base_cost;type:numeric;not null" json:"base_cost"`
	Overheads     decimal.Decimal `gorm:"column:overheads;type:numeric;not null" json:"overheads"`
	Contingency   decimal.Decimal `gorm:"column:contingency;type:numeric;not null" json:"contingency"`
	FxRate        decimal.Decimal `gorm:"column:fx_rate;type:numeric;not null" json:"fx_rate"`
	Margin        decimal.Decimal `gorm:"column:margin;type:numeric;not null" json:"margin"`
	TotalPrice    decimal.Decimal `gorm:"column:total_price;type:numeric;not null" json:"total_price"`
	Opportunity   *Opportunity    `gorm:"foreignKey:OpportunityID;references:OpportunityID" json:"opportunity,omitempty"`
	Approvals     []Approval      `gorm:"foreignKey:PackID;references:PackID" json:"approvals,omitempty"`
	CreatedAt     time.Time       `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt     time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
}

func (PricingPack) TableName() string {
	return "PricingPacks"
}

func (p *PricingPack) BeforeCreate(tx *gorm.DB) error {
	if p.PackID == uuid.Nil {
		p.PackID = uuid.New()
	}
	return nil
}
