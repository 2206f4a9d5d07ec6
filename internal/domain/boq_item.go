package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BoqItem is one Bill-of-Quantities line of an opportunity.
type BoqItem struct {
	BoqItemID     uuid.UUID       `gorm:"column:boq_item_id;type:uuid;primaryKey" json:"boq_item_id"`
	OpportunityID uuid.UUID       `gorm:"column:opportunity_id;type:uuid;not null;index" json:"opportunity_id"`
	LineNo        int             `gorm:"column:line_no;not null" json:"line_no"`
	Description   string          `gorm:"column:description" json:"description"`
	Qty           decimal.Decimal `gorm:"column:qty;type:numeric;not null;default:0" json:"qty"`
	UnitCost      decimal.Decimal `gorm:"column:unit_cost;type:numeric;not null;default:0" json:"unit_cost"`
	UnitCurrency  string          `gorm:"column:unit_currency;type:varchar(8)" json:"unit_currency"`
	Markup        decimal.Decimal `gorm:"column:markup;type:numeric;not null;default:0" json:"markup"`
	UnitPrice     decimal.Decimal `gorm:"column:unit_price;type:numeric;not null;default:0" json:"unit_price"`
	CustomFields  datatypes.JSON  `gorm:"column:custom_fields;type:json" json:"custom_fields"`
	CreatedAt     time.Time       `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt     time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
}

func (BoqItem) TableName() string {
	return "BoqItems"
}

func (b *BoqItem) BeforeCreate(tx *gorm.DB) error {
	if b.BoqItemID == uuid.Nil {
		b.BoqItemID = uuid.New()
	}
	return nil
}
