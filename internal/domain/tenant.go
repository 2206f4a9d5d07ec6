package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant is one customer organisation; every business row is scoped to one.
type Tenant struct {
	TenantID     uuid.UUID `gorm:"column:tenant_id;type:uuid;primaryKey" json:"tenant_id"`
	Name         string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	BaseCurrency string    `gorm:"column:base_currency;type:varchar(8);not null;default:'QAR'" json:"base_currency"`
	CreatedAt    time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Tenant) TableName() string {
	return "Tenants"
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.TenantID == uuid.Nil {
		t.TenantID = uuid.New()
	}
	return nil
}
