package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification kinds.
const (
	NotifyApprovalRequested = "APPROVAL_REQUESTED"
	NotifyApprovalDecided   = "APPROVAL_DECIDED"
	NotifyPackFinalized     = "PACK_FINALIZED"
)

// Notification is an in-app message addressed to a user, or to every tenant
// member holding Role when UserID is nil.
type Notification struct {
	NotificationID uuid.UUID      `gorm:"column:notification_id;type:uuid;primaryKey" json:"notification_id"`
	TenantID       uuid.UUID      `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	UserID         *uuid.UUID     `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	Role           *string        `gorm:"column:role;type:varchar(20)" json:"role"`
	Kind           string         `gorm:"column:kind;type:varchar(40);not null" json:"kind"`
	Title          string         `gorm:"column:title;not null" json:"title"`
	Payload        datatypes.JSON `gorm:"column:payload;type:json" json:"payload"`
	ReadAt         *time.Time     `gorm:"column:read_at" json:"read_at"`
	CreatedAt      time.Time      `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt      time.Time      `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Notification) TableName() string {
	return "Notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.NotificationID == uuid.Nil {
		n.NotificationID = uuid.New()
	}
	return nil
}
