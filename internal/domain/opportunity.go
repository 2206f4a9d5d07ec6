package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StageQualification = "Qualification"
	StageSubmission    = "Submission"

	OpportunityStatusOpen  = "Open"
	OpportunityStatusReady = "Ready for submission"
)

type Client struct {
	ClientID  uuid.UUID `gorm:"column:client_id;type:uuid;primaryKey" json:"client_id"`
	TenantID  uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	CreatedAt time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Client) TableName() string {
	return "Clients"
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ClientID == uuid.Nil {
		c.ClientID = uuid.New()
	}
	return nil
}

// Opportunity is a tender being priced. Stage and status are moved to
// Submission / Ready for submission by the finalization gate.
type Opportunity struct {
	OpportunityID uuid.UUID  `gorm:"column:opportunity_id;type:uuid;primaryKey" json:"opportunity_id"`
	TenantID      uuid.UUID  `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	ClientID      *uuid.UUID `gorm:"column:client_id;type:uuid" json:"client_id"`
	Client        *Client    `gorm:"foreignKey:ClientID;references:ClientID" json:"client,omitempty"`
	Title         string     `gorm:"column:title;not null" json:"title"`
	Stage         string     `gorm:"column:stage;not null;default:'Qualification'" json:"stage"`
	Status        string     `gorm:"column:status;not null;default:'Open'" json:"status"`
	CreatedAt     time.Time  `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt     time.Time  `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Opportunity) TableName() string {
	return "Opportunities"
}

func (o *Opportunity) BeforeCreate(tx *gorm.DB) error {
	if o.OpportunityID == uuid.Nil {
		o.OpportunityID = uuid.New()
	}
	return nil
}
