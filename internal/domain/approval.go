package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Approval step types, in chain order.
const (
	ApprovalLegal     = "LEGAL"
	ApprovalFinance   = "FINANCE"
	ApprovalExecutive = "EXECUTIVE"
)

// Approval statuses.
const (
	ApprovalPending                = "PENDING"
	ApprovalInReview               = "IN_REVIEW"
	ApprovalChangesRequested       = "CHANGES_REQUESTED"
	ApprovalResubmitted            = "RESUBMITTED"
	ApprovalApproved               = "APPROVED"
	ApprovalApprovedWithConditions = "APPROVED_WITH_CONDITIONS"
	ApprovalRejected               = "REJECTED"
)

// ApprovalTypeOrder gives the canonical position of each step type.
var ApprovalTypeOrder = map[string]int{
	ApprovalLegal:     1,
	ApprovalFinance:   2,
	ApprovalExecutive: 3,
}

// FinalizeAcceptedStatuses is the one definition of "approved" shared by the
// finalization gate and the review dashboard.
var FinalizeAcceptedStatuses = []string{ApprovalApproved}

// IsFinalizeAccepted reports whether status counts as approved for finalization.
func IsFinalizeAccepted(status string) bool {
	for _, s := range FinalizeAcceptedStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Approval is one step of a pricing pack's approval chain. Rows with
// ArchivedAt set belong to a superseded chain and are kept for history only.
type Approval struct {
	ApprovalID   uuid.UUID  `gorm:"column:approval_id;type:uuid;primaryKey" json:"approval_id"`
	PackID       uuid.UUID  `gorm:"column:pack_id;type:uuid;not null;index" json:"pack_id"`
	Type         string     `gorm:"column:type;type:varchar(20);not null" json:"type"`
	Seq          int        `gorm:"column:seq;not null" json:"seq"`
	ApproverID   *uuid.UUID `gorm:"column:approver_id;type:uuid" json:"approver_id"`
	ApproverRole *string    `gorm:"column:approver_role;type:varchar(20)" json:"approver_role"`
	Status       string     `gorm:"column:status;type:varchar(32);not null;default:'PENDING'" json:"status"`
	SignedOn     *time.Time `gorm:"column:signed_on" json:"signed_on"`
	Remarks      *string    `gorm:"column:remarks" json:"remarks"`
	Signature    *string    `gorm:"column:signature;type:varchar(64)" json:"signature"`
	ArchivedAt   *time.Time `gorm:"column:archived_at;index" json:"archived_at,omitempty"`
	CreatedAt    time.Time  `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Approval) TableName() string {
	return "Approvals"
}

func (a *Approval) BeforeCreate(tx *gorm.DB) error {
	if a.ApprovalID == uuid.Nil {
		a.ApprovalID = uuid.New()
	}
	return nil
}
