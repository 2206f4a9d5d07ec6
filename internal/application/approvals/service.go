package approvals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bidops-backend/internal/application/notifications"
	"bidops-backend/internal/application/users"
	"bidops-backend/internal/domain"
	"bidops-backend/internal/pkg/apperr"
	"bidops-backend/internal/pkg/constants"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Options is the approvals configuration fixed at construction.
type Options struct {
	SigningKey []byte
}

type Service struct {
	DB       *gorm.DB
	Notifier *notifications.Service // nil disables notifications
	Options  Options
	Now      func() time.Time
}

// Actor is the authenticated caller acting on an approval.
type Actor struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     string
}

// ChainStep is one entry of a requested approval chain.
type ChainStep struct {
	Type   string     `json:"type"`
	Role   *string    `json:"role"`
	UserID *uuid.UUID `json:"userId"`
}

// DecisionInput is the body of a decision.
type DecisionInput struct {
	Status  string  `json:"status"`
	Remarks *string `json:"remarks"`
}

// DecisionStatuses are the statuses a signer may record.
var DecisionStatuses = []string{
	domain.ApprovalApproved,
	domain.ApprovalApprovedWithConditions,
	domain.ApprovalChangesRequested,
	domain.ApprovalRejected,
}

// DefaultChain is used when bootstrap is called without a chain.
func DefaultChain() []ChainStep {
	manager, admin := constants.Manager, constants.Admin
	return []ChainStep{
		{Type: domain.ApprovalLegal, Role: &manager},
		{Type: domain.ApprovalFinance, Role: &manager},
		{Type: domain.ApprovalExecutive, Role: &admin},
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Bootstrap replaces the active chain of a pack in one transaction. Pending
// rows of the previous chain are deleted and decided rows are archived, so the
// active chain is exactly the new one while history is kept.
func (s *Service) Bootstrap(ctx context.Context, tenantID, packID uuid.UUID, chain []ChainStep) ([]domain.Approval, error) {
	if len(chain) == 0 {
		chain = DefaultChain()
	}
	steps, err := normalizeChain(chain)
	if err != nil {
		return nil, err
	}

	var notes []domain.Notification
	var active []domain.Approval
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pack, err := loadPack(tx, tenantID, packID)
		if err != nil {
			return err
		}
		for _, st := range steps {
			if st.UserID != nil {
				if err := users.EnsureMember(tx, tenantID, *st.UserID); err != nil {
					return err
				}
			}
		}

		if err := tx.Where("pack_id = ? AND archived_at IS NULL AND status = ?", packID, domain.ApprovalPending).
			Delete(&domain.Approval{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Approval{}).
			Where("pack_id = ? AND archived_at IS NULL", packID).
			Update("archived_at", s.now().UTC()).Error; err != nil {
			return err
		}

		rows := make([]domain.Approval, 0, len(steps))
		for i, st := range steps {
			rows = append(rows, domain.Approval{
				PackID:       packID,
				Type:         st.Type,
				Seq:          i + 1,
				ApproverID:   st.UserID,
				ApproverRole: st.Role,
				Status:       domain.ApprovalPending,
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}

		if s.Notifier != nil {
			msgs := make([]notifications.Message, 0, len(rows))
			for _, r := range rows {
				msgs = append(msgs, notifications.Message{
					TenantID: tenantID,
					UserID:   r.ApproverID,
					Role:     roleIfUnassigned(r),
					Kind:     domain.NotifyApprovalRequested,
					Title:    fmt.Sprintf("%s approval requested for pricing pack v%d", r.Type, pack.Version),
					Payload: map[string]interface{}{
						"approval_id":    r.ApprovalID,
						"pack_id":        packID,
						"opportunity_id": pack.OpportunityID,
						"type":           r.Type,
					},
				})
			}
			if notes, err = s.Notifier.Notify(tx, msgs...); err != nil {
				return err
			}
		}

		active, err = activeApprovals(tx, packID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("pack_id", packID.String()).Int("steps", len(active)).Msg("approval chain bootstrapped")
	s.Notifier.Deliver(ctx, notes)
	return active, nil
}

// List returns the active chain of a pack in bootstrap order.
func (s *Service) List(ctx context.Context, tenantID, packID uuid.UUID) ([]domain.Approval, error) {
	db := s.DB.WithContext(ctx)
	if _, err := loadPack(db, tenantID, packID); err != nil {
		return nil, err
	}
	return activeApprovals(db, packID)
}

// Decision records a signed decision on one approval row. The caller must be
// the assigned approver, hold the assigned role, or be an ADMIN.
func (s *Service) Decision(ctx context.Context, approvalID uuid.UUID, actor Actor, in DecisionInput) (*domain.Approval, error) {
	status := strings.ToUpper(strings.TrimSpace(in.Status))
	if !isDecisionStatus(status) {
		return nil, apperr.Validation("status must be one of %s", strings.Join(DecisionStatuses, ", "))
	}

	var approval domain.Approval
	var notes []domain.Notification
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("approval_id = ?", approvalID).First(&approval).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Approval not found")
		}
		if err != nil {
			return err
		}
		pack, err := loadPack(tx, actor.TenantID, approval.PackID)
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.NotFound("Approval not found")
		}
		if err != nil {
			return err
		}
		if approval.ArchivedAt != nil {
			return apperr.Precondition("Approval belongs to a superseded chain")
		}
		if !CanDecide(approval, actor) {
			return apperr.Forbidden("You are not allowed to decide this approval")
		}

		signedOn := s.now().UTC().Truncate(time.Millisecond)
		signature := Sign(s.Options.SigningKey, approval.ApprovalID, status, signedOn, actor.UserID)
		updates := map[string]interface{}{
			"status":      status,
			"signed_on":   signedOn,
			"signature":   signature,
			"approver_id": actor.UserID,
		}
		if in.Remarks != nil {
			updates["remarks"] = strings.TrimSpace(*in.Remarks)
		}
		if err := tx.Model(&approval).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("approval_id = ?", approvalID).First(&approval).Error; err != nil {
			return err
		}

		if s.Notifier != nil {
			manager := constants.Manager
			notes, err = s.Notifier.Notify(tx, notifications.Message{
				TenantID: actor.TenantID,
				Role:     &manager,
				Kind:     domain.NotifyApprovalDecided,
				Title:    fmt.Sprintf("%s approval %s on pricing pack v%d", approval.Type, status, pack.Version),
				Payload: map[string]interface{}{
					"approval_id": approval.ApprovalID,
					"pack_id":     approval.PackID,
					"status":      status,
					"signed_by":   actor.UserID,
				},
			})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("approval_id", approvalID.String()).
		Str("status", status).
		Str("user_id", actor.UserID.String()).
		Msg("approval decision recorded")
	s.Notifier.Deliver(ctx, notes)
	return &approval, nil
}

// CanDecide applies the approver rule: assigned user, then assigned role, then ADMIN.
func CanDecide(a domain.Approval, actor Actor) bool {
	if a.ApproverID != nil && *a.ApproverID == actor.UserID {
		return true
	}
	if a.ApproverRole != nil && *a.ApproverRole == actor.Role {
		return true
	}
	return actor.Role == constants.Admin
}

// Verification reports whether a stored signature matches its row.
type Verification struct {
	ApprovalID uuid.UUID `json:"approval_id"`
	Signed     bool      `json:"signed"`
	Valid      bool      `json:"valid"`
}

// VerifySignature recomputes the signature of a decided approval.
func (s *Service) VerifySignature(ctx context.Context, tenantID, approvalID uuid.UUID) (*Verification, error) {
	db := s.DB.WithContext(ctx)
	var approval domain.Approval
	err := db.Where("approval_id = ?", approvalID).First(&approval).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Approval not found")
	}
	if err != nil {
		return nil, err
	}
	if _, err := loadPack(db, tenantID, approval.PackID); err != nil {
		return nil, apperr.NotFound("Approval not found")
	}

	v := &Verification{ApprovalID: approval.ApprovalID}
	if approval.Signature == nil || approval.SignedOn == nil || approval.ApproverID == nil {
		return v, nil
	}
	v.Signed = true
	v.Valid = ValidSignature(s.Options.SigningKey, approval.ApprovalID, approval.Status, *approval.SignedOn, *approval.ApproverID, *approval.Signature)
	return v, nil
}

// loadPack returns the pack with its opportunity when both exist within the
// tenant. Missing and foreign packs are reported the same way.
func loadPack(tx *gorm.DB, tenantID, packID uuid.UUID) (*domain.PricingPack, error) {
	var pack domain.PricingPack
	err := tx.Preload("Opportunity").Where("pack_id = ?", packID).First(&pack).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Pricing pack not found")
	}
	if err != nil {
		return nil, err
	}
	if pack.Opportunity == nil || pack.Opportunity.TenantID != tenantID {
		return nil, apperr.NotFound("Pricing pack not found")
	}
	return &pack, nil
}

func activeApprovals(tx *gorm.DB, packID uuid.UUID) ([]domain.Approval, error) {
	var rows []domain.Approval
	err := tx.Where("pack_id = ? AND archived_at IS NULL", packID).
		Order(`"createdAt" ASC`).Order("seq ASC").
		Find(&rows).Error
	return rows, err
}

func normalizeChain(chain []ChainStep) ([]ChainStep, error) {
	out := make([]ChainStep, 0, len(chain))
	for i, st := range chain {
		t := strings.ToUpper(strings.TrimSpace(st.Type))
		if _, ok := domain.ApprovalTypeOrder[t]; !ok {
			return nil, apperr.Validation("chain[%d].type must be one of LEGAL, FINANCE, EXECUTIVE", i)
		}
		step := ChainStep{Type: t, UserID: st.UserID}
		if st.Role != nil {
			role := strings.ToUpper(strings.TrimSpace(*st.Role))
			if role != "" {
				if !constants.IsValidRole(role) {
					return nil, apperr.Validation("chain[%d].role is not a valid role", i)
				}
				step.Role = &role
			}
		}
		out = append(out, step)
	}
	return out, nil
}

func isDecisionStatus(status string) bool {
	for _, s := range DecisionStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// roleIfUnassigned addresses a notification to the role only when no user is named.
func roleIfUnassigned(a domain.Approval) *string {
	if a.ApproverID != nil {
		return nil
	}
	if a.ApproverRole != nil {
		return a.ApproverRole
	}
	admin := constants.Admin
	return &admin
}
