package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bidops-backend/internal/domain"
	"bidops-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service stores in-app notifications and optionally e-mails them.
type Service struct {
	DB     *gorm.DB
	Sender EmailSender // nil disables email delivery
}

// Message is a notification to create. Exactly one of UserID or Role should be set.
type Message struct {
	TenantID uuid.UUID
	UserID   *uuid.UUID
	Role     *string
	Kind     string
	Title    string
	Payload  map[string]interface{}
}

// Notify persists messages using tx so they commit or roll back with the caller's change.
func (s *Service) Notify(tx *gorm.DB, msgs ...Message) ([]domain.Notification, error) {
	if len(msgs) == 0 {
		return nil, nil
	}
	rows := make([]domain.Notification, 0, len(msgs))
	for _, m := range msgs {
		payload, err := json.Marshal(m.Payload)
		if err != nil {
			return nil, err
		}
		rows = append(rows, domain.Notification{
			TenantID: m.TenantID,
			UserID:   m.UserID,
			Role:     m.Role,
			Kind:     m.Kind,
			Title:    m.Title,
			Payload:  datatypes.JSON(payload),
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("create notifications: %w", err)
	}
	return rows, nil
}

// Deliver e-mails committed user-targeted notifications. Role-targeted ones
// stay in-app only. Failures are logged and never surface to the caller.
func (s *Service) Deliver(ctx context.Context, notes []domain.Notification) {
	if s == nil || s.Sender == nil {
		return
	}
	for _, n := range notes {
		if n.UserID == nil {
			continue
		}
		var users []domain.User
		q := s.DB.WithContext(ctx).Where("tenant_id = ? AND user_id = ?", n.TenantID, *n.UserID)
		if err := q.Find(&users).Error; err != nil {
			log.Warn().Err(err).Str("notification_id", n.NotificationID.String()).Msg("notification recipients lookup failed")
			continue
		}
		for _, u := range users {
			if err := s.Sender.Send(ctx, u.Email, n.Title, emailLayout(n.Title, describe(n))); err != nil {
				log.Warn().Err(err).Str("notification_id", n.NotificationID.String()).Str("to", u.Email).Msg("notification email failed")
			}
		}
	}
}

func describe(n domain.Notification) string {
	switch n.Kind {
	case domain.NotifyApprovalRequested:
		return "A pricing pack is waiting for your approval in BidOps."
	case domain.NotifyApprovalDecided:
		return "An approval step on one of your pricing packs has been decided."
	case domain.NotifyPackFinalized:
		return "A pricing pack has been fully approved and the opportunity is ready for submission."
	}
	return n.Title
}

// ListForUser returns notifications addressed to the user or to the user's role, newest first.
func (s *Service) ListForUser(ctx context.Context, tenantID, userID uuid.UUID, role string, unreadOnly bool) ([]domain.Notification, error) {
	var out []domain.Notification
	q := s.DB.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("(user_id = ? OR (user_id IS NULL AND role = ?))", userID, role)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}
	if err := q.Order(`"createdAt" DESC`).Limit(200).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead sets read_at on a notification visible to the user.
func (s *Service) MarkRead(ctx context.Context, tenantID, userID uuid.UUID, role string, id uuid.UUID) (*domain.Notification, error) {
	var n domain.Notification
	err := s.DB.WithContext(ctx).
		Where("notification_id = ? AND tenant_id = ?", id, tenantID).
		Where("(user_id = ? OR (user_id IS NULL AND role = ?))", userID, role).
		First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Notification not found")
	}
	if err != nil {
		return nil, err
	}
	if n.ReadAt == nil {
		now := time.Now().UTC()
		if err := s.DB.WithContext(ctx).Model(&n).Update("read_at", now).Error; err != nil {
			return nil, err
		}
		n.ReadAt = &now
	}
	return &n, nil
}
