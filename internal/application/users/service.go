package users

import (
	"context"
	"errors"
	"strings"
	"unicode"

	authsvc "bidops-backend/internal/application/auth"
	"bidops-backend/internal/domain"
	"bidops-backend/internal/infrastructure/database"
	"bidops-backend/internal/pkg/apperr"
	"bidops-backend/internal/pkg/constants"
	"bidops-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Service manages the members of a tenant. Rdb may be nil (CLI); sessions are then left alone.
type Service struct {
	DB  *gorm.DB
	Rdb *redis.Client
}

type CreateInput struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// List returns the tenant's users ordered by name.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]domain.User, error) {
	var out []domain.User
	if err := s.DB.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("fullname ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Create adds a user to the tenant. Role defaults to VIEWER.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, in CreateInput) (*domain.User, error) {
	fullname := strings.TrimSpace(in.Fullname)
	if fullname == "" {
		return nil, apperr.Validation("Full name is required and must be a non-empty string")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !validation.IsValidEmail(email) {
		return nil, apperr.Validation("Invalid email format")
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, apperr.Validation("Invalid password format")
	}
	role := strings.ToUpper(strings.TrimSpace(in.Role))
	if role == "" {
		role = constants.Viewer
	}
	if !constants.IsValidRole(role) {
		return nil, apperr.Validation("Invalid role: %s", in.Role)
	}

	hash, err := authsvc.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		TenantID:     tenantID,
		Fullname:     titleCaseAndNormalize(fullname),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("Email already registered")
		}
		return nil, err
	}
	return u, nil
}

// RoleChange asks to move TargetUserID to Role on behalf of ActorUserID.
type RoleChange struct {
	TenantID     uuid.UUID
	ActorUserID  uuid.UUID
	TargetUserID uuid.UUID
	Role         string
}

// UpdateRole applies a role change after governance checks and ends the target's sessions.
func (s *Service) UpdateRole(ctx context.Context, in RoleChange) (*domain.User, error) {
	in.Role = strings.ToUpper(strings.TrimSpace(in.Role))
	var target domain.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := validateRoleChange(tx, in)
		if err != nil {
			return err
		}
		t.Role = in.Role
		if err := tx.Model(t).Update("role", in.Role).Error; err != nil {
			return err
		}
		target = *t
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.Rdb != nil {
		destroySessions(ctx, s.Rdb, target.UserID.String())
	}
	return &target, nil
}

// EnsureMember fails with NotFound unless userID belongs to the tenant.
func EnsureMember(tx *gorm.DB, tenantID, userID uuid.UUID) error {
	var u domain.User
	err := tx.Select("user_id").Where("user_id = ? AND tenant_id = ?", userID, tenantID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("User %s not found", userID)
	}
	return err
}

func titleCaseAndNormalize(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	var b strings.Builder
	capitalize := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !capitalize {
				b.WriteRune(' ')
				capitalize = true
			}
			continue
		}
		if capitalize {
			b.WriteRune(unicode.ToUpper(r))
			capitalize = false
		} else {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
