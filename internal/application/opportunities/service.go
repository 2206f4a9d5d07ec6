package opportunities

import (
	"context"
	"errors"
	"strings"

	"bidops-backend/internal/domain"
	"bidops-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

type CreateInput struct {
	TenantID uuid.UUID
	ClientID *uuid.UUID
	Title    string
	Stage    string
}

func (s *Service) CreateClient(ctx context.Context, tenantID uuid.UUID, name string) (*domain.Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("Client name is required")
	}
	client := &domain.Client{TenantID: tenantID, Name: name}
	if err := s.DB.WithContext(ctx).Create(client).Error; err != nil {
		return nil, err
	}
	return client, nil
}

func (s *Service) ListClients(ctx context.Context, tenantID uuid.UUID) ([]domain.Client, error) {
	var clients []domain.Client
	if err := s.DB.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("name ASC").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Opportunity, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Validation("Opportunity title is required")
	}
	if in.ClientID != nil {
		var count int64
		if err := s.DB.WithContext(ctx).Model(&domain.Client{}).
			Where("client_id = ? AND tenant_id = ?", *in.ClientID, in.TenantID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, apperr.NotFound("Client not found")
		}
	}
	stage := strings.TrimSpace(in.Stage)
	if stage == "" {
		stage = domain.StageQualification
	}
	opp := &domain.Opportunity{
		TenantID: in.TenantID,
		ClientID: in.ClientID,
		Title:    title,
		Stage:    stage,
		Status:   domain.OpportunityStatusOpen,
	}
	if err := s.DB.WithContext(ctx).Create(opp).Error; err != nil {
		return nil, err
	}
	return opp, nil
}

// Get returns the opportunity with its client. Another tenant's opportunity is
// reported as not found.
func (s *Service) Get(ctx context.Context, tenantID, opportunityID uuid.UUID) (*domain.Opportunity, error) {
	var opp domain.Opportunity
	err := s.DB.WithContext(ctx).Preload("Client").
		Where("opportunity_id = ? AND tenant_id = ?", opportunityID, tenantID).
		First(&opp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Opportunity not found")
	}
	if err != nil {
		return nil, err
	}
	return &opp, nil
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]domain.Opportunity, error) {
	var opps []domain.Opportunity
	if err := s.DB.WithContext(ctx).Preload("Client").
		Where("tenant_id = ?", tenantID).
		Order(`"updatedAt" DESC`).
		Find(&opps).Error; err != nil {
		return nil, err
	}
	return opps, nil
}

// EnsureOwned checks that the opportunity exists within the tenant. It runs on
// whatever handle is passed so callers can use it inside a transaction.
func EnsureOwned(tx *gorm.DB, tenantID, opportunityID uuid.UUID) error {
	var count int64
	if err := tx.Model(&domain.Opportunity{}).
		Where("opportunity_id = ? AND tenant_id = ?", opportunityID, tenantID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.NotFound("Opportunity not found")
	}
	return nil
}
