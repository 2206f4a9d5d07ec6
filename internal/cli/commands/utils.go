package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"bidops-backend/internal/domain"
	"bidops-backend/internal/infrastructure/database"
	"bidops-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DBOpener returns the database every command operates on.
type DBOpener func() (*gorm.DB, error)

// EnvDB opens DATABASE_URL (postgres URL or "sqlite:<path>").
func EnvDB() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL not set in environment or .env file")
	}
	return database.Open(dsn)
}

// findTenant accepts either a tenant id or an exact tenant name.
func findTenant(db *gorm.DB, ref string) (*domain.Tenant, error) {
	var tenant domain.Tenant
	q := db.Where("name = ?", ref)
	if id, err := uuid.Parse(ref); err == nil {
		q = db.Where("tenant_id = ?", id)
	}
	if err := q.First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tenant %q not found", ref)
		}
		return nil, err
	}
	return &tenant, nil
}

func normalizeCurrency(code string) (string, error) {
	normalized := validation.NormalizeCurrency(code)
	if !validation.IsValidCurrency(normalized) {
		return "", fmt.Errorf("invalid currency code %q", strings.TrimSpace(code))
	}
	return normalized, nil
}
