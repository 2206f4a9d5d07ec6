package auth

import (
	"testing"

	"bidops-backend/internal/domain"
	"bidops-backend/internal/infrastructure/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyUser_Nil(t *testing.T) {
	u, err := VerifyUser(nil)
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifyUser_MissingIDs(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{
		"fullname": "Test",
		"email":    "a@b.com",
	})
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)

	u, err = VerifyUser(map[string]interface{}{"user_id": "550e8400-e29b-41d4-a716-446655440000"})
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifyUser_Valid(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{
		"user_id":   "550e8400-e29b-41d4-a716-446655440000",
		"fullname":  "Test User",
		"email":     "test@example.com",
		"role":      "MANAGER",
		"tenant_id": "660e8400-e29b-41d4-a716-446655440000",
	})
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", u.UserID)
	assert.Equal(t, "Test User", u.Fullname)
	assert.Equal(t, "MANAGER", u.Role)
	assert.Equal(t, "660e8400-e29b-41d4-a716-446655440000", u.TenantID)
}

func TestLoginUser(t *testing.T) {
	db, err := database.Open("sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	hash, err := HashPassword("Secret123!")
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.User{
		TenantID:     uuid.New(),
		Fullname:     "Priya Finance",
		Email:        "priya@example.com",
		PasswordHash: hash,
		Role:         "MANAGER",
	}).Error)

	_, err = LoginUser(db, LoginInput{})
	assert.Equal(t, ErrEmailPasswordRequired, err)

	_, err = LoginUser(db, LoginInput{Email: "nobody@example.com", Password: "x"})
	assert.Equal(t, ErrInvalidEmail, err)

	_, err = LoginUser(db, LoginInput{Email: "priya@example.com", Password: "wrong"})
	assert.Equal(t, ErrIncorrectPassword, err)

	finder := &GormUserFinder{DB: db}
	u, err := finder.FindByEmailAndPassword(" Priya@Example.com ", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, "Priya Finance", u.Fullname)
}
