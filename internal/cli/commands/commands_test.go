package commands

import (
	"bytes"
	"strings"
	"testing"

	authsvc "bidops-backend/internal/application/auth"
	"bidops-backend/internal/domain"
	"bidops-backend/internal/infrastructure/database"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) (*gorm.DB, DBOpener) {
	db, err := database.Open("sqlite::memory:")
	require.NoError(t, err)
	return db, func() (*gorm.DB, error) { return db, nil }
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandMetadata(t *testing.T) {
	_, open := setupDB(t)
	assert.Equal(t, "migrate", MigrateCmd(open).Use)
	assert.Equal(t, "tenant", TenantCmd(open).Use)
	assert.Equal(t, "user", UserCmd(open).Use)
	assert.Equal(t, "fx", FxCmd(open).Use)
}

func TestMigrateTenantUserAndFx(t *testing.T) {
	db, open := setupDB(t)

	out, err := run(t, MigrateCmd(open))
	require.NoError(t, err)
	assert.Contains(t, out, "Migration completed")

	out, err = run(t, TenantCmd(open), "create", "Acme", "--base-currency", "usd")
	require.NoError(t, err)
	assert.Contains(t, out, "Acme\tUSD")

	_, err = run(t, TenantCmd(open), "create", "Acme")
	assert.ErrorContains(t, err, "already exists")

	out, err = run(t, UserCmd(open), "create",
		"--tenant", "Acme", "--name", "Lina", "--email", " Lina@Example.com ",
		"--password", "Secret123!", "--role", "manager")
	require.NoError(t, err)
	assert.Contains(t, out, "lina@example.com\tMANAGER")

	user, err := authsvc.LoginUser(db, authsvc.LoginInput{Email: "lina@example.com", Password: "Secret123!"})
	require.NoError(t, err)
	assert.Equal(t, "MANAGER", user.Role)

	_, err = run(t, FxCmd(open), "set", "Acme", "eur", "1.08")
	require.NoError(t, err)
	_, err = run(t, FxCmd(open), "set", "Acme", "EUR", "1.1")
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&domain.FxRate{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	out, err = run(t, FxCmd(open), "list", "Acme")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "base\tUSD", lines[0])
	assert.Equal(t, "EUR\t1.1", lines[1])
}

func TestCommandValidation(t *testing.T) {
	_, open := setupDB(t)
	_, err := run(t, MigrateCmd(open))
	require.NoError(t, err)

	_, err = run(t, TenantCmd(open), "create", "Acme", "--base-currency", "dollars")
	assert.ErrorContains(t, err, "invalid currency code")

	_, err = run(t, FxCmd(open), "set", "Nobody", "EUR", "1.1")
	assert.ErrorContains(t, err, "not found")

	_, err = run(t, TenantCmd(open), "create", "Acme")
	require.NoError(t, err)
	_, err = run(t, FxCmd(open), "set", "Acme", "EUR", "-2")
	assert.ErrorContains(t, err, "positive")

	_, err = run(t, UserCmd(open), "create", "--tenant", "Acme", "--email", "a@b.c", "--password", "x", "--role", "OWNER")
	assert.ErrorContains(t, err, "role must be one of")
}
