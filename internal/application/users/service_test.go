package users

import (
	"context"
	"testing"

	"bidops-backend/internal/application/auth"
	"bidops-backend/internal/domain"
	"bidops-backend/internal/infrastructure/database"
	"bidops-backend/internal/middleware"
	"bidops-backend/internal/pkg/apperr"
	"bidops-backend/internal/pkg/constants"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUsersTest(t *testing.T) (*Service, uuid.UUID) {
	db, err := database.Open("sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})

	tenant := &domain.Tenant{Name: "Gulf Builders", BaseCurrency: "QAR"}
	require.NoError(t, db.Create(tenant).Error)
	return &Service{DB: db, Rdb: rdb}, tenant.TenantID
}

func TestCreate_NormalizesAndHashes(t *testing.T) {
	svc, tenantID := setupUsersTest(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, tenantID, CreateInput{
		Fullname: "  sara   al-thani ",
		Email:    " Sara@Example.COM",
		Password: "Secret123!",
		Role:     "manager",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sara Al-thani", u.Fullname)
	assert.Equal(t, "sara@example.com", u.Email)
	assert.Equal(t, constants.Manager, u.Role)

	logged, err := auth.LoginUser(svc.DB, auth.LoginInput{Email: "sara@example.com", Password: "Secret123!"})
	require.NoError(t, err)
	assert.Equal(t, tenantID, logged.TenantID)

	_, err = svc.Create(ctx, tenantID, CreateInput{Fullname: "Sara", Email: "sara@example.com", Password: "Secret123!"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	viewer, err := svc.Create(ctx, tenantID, CreateInput{Fullname: "Ali", Email: "ali@example.com", Password: "Secret123!"})
	require.NoError(t, err)
	assert.Equal(t, constants.Viewer, viewer.Role)

	list, err := svc.List(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ali", list[0].Fullname)
}

func TestCreate_Validation(t *testing.T) {
	svc, tenantID := setupUsersTest(t)
	ctx := context.Background()

	cases := []CreateInput{
		{Email: "a@b.co", Password: "Secret123!"},
		{Fullname: "A", Email: "nope", Password: "Secret123!"},
		{Fullname: "A", Email: "a@b.co", Password: "short"},
		{Fullname: "A", Email: "a@b.co", Password: "Secret123!", Role: "OWNER"},
	}
	for _, in := range cases {
		_, err := svc.Create(ctx, tenantID, in)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	}
}

func TestUpdateRole_Governance(t *testing.T) {
	svc, tenantID := setupUsersTest(t)
	ctx := context.Background()

	admin, err := svc.Create(ctx, tenantID, CreateInput{Fullname: "Admin", Email: "admin@example.com", Password: "Secret123!", Role: constants.Admin})
	require.NoError(t, err)
	member, err := svc.Create(ctx, tenantID, CreateInput{Fullname: "Member", Email: "member@example.com", Password: "Secret123!"})
	require.NoError(t, err)

	// Own role.
	_, err = svc.UpdateRole(ctx, RoleChange{TenantID: tenantID, ActorUserID: admin.UserID, TargetUserID: admin.UserID, Role: constants.Viewer})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// Other tenant.
	_, err = svc.UpdateRole(ctx, RoleChange{TenantID: uuid.New(), ActorUserID: admin.UserID, TargetUserID: member.UserID, Role: constants.Manager})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.UpdateRole(ctx, RoleChange{TenantID: tenantID, ActorUserID: admin.UserID, TargetUserID: member.UserID, Role: "boss"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// Promote, demote the original admin, then the last admin cannot be demoted.
	promoted, err := svc.UpdateRole(ctx, RoleChange{TenantID: tenantID, ActorUserID: admin.UserID, TargetUserID: member.UserID, Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, constants.Admin, promoted.Role)

	_, err = svc.UpdateRole(ctx, RoleChange{TenantID: tenantID, ActorUserID: member.UserID, TargetUserID: admin.UserID, Role: constants.Viewer})
	require.NoError(t, err)

	_, err = svc.UpdateRole(ctx, RoleChange{TenantID: tenantID, ActorUserID: admin.UserID, TargetUserID: member.UserID, Role: constants.Viewer})
	assert.ErrorIs(t, err, apperr.ErrPrecondition)
}

func TestUpdateRole_DestroysSessions(t *testing.T) {
	svc, tenantID := setupUsersTest(t)
	ctx := context.Background()

	admin, err := svc.Create(ctx, tenantID, CreateInput{Fullname: "Admin", Email: "admin@example.com", Password: "Secret123!", Role: constants.Admin})
	require.NoError(t, err)
	member, err := svc.Create(ctx, tenantID, CreateInput{Fullname: "Member", Email: "member@example.com", Password: "Secret123!"})
	require.NoError(t, err)

	require.NoError(t, svc.Rdb.Set(ctx, middleware.SessionRedisPrefix+"sid-1", `{"user":{}}`, 0).Err())
	require.NoError(t, svc.Rdb.SAdd(ctx, "user_sessions:"+member.UserID.String(), "sid-1").Err())

	_, err = svc.UpdateRole(ctx, RoleChange{TenantID: tenantID, ActorUserID: admin.UserID, TargetUserID: member.UserID, Role: constants.Manager})
	require.NoError(t, err)

	assert.Equal(t, int64(0), svc.Rdb.Exists(ctx, middleware.SessionRedisPrefix+"sid-1").Val())
	assert.Equal(t, int64(0), svc.Rdb.Exists(ctx, "user_sessions:"+member.UserID.String()).Val())
}

func TestEnsureMember(t *testing.T) {
	svc, tenantID := setupUsersTest(t)
	u, err := svc.Create(context.Background(), tenantID, CreateInput{Fullname: "Member", Email: "member@example.com", Password: "Secret123!"})
	require.NoError(t, err)

	assert.NoError(t, EnsureMember(svc.DB, tenantID, u.UserID))
	assert.ErrorIs(t, EnsureMember(svc.DB, uuid.New(), u.UserID), apperr.ErrNotFound)
	assert.ErrorIs(t, EnsureMember(svc.DB, tenantID, uuid.New()), apperr.ErrNotFound)
}
