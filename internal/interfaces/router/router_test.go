package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	authsvc "bidops-backend/internal/application/auth"
	"bidops-backend/internal/config"
	"bidops-backend/internal/domain"
	"bidops-backend/internal/infrastructure/database"
	"bidops-backend/internal/middleware"
	"bidops-backend/internal/pkg/constants"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	rdb      *redis.Client
	tenantID uuid.UUID
}

func setupRouter(t *testing.T) *testEnv {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})

	db, err := database.Open("sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	tenant := &domain.Tenant{Name: "Acme Contracting", BaseCurrency: "QAR"}
	require.NoError(t, db.Create(tenant).Error)

	cfg := &config.Config{
		Env:                "test",
		MinMarginPct:       decimal.NewFromInt(10),
		ApprovalSigningKey: "router-test-key",
		BaseCurrency:       "QAR",
		HealthAdminKey:     "admin",
	}
	return &testEnv{app: New(cfg, db, rdb), db: db, rdb: rdb, tenantID: tenant.TenantID}
}

// login stores a session for a new user with role and returns the cookie header.
func (e *testEnv) login(t *testing.T, role string) string {
	sid := uuid.New().String()
	b, _ := json.Marshal(map[string]interface{}{
		"user": map[string]interface{}{
			"user_id":   uuid.New().String(),
			"tenant_id": e.tenantID.String(),
			"role":      role,
			"email":     strings.ToLower(role) + "@bidops.test",
		},
	})
	require.NoError(t, e.rdb.Set(context.Background(), middleware.SessionRedisPrefix+sid, b, 0).Err())
	return middleware.SessionCookieName + "=s:" + sid
}

func (e *testEnv) do(t *testing.T, cookie, method, path, body string) (int, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	_ = json.Unmarshal(b, &out)
	return resp.StatusCode, out
}

func TestRoutes_RequireSessionAndPermissions(t *testing.T) {
	env := setupRouter(t)

	status, _ := env.do(t, "", "GET", "/api/v1/opportunities", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	viewer := env.login(t, constants.Viewer)
	status, _ = env.do(t, viewer, "GET", "/api/v1/opportunities", "")
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = env.do(t, viewer, "POST", "/api/v1/opportunities", `{"title":"x"}`)
	assert.Equal(t, fiber.StatusForbidden, status)

	manager := env.login(t, constants.Manager)
	status, _ = env.do(t, manager, "PUT", "/api/v1/fx-rates/EUR", `{"rateToBase":4}`)
	assert.Equal(t, fiber.StatusForbidden, status)

	admin := env.login(t, constants.Admin)
	status, _ = env.do(t, admin, "PUT", "/api/v1/fx-rates/EUR", `{"rateToBase":4}`)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestRoutes_EndToEnd(t *testing.T) {
	env := setupRouter(t)
	manager := env.login(t, constants.Manager)
	admin := env.login(t, constants.Admin)

	status, out := env.do(t, manager, "POST", "/api/v1/opportunities", `{"title":"Hospital wing"}`)
	require.Equal(t, fiber.StatusCreated, status)
	oppID := out["data"].(map[string]interface{})["opportunity_id"].(string)

	status, _ = env.do(t, manager, "POST", "/api/v1/opportunities/"+oppID+"/boq", `{"qty":2,"unitCost":100}`)
	require.Equal(t, fiber.StatusCreated, status)
	status, _ = env.do(t, manager, "POST", "/api/v1/opportunities/"+oppID+"/boq", `{"qty":1,"unitCost":50}`)
	require.Equal(t, fiber.StatusCreated, status)

	status, out = env.do(t, manager, "POST", "/api/v1/pricing/"+oppID+"/pack/recalculate", `{"overheads":0.1,"contingency":0.1,"margin":0.2}`)
	require.Equal(t, fiber.StatusCreated, status)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, "363", data["totalPrice"])
	packID := data["pack"].(map[string]interface{})["pack_id"].(string)

	status, out = env.do(t, manager, "POST", "/api/v1/approvals/"+packID+"/bootstrap", "")
	require.Equal(t, fiber.StatusOK, status)
	rows := out["data"].([]interface{})
	require.Len(t, rows, 3)
	for _, r := range rows {
		id := r.(map[string]interface{})["approval_id"].(string)
		status, _ = env.do(t, admin, "POST", "/api/v1/approvals/decision/"+id, `{"status":"APPROVED"}`)
		require.Equal(t, fiber.StatusOK, status)
	}

	status, _ = env.do(t, manager, "POST", "/api/v1/approvals/"+packID+"/finalize", "")
	require.Equal(t, fiber.StatusOK, status)

	status, out = env.do(t, manager, "GET", "/api/v1/opportunities/"+oppID, "")
	require.Equal(t, fiber.StatusOK, status)
	opp := out["data"].(map[string]interface{})
	assert.Equal(t, domain.StageSubmission, opp["stage"])
	assert.Equal(t, domain.OpportunityStatusReady, opp["status"])

	status, out = env.do(t, manager, "GET", "/api/v1/notifications", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, out["data"])
}

func TestRoutes_LoginAndHealth(t *testing.T) {
	env := setupRouter(t)
	hash, err := authsvc.HashPassword("Secret123!")
	require.NoError(t, err)
	require.NoError(t, env.db.Create(&domain.User{
		TenantID:     env.tenantID,
		Fullname:     "Omar Admin",
		Email:        "omar@example.com",
		PasswordHash: hash,
		Role:         constants.Admin,
	}).Error)

	req := httptest.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(`{"email":"omar@example.com","password":"Secret123!"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cookie := resp.Header.Get("Set-Cookie")
	require.NotEmpty(t, cookie)
	cookie = strings.SplitN(cookie, ";", 2)[0]

	status, _ := env.do(t, cookie, "GET", "/api/v1/fx-rates", "")
	assert.Equal(t, fiber.StatusOK, status)

	status, out := env.do(t, "", "GET", "/health/json", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", out["status"])
}
