package users

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	usersvc "bidops-backend/internal/application/users"
	"bidops-backend/internal/domain"
	"bidops-backend/internal/infrastructure/database"
	"bidops-backend/internal/middleware"
	"bidops-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type usersEnv struct {
	app   *fiber.App
	admin *domain.User
}

func setupUsersApp(t *testing.T) *usersEnv {
	db, err := database.Open("sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	svc := &usersvc.Service{DB: db}
	tenantID := uuid.New()
	admin := &domain.User{TenantID: tenantID, Fullname: "Root Admin", Email: "root@example.com", PasswordHash: "x", Role: constants.Admin}
	require.NoError(t, db.Create(admin).Error)

	h := &Handlers{Service: svc}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("principal", &middleware.Principal{UserID: admin.UserID, TenantID: tenantID, Role: constants.Admin})
		return c.Next()
	})
	app.Get("/users", h.List)
	app.Post("/users", h.Create)
	app.Patch("/users/:id/role", h.UpdateRole)
	return &usersEnv{app: app, admin: admin}
}

func send(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	return resp.StatusCode, out
}

func TestUsers_CreateListAndRole(t *testing.T) {
	env := setupUsersApp(t)

	status, out := send(t, env.app, "POST", "/users", `{"fullname":"nadia karim","email":"nadia@example.com","password":"Secret123!","role":"MANAGER"}`)
	require.Equal(t, fiber.StatusCreated, status)
	user := out["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "Nadia Karim", user["fullname"])
	assert.NotContains(t, user, "password_hash")
	id := user["user_id"].(string)

	status, _ = send(t, env.app, "POST", "/users", `{"fullname":"Dup","email":"nadia@example.com","password":"Secret123!"}`)
	assert.Equal(t, fiber.StatusConflict, status)

	status, out = send(t, env.app, "GET", "/users", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, out["data"], 2)

	status, out = send(t, env.app, "PATCH", "/users/"+id+"/role", `{"role":"viewer"}`)
	require.Equal(t, fiber.StatusOK, status)
	user = out["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, constants.Viewer, user["role"])
}

func TestUsers_RoleErrors(t *testing.T) {
	env := setupUsersApp(t)

	status, _ := send(t, env.app, "PATCH", "/users/"+env.admin.UserID.String()+"/role", `{"role":"VIEWER"}`)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = send(t, env.app, "PATCH", "/users/not-a-uuid/role", `{"role":"VIEWER"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = send(t, env.app, "PATCH", "/users/"+uuid.NewString()+"/role", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = send(t, env.app, "PATCH", "/users/"+uuid.NewString()+"/role", `{"role":"MANAGER"}`)
	assert.Equal(t, fiber.StatusNotFound, status)
}
