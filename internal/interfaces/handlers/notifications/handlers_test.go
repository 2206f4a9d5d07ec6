package notifications

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	notifysvc "bidops-backend/internal/application/notifications"
	"bidops-backend/internal/domain"
	"bidops-backend/internal/infrastructure/database"
	"bidops-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAndMarkRead(t *testing.T) {
	db, err := database.Open("sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	svc := &notifysvc.Service{DB: db}

	tenantID := uuid.New()
	role := "MANAGER"
	notes, err := svc.Notify(db, notifysvc.Message{TenantID: tenantID, Role: &role, Kind: domain.NotifyPackFinalized, Title: "Pack finalized"})
	require.NoError(t, err)

	h := &Handlers{Service: svc}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("principal", &middleware.Principal{UserID: uuid.New(), TenantID: tenantID, Role: role})
		return c.Next()
	})
	app.Get("/notifications", h.List)
	app.Patch("/notifications/:id/read", h.MarkRead)

	resp, err := app.Test(httptest.NewRequest("GET", "/notifications?unread=true", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Len(t, out["data"], 1)

	resp, err = app.Test(httptest.NewRequest("PATCH", "/notifications/"+notes[0].NotificationID.String()+"/read", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/notifications?unread=true", nil))
	require.NoError(t, err)
	b, _ = io.ReadAll(resp.Body)
	out = nil
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Len(t, out["data"], 0)

	resp, err = app.Test(httptest.NewRequest("PATCH", "/notifications/"+uuid.New().String()+"/read", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
