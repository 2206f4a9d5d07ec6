package notifications

import (
	notifysvc "bidops-backend/internal/application/notifications"
	"bidops-backend/internal/middleware"
	"bidops-backend/internal/pkg/request"
	"bidops-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *notifysvc.Service
}

// List GET /api/v1/notifications?unread=true
func (h *Handlers) List(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	notes, err := h.Service.ListForUser(c.Context(), p.TenantID, p.UserID, p.Role, c.QueryBool("unread", false))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Notifications fetched successfully", notes, nil)
}

// MarkRead PATCH /api/v1/notifications/:id/read
func (h *Handlers) MarkRead(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	note, err := h.Service.MarkRead(c.Context(), p.TenantID, p.UserID, p.Role, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Notification marked as read", note, nil)
}
