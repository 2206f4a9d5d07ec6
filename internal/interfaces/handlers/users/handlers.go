package users

import (
	"time"

	usersvc "bidops-backend/internal/application/users"
	"bidops-backend/internal/domain"
	"bidops-backend/internal/middleware"
	"bidops-backend/internal/pkg/apperr"
	"bidops-backend/internal/pkg/request"
	"bidops-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *usersvc.Service
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// List GET /api/v1/users
func (h *Handlers) List(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	list, err := h.Service.List(c.Context(), p.TenantID)
	if err != nil {
		return response.FromError(c, err)
	}
	out := make([]fiber.Map, 0, len(list))
	for i := range list {
		out = append(out, safeUser(&list[i]))
	}
	return response.Success(c, "Users fetched successfully", out, nil)
}

// Create POST /api/v1/users
func (h *Handlers) Create(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in usersvc.CreateInput
	if err := request.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	u, err := h.Service.Create(c.Context(), p.TenantID, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "User created successfully", fiber.Map{"user": safeUser(u)}, nil)
}

// UpdateRole PATCH /api/v1/users/:id/role
func (h *Handlers) UpdateRole(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	targetID, err := request.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req UpdateRoleRequest
	if err := request.Body(c, &req); err != nil {
		return response.FromError(c, err)
	}
	if req.Role == "" {
		return response.FromError(c, apperr.Validation("role is required"))
	}
	u, err := h.Service.UpdateRole(c.Context(), usersvc.RoleChange{
		TenantID:     p.TenantID,
		ActorUserID:  p.UserID,
		TargetUserID: targetID,
		Role:         req.Role,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User role updated successfully", fiber.Map{"user": safeUser(u)}, nil)
}

func safeUser(u *domain.User) fiber.Map {
	return fiber.Map{
		"user_id":   u.UserID.String(),
		"tenant_id": u.TenantID.String(),
		"fullname":  u.Fullname,
		"email":     u.Email,
		"role":      u.Role,
		"createdAt": u.CreatedAt.UTC().Format(time.RFC3339),
	}
}
