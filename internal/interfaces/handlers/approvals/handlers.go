package approvals

import (
	approvalsvc "bidops-backend/internal/application/approvals"
	"bidops-backend/internal/middleware"
	"bidops-backend/internal/pkg/pagination"
	"bidops-backend/internal/pkg/request"
	"bidops-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *approvalsvc.Service
}

type BootstrapRequest struct {
	Chain []approvalsvc.ChainStep `json:"chain"`
}

// Bootstrap POST /api/v1/approvals/:packId/bootstrap
func (h *Handlers) Bootstrap(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	packID, err := request.UUIDParam(c, "packId")
	if err != nil {
		return response.FromError(c, err)
	}
	var req BootstrapRequest
	if err := request.Body(c, &req); err != nil {
		return response.FromError(c, err)
	}
	rows, err := h.Service.Bootstrap(c.Context(), p.TenantID, packID, req.Chain)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Approval chain created", rows, nil)
}

// List GET /api/v1/approvals/:packId
func (h *Handlers) List(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	packID, err := request.UUIDParam(c, "packId")
	if err != nil {
		return response.FromError(c, err)
	}
	rows, err := h.Service.List(c.Context(), p.TenantID, packID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Approvals fetched successfully", rows, nil)
}

// Decision POST /api/v1/approvals/decision/:id
// Body: { status, remarks? }. The caller must match the row's approver, role, or be ADMIN.
func (h *Handlers) Decision(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var in approvalsvc.DecisionInput
	if err := request.Body(c, &in); err != nil {
		return response.FromError(c, err)
	}
	row, err := h.Service.Decision(c.Context(), id, approvalsvc.Actor{
		UserID:   p.UserID,
		TenantID: p.TenantID,
		Role:     p.Role,
	}, in)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Decision recorded", row, nil)
}

// Verify GET /api/v1/approvals/decision/:id/verify
func (h *Handlers) Verify(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	v, err := h.Service.VerifySignature(c.Context(), p.TenantID, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Signature checked", v, nil)
}

// Finalize POST /api/v1/approvals/:packId/finalize
func (h *Handlers) Finalize(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	packID, err := request.UUIDParam(c, "packId")
	if err != nil {
		return response.FromError(c, err)
	}
	res, err := h.Service.Finalize(c.Context(), p.TenantID, packID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Pricing pack finalized", res, nil)
}

// Review GET /api/v1/approvals/review?page=&limit=
func (h *Handlers) Review(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	params := pagination.Parse(c)
	rows, total, err := h.Service.Review(c.Context(), p.TenantID, params)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Review fetched successfully", rows, fiber.Map{
		"page":  params.Page,
		"limit": params.Limit,
		"total": total,
	})
}
