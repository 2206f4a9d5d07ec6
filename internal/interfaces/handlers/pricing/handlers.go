package pricing

import (
	pricingsvc "bidops-backend/internal/application/pricing"
	"bidops-backend/internal/middleware"
	"bidops-backend/internal/pkg/request"
	"bidops-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *pricingsvc.Service
}

// Recalculate POST /api/v1/pricing/:opportunityId/pack/recalculate
// Body: { overheads?, contingency?, fxRate?, margin? } as fractions.
func (h *Handlers) Recalculate(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	oppID, err := request.UUIDParam(c, "opportunityId")
	if err != nil {
		return response.FromError(c, err)
	}
	var ov pricingsvc.Overrides
	if err := request.Body(c, &ov); err != nil {
		return response.FromError(c, err)
	}
	res, err := h.Service.RecalcPack(c.Context(), p.TenantID, oppID, ov)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Pricing pack recalculated", res, nil)
}

// Current GET /api/v1/pricing/:opportunityId/pack
func (h *Handlers) Current(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	oppID, err := request.UUIDParam(c, "opportunityId")
	if err != nil {
		return response.FromError(c, err)
	}
	pack, err := h.Service.Current(c.Context(), p.TenantID, oppID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Pricing pack fetched successfully", pack, nil)
}

// List GET /api/v1/pricing/:opportunityId/packs
func (h *Handlers) List(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	oppID, err := request.UUIDParam(c, "opportunityId")
	if err != nil {
		return response.FromError(c, err)
	}
	packs, err := h.Service.ListPacks(c.Context(), p.TenantID, oppID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Pricing packs fetched successfully", packs, nil)
}
