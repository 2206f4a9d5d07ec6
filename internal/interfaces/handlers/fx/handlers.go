package fx

import (
	fxsvc "bidops-backend/internal/application/fx"
	"bidops-backend/internal/middleware"
	"bidops-backend/internal/pkg/apperr"
	"bidops-backend/internal/pkg/request"
	"bidops-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *fxsvc.Service
}

type UpsertRequest struct {
	RateToBase *decimal.Decimal `json:"rateToBase"`
}

// List GET /api/v1/fx-rates
func (h *Handlers) List(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	rates, err := h.Service.List(c.Context(), p.TenantID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "FX rates fetched successfully", rates, nil)
}

// Upsert PUT /api/v1/fx-rates/:currency
func (h *Handlers) Upsert(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req UpsertRequest
	if err := request.Body(c, &req); err != nil {
		return response.FromError(c, err)
	}
	if req.RateToBase == nil {
		return response.FromError(c, apperr.Validation("rateToBase is required"))
	}
	rate, err := h.Service.Upsert(c.Context(), p.TenantID, c.Params("currency"), *req.RateToBase)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "FX rate saved", rate, nil)
}

// Delete DELETE /api/v1/fx-rates/:currency
func (h *Handlers) Delete(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err := h.Service.Delete(c.Context(), p.TenantID, c.Params("currency")); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "FX rate deleted", nil, nil)
}
