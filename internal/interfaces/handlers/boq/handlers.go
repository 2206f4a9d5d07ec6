package boq

import (
	"encoding/json"

	boqsvc "bidops-backend/internal/application/boq"
	"bidops-backend/internal/middleware"
	"bidops-backend/internal/pkg/request"
	"bidops-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Handlers struct {
	Service *boqsvc.Service
}

// ItemRequest is the body of BoQ create and update. Numbers may be JSON
// numbers or numeric strings; anything else is rejected.
type ItemRequest struct {
	LineNo       *int             `json:"lineNo"`
	Description  *string          `json:"description"`
	Qty          *decimal.Decimal `json:"qty"`
	UnitCost     *decimal.Decimal `json:"unitCost"`
	UnitCurrency *string          `json:"unitCurrency"`
	Markup       *decimal.Decimal `json:"markup"`
	CustomFields json.RawMessage  `json:"customFields"`
}

func (r ItemRequest) input() boqsvc.ItemInput {
	in := boqsvc.ItemInput{
		LineNo:       r.LineNo,
		Description:  r.Description,
		Qty:          r.Qty,
		UnitCost:     r.UnitCost,
		UnitCurrency: r.UnitCurrency,
		Markup:       r.Markup,
	}
	if len(r.CustomFields) > 0 && string(r.CustomFields) != "null" {
		in.CustomFields = datatypes.JSON(r.CustomFields)
	}
	return in
}

// List GET /api/v1/opportunities/:id/boq
func (h *Handlers) List(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	oppID, err := request.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	items, err := h.Service.List(c.Context(), p.TenantID, oppID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "BoQ fetched successfully", items, nil)
}

// Create POST /api/v1/opportunities/:id/boq
func (h *Handlers) Create(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	oppID, err := request.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req ItemRequest
	if err := request.Body(c, &req); err != nil {
		return response.FromError(c, err)
	}
	item, err := h.Service.Create(c.Context(), p.TenantID, oppID, req.input())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "BoQ item created", item, nil)
}

// Update PATCH /api/v1/boq/:itemId
func (h *Handlers) Update(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	itemID, err := request.UUIDParam(c, "itemId")
	if err != nil {
		return response.FromError(c, err)
	}
	var req ItemRequest
	if err := request.Body(c, &req); err != nil {
		return response.FromError(c, err)
	}
	item, err := h.Service.Update(c.Context(), p.TenantID, itemID, req.input())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "BoQ item updated", item, nil)
}

// Delete DELETE /api/v1/boq/:itemId
func (h *Handlers) Delete(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	itemID, err := request.UUIDParam(c, "itemId")
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.Delete(c.Context(), p.TenantID, itemID); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "BoQ item deleted", nil, nil)
}
