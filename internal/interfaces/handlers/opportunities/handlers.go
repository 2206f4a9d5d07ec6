package opportunities

import (
	oppsvc "bidops-backend/internal/application/opportunities"
	"bidops-backend/internal/middleware"
	"bidops-backend/internal/pkg/request"
	"bidops-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *oppsvc.Service
}

type CreateClientRequest struct {
	Name string `json:"name"`
}

type CreateOpportunityRequest struct {
	Title    string     `json:"title"`
	ClientID *uuid.UUID `json:"clientId"`
	Stage    string     `json:"stage"`
}

// ListClients GET /api/v1/clients
func (h *Handlers) ListClients(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	clients, err := h.Service.ListClients(c.Context(), p.TenantID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Clients fetched successfully", clients, nil)
}

// CreateClient POST /api/v1/clients
func (h *Handlers) CreateClient(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req CreateClientRequest
	if err := request.Body(c, &req); err != nil {
		return response.FromError(c, err)
	}
	client, err := h.Service.CreateClient(c.Context(), p.TenantID, req.Name)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Client created successfully", client, nil)
}

// List GET /api/v1/opportunities
func (h *Handlers) List(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	opps, err := h.Service.List(c.Context(), p.TenantID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Opportunities fetched successfully", opps, nil)
}

// Create POST /api/v1/opportunities
func (h *Handlers) Create(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req CreateOpportunityRequest
	if err := request.Body(c, &req); err != nil {
		return response.FromError(c, err)
	}
	opp, err := h.Service.Create(c.Context(), oppsvc.CreateInput{
		TenantID: p.TenantID,
		ClientID: req.ClientID,
		Title:    req.Title,
		Stage:    req.Stage,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Opportunity created successfully", opp, nil)
}

// Get GET /api/v1/opportunities/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	opp, err := h.Service.Get(c.Context(), p.TenantID, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Opportunity fetched successfully", opp, nil)
}
