package middleware

import (
	"bidops-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userLocal = "user"

// Principal is the authenticated caller, decoded from the session user.
type Principal struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     string
	Email    string
}

// RequireAuth ensures a valid user is in the session. Returns 401 otherwise.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := PrincipalFromUser(c.Locals(userLocal))
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		c.Locals("principal", p)
		return c.Next()
	}
}

// GetUser returns the raw session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// GetPrincipal returns the principal attached by RequireAuth.
func GetPrincipal(c *fiber.Ctx) (*Principal, bool) {
	p, ok := c.Locals("principal").(*Principal)
	return p, ok && p != nil
}

// PrincipalFromUser decodes the session user map. Both ids must be valid UUIDs.
func PrincipalFromUser(user interface{}) (*Principal, bool) {
	m, ok := user.(map[string]interface{})
	if !ok {
		return nil, false
	}
	userID, err := uuid.Parse(str(m["user_id"]))
	if err != nil {
		return nil, false
	}
	tenantID, err := uuid.Parse(str(m["tenant_id"]))
	if err != nil {
		return nil, false
	}
	return &Principal{
		UserID:   userID,
		TenantID: tenantID,
		Role:     str(m["role"]),
		Email:    str(m["email"]),
	}, true
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
