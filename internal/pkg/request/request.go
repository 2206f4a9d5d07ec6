// Package request holds the small decoding helpers shared by the HTTP handlers.
package request

import (
	"strings"

	"bidops-backend/internal/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UUIDParam parses a route parameter as a UUID.
func UUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(name)))
	if err != nil {
		return uuid.Nil, apperr.Validation("Invalid %s", name)
	}
	return id, nil
}

// Body decodes a JSON body into out. An empty body leaves out untouched, so
// handlers with all-optional fields accept a bare POST. Malformed JSON and
// values that do not fit the target type (e.g. "abc" for a decimal) are
// validation errors.
func Body(c *fiber.Ctx, out interface{}) error {
	if len(strings.TrimSpace(string(c.Body()))) == 0 {
		return nil
	}
	c.Request().Header.SetContentType(fiber.MIMEApplicationJSON)
	if err := c.BodyParser(out); err != nil {
		return apperr.Validation("Invalid request body: %s", err.Error())
	}
	return nil
}
