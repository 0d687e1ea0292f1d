package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "diwholesale/internal/log"
	"diwholesale/internal/services"
	"diwholesale/internal/storage"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if rid, ok := c.Locals("requestid").(string); ok {
		data["RequestID"] = rid
	}
	return c.Render(tmpl, data)
}

func respond(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"data": data})
}

// fail maps service and storage errors onto status codes. Only client-facing
// messages reach the body; anything unexpected is logged and reported as 500.
func fail(c *fiber.Ctx, action string, err error) error {
	status, msg := fiber.StatusInternalServerError, "something went wrong"
	switch {
	case errors.Is(err, storage.ErrInvalidContent), errors.Is(err, services.ErrInvalid):
		status, msg = fiber.StatusBadRequest, err.Error()
		applog.Security(c, "validation.fail", map[string]any{"action": action, "reason": err.Error()})
	case errors.Is(err, services.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		status, msg = fiber.StatusNotFound, "not found"
	case errors.Is(err, services.ErrConflict):
		status, msg = fiber.StatusConflict, err.Error()
		applog.Info(c, action+".conflict", nil)
	case errors.Is(err, storage.ErrStorageUnavailable):
		status, msg = fiber.StatusBadGateway, "image storage is unavailable, retry later"
		applog.Error(c, action+".fail", err, nil)
	default:
		applog.Error(c, action+".fail", err, nil)
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func badRequest(c *fiber.Ctx, field string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid " + field})
}
