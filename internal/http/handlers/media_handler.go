package handlers

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "diwholesale/internal/log"
)

// MediaHandler serves locally stored images from the upload directory.
type MediaHandler struct {
	Dir string
}

// GET /uploads/*
func (h *MediaHandler) Serve(c *fiber.Ctx) error {
	p := c.Params("*")
	rawLower := strings.ToLower(p)
	// Block encoded traversal attempts as well as raw .. or null bytes
	if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
		applog.Security(c, "media.traversal.block", map[string]any{"path": p})
		return c.SendStatus(fiber.StatusNotFound)
	}
	clean := filepath.Clean(p)
	if clean == "." || strings.ContainsAny(clean, `/\`) || filepath.IsAbs(clean) {
		applog.Security(c, "media.traversal.block", map[string]any{"path": p})
		return c.SendStatus(fiber.StatusNotFound)
	}
	return c.SendFile(filepath.Join(h.Dir, clean), true)
}
