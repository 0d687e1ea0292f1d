package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "diwholesale/internal/log"
	"diwholesale/internal/services"
	"diwholesale/internal/validate"
)

type CategoryHandler struct {
	Catalog  *services.CatalogService
	MaxBytes int64
}

// GET /api/categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	page, err := h.Catalog.ListCategories(services.Page{
		Page: validate.Page(c.Query("page")),
		Size: validate.PageSize(c.Query("pageSize")),
	})
	if err != nil {
		return fail(c, "catalog.category.list", err)
	}
	return respond(c, fiber.StatusOK, page)
}

// GET /api/categories/:id
func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	cat, err := h.Catalog.GetCategory(id)
	if err != nil {
		return fail(c, "catalog.category.get", err)
	}
	return respond(c, fiber.StatusOK, cat)
}

// POST /api/categories
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	f := parseForm(c)
	uploads, err := f.uploads(h.MaxBytes)
	if err != nil {
		return fail(c, "catalog.category.create", err)
	}
	cat, err := h.Catalog.CreateCategory(c.UserContext(), services.CategoryInput{Name: f.str("name"), Slug: f.str("slug")}, uploads)
	if err != nil {
		return fail(c, "catalog.category.create", err)
	}
	applog.Audit(c, "catalog.category.create", map[string]any{"id": cat.ID, "images": len(cat.Images)})
	return respond(c, fiber.StatusCreated, cat)
}

// PUT /api/categories/:id
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	f := parseForm(c)
	uploads, err := f.uploads(h.MaxBytes)
	if err != nil {
		return fail(c, "catalog.category.update", err)
	}
	cat, err := h.Catalog.UpdateCategory(c.UserContext(), id, services.CategoryInput{Name: f.str("name"), Slug: f.str("slug")}, uploads)
	if err != nil {
		return fail(c, "catalog.category.update", err)
	}
	applog.Audit(c, "catalog.category.update", map[string]any{"id": id, "replacedImages": len(uploads) > 0})
	return respond(c, fiber.StatusOK, cat)
}

// DELETE /api/categories/:id
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	if err := h.Catalog.DeleteCategory(id); err != nil {
		return fail(c, "catalog.category.delete", err)
	}
	applog.Audit(c, "catalog.category.delete", map[string]any{"id": id})
	return respond(c, fiber.StatusOK, fiber.Map{"id": id})
}
