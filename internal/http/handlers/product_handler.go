package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "diwholesale/internal/log"
	"diwholesale/internal/repos"
	"diwholesale/internal/services"
	"diwholesale/internal/validate"
)

type ProductHandler struct {
	Catalog  *services.CatalogService
	MaxBytes int64
}

// GET /api/products?categoryId=&q=&page=&pageSize=
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var f repos.ProductFilter
	if raw := strings.TrimSpace(c.Query("categoryId")); raw != "" {
		id, ok := validate.ID(raw)
		if !ok {
			return badRequest(c, "categoryId")
		}
		f.CategoryID = id
	}
	q, ok := validate.Q(c.Query("q"))
	if !ok {
		return badRequest(c, "q")
	}
	f.Q = q

	page, err := h.Catalog.ListProducts(f, services.Page{
		Page: validate.Page(c.Query("page")),
		Size: validate.PageSize(c.Query("pageSize")),
	})
	if err != nil {
		return fail(c, "catalog.product.list", err)
	}
	return respond(c, fiber.StatusOK, page)
}

// GET /api/products/:id
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	p, err := h.Catalog.GetProduct(id)
	if err != nil {
		return fail(c, "catalog.product.get", err)
	}
	return respond(c, fiber.StatusOK, p)
}

// POST /api/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	f := parseForm(c)
	in, err := f.product()
	if err != nil {
		return fail(c, "catalog.product.create", err)
	}
	uploads, err := f.uploads(h.MaxBytes)
	if err != nil {
		return fail(c, "catalog.product.create", err)
	}
	p, err := h.Catalog.CreateProduct(c.UserContext(), in, uploads)
	if err != nil {
		return fail(c, "catalog.product.create", err)
	}
	applog.Audit(c, "catalog.product.create", map[string]any{"id": p.ID, "categoryId": p.CategoryID, "images": len(p.Images)})
	return respond(c, fiber.StatusCreated, p)
}

// PUT /api/products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	f := parseForm(c)
	in, err := f.product()
	if err != nil {
		return fail(c, "catalog.product.update", err)
	}
	uploads, err := f.uploads(h.MaxBytes)
	if err != nil {
		return fail(c, "catalog.product.update", err)
	}
	p, err := h.Catalog.UpdateProduct(c.UserContext(), id, in, uploads)
	if err != nil {
		return fail(c, "catalog.product.update", err)
	}
	applog.Audit(c, "catalog.product.update", map[string]any{"id": id, "replacedImages": len(uploads) > 0})
	return respond(c, fiber.StatusOK, p)
}

// DELETE /api/products/:id
// Sub-products of the product are removed with it.
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	if err := h.Catalog.DeleteProduct(id); err != nil {
		return fail(c, "catalog.product.delete", err)
	}
	applog.Audit(c, "catalog.product.delete", map[string]any{"id": id})
	return respond(c, fiber.StatusOK, fiber.Map{"id": id})
}
