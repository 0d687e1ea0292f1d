package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "diwholesale/internal/log"
	"diwholesale/internal/services"
	"diwholesale/internal/validate"
)

type SubProductHandler struct {
	Catalog  *services.CatalogService
	MaxBytes int64
}

// GET /api/products/:id/sub-products
func (h *SubProductHandler) List(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	page, err := h.Catalog.ListSubProducts(productID, services.Page{
		Page: validate.Page(c.Query("page")),
		Size: validate.PageSize(c.Query("pageSize")),
	})
	if err != nil {
		return fail(c, "catalog.subproduct.list", err)
	}
	return respond(c, fiber.StatusOK, page)
}

// GET /api/sub-products/:id
func (h *SubProductHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	sp, err := h.Catalog.GetSubProduct(id)
	if err != nil {
		return fail(c, "catalog.subproduct.get", err)
	}
	return respond(c, fiber.StatusOK, sp)
}

// POST /api/products/:id/sub-products
func (h *SubProductHandler) Create(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	f := parseForm(c)
	in, err := f.subProduct()
	if err != nil {
		return fail(c, "catalog.subproduct.create", err)
	}
	uploads, err := f.uploads(h.MaxBytes)
	if err != nil {
		return fail(c, "catalog.subproduct.create", err)
	}
	sp, err := h.Catalog.CreateSubProduct(c.UserContext(), productID, in, uploads)
	if err != nil {
		return fail(c, "catalog.subproduct.create", err)
	}
	applog.Audit(c, "catalog.subproduct.create", map[string]any{"id": sp.ID, "productId": productID, "images": len(sp.Images)})
	return respond(c, fiber.StatusCreated, sp)
}

// PUT /api/sub-products/:id
func (h *SubProductHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	f := parseForm(c)
	in, err := f.subProduct()
	if err != nil {
		return fail(c, "catalog.subproduct.update", err)
	}
	uploads, err := f.uploads(h.MaxBytes)
	if err != nil {
		return fail(c, "catalog.subproduct.update", err)
	}
	sp, err := h.Catalog.UpdateSubProduct(c.UserContext(), id, in, uploads)
	if err != nil {
		return fail(c, "catalog.subproduct.update", err)
	}
	applog.Audit(c, "catalog.subproduct.update", map[string]any{"id": id, "replacedImages": len(uploads) > 0})
	return respond(c, fiber.StatusOK, sp)
}

// DELETE /api/products/:id/sub-products/:subId
func (h *SubProductHandler) Delete(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	id, ok := validate.ID(c.Params("subId"))
	if !ok {
		return badRequest(c, "subId")
	}
	if err := h.Catalog.DeleteSubProduct(productID, id); err != nil {
		return fail(c, "catalog.subproduct.delete", err)
	}
	applog.Audit(c, "catalog.subproduct.delete", map[string]any{"id": id, "productId": productID})
	return respond(c, fiber.StatusOK, fiber.Map{"id": id})
}
