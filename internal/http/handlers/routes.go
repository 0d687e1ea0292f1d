package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Register mounts the catalog API, the upload directory, the overview page,
// health and metrics on app. admin guards every catalog write.
func Register(app *fiber.App, d *Deps, admin fiber.Handler) {
	api := app.Group("/api")

	api.Get("/categories", d.CategoryHandler.List)
	api.Get("/categories/:id", d.CategoryHandler.Get)
	api.Post("/categories", admin, d.CategoryHandler.Create)
	api.Put("/categories/:id", admin, d.CategoryHandler.Update)
	api.Delete("/categories/:id", admin, d.CategoryHandler.Delete)

	api.Get("/products", d.ProductHandler.List)
	api.Get("/products/:id", d.ProductHandler.Get)
	api.Post("/products", admin, d.ProductHandler.Create)
	api.Put("/products/:id", admin, d.ProductHandler.Update)
	api.Delete("/products/:id", admin, d.ProductHandler.Delete)

	api.Get("/products/:id/sub-products", d.SubProductHandler.List)
	api.Post("/products/:id/sub-products", admin, d.SubProductHandler.Create)
	api.Delete("/products/:id/sub-products/:subId", admin, d.SubProductHandler.Delete)
	api.Get("/sub-products/:id", d.SubProductHandler.Get)
	api.Put("/sub-products/:id", admin, d.SubProductHandler.Update)

	app.Get("/uploads/*", d.MediaHandler.Serve)
	app.Get("/", d.PageHandler.Overview)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
