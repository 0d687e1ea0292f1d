package handlers

import (
	"github.com/gofiber/fiber/v2"

	"diwholesale/internal/domain"
	applog "diwholesale/internal/log"
	"diwholesale/internal/repos"
	"diwholesale/internal/services"
	"diwholesale/internal/validate"
)

// PageHandler renders the HTML catalog overview.
type PageHandler struct {
	Catalog *services.CatalogService
	// Resolve turns a stored reference into a fetchable URL.
	Resolve func(domain.AssetRef) string
}

type card struct {
	ID     string
	Name   string
	Detail string
	Images []string
}

func (h *PageHandler) urls(images domain.Images) []string {
	out := make([]string, 0, len(images))
	for _, ref := range images {
		out = append(out, h.Resolve(ref))
	}
	return out
}

// GET /
func (h *PageHandler) Overview(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories(services.Page{Page: 1, Size: validate.MaxPageSize})
	if err != nil {
		applog.Error(c, "page.overview.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not load the catalog. Please retry.")
	}
	prods, err := h.Catalog.ListProducts(repos.ProductFilter{}, services.Page{Page: validate.Page(c.Query("page"))})
	if err != nil {
		applog.Error(c, "page.overview.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).SendString("Could not load the catalog. Please retry.")
	}

	catCards := make([]card, 0, len(cats.Items))
	for _, cat := range cats.Items {
		catCards = append(catCards, card{ID: cat.ID, Name: cat.Name, Detail: cat.Slug, Images: h.urls(cat.Images)})
	}
	prodCards := make([]card, 0, len(prods.Items))
	for _, p := range prods.Items {
		prodCards = append(prodCards, card{ID: p.ID, Name: p.Name, Detail: p.Material, Images: h.urls(p.Images)})
	}
	return render(c, "overview", fiber.Map{
		"Categories":    catCards,
		"Products":      prodCards,
		"ProductTotal":  prods.Total,
		"Page":          prods.Page,
		"HasNext":       prods.Page*prods.PageSize < prods.Total,
		"NextPage":      prods.Page + 1,
		"CategoryTotal": cats.Total,
	})
}
