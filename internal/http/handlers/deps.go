package handlers

import (
	"github.com/jmoiron/sqlx"

	"diwholesale/internal/config"
	"diwholesale/internal/repos"
	"diwholesale/internal/services"
	"diwholesale/internal/storage"
)

type Deps struct {
	CategoryHandler   *CategoryHandler
	ProductHandler    *ProductHandler
	SubProductHandler *SubProductHandler
	MediaHandler      *MediaHandler
	PageHandler       *PageHandler
}

// NewDeps wires the handlers over db. store receives interactive uploads;
// local serves /uploads and resolves references for the overview page.
func NewDeps(db *sqlx.DB, cfg config.Config, store storage.Backend, local *storage.Local) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	subRepo := repos.NewSubProductRepo(db)

	limits := storage.DefaultLimits()
	if cfg.Uploads.MaxBytes > 0 {
		limits.MaxBytes = cfg.Uploads.MaxBytes
	}
	if len(cfg.Uploads.AllowedTypes) > 0 {
		limits.AllowedTypes = cfg.Uploads.AllowedTypes
	}
	catalogSvc := services.NewCatalogService(catRepo, prodRepo, subRepo, store, limits)

	return &Deps{
		CategoryHandler:   &CategoryHandler{Catalog: catalogSvc, MaxBytes: limits.MaxBytes},
		ProductHandler:    &ProductHandler{Catalog: catalogSvc, MaxBytes: limits.MaxBytes},
		SubProductHandler: &SubProductHandler{Catalog: catalogSvc, MaxBytes: limits.MaxBytes},
		MediaHandler:      &MediaHandler{Dir: local.Dir()},
		PageHandler:       &PageHandler{Catalog: catalogSvc, Resolve: local.Resolve},
	}
}
