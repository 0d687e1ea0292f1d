// Package metrics holds the Prometheus collectors of the catalog service.
// HTTP-level metrics are left to the access log; these track asset traffic.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AssetUploads counts Store calls per backend and result (ok, invalid, unavailable).
	AssetUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_asset_uploads_total",
			Help: "Image store attempts by backend and result",
		},
		[]string{"backend", "result"},
	)

	// AssetDeletes counts Delete calls per backend and result.
	AssetDeletes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_asset_deletes_total",
			Help: "Image delete attempts by backend and result",
		},
		[]string{"backend", "result"},
	)

	// MigrationRefs counts references seen by the image migration, by entity kind and outcome.
	MigrationRefs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_migration_refs_total",
			Help: "Image references processed by the migration batch",
		},
		[]string{"kind", "status"},
	)

	// MigrationEntities counts entities visited by the migration batch.
	MigrationEntities = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_migration_entities_total",
			Help: "Entities visited by the migration batch",
		},
		[]string{"kind", "result"},
	)
)
