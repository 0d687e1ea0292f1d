package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"

	"golang.org/x/sync/errgroup"

	"diwholesale/internal/domain"
	applog "diwholesale/internal/log"
	"diwholesale/internal/metrics"
	"diwholesale/internal/repos"
	"diwholesale/internal/storage"
)

// Status is the result of migrating one image reference.
type Status string

const (
	StatusMigrated       Status = "migrated"
	StatusSkippedRemote  Status = "skipped_remote"
	StatusSkippedMissing Status = "skipped_missing"
	StatusFailed         Status = "failed"
)

// Outcome records what happened to the reference at Index.
type Outcome struct {
	Index  int
	Source domain.AssetRef
	Result domain.AssetRef
	Status Status
	Err    error
}

// LocalFiles reads the bytes behind a local reference. *storage.Local
// implements it; a missing file must be reported as storage.ErrNotFound.
type LocalFiles interface {
	ReadFile(ref domain.AssetRef) ([]byte, string, error)
}

// MigrateImages moves every local reference in images to remote and returns
// the new list with one entry per input position. Remote references are kept
// untouched and never sent to the backend. A local reference whose file is
// missing, or whose upload fails, is kept as it was.
func MigrateImages(ctx context.Context, images domain.Images, folder string, files LocalFiles, remote storage.Backend) (domain.Images, []Outcome) {
	out := make(domain.Images, len(images))
	outcomes := make([]Outcome, len(images))
	for i, ref := range images {
		o := Outcome{Index: i, Source: ref, Result: ref}
		if ref.IsLocal() {
			o.Result, o.Status, o.Err = migrateOne(ctx, ref, folder, files, remote)
		} else {
			o.Status = StatusSkippedRemote
		}
		out[i] = o.Result
		outcomes[i] = o
	}
	return out, outcomes
}

func migrateOne(ctx context.Context, ref domain.AssetRef, folder string, files LocalFiles, remote storage.Backend) (domain.AssetRef, Status, error) {
	data, name, err := files.ReadFile(ref)
	if errors.Is(err, storage.ErrNotFound) {
		return ref, StatusSkippedMissing, err
	}
	if err != nil {
		return ref, StatusFailed, fmt.Errorf("read %s: %w", ref, err)
	}
	if name == "" {
		name = path.Base(ref.String())
	}
	// The local base name keeps the remote object id stable across reruns.
	next, err := remote.Store(ctx, storage.Upload{Data: data, Name: name}, folder)
	if err != nil {
		return ref, StatusFailed, err
	}
	return next, StatusMigrated, nil
}

// ImageCollection is one catalog table as seen by the migration.
type ImageCollection interface {
	ImageRows(ctx context.Context) ([]domain.ImageRow, error)
	SetImages(ctx context.Context, id string, images domain.Images) error
}

type namedCollection struct {
	kind domain.EntityKind
	coll ImageCollection
}

// KindReport holds the counters of one collection.
type KindReport struct {
	Kind           domain.EntityKind `json:"kind"`
	Scanned        int               `json:"scanned"`
	Updated        int               `json:"updated"`
	WriteFailed    int               `json:"writeFailed"`
	Migrated       int               `json:"migrated"`
	SkippedRemote  int               `json:"skippedRemote"`
	SkippedMissing int               `json:"skippedMissing"`
	Failed         int               `json:"failed"`
}

type Report struct {
	Kinds []KindReport `json:"kinds"`
}

// Failures is the number of references and entity writes that did not go through.
func (r Report) Failures() int {
	n := 0
	for _, k := range r.Kinds {
		n += k.Failed + k.WriteFailed
	}
	return n
}

// Migrator runs the one-shot move of local images to the remote backend.
type Migrator struct {
	collections []namedCollection
	files       LocalFiles
	remote      storage.Backend
	workers     int
}

// NewMigrator walks categories, then products, then sub-products. workers
// bounds how many entities of one collection are migrated at once.
func NewMigrator(cats *repos.CategoryRepo, prods *repos.ProductRepo, subs *repos.SubProductRepo, files LocalFiles, remote storage.Backend, workers int) *Migrator {
	m := &Migrator{files: files, remote: remote, workers: max(workers, 1)}
	m.add(domain.KindCategory, cats)
	m.add(domain.KindProduct, prods)
	m.add(domain.KindSubProduct, subs)
	return m
}

func (m *Migrator) add(kind domain.EntityKind, c ImageCollection) {
	m.collections = append(m.collections, namedCollection{kind: kind, coll: c})
}

// Run migrates every collection in order. Per-item and per-entity failures are
// logged and counted; only a failure to list a collection or a cancelled
// context stops the run.
func (m *Migrator) Run(ctx context.Context) (Report, error) {
	var rep Report
	for _, nc := range m.collections {
		kr, err := m.runCollection(ctx, nc)
		rep.Kinds = append(rep.Kinds, kr)
		if err != nil {
			return rep, err
		}
	}
	applog.Info(nil, "migrate.done", map[string]any{"report": rep.Kinds, "failures": rep.Failures()})
	return rep, nil
}

func (m *Migrator) runCollection(ctx context.Context, nc namedCollection) (KindReport, error) {
	kr := KindReport{Kind: nc.kind}
	rows, err := nc.coll.ImageRows(ctx)
	if err != nil {
		applog.Error(nil, "migrate.list.fail", err, map[string]any{"kind": nc.kind})
		return kr, fmt.Errorf("list %s: %w", nc.kind, err)
	}
	pending := 0
	for _, row := range rows {
		if row.Images.HasLocal() {
			pending++
		}
	}
	applog.Info(nil, "migrate.collection", map[string]any{"kind": nc.kind, "entities": len(rows), "withLocal": pending})

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for _, row := range rows {
		if gctx.Err() != nil {
			break
		}
		row := row
		g.Go(func() error {
			res := m.migrateEntity(gctx, nc, row)
			mu.Lock()
			kr.add(res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return kr, ctx.Err()
}

type entityResult struct {
	outcomes    []Outcome
	changed     bool
	writeFailed bool
}

func (m *Migrator) migrateEntity(ctx context.Context, nc namedCollection, row domain.ImageRow) entityResult {
	next, outcomes := MigrateImages(ctx, row.Images, string(nc.kind), m.files, m.remote)
	for _, o := range outcomes {
		logOutcome(nc.kind, row.ID, o)
	}
	res := entityResult{outcomes: outcomes}
	if next.Equal(row.Images) {
		metrics.MigrationEntities.WithLabelValues(string(nc.kind), "unchanged").Inc()
		return res
	}
	res.changed = true
	if err := nc.coll.SetImages(ctx, row.ID, next); err != nil {
		res.writeFailed = true
		metrics.MigrationEntities.WithLabelValues(string(nc.kind), "write_failed").Inc()
		applog.Error(nil, "migrate.write.fail", err, map[string]any{"kind": nc.kind, "id": row.ID})
		return res
	}
	metrics.MigrationEntities.WithLabelValues(string(nc.kind), "updated").Inc()
	applog.Audit(nil, "migrate.entity.updated", map[string]any{"kind": nc.kind, "id": row.ID, "images": len(next)})
	return res
}

func (kr *KindReport) add(res entityResult) {
	kr.Scanned++
	switch {
	case res.writeFailed:
		kr.WriteFailed++
	case res.changed:
		kr.Updated++
	}
	for _, o := range res.outcomes {
		switch o.Status {
		case StatusMigrated:
			kr.Migrated++
		case StatusSkippedRemote:
			kr.SkippedRemote++
		case StatusSkippedMissing:
			kr.SkippedMissing++
		case StatusFailed:
			kr.Failed++
		}
	}
}

func logOutcome(kind domain.EntityKind, id string, o Outcome) {
	metrics.MigrationRefs.WithLabelValues(string(kind), string(o.Status)).Inc()
	fields := map[string]any{
		"kind":   kind,
		"id":     id,
		"index":  o.Index,
		"source": o.Source.String(),
		"result": o.Result.String(),
		"status": o.Status,
	}
	switch o.Status {
	case StatusFailed:
		applog.Error(nil, "migrate.item", o.Err, fields)
	case StatusSkippedMissing:
		applog.Warn(nil, "migrate.item", fields)
	default:
		applog.Info(nil, "migrate.item", fields)
	}
}
