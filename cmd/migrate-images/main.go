package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"diwholesale/internal/config"
	applog "diwholesale/internal/log"
	"diwholesale/internal/repos"
	"diwholesale/internal/services"
	"diwholesale/internal/storage"
)

var workers int

var rootCmd = &cobra.Command{
	Use:   "migrate-images",
	Short: "Move locally stored catalog images to the remote object store",
	Long: `Walks categories, then products, then sub-products and uploads every
image still stored under /uploads/ to the remote object store, replacing the
reference on the entity. Remote references are left alone, missing files and
failed uploads keep their original reference. Running it again is safe.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMigrate,
}

func init() {
	rootCmd.Flags().IntVar(&workers, "workers", 0, "entities migrated in parallel (default MIGRATE_WORKERS)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		applog.Error(nil, "migrate.abort", err, nil)
		os.Exit(1)
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.LogFile != "" {
		if f, err := applog.TeeFile(cfg.LogFile); err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
		}
	}
	if workers > 0 {
		cfg.Workers = workers
	}

	limits := storage.Limits{MaxBytes: cfg.Uploads.MaxBytes, AllowedTypes: cfg.Uploads.AllowedTypes}
	remote, err := storage.NewRemote(cfg.Remote, limits)
	if err != nil {
		return err
	}
	local, err := storage.OpenLocal(cfg.Uploads.Dir, cfg.Uploads.PublicPath, limits)
	if err != nil {
		return err
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := services.NewMigrator(repos.NewCategoryRepo(db), repos.NewProductRepo(db), repos.NewSubProductRepo(db), local, remote, cfg.Workers)
	rep, err := m.Run(ctx)
	for _, k := range rep.Kinds {
		applog.Info(nil, "migrate.summary", map[string]any{
			"kind":           k.Kind,
			"scanned":        k.Scanned,
			"updated":        k.Updated,
			"writeFailed":    k.WriteFailed,
			"migrated":       k.Migrated,
			"skippedRemote":  k.SkippedRemote,
			"skippedMissing": k.SkippedMissing,
			"failed":         k.Failed,
		})
	}
	return err
}
