package main

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"diwholesale/internal/config"
	"diwholesale/internal/http/handlers"
	applog "diwholesale/internal/log"
	"diwholesale/internal/repos"
	"diwholesale/internal/storage"
	"diwholesale/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// Optional file logging
	if cfg.LogFile != "" {
		if f, err := applog.TeeFile(cfg.LogFile); err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	// Storage wiring
	limits := storage.Limits{MaxBytes: cfg.Uploads.MaxBytes, AllowedTypes: cfg.Uploads.AllowedTypes}
	local, err := storage.NewLocal(cfg.Uploads.Dir, cfg.Uploads.PublicPath, limits)
	if err != nil {
		log.Fatal(err)
	}
	var store storage.Backend = local
	if cfg.Storage == "remote" {
		remote, err := storage.NewRemote(cfg.Remote, limits)
		if err != nil {
			log.Fatal(err)
		}
		store = remote
	}
	log.Printf("[storage] backend=%s uploads -> %s", store.Name(), local.Dir())
	if cfg.AdminKey == "" {
		log.Printf("[warn] ADMIN_KEY_HASH is not set; catalog writes are disabled")
	}

	engine := html.NewFileSystem(web.Templates(), ".html")

	app := fiber.New(fiber.Config{
		Views: engine,
		// Room for a full gallery upload plus form fields
		BodyLimit: handlers.MaxImagesPerRequest*int(cfg.Uploads.MaxBytes) + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok && fe.Code < 500 {
				code = fe.Code
				return c.Status(code).JSON(fiber.Map{"error": fe.Message})
			}
			// Avoid leaking internals
			applog.Error(c, "server.error", err, nil)
			return c.Status(code).JSON(fiber.Map{"error": "Something went wrong. Please try again."})
		},
	})

	// ---------- Middlewares ----------
	app.Use(applog.Timer())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/uploads/") || p == "/healthz" || p == "/metrics"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.limit.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg, store, local)
	handlers.Register(app, deps, handlers.RequireAdmin(cfg.AdminKey))

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
