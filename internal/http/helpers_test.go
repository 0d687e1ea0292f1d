package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"diwholesale/internal/config"
	"diwholesale/internal/domain"
	"diwholesale/internal/http/handlers"
	applog "diwholesale/internal/log"
	"diwholesale/internal/repos"
	"diwholesale/internal/storage"
	"diwholesale/web"
)

const adminKey = "s3cret-admin"

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)

type accessLogEntry struct {
	Level  string                 `json:"level"`
	Action string                 `json:"action"`
	ReqID  string                 `json:"req_id"`
	Fields map[string]interface{} `json:"fields"`
}

type lockedBuf struct {
	b  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureAccessLogs(t *testing.T, fn func()) []accessLogEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedBuf{b: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []accessLogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e accessLogEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func hasAction(entries []accessLogEntry, action string) bool {
	for _, e := range entries {
		if e.Action == action {
			return true
		}
	}
	return false
}

// failingStore refuses every upload as if the object store were down.
type failingStore struct{}

func (failingStore) Name() string { return "down" }
func (failingStore) Store(context.Context, storage.Upload, string) (domain.AssetRef, error) {
	return domain.AssetRef{}, fmt.Errorf("%w: connection refused", storage.ErrStorageUnavailable)
}
func (failingStore) Delete(context.Context, domain.AssetRef) error { return nil }
func (failingStore) Resolve(ref domain.AssetRef) string           { return ref.String() }

type testApp struct {
	app   *fiber.App
	db    *sqlx.DB
	local *storage.Local
}

// newCatalogApp builds the catalog routes over an in-memory store and a temp
// upload dir. store overrides the upload backend when non-nil.
func newCatalogApp(t *testing.T, store storage.Backend) testApp {
	t.Helper()
	cfg := config.Config{DBDSN: ":memory:", Uploads: config.UploadConfig{Dir: t.TempDir(), PublicPath: "/uploads"}}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	local, err := storage.NewLocal(cfg.Uploads.Dir, cfg.Uploads.PublicPath, storage.DefaultLimits())
	if err != nil {
		t.Fatalf("upload dir: %v", err)
	}
	if store == nil {
		store = local
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminKey), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	engine := html.NewFileSystem(web.Templates(), ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Use(applog.Timer())
	app.Use(requestid.New())

	deps := handlers.NewDeps(db, cfg, store, local)
	handlers.Register(app, deps, handlers.RequireAdmin(string(hash)))
	return testApp{app: app, db: db, local: local}
}

type filePart struct {
	name  string
	ctype string
	data  []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...filePart) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, f.name))
		h.Set("Content-Type", f.ctype)
		p, err := w.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := p.Write(f.data); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

// send issues a request with the admin key and decodes the JSON envelope into out.
func send(t *testing.T, app *fiber.App, method, target string, body io.Reader, ctype string, out any) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if ctype != "" {
		req.Header.Set("Content-Type", ctype)
	}
	req.Header.Set(handlers.AdminKeyHeader, adminKey)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	if out != nil {
		b, _ := io.ReadAll(resp.Body)
		env := struct {
			Data json.RawMessage `json:"data"`
		}{}
		if err := json.Unmarshal(b, &env); err != nil {
			t.Fatalf("%s %s: decode %s: %v", method, target, b, err)
		}
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, out); err != nil {
				t.Fatalf("%s %s: decode data %s: %v", method, target, env.Data, err)
			}
		}
	}
	return resp
}

// apiCategory mirrors the category JSON with plain strings for images.
type apiCategory struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Slug   string   `json:"slug"`
	Images []string `json:"images"`
}

type apiProduct struct {
	ID         string   `json:"id"`
	CategoryID string   `json:"categoryId"`
	Name       string   `json:"name"`
	Price      float64  `json:"price"`
	Images     []string `json:"images"`
}

type apiPage[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}
