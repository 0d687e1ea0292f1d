package log

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	oldW, oldFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	})
	return &buf
}

func TestTimerFillsLatency(t *testing.T) {
	buf := captureLog(t)

	app := fiber.New()
	app.Use(Timer())
	app.Get("/slow", func(c *fiber.Ctx) error {
		time.Sleep(15 * time.Millisecond)
		Audit(c, "slow.done", nil)
		return c.SendStatus(fiber.StatusNoContent)
	})
	if _, err := app.Test(httptest.NewRequest("GET", "/slow", nil), -1); err != nil {
		t.Fatal(err)
	}

	var e entry
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &e); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if e.Action != "slow.done" || e.Level != "audit" || e.Path != "/slow" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.LatencyMs < 15 {
		t.Fatalf("expected latency_ms >= 15, got %d", e.LatencyMs)
	}
}

func TestBatchEntriesHaveNoRequestFields(t *testing.T) {
	buf := captureLog(t)

	Warn(nil, "migrate.item", map[string]any{"status": "skipped_missing"})

	var e entry
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &e); err != nil {
		t.Fatal(err)
	}
	if e.Level != "warn" || e.ReqID != "" || e.LatencyMs != 0 || e.Fields["status"] != "skipped_missing" {
		t.Fatalf("unexpected entry: %+v", e)
	}
}
