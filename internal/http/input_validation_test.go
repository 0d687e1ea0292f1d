package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// Reject malformed inputs early
func TestValidationBadInputs(t *testing.T) {
	ta := newCatalogApp(t, nil)
	form := "application/x-www-form-urlencoded"

	// search with invalid chars
	resp, err := ta.app.Test(httptest.NewRequest("GET", "/api/products?q=%3Cscript%3E", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad search expected 400, got %d", resp.StatusCode)
	}

	// bad category id filter
	resp, err = ta.app.Test(httptest.NewRequest("GET", "/api/products?categoryId=a%20b", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad categoryId expected 400, got %d", resp.StatusCode)
	}

	bad := map[string]string{
		"missing name":     "categoryId=c1",
		"missing category": "name=Mug",
		"negative price":   "name=Mug&categoryId=c1&price=-1",
		"junk quantity":    "name=Mug&categoryId=c1&minimumQuantity=lots",
	}
	for name, body := range bad {
		resp := send(t, ta.app, "POST", "/api/products", strings.NewReader(body), form, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, resp.StatusCode)
		}
	}

	// more than ten images
	files := make([]filePart, 11)
	for i := range files {
		files[i] = filePart{name: "a.png", ctype: "image/png", data: pngBytes}
	}
	body, ctype := multipartBody(t, map[string]string{"name": "Cups"}, files...)
	if resp := send(t, ta.app, "POST", "/api/categories", body, ctype, nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("11 images expected 400, got %d", resp.StatusCode)
	}

	// content that only pretends to be an image
	body, ctype = multipartBody(t, map[string]string{"name": "Cups"},
		filePart{name: "fake.png", ctype: "image/png", data: []byte("<?php echo 1; ?>")})
	if resp := send(t, ta.app, "POST", "/api/categories", body, ctype, nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("spoofed image expected 400, got %d", resp.StatusCode)
	}
}

// Templates auto-escape untrusted text
func TestTemplateAutoEscape(t *testing.T) {
	ta := newCatalogApp(t, nil)
	_, _ = ta.db.Exec(`
		INSERT INTO products(id,category_id,name,material,images_json)
		VALUES('xss-1','c1','<script>alert(1)</script>','<b>paper</b>','[]')
	`)

	resp, err := ta.app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	s := string(body)
	if strings.Contains(s, "<script>alert(1)</script>") {
		t.Fatalf("found unescaped script tag in output")
	}
	if !strings.Contains(s, "&lt;script&gt;alert(1)&lt;/script&gt;") {
		t.Fatalf("escaped script not found; output=%s", s)
	}
}
