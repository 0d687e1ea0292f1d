package domain_test

import (
	"encoding/json"
	"testing"

	"diwholesale/internal/domain"
)

func TestParseRef(t *testing.T) {
	cases := []struct {
		in    string
		kind  domain.RefKind
		local bool
		name  string
	}{
		{"/uploads/a.png", domain.RefLocal, true, "a.png"},
		{"  /uploads/b.webp ", domain.RefLocal, true, "b.webp"},
		{"https://res.cloudinary.com/demo/image/upload/v1/x.png", domain.RefRemote, false, ""},
		{"uploads/a.png", domain.RefRemote, false, ""},
		{"/static/a.png", domain.RefRemote, false, ""},
	}
	for _, tc := range cases {
		r := domain.ParseRef(tc.in)
		if r.Kind() != tc.kind || r.IsLocal() != tc.local || r.Name() != tc.name {
			t.Fatalf("ParseRef(%q) = kind %s local %v name %q", tc.in, r.Kind(), r.IsLocal(), r.Name())
		}
	}
	if !domain.ParseRef("   ").IsZero() {
		t.Fatal("blank input should give the zero ref")
	}
	if got := domain.LocalRef("c.gif").String(); got != "/uploads/c.gif" {
		t.Fatalf("LocalRef: %s", got)
	}
}

func TestImagesJSONAndSQL(t *testing.T) {
	var nilImages domain.Images
	b, err := json.Marshal(struct {
		Images domain.Images `json:"images"`
	}{nilImages})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"images":[]}` {
		t.Fatalf("nil list should encode as []: %s", b)
	}

	var im domain.Images
	if err := im.Scan(`["/uploads/a.png","","https://x.example/b.png"]`); err != nil {
		t.Fatal(err)
	}
	if len(im) != 2 || !im[0].IsLocal() || im[1].IsLocal() || !im.HasLocal() {
		t.Fatalf("unexpected scan result: %v", im)
	}
	v, err := im.Value()
	if err != nil {
		t.Fatal(err)
	}
	if v != `["/uploads/a.png","https://x.example/b.png"]` {
		t.Fatalf("unexpected stored value: %v", v)
	}

	var back domain.Images
	if err := back.Scan([]byte(v.(string))); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(im) || back.Equal(im[:1]) {
		t.Fatalf("round trip mismatch: %v vs %v", back, im)
	}

	for _, src := range []any{nil, "", []byte("[]")} {
		var empty domain.Images
		if err := empty.Scan(src); err != nil || empty == nil || len(empty) != 0 {
			t.Fatalf("Scan(%v) = %v, %v", src, empty, err)
		}
	}
	if err := new(domain.Images).Scan(42); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}

func TestAssetRefJSONKeepsKind(t *testing.T) {
	var refs []domain.AssetRef
	if err := json.Unmarshal([]byte(`["/uploads/a.png","https://cdn.example/b.png"]`), &refs); err != nil {
		t.Fatal(err)
	}
	if !refs[0].IsLocal() || refs[1].IsLocal() {
		t.Fatalf("kinds lost: %+v", refs)
	}
	var legacy domain.AssetRef
	if err := legacy.Scan(nil); err != nil || !legacy.IsZero() {
		t.Fatalf("NULL legacy column: %v %v", legacy, err)
	}
	if v, _ := legacy.Value(); v != nil {
		t.Fatalf("zero ref should store NULL, got %v", v)
	}
}
