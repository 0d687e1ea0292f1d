// Package storage persists catalog images. Two backends exist: Local writes into the
// upload directory served under /uploads, Remote hands files to the object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"diwholesale/internal/domain"
)

var (
	ErrInvalidContent     = errors.New("invalid content")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrNotFound           = errors.New("asset not found")
)

// Upload is one file handed to a backend. Backends never modify Data.
type Upload struct {
	Data        []byte
	ContentType string
	Name        string // suggested name; only its extension matters to Local
}

// Backend stores, deletes and resolves image references.
type Backend interface {
	Name() string
	// Store persists u under folder and returns the reference to save on the entity.
	Store(ctx context.Context, u Upload, folder string) (domain.AssetRef, error)
	// Delete removes the object behind ref. References the backend does not own
	// are ignored and yield nil.
	Delete(ctx context.Context, ref domain.AssetRef) error
	// Resolve returns a URL a client can fetch.
	Resolve(ref domain.AssetRef) string
}

// Limits is the allow-list applied before any store attempt.
type Limits struct {
	MaxBytes     int64
	AllowedTypes []string // image subtypes: jpeg, png, gif, webp
}

func DefaultLimits() Limits {
	return Limits{MaxBytes: 5 << 20, AllowedTypes: []string{"jpeg", "png", "gif", "webp"}}
}

// Check validates size, extension, declared type and sniffed type of u.
func (l Limits) Check(u Upload) error {
	if len(u.Data) == 0 {
		return fmt.Errorf("%w: empty file", ErrInvalidContent)
	}
	if l.MaxBytes > 0 && int64(len(u.Data)) > l.MaxBytes {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrInvalidContent, len(u.Data), l.MaxBytes)
	}
	ext := normalizeSubtype(strings.TrimPrefix(strings.ToLower(filepath.Ext(u.Name)), "."))
	if !l.allowed(ext) {
		return fmt.Errorf("%w: extension %q not allowed", ErrInvalidContent, ext)
	}
	sniffed := subtype(http.DetectContentType(u.Data))
	if !l.allowed(sniffed) {
		return fmt.Errorf("%w: content is not an allowed image", ErrInvalidContent)
	}
	if u.ContentType != "" && !l.allowed(subtype(u.ContentType)) {
		return fmt.Errorf("%w: content type %q not allowed", ErrInvalidContent, u.ContentType)
	}
	return nil
}

func (l Limits) allowed(sub string) bool {
	if sub == "" {
		return false
	}
	for _, t := range l.AllowedTypes {
		if normalizeSubtype(t) == sub {
			return true
		}
	}
	return false
}

// subtype turns "image/png; charset=..." into "png". Non-image types yield "".
func subtype(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if !strings.HasPrefix(ct, "image/") {
		return ""
	}
	return normalizeSubtype(strings.TrimPrefix(ct, "image/"))
}

func normalizeSubtype(s string) string {
	switch s {
	case "jpg", "pjpeg":
		return "jpeg"
	}
	return s
}
