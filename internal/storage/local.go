package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"diwholesale/internal/domain"
	"diwholesale/internal/metrics"
)

// Local keeps images in a flat upload directory served under a public path.
type Local struct {
	dir        string
	publicPath string
	limits     Limits
	now        func() time.Time
}

// NewLocal creates the upload directory if needed. publicPath is the prefix
// Resolve puts in front of stored names, e.g. "/uploads" or a CDN origin.
func NewLocal(dir, publicPath string, limits Limits) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", abs, err)
	}
	return OpenLocal(abs, publicPath, limits)
}

// OpenLocal resolves dir without creating or touching it, for callers that
// only read existing uploads. A missing directory is not an error: every read
// then reports ErrNotFound.
func OpenLocal(dir, publicPath string, limits Limits) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir %s: %w", dir, err)
	}
	if fi, err := os.Stat(abs); err == nil && !fi.IsDir() {
		return nil, fmt.Errorf("upload dir %s is not a directory", abs)
	}
	if publicPath == "" {
		publicPath = strings.TrimSuffix(domain.UploadPrefix, "/")
	}
	return &Local{dir: abs, publicPath: strings.TrimRight(publicPath, "/"), limits: limits, now: time.Now}, nil
}

func (l *Local) Name() string { return "local" }
func (l *Local) Dir() string  { return l.dir }

// Store writes u into the upload directory. folder is not used: the public
// layout is flat (/uploads/<name>).
func (l *Local) Store(ctx context.Context, u Upload, folder string) (domain.AssetRef, error) {
	if err := l.limits.Check(u); err != nil {
		metrics.AssetUploads.WithLabelValues(l.Name(), "invalid").Inc()
		return domain.AssetRef{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.AssetRef{}, err
	}
	name := GenerateName(l.now(), u.Name)
	full, err := l.within(name)
	if err != nil {
		metrics.AssetUploads.WithLabelValues(l.Name(), "invalid").Inc()
		return domain.AssetRef{}, err
	}
	if err := writeAtomic(full, u.Data); err != nil {
		metrics.AssetUploads.WithLabelValues(l.Name(), "unavailable").Inc()
		return domain.AssetRef{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	metrics.AssetUploads.WithLabelValues(l.Name(), "ok").Inc()
	return domain.LocalRef(name), nil
}

// Delete removes the file behind a local reference. Remote refs are ignored.
func (l *Local) Delete(ctx context.Context, ref domain.AssetRef) error {
	if !ref.IsLocal() {
		return nil
	}
	full, err := l.FilePath(ref)
	if err != nil {
		return nil
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			metrics.AssetDeletes.WithLabelValues(l.Name(), "not_found").Inc()
			return ErrNotFound
		}
		metrics.AssetDeletes.WithLabelValues(l.Name(), "error").Inc()
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	metrics.AssetDeletes.WithLabelValues(l.Name(), "ok").Inc()
	return nil
}

func (l *Local) Resolve(ref domain.AssetRef) string {
	if !ref.IsLocal() {
		return ref.String()
	}
	return l.publicPath + "/" + ref.Name()
}

// FilePath maps a local reference to its file: the base name of the stored
// path joined to the upload directory.
func (l *Local) FilePath(ref domain.AssetRef) (string, error) {
	if !ref.IsLocal() {
		return "", fmt.Errorf("%w: %s is not a local reference", ErrNotFound, ref)
	}
	return l.within(path.Base(ref.String()))
}

// ReadFile returns the bytes behind a local reference, or ErrNotFound.
func (l *Local) ReadFile(ref domain.AssetRef) ([]byte, string, error) {
	full, err := l.FilePath(ref)
	if err != nil {
		return nil, "", err
	}
	b, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, "", err
	}
	return b, filepath.Base(full), nil
}

// within joins name to the upload dir and rejects anything that would land
// outside of it.
func (l *Local) within(name string) (string, error) {
	if name == "" || name == "." || name == ".." || name == "/" || strings.ContainsAny(name, `/\`+"\x00") {
		return "", fmt.Errorf("%w: unsafe file name %q", ErrInvalidContent, name)
	}
	full := filepath.Join(l.dir, name)
	rel, err := filepath.Rel(l.dir, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: file name %q escapes upload dir", ErrInvalidContent, name)
	}
	return full, nil
}

// writeAtomic writes data to a temp file next to dst and renames it into place.
func writeAtomic(dst string, data []byte) error {
	tmp := dst + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("fsync: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
