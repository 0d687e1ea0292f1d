package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxExtLen = 10

// SafeExt returns the lowercase extension of name (with the dot) keeping only
// [a-z0-9.] and at most ten characters.
func SafeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	var b strings.Builder
	for _, r := range ext {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > maxExtLen {
		out = out[:maxExtLen]
	}
	if out == "." {
		return ""
	}
	return out
}

// GenerateName builds a collision resistant file name: <unix-millis>-<9 random chars><ext>.
func GenerateName(now time.Time, original string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), suffix, SafeExt(original))
}

// SafeStem lowercases the base name of name without its extension and keeps
// [a-z0-9_-], capped at 64 characters. Used for remote object ids.
func SafeStem(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > 64 {
		out = out[:64]
	}
	return out
}

// ObjectStem is the last segment of a remote object id for name: the safe stem
// plus a name-based hash of the exact base name. Equal base names give the
// same segment; different ones never share it (a.png / a.jpg, "My Photo.png" /
// my.photo.png). Returns "" when name has no usable base.
func ObjectStem(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	sum := strings.ReplaceAll(uuid.NewSHA1(uuid.NameSpaceURL, []byte(base)).String(), "-", "")[:12]
	if stem := SafeStem(base); stem != "" {
		return stem + "-" + sum
	}
	return sum
}
