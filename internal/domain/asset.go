package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// UploadPrefix is the public path under which local uploads are served.
const UploadPrefix = "/uploads/"

// RefKind tells which backend owns an AssetRef.
type RefKind string

const (
	RefLocal  RefKind = "local"
	RefRemote RefKind = "remote"
)

// AssetRef identifies one image attached to a catalog entity.
// Local refs carry a root-relative path (/uploads/<name>); remote refs carry the
// absolute URL handed back by the object store, or any external URL.
type AssetRef struct {
	kind RefKind
	raw  string
}

func LocalRef(name string) AssetRef {
	return AssetRef{kind: RefLocal, raw: UploadPrefix + name}
}

func RemoteRef(url string) AssetRef {
	return AssetRef{kind: RefRemote, raw: url}
}

// ParseRef classifies a stored string. It is the only place the prefix test runs;
// everything downstream switches on Kind().
func ParseRef(s string) AssetRef {
	s = strings.TrimSpace(s)
	if s == "" {
		return AssetRef{}
	}
	if strings.HasPrefix(s, UploadPrefix) {
		return AssetRef{kind: RefLocal, raw: s}
	}
	return AssetRef{kind: RefRemote, raw: s}
}

func (r AssetRef) Kind() RefKind  { return r.kind }
func (r AssetRef) IsZero() bool   { return r.raw == "" }
func (r AssetRef) IsLocal() bool  { return r.kind == RefLocal }
func (r AssetRef) String() string { return r.raw }

// Name returns the stored file name of a local ref (the path without the upload prefix).
func (r AssetRef) Name() string {
	if !r.IsLocal() {
		return ""
	}
	return strings.TrimPrefix(r.raw, UploadPrefix)
}

func (r AssetRef) MarshalJSON() ([]byte, error) { return json.Marshal(r.raw) }

func (r *AssetRef) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*r = ParseRef(s)
	return nil
}

// Scan reads the nullable legacy single-image column.
func (r *AssetRef) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = AssetRef{}
	case string:
		*r = ParseRef(v)
	case []byte:
		*r = ParseRef(string(v))
	default:
		return fmt.Errorf("asset ref: unsupported type %T", src)
	}
	return nil
}

func (r AssetRef) Value() (driver.Value, error) {
	if r.IsZero() {
		return nil, nil
	}
	return r.raw, nil
}
