package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Images is the ordered image list of an entity; order is display order.
// It is persisted as a JSON array of strings in the images_json column.
type Images []AssetRef

func (im *Images) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*im = Images{}
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("images: unsupported type %T", src)
	}
	if len(b) == 0 {
		*im = Images{}
		return nil
	}
	var raw []string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("images: %w", err)
	}
	out := make(Images, 0, len(raw))
	for _, s := range raw {
		if ref := ParseRef(s); !ref.IsZero() {
			out = append(out, ref)
		}
	}
	*im = out
	return nil
}

func (im Images) Value() (driver.Value, error) {
	raw := make([]string, 0, len(im))
	for _, r := range im {
		raw = append(raw, r.String())
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// MarshalJSON keeps an empty list as [] rather than null.
func (im Images) MarshalJSON() ([]byte, error) {
	if im == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]AssetRef(im))
}

// Equal reports whether both lists hold the same references in the same order.
func (im Images) Equal(other Images) bool {
	if len(im) != len(other) {
		return false
	}
	for i := range im {
		if im[i] != other[i] {
			return false
		}
	}
	return true
}

// HasLocal reports whether any reference still points at the local upload dir.
func (im Images) HasLocal() bool {
	for _, r := range im {
		if r.IsLocal() {
			return true
		}
	}
	return false
}
