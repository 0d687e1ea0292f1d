package services

import "diwholesale/internal/domain"

// NormalizeCategory folds the pre-gallery single image into Images for reads.
// An empty gallery takes the legacy image; a non-empty gallery wins and the
// legacy image is dropped. The stored row is never rewritten.
func NormalizeCategory(c domain.Category) domain.Category {
	legacy := c.LegacyImage
	c.LegacyImage = nil
	if len(c.Images) > 0 {
		return c
	}
	if legacy != nil && !legacy.IsZero() {
		c.Images = domain.Images{*legacy}
	} else if c.Images == nil {
		c.Images = domain.Images{}
	}
	return c
}

func normalizeCategories(in []domain.Category) []domain.Category {
	out := make([]domain.Category, 0, len(in))
	for _, c := range in {
		out = append(out, NormalizeCategory(c))
	}
	return out
}
