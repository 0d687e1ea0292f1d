package repos

import (
	"github.com/jmoiron/sqlx"

	"diwholesale/internal/domain"
)

type CategoryRepo struct{ imageTable }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo {
	return &CategoryRepo{imageTable{db: db, table: "categories"}}
}

const categoryCols = `
    id, name, slug, NULLIF(image,'') AS image, images_json,
    COALESCE(created_at,'') AS created_at, COALESCE(updated_at,'') AS updated_at`

func (r *CategoryRepo) Create(c domain.Category) error {
	_, err := r.db.Exec(`
	  INSERT INTO categories(id, name, slug, images_json, created_at)
	  VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, c.ID, c.Name, c.Slug, c.Images)
	return uniqueViolation(err, "slug "+c.Slug)
}

// Get returns the stored row as is; legacy normalization is the caller's job.
func (r *CategoryRepo) Get(id string) (domain.Category, error) {
	var c domain.Category
	err := r.db.Get(&c, `SELECT `+categoryCols+` FROM categories WHERE id = ?`, id)
	return c, notFound(err)
}

func (r *CategoryRepo) List(limit, offset int) ([]domain.Category, int, error) {
	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM categories`); err != nil {
		return nil, 0, err
	}
	out := []domain.Category{}
	err := r.db.Select(&out, `
	  SELECT `+categoryCols+`
	  FROM categories
	  ORDER BY created_at DESC, rowid DESC
	  LIMIT ? OFFSET ?
	`, limit, offset)
	return out, total, err
}

// Update writes name, slug and images. The legacy image column is left alone.
func (r *CategoryRepo) Update(c domain.Category) error {
	res, err := r.db.Exec(`
	  UPDATE categories
	  SET name = ?, slug = ?, images_json = ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ?
	`, c.Name, c.Slug, c.Images, c.ID)
	if err != nil {
		return uniqueViolation(err, "slug "+c.Slug)
	}
	return expectOne(res)
}

// Delete removes the category only; its products stay in place.
func (r *CategoryRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}
