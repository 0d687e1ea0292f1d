package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"diwholesale/internal/domain"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: sqlite serializes writers anyway, and each connection to
	// :memory: would otherwise see its own empty database.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
-- Parent links are plain ids without foreign keys; deleting a category can orphan products.

-- Categories (image is the pre-gallery single image column)
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  image TEXT,
  images_json TEXT DEFAULT '[]',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_slug ON categories(slug);

-- Products
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  product_size TEXT NOT NULL DEFAULT '',
  product_shape TEXT NOT NULL DEFAULT '',
  material TEXT NOT NULL DEFAULT '',
  minimum_quantity INTEGER NOT NULL DEFAULT 0,
  price NUMERIC NOT NULL DEFAULT 0,
  stock_count INTEGER NOT NULL DEFAULT 0,
  images_json TEXT DEFAULT '[]',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_category   ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_name       ON products(LOWER(name));
CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at);

-- Sub-products
CREATE TABLE IF NOT EXISTS sub_products(
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  product_size TEXT NOT NULL DEFAULT '',
  product_shape TEXT NOT NULL DEFAULT '',
  material TEXT NOT NULL DEFAULT '',
  composition TEXT NOT NULL DEFAULT '',
  packing TEXT NOT NULL DEFAULT '',
  minimum_quantity INTEGER NOT NULL DEFAULT 0,
  images_json TEXT DEFAULT '[]',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_sub_products_product ON sub_products(product_id);
`
	_, err := db.Exec(schema)
	return err
}

// imageTable holds the image-list operations shared by every catalog table.
type imageTable struct {
	db    *sqlx.DB
	table string
}

// ImageRows returns id and images of every row with a non-empty image list.
// Rows are loaded up front so callers can write while walking them.
func (t imageTable) ImageRows(ctx context.Context) ([]domain.ImageRow, error) {
	var out []domain.ImageRow
	err := t.db.SelectContext(ctx, &out, `
	  SELECT id, images_json
	  FROM `+t.table+`
	  WHERE images_json IS NOT NULL AND images_json NOT IN ('', '[]')
	  ORDER BY created_at, rowid
	`)
	return out, err
}

// SetImages replaces the whole image list of one row in a single statement.
func (t imageTable) SetImages(ctx context.Context, id string, images domain.Images) error {
	res, err := t.db.ExecContext(ctx, `
	  UPDATE `+t.table+` SET images_json = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, images, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func uniqueViolation(err error, what string) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %s", ErrDuplicate, what)
	}
	return err
}
