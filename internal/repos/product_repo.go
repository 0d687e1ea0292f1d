package repos

import (
	"strings"

	"github.com/jmoiron/sqlx"

	"diwholesale/internal/domain"
)

type ProductRepo struct{ imageTable }

func NewProductRepo(db *sqlx.DB) *ProductRepo {
	return &ProductRepo{imageTable{db: db, table: "products"}}
}

// ProductFilter narrows List. Empty fields match everything.
type ProductFilter struct {
	CategoryID string
	Q          string
}

const productCols = `
    id, category_id, name, description, product_size, product_shape, material,
    minimum_quantity, price, stock_count, images_json,
    COALESCE(created_at,'') AS created_at, COALESCE(updated_at,'') AS updated_at`

func (r *ProductRepo) Create(p domain.Product) error {
	_, err := r.db.Exec(`
	  INSERT INTO products(
	    id, category_id, name, description, product_size, product_shape, material,
	    minimum_quantity, price, stock_count, images_json, created_at
	  ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, p.ID, p.CategoryID, p.Name, p.Description, p.ProductSize, p.ProductShape, p.Material,
		p.MinimumQuantity, p.Price, p.StockCount, p.Images)
	return err
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	return p, notFound(err)
}

func (r *ProductRepo) List(f ProductFilter, limit, offset int) ([]domain.Product, int, error) {
	where := `1 = 1`
	args := []any{}
	if f.CategoryID != "" {
		where += ` AND category_id = ?`
		args = append(args, f.CategoryID)
	}
	if q := strings.ToLower(f.Q); q != "" {
		where += ` AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ?)`
		args = append(args, "%"+q+"%", "%"+q+"%")
	}

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM products WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	out := []domain.Product{}
	err := r.db.Select(&out, `
	  SELECT `+productCols+`
	  FROM products
	  WHERE `+where+`
	  ORDER BY created_at DESC, rowid DESC
	  LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	return out, total, err
}

func (r *ProductRepo) Update(p domain.Product) error {
	res, err := r.db.Exec(`
	  UPDATE products SET
	    category_id = ?, name = ?, description = ?, product_size = ?, product_shape = ?,
	    material = ?, minimum_quantity = ?, price = ?, stock_count = ?, images_json = ?,
	    updated_at = CURRENT_TIMESTAMP
	  WHERE id = ?
	`, p.CategoryID, p.Name, p.Description, p.ProductSize, p.ProductShape,
		p.Material, p.MinimumQuantity, p.Price, p.StockCount, p.Images, p.ID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// Delete removes the product and all of its sub-products in one transaction.
func (r *ProductRepo) Delete(id string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := expectOne(res); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM sub_products WHERE product_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}
