package repos

import (
	"github.com/jmoiron/sqlx"

	"diwholesale/internal/domain"
)

type SubProductRepo struct{ imageTable }

func NewSubProductRepo(db *sqlx.DB) *SubProductRepo {
	return &SubProductRepo{imageTable{db: db, table: "sub_products"}}
}

const subProductCols = `
    id, product_id, name, description, product_size, product_shape, material,
    composition, packing, minimum_quantity, images_json,
    COALESCE(created_at,'') AS created_at, COALESCE(updated_at,'') AS updated_at`

func (r *SubProductRepo) Create(s domain.SubProduct) error {
	_, err := r.db.Exec(`
	  INSERT INTO sub_products(
	    id, product_id, name, description, product_size, product_shape, material,
	    composition, packing, minimum_quantity, images_json, created_at
	  ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, s.ID, s.ProductID, s.Name, s.Description, s.ProductSize, s.ProductShape, s.Material,
		s.Composition, s.Packing, s.MinimumQuantity, s.Images)
	return err
}

func (r *SubProductRepo) Get(id string) (domain.SubProduct, error) {
	var s domain.SubProduct
	err := r.db.Get(&s, `SELECT `+subProductCols+` FROM sub_products WHERE id = ?`, id)
	return s, notFound(err)
}

func (r *SubProductRepo) ListByProduct(productID string, limit, offset int) ([]domain.SubProduct, int, error) {
	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM sub_products WHERE product_id = ?`, productID); err != nil {
		return nil, 0, err
	}
	out := []domain.SubProduct{}
	err := r.db.Select(&out, `
	  SELECT `+subProductCols+`
	  FROM sub_products
	  WHERE product_id = ?
	  ORDER BY created_at DESC, rowid DESC
	  LIMIT ? OFFSET ?
	`, productID, limit, offset)
	return out, total, err
}

func (r *SubProductRepo) Update(s domain.SubProduct) error {
	res, err := r.db.Exec(`
	  UPDATE sub_products SET
	    name = ?, description = ?, product_size = ?, product_shape = ?, material = ?,
	    composition = ?, packing = ?, minimum_quantity = ?, images_json = ?,
	    updated_at = CURRENT_TIMESTAMP
	  WHERE id = ?
	`, s.Name, s.Description, s.ProductSize, s.ProductShape, s.Material,
		s.Composition, s.Packing, s.MinimumQuantity, s.Images, s.ID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// Delete removes a sub-product, scoped to its parent product.
func (r *SubProductRepo) Delete(productID, id string) error {
	res, err := r.db.Exec(`DELETE FROM sub_products WHERE id = ? AND product_id = ?`, id, productID)
	if err != nil {
		return err
	}
	return expectOne(res)
}
