package domain

// EntityKind names a catalog collection. It doubles as the remote folder name.
type EntityKind string

const (
	KindCategory   EntityKind = "categories"
	KindProduct    EntityKind = "products"
	KindSubProduct EntityKind = "sub-products"
)

type Category struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	Images      Images    `db:"images_json" json:"images"`
	LegacyImage *AssetRef `db:"image" json:"image,omitempty"` // pre-gallery single image
	CreatedAt   string    `db:"created_at" json:"createdAt"`
	UpdatedAt   string    `db:"updated_at" json:"updatedAt"`
}

type Product struct {
	ID              string  `db:"id" json:"id"`
	CategoryID      string  `db:"category_id" json:"categoryId"`
	Name            string  `db:"name" json:"name"`
	Description     string  `db:"description" json:"description"`
	ProductSize     string  `db:"product_size" json:"productSize"`
	ProductShape    string  `db:"product_shape" json:"productShape"`
	Material        string  `db:"material" json:"material"`
	MinimumQuantity int     `db:"minimum_quantity" json:"minimumQuantity"`
	Price           float64 `db:"price" json:"price"`
	StockCount      int     `db:"stock_count" json:"stockCount"`
	Images          Images  `db:"images_json" json:"images"`
	CreatedAt       string  `db:"created_at" json:"createdAt"`
	UpdatedAt       string  `db:"updated_at" json:"updatedAt"`
}

type SubProduct struct {
	ID              string `db:"id" json:"id"`
	ProductID       string `db:"product_id" json:"productId"`
	Name            string `db:"name" json:"name"`
	Description     string `db:"description" json:"description"`
	ProductSize     string `db:"product_size" json:"productSize"`
	ProductShape    string `db:"product_shape" json:"productShape"`
	Material        string `db:"material" json:"material"`
	Composition     string `db:"composition" json:"composition"`
	Packing         string `db:"packing" json:"packing"`
	MinimumQuantity int    `db:"minimum_quantity" json:"minimumQuantity"`
	Images          Images `db:"images_json" json:"images"`
	CreatedAt       string `db:"created_at" json:"createdAt"`
	UpdatedAt       string `db:"updated_at" json:"updatedAt"`
}

// ImageRow is the minimal projection the image migration works on.
type ImageRow struct {
	ID     string `db:"id"`
	Images Images `db:"images_json"`
}
