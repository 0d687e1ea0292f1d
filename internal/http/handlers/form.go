package handlers

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"diwholesale/internal/services"
	"diwholesale/internal/storage"
	"diwholesale/internal/validate"
)

// MaxImagesPerRequest caps the files accepted in the "images" field.
const MaxImagesPerRequest = 10

// form is a parsed multipart or urlencoded request body. A key present in the
// body, even empty, counts as set; absent keys leave the entity field alone.
type form struct {
	values map[string][]string
	files  []*multipart.FileHeader
}

func parseForm(c *fiber.Ctx) form {
	if mf, err := c.MultipartForm(); err == nil {
		return form{values: mf.Value, files: mf.File["images"]}
	}
	values := map[string][]string{}
	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		values[string(k)] = append(values[string(k)], string(v))
	})
	return form{values: values}
}

func (f form) str(key string) *string {
	v, ok := f.values[key]
	if !ok || len(v) == 0 {
		return nil
	}
	return &v[0]
}

func (f form) count(key string) (*int, error) {
	s := f.str(key)
	if s == nil {
		return nil, nil
	}
	n, ok := validate.Int(*s)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a non-negative integer", services.ErrInvalid, key)
	}
	return &n, nil
}

func (f form) price(key string) (*float64, error) {
	s := f.str(key)
	if s == nil {
		return nil, nil
	}
	p, ok := validate.Price(*s)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a non-negative number", services.ErrInvalid, key)
	}
	return &p, nil
}

// uploads reads the "images" files into memory. Reads stop one byte past
// maxBytes so oversized files still fail validation without being buffered whole.
func (f form) uploads(maxBytes int64) ([]storage.Upload, error) {
	if len(f.files) > MaxImagesPerRequest {
		return nil, fmt.Errorf("%w: at most %d images per request", storage.ErrInvalidContent, MaxImagesPerRequest)
	}
	out := make([]storage.Upload, 0, len(f.files))
	for _, fh := range f.files {
		file, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", storage.ErrInvalidContent, fh.Filename, err)
		}
		data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", storage.ErrInvalidContent, fh.Filename, err)
		}
		out = append(out, storage.Upload{Data: data, ContentType: fh.Header.Get("Content-Type"), Name: fh.Filename})
	}
	return out, nil
}

func (f form) product() (services.ProductInput, error) {
	in := services.ProductInput{
		CategoryID:   f.str("categoryId"),
		Name:         f.str("name"),
		Description:  f.str("description"),
		ProductSize:  f.str("productSize"),
		ProductShape: f.str("productShape"),
		Material:     f.str("material"),
	}
	var err error
	if in.MinimumQuantity, err = f.count("minimumQuantity"); err != nil {
		return in, err
	}
	if in.StockCount, err = f.count("stockCount"); err != nil {
		return in, err
	}
	in.Price, err = f.price("price")
	return in, err
}

func (f form) subProduct() (services.SubProductInput, error) {
	in := services.SubProductInput{
		Name:         f.str("name"),
		Description:  f.str("description"),
		ProductSize:  f.str("productSize"),
		ProductShape: f.str("productShape"),
		Material:     f.str("material"),
		Composition:  f.str("composition"),
		Packing:      f.str("packing"),
	}
	var err error
	in.MinimumQuantity, err = f.count("minimumQuantity")
	return in, err
}
