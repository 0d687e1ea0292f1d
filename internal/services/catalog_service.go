package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"diwholesale/internal/domain"
	applog "diwholesale/internal/log"
	"diwholesale/internal/repos"
	"diwholesale/internal/storage"
	"diwholesale/internal/validate"
)

// CatalogService implements create/list/get/update/delete for categories,
// products and sub-products. Image uploads go to Store, the configured
// primary backend.
type CatalogService struct {
	Cats   *repos.CategoryRepo
	Prods  *repos.ProductRepo
	Subs   *repos.SubProductRepo
	Store  storage.Backend
	Limits storage.Limits
	now    func() time.Time
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo, subs *repos.SubProductRepo, store storage.Backend, limits storage.Limits) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods, Subs: subs, Store: store, Limits: limits, now: time.Now}
}

// Page is a normalized 1-based page request.
type Page struct {
	Page int
	Size int
}

func (p Page) normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size <= 0 {
		p.Size = validate.DefaultPageSize
	}
	if p.Size > validate.MaxPageSize {
		p.Size = validate.MaxPageSize
	}
	return p
}

func (p Page) offset() int { return (p.Page - 1) * p.Size }

// PageOf is one page of results plus the total number of matches.
type PageOf[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// ---------- Categories ----------

type CategoryInput struct {
	Name *string
	Slug *string
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput, uploads []storage.Upload) (domain.Category, error) {
	name, ok := validate.Name(deref(in.Name))
	if !ok {
		return domain.Category{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	slug := validate.Slug(name)
	if in.Slug != nil && *in.Slug != "" {
		slug = validate.Slug(*in.Slug)
	}
	if slug == "" {
		return domain.Category{}, fmt.Errorf("%w: slug is required", ErrInvalid)
	}

	images, err := s.storeUploads(ctx, domain.KindCategory, uploads)
	if err != nil {
		return domain.Category{}, err
	}
	c := domain.Category{ID: uuid.NewString(), Name: name, Slug: slug, Images: images}
	if err := s.Cats.Create(c); err != nil {
		s.discard(ctx, images)
		return domain.Category{}, conflict(err)
	}
	return s.GetCategory(c.ID)
}

func (s *CatalogService) ListCategories(p Page) (PageOf[domain.Category], error) {
	p = p.normalize()
	cats, total, err := s.Cats.List(p.Size, p.offset())
	if err != nil {
		return PageOf[domain.Category]{}, err
	}
	return PageOf[domain.Category]{Items: normalizeCategories(cats), Total: total, Page: p.Page, PageSize: p.Size}, nil
}

func (s *CatalogService) GetCategory(id string) (domain.Category, error) {
	c, err := s.Cats.Get(id)
	if err != nil {
		return domain.Category{}, err
	}
	return NormalizeCategory(c), nil
}

// UpdateCategory applies the non-nil fields of in. Uploaded files replace the
// image list wholesale; no uploads keeps the current images.
func (s *CatalogService) UpdateCategory(ctx context.Context, id string, in CategoryInput, uploads []storage.Upload) (domain.Category, error) {
	c, err := s.Cats.Get(id)
	if err != nil {
		return domain.Category{}, err
	}
	if in.Name != nil {
		name, ok := validate.Name(*in.Name)
		if !ok {
			return domain.Category{}, fmt.Errorf("%w: name must not be empty", ErrInvalid)
		}
		c.Name = name
	}
	if in.Slug != nil {
		if c.Slug = validate.Slug(*in.Slug); c.Slug == "" {
			return domain.Category{}, fmt.Errorf("%w: slug must not be empty", ErrInvalid)
		}
	}
	if len(uploads) > 0 {
		images, err := s.storeUploads(ctx, domain.KindCategory, uploads)
		if err != nil {
			return domain.Category{}, err
		}
		c.Images = images
		if err := s.Cats.Update(c); err != nil {
			s.discard(ctx, images)
			return domain.Category{}, conflict(err)
		}
	} else if err := s.Cats.Update(c); err != nil {
		return domain.Category{}, conflict(err)
	}
	return s.GetCategory(id)
}

// DeleteCategory removes the category only. Its products are left in place and
// image files are never deleted.
func (s *CatalogService) DeleteCategory(id string) error {
	return s.Cats.Delete(id)
}

// ---------- Products ----------

type ProductInput struct {
	CategoryID      *string
	Name            *string
	Description     *string
	ProductSize     *string
	ProductShape    *string
	Material        *string
	MinimumQuantity *int
	Price           *float64
	StockCount      *int
}

func (in ProductInput) apply(p *domain.Product) error {
	if in.CategoryID != nil {
		id, ok := validate.ID(*in.CategoryID)
		if !ok {
			return fmt.Errorf("%w: categoryId is required", ErrInvalid)
		}
		p.CategoryID = id
	}
	if in.Name != nil {
		name, ok := validate.Name(*in.Name)
		if !ok {
			return fmt.Errorf("%w: name is required", ErrInvalid)
		}
		p.Name = name
	}
	for dst, src := range map[*string]*string{
		&p.Description: in.Description, &p.ProductSize: in.ProductSize,
		&p.ProductShape: in.ProductShape, &p.Material: in.Material,
	} {
		if src == nil {
			continue
		}
		v, ok := validate.Text(*src)
		if !ok {
			return fmt.Errorf("%w: text field too long", ErrInvalid)
		}
		*dst = v
	}
	if in.MinimumQuantity != nil {
		p.MinimumQuantity = max(*in.MinimumQuantity, 0)
	}
	if in.StockCount != nil {
		p.StockCount = max(*in.StockCount, 0)
	}
	if in.Price != nil {
		p.Price = max(*in.Price, 0)
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput, uploads []storage.Upload) (domain.Product, error) {
	if in.Name == nil || in.CategoryID == nil {
		return domain.Product{}, fmt.Errorf("%w: name and categoryId are required", ErrInvalid)
	}
	p := domain.Product{ID: uuid.NewString()}
	if err := in.apply(&p); err != nil {
		return domain.Product{}, err
	}
	images, err := s.storeUploads(ctx, domain.KindProduct, uploads)
	if err != nil {
		return domain.Product{}, err
	}
	p.Images = images
	if err := s.Prods.Create(p); err != nil {
		s.discard(ctx, images)
		return domain.Product{}, err
	}
	return s.Prods.Get(p.ID)
}

func (s *CatalogService) ListProducts(f repos.ProductFilter, p Page) (PageOf[domain.Product], error) {
	p = p.normalize()
	items, total, err := s.Prods.List(f, p.Size, p.offset())
	if err != nil {
		return PageOf[domain.Product]{}, err
	}
	return PageOf[domain.Product]{Items: items, Total: total, Page: p.Page, PageSize: p.Size}, nil
}

func (s *CatalogService) GetProduct(id string) (domain.Product, error) {
	return s.Prods.Get(id)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in ProductInput, uploads []storage.Upload) (domain.Product, error) {
	p, err := s.Prods.Get(id)
	if err != nil {
		return domain.Product{}, err
	}
	if err := in.apply(&p); err != nil {
		return domain.Product{}, err
	}
	var images domain.Images
	if len(uploads) > 0 {
		if images, err = s.storeUploads(ctx, domain.KindProduct, uploads); err != nil {
			return domain.Product{}, err
		}
		p.Images = images
	}
	if err := s.Prods.Update(p); err != nil {
		s.discard(ctx, images)
		return domain.Product{}, err
	}
	return s.Prods.Get(id)
}

// DeleteProduct removes the product together with its sub-products.
func (s *CatalogService) DeleteProduct(id string) error {
	return s.Prods.Delete(id)
}

// ---------- Sub-products ----------

type SubProductInput struct {
	Name            *string
	Description     *string
	ProductSize     *string
	ProductShape    *string
	Material        *string
	Composition     *string
	Packing         *string
	MinimumQuantity *int
}

func (in SubProductInput) apply(sp *domain.SubProduct) error {
	if in.Name != nil {
		name, ok := validate.Name(*in.Name)
		if !ok {
			return fmt.Errorf("%w: name is required", ErrInvalid)
		}
		sp.Name = name
	}
	for dst, src := range map[*string]*string{
		&sp.Description: in.Description, &sp.ProductSize: in.ProductSize,
		&sp.ProductShape: in.ProductShape, &sp.Material: in.Material,
		&sp.Composition: in.Composition, &sp.Packing: in.Packing,
	} {
		if src == nil {
			continue
		}
		v, ok := validate.Text(*src)
		if !ok {
			return fmt.Errorf("%w: text field too long", ErrInvalid)
		}
		*dst = v
	}
	if in.MinimumQuantity != nil {
		sp.MinimumQuantity = max(*in.MinimumQuantity, 0)
	}
	return nil
}

// CreateSubProduct attaches a sub-product to productID. The parent is not
// checked for existence.
func (s *CatalogService) CreateSubProduct(ctx context.Context, productID string, in SubProductInput, uploads []storage.Upload) (domain.SubProduct, error) {
	pid, ok := validate.ID(productID)
	if !ok || in.Name == nil {
		return domain.SubProduct{}, fmt.Errorf("%w: name and product id are required", ErrInvalid)
	}
	sp := domain.SubProduct{ID: uuid.NewString(), ProductID: pid}
	if err := in.apply(&sp); err != nil {
		return domain.SubProduct{}, err
	}
	images, err := s.storeUploads(ctx, domain.KindSubProduct, uploads)
	if err != nil {
		return domain.SubProduct{}, err
	}
	sp.Images = images
	if err := s.Subs.Create(sp); err != nil {
		s.discard(ctx, images)
		return domain.SubProduct{}, err
	}
	return s.Subs.Get(sp.ID)
}

func (s *CatalogService) ListSubProducts(productID string, p Page) (PageOf[domain.SubProduct], error) {
	p = p.normalize()
	items, total, err := s.Subs.ListByProduct(productID, p.Size, p.offset())
	if err != nil {
		return PageOf[domain.SubProduct]{}, err
	}
	return PageOf[domain.SubProduct]{Items: items, Total: total, Page: p.Page, PageSize: p.Size}, nil
}

func (s *CatalogService) GetSubProduct(id string) (domain.SubProduct, error) {
	return s.Subs.Get(id)
}

func (s *CatalogService) UpdateSubProduct(ctx context.Context, id string, in SubProductInput, uploads []storage.Upload) (domain.SubProduct, error) {
	sp, err := s.Subs.Get(id)
	if err != nil {
		return domain.SubProduct{}, err
	}
	if err := in.apply(&sp); err != nil {
		return domain.SubProduct{}, err
	}
	var images domain.Images
	if len(uploads) > 0 {
		if images, err = s.storeUploads(ctx, domain.KindSubProduct, uploads); err != nil {
			return domain.SubProduct{}, err
		}
		sp.Images = images
	}
	if err := s.Subs.Update(sp); err != nil {
		s.discard(ctx, images)
		return domain.SubProduct{}, err
	}
	return s.Subs.Get(id)
}

func (s *CatalogService) DeleteSubProduct(productID, id string) error {
	return s.Subs.Delete(productID, id)
}

// ---------- Uploads ----------

// storeUploads validates every file before storing any of them, so invalid
// content aborts the request with nothing written. A file the backend fails
// to store is logged and left out; if none could be stored the request fails.
func (s *CatalogService) storeUploads(ctx context.Context, kind domain.EntityKind, uploads []storage.Upload) (domain.Images, error) {
	images := domain.Images{}
	if len(uploads) == 0 {
		return images, nil
	}
	for _, u := range uploads {
		if err := s.Limits.Check(u); err != nil {
			return nil, fmt.Errorf("%s: %w", u.Name, err)
		}
	}
	var lastErr error
	for _, u := range uploads {
		original := u.Name
		u.Name = storage.GenerateName(s.now(), original)
		ref, err := s.Store.Store(ctx, u, string(kind))
		if err != nil {
			if errors.Is(err, storage.ErrInvalidContent) {
				s.discard(ctx, images)
				return nil, fmt.Errorf("%s: %w", original, err)
			}
			applog.Error(nil, "storage.upload.fail", err, map[string]any{"kind": kind, "file": original, "backend": s.Store.Name()})
			lastErr = err
			continue
		}
		images = append(images, ref)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("no image could be stored: %w", lastErr)
	}
	return images, nil
}

// discard removes freshly stored files when the entity write that should have
// referenced them failed.
func (s *CatalogService) discard(ctx context.Context, images domain.Images) {
	for _, ref := range images {
		if err := s.Store.Delete(ctx, ref); err != nil && !errors.Is(err, storage.ErrNotFound) {
			applog.Error(nil, "storage.discard.fail", err, map[string]any{"ref": ref.String()})
		}
	}
}

func conflict(err error) error {
	if errors.Is(err, repos.ErrDuplicate) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
