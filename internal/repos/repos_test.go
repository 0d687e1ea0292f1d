package repos_test

import (
	"context"
	"errors"
	"testing"

	"diwholesale/internal/domain"
	"diwholesale/internal/repos"
)

func TestCategoryRepo_LegacyColumnRoundTrip(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	// Row written by an older release: single image column, empty gallery.
	if _, err := db.Exec(`INSERT INTO categories(id,name,slug,image,images_json) VALUES ('c1','Cups','cups','/uploads/old.png','[]')`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO categories(id,name,slug,image,images_json) VALUES ('c2','Bags','bags','',NULL)`); err != nil {
		t.Fatal(err)
	}

	cats := repos.NewCategoryRepo(db)
	c, err := cats.Get("c1")
	if err != nil {
		t.Fatal(err)
	}
	if c.LegacyImage == nil || c.LegacyImage.String() != "/uploads/old.png" || !c.LegacyImage.IsLocal() {
		t.Fatalf("legacy image not read: %+v", c.LegacyImage)
	}
	if len(c.Images) != 0 {
		t.Fatalf("want empty images, got %v", c.Images)
	}

	c2, err := cats.Get("c2")
	if err != nil {
		t.Fatal(err)
	}
	if c2.LegacyImage != nil {
		t.Fatalf("empty legacy column should read as nil, got %+v", c2.LegacyImage)
	}

	if _, err := cats.Get("nope"); !errors.Is(err, repos.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestCategoryRepo_DuplicateSlug(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	cats := repos.NewCategoryRepo(db)

	if err := cats.Create(domain.Category{ID: "a", Name: "Cups", Slug: "cups"}); err != nil {
		t.Fatal(err)
	}
	err = cats.Create(domain.Category{ID: "b", Name: "Cups 2", Slug: "cups"})
	if !errors.Is(err, repos.ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}
}

func TestImageRowsAndSetImages(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	prods := repos.NewProductRepo(db)
	ctx := context.Background()

	withImages := domain.Images{domain.ParseRef("/uploads/a.png"), domain.ParseRef("https://x.example/b.png")}
	if err := prods.Create(domain.Product{ID: "p1", CategoryID: "c", Name: "Mug", Images: withImages}); err != nil {
		t.Fatal(err)
	}
	if err := prods.Create(domain.Product{ID: "p2", CategoryID: "c", Name: "Plain"}); err != nil {
		t.Fatal(err)
	}

	rows, err := prods.ImageRows(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].ID != "p1" || !rows[0].Images.Equal(withImages) {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	next := domain.Images{domain.RemoteRef("https://res.cloudinary.com/demo/a.png"), withImages[1]}
	if err := prods.SetImages(ctx, "p1", next); err != nil {
		t.Fatal(err)
	}
	p, err := prods.Get("p1")
	if err != nil {
		t.Fatal(err)
	}
	if !p.Images.Equal(next) {
		t.Fatalf("images not replaced: %v", p.Images)
	}
	if err := prods.SetImages(ctx, "missing", next); !errors.Is(err, repos.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestProductRepo_DeleteCascadesToSubProducts(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	cats := repos.NewCategoryRepo(db)
	prods := repos.NewProductRepo(db)
	subs := repos.NewSubProductRepo(db)

	if err := cats.Create(domain.Category{ID: "c1", Name: "Cups", Slug: "cups"}); err != nil {
		t.Fatal(err)
	}
	if err := prods.Create(domain.Product{ID: "p1", CategoryID: "c1", Name: "Mug"}); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"s1", "s2"} {
		if err := subs.Create(domain.SubProduct{ID: id, ProductID: "p1", Name: id}); err != nil {
			t.Fatal(err)
		}
	}
	if err := subs.Create(domain.SubProduct{ID: "s3", ProductID: "other", Name: "keep"}); err != nil {
		t.Fatal(err)
	}

	if err := prods.Delete("p1"); err != nil {
		t.Fatal(err)
	}
	_, total, err := subs.ListByProduct("p1", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Fatalf("want sub-products removed, %d left", total)
	}
	if _, err := subs.Get("s3"); err != nil {
		t.Fatalf("unrelated sub-product should survive: %v", err)
	}

	if err := cats.Delete("c1"); err != nil {
		t.Fatalf("category delete after product delete: %v", err)
	}
	if err := prods.Delete("p1"); !errors.Is(err, repos.ErrNotFound) {
		t.Fatalf("want ErrNotFound on second delete, got %v", err)
	}
}

func TestCategoryRepo_DeleteDoesNotCascade(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	cats := repos.NewCategoryRepo(db)
	prods := repos.NewProductRepo(db)

	if err := cats.Create(domain.Category{ID: "c1", Name: "Cups", Slug: "cups"}); err != nil {
		t.Fatal(err)
	}
	if err := prods.Create(domain.Product{ID: "p1", CategoryID: "c1", Name: "Mug"}); err != nil {
		t.Fatal(err)
	}
	if err := cats.Delete("c1"); err != nil {
		t.Fatal(err)
	}
	if _, err := prods.Get("p1"); err != nil {
		t.Fatalf("product should be orphaned, not deleted: %v", err)
	}
}

func TestProductRepo_ListFilterAndTotal(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	prods := repos.NewProductRepo(db)

	for i, name := range []string{"Red Mug", "Blue Mug", "Tote Bag"} {
		cat := "cups"
		if i == 2 {
			cat = "bags"
		}
		if err := prods.Create(domain.Product{ID: name, CategoryID: cat, Name: name}); err != nil {
			t.Fatal(err)
		}
	}

	page, total, err := prods.List(repos.ProductFilter{CategoryID: "cups"}, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(page) != 1 {
		t.Fatalf("want total 2 and a page of 1, got %d/%d", total, len(page))
	}

	found, total, err := prods.List(repos.ProductFilter{Q: "TOTE"}, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || found[0].Name != "Tote Bag" {
		t.Fatalf("search mismatch: %+v", found)
	}
}
