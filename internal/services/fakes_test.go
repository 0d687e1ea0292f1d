package services_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"

	"diwholesale/internal/domain"
	"diwholesale/internal/repos"
	"diwholesale/internal/storage"
)

var (
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)
	gifBytes = append([]byte("GIF89a"), bytes.Repeat([]byte{0}, 32)...)
)

// fakeRemote records Store/Delete calls and hands out object-store URLs.
type fakeRemote struct {
	mu      sync.Mutex
	stored  []storage.Upload
	folders []string
	deleted []domain.AssetRef
	fail    func(u storage.Upload) bool
}

func (f *fakeRemote) Name() string { return "fake" }

func (f *fakeRemote) Store(ctx context.Context, u storage.Upload, folder string) (domain.AssetRef, error) {
	if err := storage.DefaultLimits().Check(u); err != nil {
		return domain.AssetRef{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil && f.fail(u) {
		return domain.AssetRef{}, fmt.Errorf("%w: upstream 503", storage.ErrStorageUnavailable)
	}
	f.stored = append(f.stored, u)
	f.folders = append(f.folders, folder)
	stem := strings.TrimSuffix(u.Name, ".png")
	return domain.RemoteRef("https://res.cloudinary.com/demo/image/upload/di-wholesale/" + folder + "/" + stem + ".png"), nil
}

func (f *fakeRemote) Delete(ctx context.Context, ref domain.AssetRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *fakeRemote) Resolve(ref domain.AssetRef) string { return ref.String() }

func (f *fakeRemote) storeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stored)
}

type catalogRepos struct {
	db    *sqlx.DB
	cats  *repos.CategoryRepo
	prods *repos.ProductRepo
	subs  *repos.SubProductRepo
}

func memCatalog(t *testing.T) catalogRepos {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return catalogRepos{db: db, cats: repos.NewCategoryRepo(db), prods: repos.NewProductRepo(db), subs: repos.NewSubProductRepo(db)}
}

func ptr[T any](v T) *T { return &v }
