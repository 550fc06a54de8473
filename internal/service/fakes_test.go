package service

import (
	"context"

	"go-catalog-mirror/internal/model"
	"go-catalog-mirror/internal/remote"

	"gorm.io/gorm"
)

// Hand-rolled fakes for the repository and fetcher contracts. Counters are
// enough: the tests below only ever assert that nothing was written.

type fakeFetcher struct {
	products []remote.Product
	err      error
	calls    int
}

func (f *fakeFetcher) FetchSnapshot(ctx context.Context) ([]remote.Product, error) {
	f.calls++
	return f.products, f.err
}

type fakeProductRepo struct {
	upserts     []model.ProductUpsertCmd
	deleteCalls int
	exists      bool
	existsErr   error
	pages       [][]model.ProductListRow
	pageCalls   int
	count       int64
	journal     *[]string
}

func (f *fakeProductRepo) record(step string) {
	if f.journal != nil {
		*f.journal = append(*f.journal, step)
	}
}

func (f *fakeProductRepo) Upsert(tx *gorm.DB, cmd model.ProductUpsertCmd) (int64, error) {
	f.upserts = append(f.upserts, cmd)
	f.record("product_upsert")
	return 1, nil
}

func (f *fakeProductRepo) DeleteNotIn(tx *gorm.DB, keepIDs []int64, minGuard int) (int64, error) {
	f.deleteCalls++
	f.record("product_sweep")
	return 0, nil
}

func (f *fakeProductRepo) DeleteByProductID(tx *gorm.DB, productID int64) error { return nil }

func (f *fakeProductRepo) FindByID(productID int64) (*model.Product, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProductRepo) ExistsByProductID(productID int64) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeProductRepo) ListForViewPaged(limit, offset int, search string) ([]model.ProductListRow, error) {
	if f.pageCalls >= len(f.pages) {
		return nil, nil
	}
	page := f.pages[f.pageCalls]
	f.pageCalls++
	return page, nil
}

func (f *fakeProductRepo) CountForView(search string) (int64, error) { return f.count, nil }

func (f *fakeProductRepo) LoadOptionNames(productID int64) ([]string, error) { return nil, nil }

type fakeVariantRepo struct {
	upserts     []model.VariantUpsertCmd
	deleteCalls int
	upsertErr   error
	journal     *[]string
}

func (f *fakeVariantRepo) record(step string) {
	if f.journal != nil {
		*f.journal = append(*f.journal, step)
	}
}

func (f *fakeVariantRepo) Upsert(tx *gorm.DB, cmd model.VariantUpsertCmd) (int64, error) {
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	f.upserts = append(f.upserts, cmd)
	f.record("variant_upsert")
	return 1, nil
}

func (f *fakeVariantRepo) DeleteNotInProducts(tx *gorm.DB, keepProductIDs []int64, minGuard int) (int64, error) {
	f.deleteCalls++
	f.record("variant_sweep")
	return 0, nil
}

func (f *fakeVariantRepo) DeleteByProductID(tx *gorm.DB, productID int64) error { return nil }

func (f *fakeVariantRepo) ListByProductID(productID int64) ([]model.VariantRow, error) {
	return nil, nil
}
