package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/testutil"
)

type mapCache struct {
	products   map[int64]*domain.Product
	categories []domain.Category
	hits       int
}

func newMapCache() *mapCache {
	return &mapCache{products: make(map[int64]*domain.Product)}
}

func (m *mapCache) Product(_ context.Context, id int64) (*domain.Product, bool) {
	p, ok := m.products[id]
	if ok {
		m.hits++
	}
	return p, ok
}

func (m *mapCache) StoreProduct(_ context.Context, product *domain.Product) {
	m.products[product.ID] = product
}

func (m *mapCache) Categories(context.Context) ([]domain.Category, bool) {
	if m.categories == nil {
		return nil, false
	}
	m.hits++
	return m.categories, true
}

func (m *mapCache) StoreCategories(_ context.Context, categories []domain.Category) {
	m.categories = categories
}

var (
	kitchen = domain.Category{ID: 1, Name: "Kitchen", Slug: "kitchen"}
	garden  = domain.Category{ID: 2, Name: "Garden", Slug: "garden"}
)

func catalog() *testutil.ProductStore {
	hidden := testutil.Product(5, "Hidden Pot", 9, kitchen)
	hidden.Status = domain.ProductStatusPrivate
	store := testutil.NewProductStore(
		testutil.Product(1, "Blue Mug", 12, kitchen),
		testutil.Product(2, "Red Kettle", 35, kitchen),
		testutil.Product(3, "Garden Hose", 20, garden),
		testutil.Product(4, "Mug Tree", 18, kitchen),
		hidden,
	)
	store.SetCategories(kitchen, garden)
	return store
}

func TestListFiltersAndPaginates(t *testing.T) {
	svc := NewProductService(catalog(), nil)
	ctx := context.Background()

	page, err := svc.List(ctx, ProductQuery{Category: "kitchen", PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Items, 2)

	maxPrice := 15.0
	page, err = svc.List(ctx, ProductQuery{MaxPrice: &maxPrice})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Blue Mug", page.Items[0].Name)

	page, err = svc.List(ctx, ProductQuery{PerPage: 500})
	require.NoError(t, err)
	assert.Equal(t, 100, page.PerPage)
	assert.Equal(t, 4, page.Total)
}

func TestSearch(t *testing.T) {
	svc := NewProductService(catalog(), nil)

	page, err := svc.Search(context.Background(), ProductQuery{Search: "mug"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func TestGetUsesCache(t *testing.T) {
	cache := newMapCache()
	svc := NewProductService(catalog(), cache)
	ctx := context.Background()

	first, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	second, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, 1, cache.hits)

	_, err = svc.Get(ctx, 5)
	requireDomainError(t, err, http.StatusNotFound, "NOT_FOUND")
}

func TestGetBySlug(t *testing.T) {
	svc := NewProductService(catalog(), nil)

	p, err := svc.GetBySlug(context.Background(), "red-kettle")
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.ID)

	_, err = svc.GetBySlug(context.Background(), "hidden-pot")
	requireDomainError(t, err, http.StatusNotFound, "NOT_FOUND")
}

func TestRelatedSharesCategory(t *testing.T) {
	svc := NewProductService(catalog(), nil)

	related, err := svc.Related(context.Background(), 1, 10)
	require.NoError(t, err)
	ids := make([]int64, 0, len(related))
	for _, p := range related {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []int64{2, 4}, ids)
}

func TestCategoriesCached(t *testing.T) {
	cache := newMapCache()
	svc := NewProductService(catalog(), cache)

	categories, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Len(t, categories, 2)

	_, err = svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
}

func TestListHugePageIsEmpty(t *testing.T) {
	svc := NewProductService(catalog(), nil)

	page, err := svc.List(context.Background(), ProductQuery{Page: 4611686018427387904, PerPage: 100})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 4, page.Total)
}

func TestPageOffsetSaturates(t *testing.T) {
	assert.Equal(t, 0, pageOffset(1, 10))
	assert.Equal(t, 20, pageOffset(3, 10))
	assert.Equal(t, maxOffset, pageOffset(4611686018427387904, 100))
}
