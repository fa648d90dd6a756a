package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/events"
	"github.com/spec-kit/storefront-api/internal/testutil"
)

func newWishlistService() (*WishlistService, *testutil.ProductStore, *recorder) {
	draft := testutil.Product(3, "Draft Lamp", 40)
	draft.Status = domain.ProductStatusDraft
	products := testutil.NewProductStore(
		testutil.Product(1, "Blue Mug", 12),
		testutil.Product(2, "Red Kettle", 35),
		draft,
	)
	rec := &recorder{}
	svc := NewWishlistService(WishlistDependencies{
		WishlistRepo: testutil.NewWishlistStore(),
		ProductRepo:  products,
		Dispatcher:   rec,
	})
	return svc, products, rec
}

func TestWishlistAddRemove(t *testing.T) {
	svc, _, rec := newWishlistService()
	ctx := context.Background()

	items, err := svc.Add(ctx, 7, 2)
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = svc.Add(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, items.ProductIDs())

	in, err := svc.Contains(ctx, 7, 1)
	require.NoError(t, err)
	assert.True(t, in)

	in, err = svc.Contains(ctx, 8, 1)
	require.NoError(t, err)
	assert.False(t, in)

	items, err = svc.Remove(ctx, 7, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, items.ProductIDs())

	assert.Equal(t, []events.EventType{
		events.EventWishlistItemAdded,
		events.EventWishlistItemAdded,
		events.EventWishlistItemRemoved,
	}, rec.types())
}

func TestWishlistAddErrors(t *testing.T) {
	svc, _, _ := newWishlistService()
	ctx := context.Background()

	_, err := svc.Add(ctx, 7, 99)
	requireDomainError(t, err, http.StatusNotFound, "NOT_FOUND")

	_, err = svc.Add(ctx, 7, 3)
	requireDomainError(t, err, http.StatusNotFound, "NOT_FOUND")

	_, err = svc.Add(ctx, 7, 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, 7, 1)
	requireDomainError(t, err, http.StatusBadRequest, CodeAlreadyInWishlist)

	_, err = svc.Remove(ctx, 7, 2)
	requireDomainError(t, err, http.StatusNotFound, CodeNotInWishlist)
}

func TestWishlistListPaginates(t *testing.T) {
	svc, _, _ := newWishlistService()
	ctx := context.Background()
	_, err := svc.Add(ctx, 7, 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, 7, 2)
	require.NoError(t, err)

	page, err := svc.List(ctx, 7, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, int64(2), page.Entries[0].Item.ProductID)
	require.NotNil(t, page.Entries[0].Product)
	assert.Equal(t, "Red Kettle", page.Entries[0].Product.Name)

	page, err = svc.List(ctx, 7, 5, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Entries)
	assert.Equal(t, 2, page.Total)
}

func TestWishlistClear(t *testing.T) {
	svc, _, rec := newWishlistService()
	ctx := context.Background()
	_, err := svc.Add(ctx, 7, 1)
	require.NoError(t, err)

	removed, err := svc.Clear(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	items, err := svc.Items(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Contains(t, rec.types(), events.EventWishlistCleared)
}

func TestWishlistListHugePageIsEmpty(t *testing.T) {
	svc, _, _ := newWishlistService()
	ctx := context.Background()
	_, err := svc.Add(ctx, 7, 1)
	require.NoError(t, err)

	page, err := svc.List(ctx, 7, 4611686018427387904, 100)
	require.NoError(t, err)
	assert.Empty(t, page.Entries)
	assert.Equal(t, 1, page.Total)
}
