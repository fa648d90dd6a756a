package service

import (
	"context"
	"net/http"
	"time"

	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/events"
	"github.com/spec-kit/storefront-api/internal/repository"
	apperrors "github.com/spec-kit/storefront-api/pkg/util/errorutil"
)

// Error codes returned by wishlist operations.
const (
	CodeAlreadyInWishlist = "ALREADY_IN_WISHLIST"
	CodeNotInWishlist     = "NOT_IN_WISHLIST"
)

// WishlistEntry pairs a stored item with its product, which is nil when the
// product has since been unpublished.
type WishlistEntry struct {
	Item    domain.WishlistItem
	Product *domain.Product
}

// WishlistPage is one page of a user's wishlist.
type WishlistPage struct {
	Entries []WishlistEntry
	Total   int
	Page    int
	PerPage int
}

// WishlistService manages the per-user wishlist blob.
type WishlistService struct {
	wishlists  repository.WishlistRepository
	products   repository.ProductRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// WishlistDependencies bundles repositories for the wishlist service.
type WishlistDependencies struct {
	WishlistRepo repository.WishlistRepository
	ProductRepo  repository.ProductRepository
	Dispatcher   events.Dispatcher
}

// NewWishlistService constructs the service.
func NewWishlistService(deps WishlistDependencies) *WishlistService {
	return &WishlistService{
		wishlists:  deps.WishlistRepo,
		products:   deps.ProductRepo,
		dispatcher: deps.Dispatcher,
		now:        time.Now,
	}
}

// Items returns the raw wishlist in insertion order.
func (s *WishlistService) Items(ctx context.Context, userID int64) (domain.Wishlist, error) {
	return s.wishlists.Get(ctx, userID)
}

// List returns a page of wishlist entries with their products.
func (s *WishlistService) List(ctx context.Context, userID int64, page, perPage int) (*WishlistPage, error) {
	items, err := s.wishlists.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	page, perPage = normalizePage(page, perPage)

	start := pageOffset(page, perPage)
	if start > len(items) {
		start = len(items)
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	window := items[start:end]

	products, err := s.products.GetByIDs(ctx, window.ProductIDs())
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	entries := make([]WishlistEntry, 0, len(window))
	for _, item := range window {
		entries = append(entries, WishlistEntry{Item: item, Product: byID[item.ProductID]})
	}
	return &WishlistPage{Entries: entries, Total: len(items), Page: page, PerPage: perPage}, nil
}

// Add appends a published product to the wishlist.
func (s *WishlistService) Add(ctx context.Context, userID, productID int64) (domain.Wishlist, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, productLookupError(err, productID)
	}

	items, err := s.wishlists.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items.Contains(productID) {
		return nil, apperrors.NewBadRequest(CodeAlreadyInWishlist, "product already in wishlist")
	}

	items = append(items, domain.WishlistItem{ProductID: productID, AddedAt: s.now().UTC()})
	if err := s.wishlists.Save(ctx, userID, items); err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.EventWishlistItemAdded, userID, events.WishlistPayload{ProductID: productID, Count: len(items)}))
	return items, nil
}

// Remove deletes productID from the wishlist.
func (s *WishlistService) Remove(ctx context.Context, userID, productID int64) (domain.Wishlist, error) {
	items, err := s.wishlists.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := items.Index(productID)
	if idx < 0 {
		return nil, apperrors.NewDomainError(CodeNotInWishlist, "product not in wishlist", http.StatusNotFound, map[string]any{"product_id": productID})
	}

	items = append(items[:idx:idx], items[idx+1:]...)
	if err := s.wishlists.Save(ctx, userID, items); err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.EventWishlistItemRemoved, userID, events.WishlistPayload{ProductID: productID, Count: len(items)}))
	return items, nil
}

// Clear empties the wishlist and returns how many items were removed.
func (s *WishlistService) Clear(ctx context.Context, userID int64) (int, error) {
	items, err := s.wishlists.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.wishlists.Save(ctx, userID, domain.Wishlist{}); err != nil {
		return 0, err
	}
	s.publish(ctx, events.New(events.EventWishlistCleared, userID, events.WishlistPayload{Count: len(items)}))
	return len(items), nil
}

// Contains reports whether productID is on the user's wishlist.
func (s *WishlistService) Contains(ctx context.Context, userID, productID int64) (bool, error) {
	items, err := s.wishlists.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return items.Contains(productID), nil
}

func (s *WishlistService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
