// Package testutil provides in-memory stores and fixtures for package tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/storefront-api/internal/auth"
	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/repository"
)

// Issuer is the canonical origin used by test token managers.
const Issuer = "https://shop.test"

// Secret signs test tokens.
var Secret = []byte("test-secret-with-enough-entropy-for-hs256-signing-0123456789abcdef")

// UserStore is an in-memory repository.UserRepository.
type UserStore struct {
	mu    sync.RWMutex
	users map[int64]domain.User
	next  int64
}

// NewUserStore returns an empty store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[int64]domain.User), next: 1}
}

// Add registers a user with a bcrypt hash of password and returns it.
func (s *UserStore) Add(t testing.TB, username, password string) domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user := domain.User{
		ID:           s.next,
		Username:     username,
		Email:        username + "@example.com",
		DisplayName:  strings.ToUpper(username[:1]) + username[1:],
		PasswordHash: hash,
		Roles:        []string{"customer"},
		RegisteredAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	s.users[user.ID] = user
	s.next++
	return user
}

// Delete removes a user.
func (s *UserStore) Delete(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

func (s *UserStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (s *UserStore) GetByLogin(_ context.Context, login string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == login || strings.EqualFold(user.Email, login) {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *UserStore) Exists(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[id]
	return ok, nil
}

// ProductStore is an in-memory repository.ProductRepository supporting the
// filters the services use.
type ProductStore struct {
	mu         sync.RWMutex
	products   map[int64]domain.Product
	categories []domain.Category
}

// NewProductStore returns a store holding products.
func NewProductStore(products ...domain.Product) *ProductStore {
	s := &ProductStore{products: make(map[int64]domain.Product)}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

// SetCategories replaces the category list.
func (s *ProductStore) SetCategories(categories ...domain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = categories
}

func (s *ProductStore) published(id int64) (domain.Product, bool) {
	p, ok := s.products[id]
	if !ok || p.Status != domain.ProductStatusPublish {
		return domain.Product{}, false
	}
	return p, true
}

func (s *ProductStore) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.published(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (s *ProductStore) GetBySlug(_ context.Context, slug string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id := range s.products {
		if p, ok := s.published(id); ok && p.Slug == slug {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *ProductStore) GetByIDs(_ context.Context, ids []int64) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Product
	for _, id := range ids {
		if p, ok := s.published(id); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *ProductStore) List(_ context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.Product
	for id := range s.products {
		p, ok := s.published(id)
		if !ok || !matches(p, filter) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	start := filter.Offset
	if start > total {
		start = total
	}
	end := total
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	return matched[start:end], total, nil
}

func (s *ProductStore) ListCategories(context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category(nil), s.categories...), nil
}

func matches(p domain.Product, f repository.ProductFilter) bool {
	if f.ExcludeID > 0 && p.ID == f.ExcludeID {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
		return false
	}
	if f.CategorySlug != "" && !hasCategory(p, func(c domain.Category) bool { return c.Slug == f.CategorySlug }) {
		return false
	}
	if len(f.CategoryIDs) > 0 && !hasCategory(p, func(c domain.Category) bool {
		for _, id := range f.CategoryIDs {
			if c.ID == id {
				return true
			}
		}
		return false
	}) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.InStock != nil && p.InStock() != *f.InStock {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	if f.OnSale != nil && p.OnSale() != *f.OnSale {
		return false
	}
	return true
}

func hasCategory(p domain.Product, pred func(domain.Category) bool) bool {
	for _, c := range p.Categories {
		if pred(c) {
			return true
		}
	}
	return false
}

// WishlistStore is an in-memory repository.WishlistRepository.
type WishlistStore struct {
	mu    sync.Mutex
	lists map[int64]domain.Wishlist
}

// NewWishlistStore returns an empty store.
func NewWishlistStore() *WishlistStore {
	return &WishlistStore{lists: make(map[int64]domain.Wishlist)}
}

func (s *WishlistStore) Get(_ context.Context, userID int64) (domain.Wishlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(domain.Wishlist{}, s.lists[userID]...), nil
}

func (s *WishlistStore) Save(_ context.Context, userID int64, items domain.Wishlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[userID] = append(domain.Wishlist{}, items...)
	return nil
}

// SettingsStore is an in-memory auth.SecretStore.
type SettingsStore struct {
	mu     sync.Mutex
	values map[string]string
	Puts   int
}

// NewSettingsStore returns an empty store.
func NewSettingsStore() *SettingsStore {
	return &SettingsStore{values: make(map[string]string)}
}

func (s *SettingsStore) Get(_ context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[name]
	if !ok {
		return "", auth.ErrSettingNotFound
	}
	return value, nil
}

func (s *SettingsStore) PutIfAbsent(_ context.Context, name, value string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Puts++
	if existing, ok := s.values[name]; ok {
		return existing, nil
	}
	s.values[name] = value
	return value, nil
}

// TokenManager builds a manager over users with default lifetimes.
func TokenManager(users auth.UserLookup) *auth.TokenManager {
	return auth.NewTokenManager(auth.TokenSettings{
		Secret:     Secret,
		Issuer:     Issuer,
		AccessTTL:  time.Hour,
		RefreshTTL: 7 * 24 * time.Hour,
	}, users)
}

// Product returns a published, in-stock product fixture.
func Product(id int64, name string, price float64, categories ...domain.Category) domain.Product {
	return domain.Product{
		ID:           id,
		Name:         name,
		Slug:         strings.ReplaceAll(strings.ToLower(name), " ", "-"),
		Type:         "simple",
		Status:       domain.ProductStatusPublish,
		Price:        price,
		RegularPrice: price,
		StockStatus:  domain.StockStatusInStock,
		Categories:   categories,
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Hour),
		UpdatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}
