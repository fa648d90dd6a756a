package service

import (
	"context"
	"errors"
	"math"

	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/repository"
	apperrors "github.com/spec-kit/storefront-api/pkg/util/errorutil"
)

// ProductCache is an optional read-through cache for catalog lookups.
type ProductCache interface {
	Product(ctx context.Context, id int64) (*domain.Product, bool)
	StoreProduct(ctx context.Context, product *domain.Product)
	Categories(ctx context.Context) ([]domain.Category, bool)
	StoreCategories(ctx context.Context, categories []domain.Category)
}

// ProductQuery describes a catalog listing request.
type ProductQuery struct {
	Page     int
	PerPage  int
	Category string
	Search   string
	MinPrice *float64
	MaxPrice *float64
	InStock  *bool
	Featured *bool
	OnSale   *bool
	OrderBy  string
	Order    string
}

// ProductPage is one page of a listing.
type ProductPage struct {
	Items   []domain.Product
	Total   int
	Page    int
	PerPage int
}

// ProductService serves catalog reads.
type ProductService struct {
	products repository.ProductRepository
	cache    ProductCache
}

// NewProductService constructs the service; cache may be nil.
func NewProductService(products repository.ProductRepository, cache ProductCache) *ProductService {
	return &ProductService{products: products, cache: cache}
}

// List returns a filtered page of published products.
func (s *ProductService) List(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	page, perPage := normalizePage(q.Page, q.PerPage)
	filter := repository.ProductFilter{
		CategorySlug: q.Category,
		Search:       q.Search,
		MinPrice:     q.MinPrice,
		MaxPrice:     q.MaxPrice,
		InStock:      q.InStock,
		Featured:     q.Featured,
		OnSale:       q.OnSale,
		OrderBy:      q.OrderBy,
		Order:        q.Order,
		Limit:        perPage,
		Offset:       pageOffset(page, perPage),
	}
	items, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

// Search is List with a mandatory search term; relevance falls back to name order.
func (s *ProductService) Search(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	if q.OrderBy == "" {
		q.OrderBy = "name"
		q.Order = "asc"
	}
	return s.List(ctx, q)
}

// Get returns a published product by id.
func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	if s.cache != nil {
		if product, ok := s.cache.Product(ctx, id); ok {
			return product, nil
		}
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, productLookupError(err, id)
	}
	if s.cache != nil {
		s.cache.StoreProduct(ctx, product)
	}
	return product, nil
}

// GetBySlug returns a published product by slug.
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	product, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("product", map[string]any{"slug": slug})
		}
		return nil, err
	}
	return product, nil
}

// Related returns products that share a category with id.
func (s *ProductService) Related(ctx context.Context, id int64, limit int) ([]domain.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(product.Categories) == 0 {
		return []domain.Product{}, nil
	}
	categoryIDs := make([]int64, 0, len(product.Categories))
	for _, category := range product.Categories {
		categoryIDs = append(categoryIDs, category.ID)
	}
	_, limit = normalizePage(1, limit)
	items, _, err := s.products.List(ctx, repository.ProductFilter{
		CategoryIDs: categoryIDs,
		ExcludeID:   id,
		OrderBy:     "popularity",
		Limit:       limit,
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Categories lists product categories with published product counts.
func (s *ProductService) Categories(ctx context.Context) ([]domain.Category, error) {
	if s.cache != nil {
		if categories, ok := s.cache.Categories(ctx); ok {
			return categories, nil
		}
	}
	categories, err := s.products.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.StoreCategories(ctx, categories)
	}
	return categories, nil
}

func productLookupError(err error, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("product", map[string]any{"product_id": id})
	}
	return err
}

const (
	defaultPerPage = 10
	maxPerPage     = 100
	maxOffset      = math.MaxInt32
)

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// pageOffset returns the number of rows before page, saturating at maxOffset
// so absurd page numbers yield an empty page instead of overflowing.
func pageOffset(page, perPage int) int {
	if page-1 > maxOffset/perPage {
		return maxOffset
	}
	return (page - 1) * perPage
}
