package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-api/internal/api/dto"
	"github.com/spec-kit/storefront-api/internal/auth"
	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/service"
	"github.com/spec-kit/storefront-api/internal/validation"
	apperrors "github.com/spec-kit/storefront-api/pkg/util/errorutil"
)

const defaultRelatedLimit = 4

var productOrderings = []string{"date", "price", "name", "popularity"}

// ProductsHandler serves catalog reads. Routes run behind OptionalAuth so
// signed-in callers get in_wishlist flags.
type ProductsHandler struct {
	products       *service.ProductService
	wishlist       *service.WishlistService
	defaultPerPage int
	maxPerPage     int
}

// NewProductsHandler constructs handler.
func NewProductsHandler(products *service.ProductService, wishlist *service.WishlistService, defaultPerPage, maxPerPage int) *ProductsHandler {
	if defaultPerPage <= 0 {
		defaultPerPage = 10
	}
	if maxPerPage <= 0 {
		maxPerPage = 100
	}
	return &ProductsHandler{
		products:       products,
		wishlist:       wishlist,
		defaultPerPage: defaultPerPage,
		maxPerPage:     maxPerPage,
	}
}

// List GET /products.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	v := validation.New()
	query := h.parseListQuery(v, c)
	if err := v.Err(); err != nil {
		return err
	}

	page, err := h.products.List(c.UserContext(), query)
	if err != nil {
		return err
	}
	return h.respondPage(c, page)
}

// Search GET /search?q=.
func (h *ProductsHandler) Search(c *fiber.Ctx) error {
	v := validation.New()
	query := h.parseListQuery(v, c)
	query.Search = strings.TrimSpace(c.Query("q"))
	v.Field("q", query.Search).Required().Min(2)
	if err := v.Err(); err != nil {
		return err
	}

	page, err := h.products.Search(c.UserContext(), query)
	if err != nil {
		return err
	}
	return h.respondPage(c, page)
}

// Get GET /products/:id.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return apperrors.NewNotFound("product", map[string]any{"product_id": c.Params("id")})
	}
	product, err := h.products.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return h.respondProduct(c, product)
}

// GetBySlug GET /products/slug/:slug.
func (h *ProductsHandler) GetBySlug(c *fiber.Ctx) error {
	product, err := h.products.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return h.respondProduct(c, product)
}

// Related GET /products/:id/related.
func (h *ProductsHandler) Related(c *fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return apperrors.NewNotFound("product", map[string]any{"product_id": c.Params("id")})
	}
	v := validation.New()
	limit := queryInt(v, c, "limit", defaultRelatedLimit)
	v.Field("limit", limit).Min(1).Max(h.maxPerPage)
	if err := v.Err(); err != nil {
		return err
	}

	items, err := h.products.Related(c.UserContext(), id, limit)
	if err != nil {
		return err
	}
	flags, err := h.wishlistFlags(c)
	if err != nil {
		return err
	}
	out := make([]dto.ProductSummary, 0, len(items))
	for i := range items {
		out = append(out, productSummary(&items[i], flags(items[i].ID)))
	}
	return ok(c, out)
}

// Categories GET /categories.
func (h *ProductsHandler) Categories(c *fiber.Ctx) error {
	categories, err := h.products.Categories(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.CategoryResponse, 0, len(categories))
	for _, category := range categories {
		out = append(out, categoryResponse(category))
	}
	return ok(c, out)
}

func (h *ProductsHandler) parseListQuery(v *validation.Validator, c *fiber.Ctx) service.ProductQuery {
	query := service.ProductQuery{
		Page:     queryInt(v, c, "page", 1),
		PerPage:  queryInt(v, c, "per_page", h.defaultPerPage),
		Category: strings.TrimSpace(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
		MinPrice: queryFloat(v, c, "min_price"),
		MaxPrice: queryFloat(v, c, "max_price"),
		InStock:  queryBool(v, c, "in_stock"),
		Featured: queryBool(v, c, "featured"),
		OnSale:   queryBool(v, c, "on_sale"),
		OrderBy:  strings.ToLower(strings.TrimSpace(c.Query("orderby"))),
		Order:    strings.ToLower(strings.TrimSpace(c.Query("order"))),
	}
	v.Field("page", query.Page).Min(1)
	v.Field("per_page", query.PerPage).Min(1).Max(h.maxPerPage)
	v.Field("orderby", query.OrderBy).Optional().In(productOrderings...)
	v.Field("order", query.Order).Optional().In("asc", "desc")
	if query.MinPrice != nil && query.MaxPrice != nil {
		v.Field("max_price", *query.MaxPrice).Custom(*query.MaxPrice >= *query.MinPrice, "range", "max_price must not be below min_price")
	}
	return query
}

func (h *ProductsHandler) respondPage(c *fiber.Ctx, page *service.ProductPage) error {
	flags, err := h.wishlistFlags(c)
	if err != nil {
		return err
	}
	out := make([]dto.ProductSummary, 0, len(page.Items))
	for i := range page.Items {
		out = append(out, productSummary(&page.Items[i], flags(page.Items[i].ID)))
	}
	return respond(c, fiber.StatusOK, out, dto.NewPageMeta(page.Total, page.Page, page.PerPage))
}

func (h *ProductsHandler) respondProduct(c *fiber.Ctx, product *domain.Product) error {
	flags, err := h.wishlistFlags(c)
	if err != nil {
		return err
	}
	return ok(c, productResponse(product, flags(product.ID)))
}

// wishlistFlags loads the caller's wishlist once per request. Anonymous
// callers get a lookup that always returns nil, which omits the flag.
func (h *ProductsHandler) wishlistFlags(c *fiber.Ctx) (func(int64) *bool, error) {
	userID := auth.OptionalUserID(c)
	if userID == 0 || h.wishlist == nil {
		return func(int64) *bool { return nil }, nil
	}
	items, err := h.wishlist.Items(c.UserContext(), userID)
	if err != nil {
		return nil, err
	}
	return func(productID int64) *bool {
		in := items.Contains(productID)
		return &in
	}, nil
}
