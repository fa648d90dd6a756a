package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-api/internal/api/dto"
	"github.com/spec-kit/storefront-api/internal/auth"
	"github.com/spec-kit/storefront-api/internal/service"
	"github.com/spec-kit/storefront-api/internal/validation"
)

// WishlistHandler manages the authenticated caller's wishlist.
type WishlistHandler struct {
	service        *service.WishlistService
	defaultPerPage int
	maxPerPage     int
}

// NewWishlistHandler constructs handler.
func NewWishlistHandler(wishlistService *service.WishlistService, defaultPerPage, maxPerPage int) *WishlistHandler {
	if defaultPerPage <= 0 {
		defaultPerPage = 10
	}
	if maxPerPage <= 0 {
		maxPerPage = 100
	}
	return &WishlistHandler{service: wishlistService, defaultPerPage: defaultPerPage, maxPerPage: maxPerPage}
}

// List GET /wishlist.
func (h *WishlistHandler) List(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	v := validation.New()
	page := queryInt(v, c, "page", 1)
	perPage := queryInt(v, c, "per_page", h.defaultPerPage)
	v.Field("page", page).Min(1)
	v.Field("per_page", perPage).Min(1).Max(h.maxPerPage)
	if err := v.Err(); err != nil {
		return err
	}

	result, err := h.service.List(c.UserContext(), identity.UserID, page, perPage)
	if err != nil {
		return err
	}
	inWishlist := true
	items := make([]dto.WishlistItemResponse, 0, len(result.Entries))
	for _, entry := range result.Entries {
		item := dto.WishlistItemResponse{ProductID: entry.Item.ProductID, AddedAt: entry.Item.AddedAt}
		if entry.Product != nil {
			summary := productSummary(entry.Product, &inWishlist)
			item.Product = &summary
		}
		items = append(items, item)
	}
	return respond(c, fiber.StatusOK, items, dto.NewPageMeta(result.Total, result.Page, result.PerPage))
}

// Add POST /wishlist.
func (h *WishlistHandler) Add(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	var req dto.AddWishlistRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	v := validation.New()
	v.Field("product_id", req.ProductID).Required().Positive()
	if err := v.Err(); err != nil {
		return err
	}

	items, err := h.service.Add(c.UserContext(), identity.UserID, req.ProductID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, dto.WishlistChangeResponse{
		Message:   "product added to wishlist",
		ProductID: req.ProductID,
		Count:     len(items),
	}, nil)
}

// Remove DELETE /wishlist/:product_id.
func (h *WishlistHandler) Remove(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	productID, valid := paramID(c, "product_id")
	if !valid {
		v := validation.New()
		v.Field("product_id", c.Params("product_id")).Custom(false, "positive", "product_id must be a positive integer")
		return v.Err()
	}

	items, err := h.service.Remove(c.UserContext(), identity.UserID, productID)
	if err != nil {
		return err
	}
	return ok(c, dto.WishlistChangeResponse{
		Message:   "product removed from wishlist",
		ProductID: productID,
		Count:     len(items),
	})
}

// Clear DELETE /wishlist.
func (h *WishlistHandler) Clear(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	removed, err := h.service.Clear(c.UserContext(), identity.UserID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.WishlistChangeResponse{Message: "wishlist cleared", Count: 0},
		fiber.Map{"removed": removed})
}

// Check GET /wishlist/check/:product_id.
func (h *WishlistHandler) Check(c *fiber.Ctx) error {
	identity, err := auth.MustIdentity(c)
	if err != nil {
		return err
	}
	productID, valid := paramID(c, "product_id")
	if !valid {
		v := validation.New()
		v.Field("product_id", c.Params("product_id")).Custom(false, "positive", "product_id must be a positive integer")
		return v.Err()
	}
	in, err := h.service.Contains(c.UserContext(), identity.UserID, productID)
	if err != nil {
		return err
	}
	return ok(c, dto.WishlistCheckResponse{ProductID: productID, InWishlist: in})
}
