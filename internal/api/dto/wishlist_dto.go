package dto

import "time"

// AddWishlistRequest payload.
type AddWishlistRequest struct {
	ProductID int64 `json:"product_id" form:"product_id"`
}

// WishlistItemResponse is one wishlist entry.
type WishlistItemResponse struct {
	ProductID int64           `json:"product_id"`
	AddedAt   time.Time       `json:"added_at"`
	Product   *ProductSummary `json:"product"`
}

// WishlistCheckResponse answers whether a product is on the wishlist.
type WishlistCheckResponse struct {
	ProductID  int64 `json:"product_id"`
	InWishlist bool  `json:"in_wishlist"`
}

// WishlistChangeResponse reports the wishlist size after a mutation.
type WishlistChangeResponse struct {
	Message   string `json:"message"`
	ProductID int64  `json:"product_id,omitempty"`
	Count     int    `json:"count"`
}
