package domain

import "time"

// WishlistItem is one entry of a user's wishlist blob.
type WishlistItem struct {
	ProductID int64     `json:"product_id"`
	AddedAt   time.Time `json:"added_at"`
}

// Wishlist is the ordered list stored per user.
type Wishlist []WishlistItem

// Index returns the position of productID or -1.
func (w Wishlist) Index(productID int64) int {
	for i, item := range w {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// Contains reports whether productID is present.
func (w Wishlist) Contains(productID int64) bool {
	return w.Index(productID) >= 0
}

// ProductIDs returns ids in wishlist order.
func (w Wishlist) ProductIDs() []int64 {
	ids := make([]int64, 0, len(w))
	for _, item := range w {
		ids = append(ids, item.ProductID)
	}
	return ids
}
