package dto

import "time"

// ProductResponse is the full product representation.
type ProductResponse struct {
	ID               int64              `json:"id"`
	Name             string             `json:"name"`
	Slug             string             `json:"slug"`
	SKU              string             `json:"sku"`
	Type             string             `json:"type"`
	Featured         bool               `json:"featured"`
	Description      string             `json:"description"`
	ShortDescription string             `json:"short_description"`
	Price            float64            `json:"price"`
	RegularPrice     float64            `json:"regular_price"`
	SalePrice        *float64           `json:"sale_price"`
	OnSale           bool               `json:"on_sale"`
	StockStatus      string             `json:"stock_status"`
	StockQuantity    *int               `json:"stock_quantity"`
	InStock          bool               `json:"in_stock"`
	AverageRating    float64            `json:"average_rating"`
	RatingCount      int                `json:"rating_count"`
	Images           []string           `json:"images"`
	Categories       []CategoryResponse `json:"categories"`
	InWishlist       *bool              `json:"in_wishlist,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// ProductSummary is the compact form used in lists.
type ProductSummary struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Slug       string   `json:"slug"`
	Price      float64  `json:"price"`
	OnSale     bool     `json:"on_sale"`
	InStock    bool     `json:"in_stock"`
	Image      string   `json:"image,omitempty"`
	Categories []string `json:"categories"`
	InWishlist *bool    `json:"in_wishlist,omitempty"`
}

// CategoryResponse describes a product category.
type CategoryResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ParentID *int64 `json:"parent_id,omitempty"`
	Count    int    `json:"count,omitempty"`
}
