package domain

import "time"

// ProductStatus mirrors catalog publication states.
type ProductStatus string

const (
	ProductStatusPublish ProductStatus = "publish"
	ProductStatusDraft   ProductStatus = "draft"
	ProductStatusPrivate ProductStatus = "private"
)

// StockStatus reports availability.
type StockStatus string

const (
	StockStatusInStock     StockStatus = "instock"
	StockStatusOutOfStock  StockStatus = "outofstock"
	StockStatusOnBackorder StockStatus = "onbackorder"
)

// Product is a sellable catalog item.
type Product struct {
	ID               int64
	Name             string
	Slug             string
	SKU              string
	Type             string
	Status           ProductStatus
	Featured         bool
	Description      string
	ShortDescription string
	Price            float64
	RegularPrice     float64
	SalePrice        *float64
	StockStatus      StockStatus
	StockQuantity    *int
	TotalSales       int
	AverageRating    float64
	RatingCount      int
	Images           []string
	Categories       []Category
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OnSale reports whether a sale price below the regular price is active.
func (p *Product) OnSale() bool {
	return p.SalePrice != nil && *p.SalePrice < p.RegularPrice
}

// InStock reports whether the product can be purchased now.
func (p *Product) InStock() bool {
	return p.StockStatus != StockStatusOutOfStock
}

// Category is a product taxonomy term.
type Category struct {
	ID       int64
	Name     string
	Slug     string
	ParentID *int64
	Count    int
}
