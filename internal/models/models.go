package models

import "time"

// Product types
const (
	ProductTypeSimple   = "simple"
	ProductTypeVariable = "variable"
)

// Stock statuses
const (
	StockStatusInStock    = "in_stock"
	StockStatusOutOfStock = "outofstock"
)

// Product is a point-in-time catalog snapshot of a purchasable product.
// StockQty is nil when stock is not tracked for the product.
type Product struct {
	ID           int64       `db:"id" json:"id"`
	SKU          string      `db:"sku" json:"sku"`
	Name         string      `db:"name" json:"name"`
	Type         string      `db:"type" json:"type"`
	Price        float64     `db:"price" json:"price"`
	PriceDisplay string      `db:"price_display" json:"price_display"`
	Permalink    string      `db:"permalink" json:"permalink"`
	Image        string      `db:"image" json:"image"`
	StockStatus  string      `db:"stock_status" json:"stock_status"`
	StockQty     *int        `db:"stock_qty" json:"stock_qty"`
	Purchasable  bool        `db:"purchasable" json:"purchasable"`
	IsBox        bool        `db:"is_box" json:"is_box"`
	Variations   []Variation `db:"-" json:"variations"`
	CreatedAt    time.Time   `db:"created_at" json:"-"`
}

// Variation belongs to a variable product and carries its own price and stock.
type Variation struct {
	ID              int64             `db:"id" json:"id"`
	ParentProductID int64             `db:"parent_product_id" json:"parent_product_id"`
	Name            string            `db:"name" json:"name"`
	Price           float64           `db:"price" json:"price"`
	PriceDisplay    string            `db:"price_display" json:"price_display"`
	StockStatus     string            `db:"stock_status" json:"stock_status"`
	StockQty        *int              `db:"stock_qty" json:"stock_qty"`
	Purchasable     bool              `db:"purchasable" json:"purchasable"`
	Attributes      map[string]string `db:"-" json:"attributes"`
}

// InStock reports whether the product can currently be sold.
func (p *Product) InStock() bool {
	return p.StockStatus != StockStatusOutOfStock
}

// InStock reports whether the variation can currently be sold.
func (v *Variation) InStock() bool {
	return v.StockStatus != StockStatusOutOfStock
}

// RuleSet holds the configured bundle acceptance thresholds. Immutable for
// the lifetime of a session or request.
type RuleSet struct {
	MinItems   int     `json:"min_items"`
	MinTotal   float64 `json:"min_total"`
	RequireBox bool    `json:"require_box"`
}

// Currency describes how monetary amounts are rendered.
type Currency struct {
	Code              string `json:"code"`
	Symbol            string `json:"symbol"`
	Decimals          int    `json:"decimals"`
	DecimalSeparator  string `json:"decimalSeparator"`
	ThousandSeparator string `json:"thousandSeparator"`
	Format            string `json:"format"`
}

// Section groups catalog products under a configured label.
type Section struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
	Permalink   string    `json:"permalink"`
	Products    []Product `json:"products"`
}

// CatalogPayload is the response of the catalog endpoint, consumed by the
// selection engine at initialization.
type CatalogPayload struct {
	Currency Currency          `json:"currency"`
	Boxes    []Product         `json:"boxes"`
	Sections []Section         `json:"sections"`
	Rules    RuleSet           `json:"rules"`
	Intro    string            `json:"intro"`
	I18n     map[string]string `json:"i18n"`
}

// BundleItemRequest is one item entry in a bundle submission.
type BundleItemRequest struct {
	ProductID   int64 `json:"product_id"`
	VariationID int64 `json:"variation_id"`
	Quantity    int   `json:"quantity"`
}

// BundleRequest is the submit-bundle wire payload.
type BundleRequest struct {
	Box   *BundleItemRequest  `json:"box"`
	Items []BundleItemRequest `json:"items"`
}

// BundleResponse is returned on a fully successful submission.
type BundleResponse struct {
	Success  bool    `json:"success"`
	Total    string  `json:"total"`
	Redirect *string `json:"redirect"`
}

// CartLine is the entry the cart service stores per inserted item.
type CartLine struct {
	ProductID   int64             `json:"product_id"`
	VariationID int64             `json:"variation_id"`
	Quantity    int               `json:"quantity"`
	UnitPrice   float64           `json:"unit_price"`
	Name        string            `json:"name"`
	IsBox       bool              `json:"is_box"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// Redirect destinations after a successful submission.
const (
	RedirectCheckout = "checkout"
	RedirectCart     = "cart"
	RedirectStay     = "stay"
)
