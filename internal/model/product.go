package model

import "github.com/shopspring/decimal"

// ProductKind distinguishes goods from billable services.
type ProductKind string

const (
	ProductGoods   ProductKind = "product"
	ProductService ProductKind = "service"
)

// Product is a catalog item used to prefill document lines.
type Product struct {
	ID          string
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	Kind        ProductKind
}
