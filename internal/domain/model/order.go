package model

import "github.com/shopspring/decimal"

// OrderRequest is an order as submitted: line items are positional pairs of
// ProductIDs[i] and Quantities[i], applied in the given order.
type OrderRequest struct {
	RequestID  string  `json:"request_id,omitempty"`
	UserID     int64   `json:"user_id"`
	ProductIDs []int64 `json:"product_ids" validate:"required,min=1,dive,gt=0"`
	Quantities []int   `json:"quantities" validate:"required,min=1,dive,gt=0,lte=2147483647"`
}

type LineItem struct {
	ProductID int64
	Quantity  int
}

// LineItems pairs product ids with quantities. Callers must check lengths first.
func (r OrderRequest) LineItems() []LineItem {
	items := make([]LineItem, len(r.ProductIDs))
	for i, id := range r.ProductIDs {
		items[i] = LineItem{ProductID: id, Quantity: r.Quantities[i]}
	}
	return items
}

type OrderResult struct {
	Total decimal.Decimal `json:"total_amount"`
}
