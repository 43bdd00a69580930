package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// MaxQuantity is the largest stock or line quantity the INTEGER column holds.
const MaxQuantity = math.MaxInt32

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name" validate:"required,max=255"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price" validate:"gte=0,lt=10000000000"`
	Quantity    int             `json:"quantity" validate:"gte=0,lte=2147483647"`
	ImageURL    *string         `json:"image_url,omitempty"`
	OwnerID     int64           `json:"owner_id"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ProductImage is an uploaded image that has not been stored yet.
type ProductImage struct {
	Filename string
	Size     int64
	Content  []byte
}
