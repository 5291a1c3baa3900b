package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// MaxProductNameLength is the width of the product_name column.
	MaxProductNameLength = 200
	// PriceScale is the number of fractional digits kept for a price.
	PriceScale = 2
)

// MaxPrice is the exclusive upper bound of a decimal(10,2) price.
var MaxPrice = decimal.New(1, 8)

// ExtractedProduct is a validated (name, price) pair read from a vision reply.
// It only exists between normalization and persistence.
type ExtractedProduct struct {
	ProductName string
	Price       decimal.Decimal
}

// ProductPrice is a persisted price observation. Records are created in one
// batch per uploaded image and never updated.
type ProductPrice struct {
	ID          int64
	ProductName string
	Price       decimal.Decimal
	ImagePath   *string
	ExtractedAt time.Time
	CreatedAt   time.Time
	Metadata    Metadata
}

// ProductPriceResponse is the wire shape of a ProductPrice.
type ProductPriceResponse struct {
	ID          int64     `json:"id"`
	ProductName string    `json:"product_name"`
	Price       float64   `json:"price"`
	ImagePath   *string   `json:"image_path"`
	ExtractedAt time.Time `json:"extracted_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p *ProductPrice) ToResponse() ProductPriceResponse {
	return ProductPriceResponse{
		ID:          p.ID,
		ProductName: p.ProductName,
		Price:       p.Price.InexactFloat64(),
		ImagePath:   p.ImagePath,
		ExtractedAt: p.ExtractedAt,
		CreatedAt:   p.CreatedAt,
	}
}

func ToResponses(items []*ProductPrice) []ProductPriceResponse {
	out := make([]ProductPriceResponse, 0, len(items))
	for _, item := range items {
		out = append(out, item.ToResponse())
	}
	return out
}
