package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nguyentranbao-ct/price-extractor/internal/models"
	log "github.com/nguyentranbao-ct/price-extractor/pkg/logger/logctx"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

const (
	fieldProducts    = "products"
	fieldProductName = "product_name"
	fieldPrice       = "price"
)

// Parsed prices keep their exponent, and rounding rescales through big.Int.
// Any accepted price fits comfortably inside these bounds.
const (
	maxPriceExponent = 8
	minPriceExponent = -18
)

// NormalizeProducts turns a raw vision reply into validated products.
// Malformed entries are logged and skipped; the result keeps input order and
// is empty (never nil) when nothing valid was found.
func NormalizeProducts(ctx context.Context, raw models.RawPayload) []models.ExtractedProduct {
	out := []models.ExtractedProduct{}
	if !gjson.ValidBytes(raw) {
		return out
	}

	products := gjson.GetBytes(raw, fieldProducts)
	if !products.IsArray() {
		return out
	}

	products.ForEach(func(idx, entry gjson.Result) bool {
		product, err := parseProduct(entry)
		if err != nil {
			log.Warnw(ctx, "skip extracted entry", "index", idx.Int(), "entry", entry.Raw, "error", err)
			return true
		}
		out = append(out, product)
		return true
	})
	return out
}

func parseProduct(entry gjson.Result) (models.ExtractedProduct, error) {
	if !entry.IsObject() {
		return models.ExtractedProduct{}, models.ValidationError("entry is not an object", nil)
	}

	nameField := entry.Get(fieldProductName)
	priceField := entry.Get(fieldPrice)
	if !nameField.Exists() || !priceField.Exists() {
		return models.ExtractedProduct{}, models.ValidationError("missing product_name or price", nil)
	}

	price, err := parsePrice(priceField)
	if err != nil {
		return models.ExtractedProduct{}, err
	}
	name, err := parseName(nameField)
	if err != nil {
		return models.ExtractedProduct{}, err
	}

	return models.ExtractedProduct{
		ProductName: name,
		Price:       price,
	}, nil
}

// parsePrice accepts a JSON number or a numeric string.
func parsePrice(field gjson.Result) (decimal.Decimal, error) {
	var text string
	switch field.Type {
	case gjson.Number:
		text = field.Raw
	case gjson.String:
		text = strings.TrimSpace(field.Str)
	default:
		return decimal.Zero, models.ValidationError(fmt.Sprintf("invalid price format: %s", field.Raw), nil)
	}

	price, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, models.ValidationError(fmt.Sprintf("invalid price format: %q", text), err)
	}
	if exp := price.Exponent(); exp > maxPriceExponent || exp < minPriceExponent {
		return decimal.Zero, models.ValidationError(fmt.Sprintf("price out of range: %s", text), nil)
	}

	price = price.Round(models.PriceScale)
	if !price.IsPositive() {
		return decimal.Zero, models.ValidationError(fmt.Sprintf("price must be positive: %s", text), nil)
	}
	if price.GreaterThanOrEqual(models.MaxPrice) {
		return decimal.Zero, models.ValidationError(fmt.Sprintf("price out of range: %s", text), nil)
	}
	return price, nil
}

// parseName accepts a JSON string or number and trims it.
func parseName(field gjson.Result) (string, error) {
	var name string
	switch field.Type {
	case gjson.String:
		name = field.Str
	case gjson.Number:
		name = field.Raw
	default:
		return "", models.ValidationError(fmt.Sprintf("invalid product_name: %s", field.Raw), nil)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return "", models.ValidationError("empty product_name", nil)
	}
	if utf8.RuneCountInString(name) > models.MaxProductNameLength {
		return "", models.ValidationError("product_name too long", nil)
	}
	return name, nil
}
