package repository

import (
	"context"

	"github.com/nguyentranbao-ct/price-extractor/internal/models"
)

// ProductPriceRepository persists extracted prices and serves them back.
type ProductPriceRepository interface {
	// SaveBatch stores all products in one transaction, sharing imagePath and
	// metadata. On failure nothing of the batch is stored.
	SaveBatch(ctx context.Context, products []models.ExtractedProduct, imagePath *string, metadata models.Metadata) ([]*models.ProductPrice, error)
	List(ctx context.Context, filter models.ListFilter) (*models.PageResult, error)
	GetByID(ctx context.Context, id int64) (*models.ProductPrice, error)
}
