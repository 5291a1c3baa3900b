package usecase

import (
	"context"

	"github.com/nguyentranbao-ct/price-extractor/internal/models"
	"github.com/nguyentranbao-ct/price-extractor/internal/repository"
)

type ProductUsecase interface {
	List(ctx context.Context, filter models.ListFilter) (*models.PageResult, error)
	GetByID(ctx context.Context, id int64) (*models.ProductPrice, error)
}

type productUsecase struct {
	repo repository.ProductPriceRepository
}

func NewProductUsecase(repo repository.ProductPriceRepository) ProductUsecase {
	return &productUsecase{repo: repo}
}

// List fills in the default page and page size when they are unset.
func (uc *productUsecase) List(ctx context.Context, filter models.ListFilter) (*models.PageResult, error) {
	if filter.Page <= 0 {
		filter.Page = models.DefaultPage
	}
	if filter.PageSize <= 0 {
		filter.PageSize = models.DefaultPageSize
	}
	return uc.repo.List(ctx, filter)
}

func (uc *productUsecase) GetByID(ctx context.Context, id int64) (*models.ProductPrice, error) {
	return uc.repo.GetByID(ctx, id)
}
