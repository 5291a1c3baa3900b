package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentranbao-ct/price-extractor/internal/models"
	"github.com/nguyentranbao-ct/price-extractor/internal/repo/llm"
	"github.com/nguyentranbao-ct/price-extractor/internal/repository"
	log "github.com/nguyentranbao-ct/price-extractor/pkg/logger/logctx"
	"github.com/nguyentranbao-ct/price-extractor/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
)

const NoProductsMessage = "No products found in the image or extraction failed"

const (
	outcomeSuccess    = "success"
	outcomeEmpty      = "empty"
	outcomeConfig     = "config_error"
	outcomeExtraction = "extraction_error"
	outcomePersist    = "persistence_error"
	outcomeUnknown    = "unknown_error"
)

type ExtractionUsecase interface {
	// Run extracts, normalizes and stores the products of one image. Config
	// and persistence failures are returned as errors; an unusable reply
	// yields an unsuccessful result instead.
	Run(ctx context.Context, input models.ExtractionInput) (*models.ExtractionResult, error)
}

type extractionUsecase struct {
	extractor llm.Extractor
	repo      repository.ProductPriceRepository
	prompt    string
	duration  *prometheus.HistogramVec
}

func NewExtractionUsecase(extractor llm.Extractor, repo repository.ProductPriceRepository) (ExtractionUsecase, error) {
	duration, err := util.GetHistogramVec(
		"extraction_duration_seconds",
		"Duration of image extraction runs",
		"provider", "outcome",
	)
	if err != nil {
		return nil, fmt.Errorf("extraction histogram: %w", err)
	}
	return &extractionUsecase{
		extractor: extractor,
		repo:      repo,
		prompt:    llm.ProductPriceExtractionPrompt,
		duration:  duration,
	}, nil
}

func (uc *extractionUsecase) Run(ctx context.Context, input models.ExtractionInput) (*models.ExtractionResult, error) {
	start := time.Now()
	outcome := outcomeSuccess
	defer func() {
		uc.duration.WithLabelValues(uc.extractor.Provider(), outcome).Observe(time.Since(start).Seconds())
	}()

	raw, err := uc.extractor.Extract(ctx, input.Image, uc.prompt)
	switch {
	case err == nil:
	case models.IsConfigError(err):
		outcome = outcomeConfig
		return nil, err
	case models.IsExtractionError(err):
		outcome = outcomeExtraction
		log.Warnw(ctx, "extraction failed", "error", err)
		return models.EmptyExtractionResult(NoProductsMessage), nil
	default:
		outcome = outcomeUnknown
		log.Errorw(ctx, "extractor returned an unclassified error", "error", err)
		return models.EmptyExtractionResult(NoProductsMessage), nil
	}

	products := NormalizeProducts(ctx, raw)
	if len(products) == 0 {
		outcome = outcomeEmpty
		return models.EmptyExtractionResult(NoProductsMessage), nil
	}
	log.Infow(ctx, "extracted products", "count", len(products))

	saved, err := uc.repo.SaveBatch(ctx, products, input.ImagePath, input.Metadata)
	if err != nil {
		outcome = outcomePersist
		log.Errorw(ctx, "failed to save products", "error", err)
		return nil, err
	}

	return &models.ExtractionResult{
		Success:  true,
		Products: saved,
		Count:    len(saved),
		Message:  fmt.Sprintf("Successfully extracted %d products", len(saved)),
	}, nil
}
