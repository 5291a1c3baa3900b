package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nguyentranbao-ct/price-extractor/internal/models"
	"github.com/nguyentranbao-ct/price-extractor/internal/repo/llm"
	"github.com/nguyentranbao-ct/price-extractor/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	raw    string
	err    error
	prompt string
	image  []byte
}

func (f *fakeExtractor) Extract(_ context.Context, image []byte, prompt string) (models.RawPayload, error) {
	f.image = image
	f.prompt = prompt
	if f.err != nil {
		return nil, f.err
	}
	return models.RawPayload(f.raw), nil
}

func (f *fakeExtractor) Provider() string { return "fake" }

type fakeRepo struct {
	saveErr   error
	saved     [][]models.ExtractedProduct
	imagePath *string
	metadata  models.Metadata
	nextID    int64

	listFilter models.ListFilter
	byID       map[int64]*models.ProductPrice
}

func (f *fakeRepo) SaveBatch(_ context.Context, products []models.ExtractedProduct, imagePath *string, metadata models.Metadata) ([]*models.ProductPrice, error) {
	f.saved = append(f.saved, products)
	f.imagePath = imagePath
	f.metadata = metadata
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*models.ProductPrice, 0, len(products))
	for _, p := range products {
		f.nextID++
		out = append(out, &models.ProductPrice{
			ID: f.nextID, ProductName: p.ProductName, Price: p.Price,
			ImagePath: imagePath, ExtractedAt: ts, CreatedAt: ts, Metadata: metadata,
		})
	}
	return out, nil
}

func (f *fakeRepo) List(_ context.Context, filter models.ListFilter) (*models.PageResult, error) {
	f.listFilter = filter
	return models.NewPageResult(nil, 0, filter.Page, filter.PageSize), nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*models.ProductPrice, error) {
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, models.ErrNotFound
}

func newTestExtractionUsecase(t *testing.T, ex *fakeExtractor, repo *fakeRepo) ExtractionUsecase {
	t.Helper()
	uc, err := NewExtractionUsecase(ex, repo)
	require.NoError(t, err)
	return uc
}

func TestExtractionRunSuccess(t *testing.T) {
	ex := &fakeExtractor{raw: `{"products":[{"product_name":" Eggs ","price":"3.5"},{"product_name":"Bad","price":"-1"},{"product_name":"NoPrice"}]}`}
	repo := &fakeRepo{}
	uc := newTestExtractionUsecase(t, ex, repo)

	input := models.ExtractionInput{
		Image:     []byte("img"),
		ImagePath: util.Ptr("uploads/product_x.jpg"),
		Metadata:  models.Metadata{"store_name": "Mart"},
	}
	res, err := uc.Run(context.Background(), input)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, "Successfully extracted 1 products", res.Message)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Eggs", res.Products[0].ProductName)
	assert.Equal(t, "3.5", res.Products[0].Price.String())

	assert.Equal(t, llm.ProductPriceExtractionPrompt, ex.prompt)
	assert.Equal(t, []byte("img"), ex.image)
	require.Len(t, repo.saved, 1)
	assert.Equal(t, "uploads/product_x.jpg", util.Val(repo.imagePath))
	assert.Equal(t, "Mart", repo.metadata["store_name"])
}

func TestExtractionRunSoftFailures(t *testing.T) {
	tests := []struct {
		name string
		ex   *fakeExtractor
	}{
		{name: "extraction error", ex: &fakeExtractor{err: models.ExtractionError("vision request failed", errors.New("timeout"))}},
		{name: "unclassified extractor error", ex: &fakeExtractor{err: context.DeadlineExceeded}},
		{name: "no products key", ex: &fakeExtractor{raw: `{"items":[]}`}},
		{name: "all entries invalid", ex: &fakeExtractor{raw: `{"products":[{"product_name":"Free","price":0}]}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{}
			uc := newTestExtractionUsecase(t, tt.ex, repo)

			res, err := uc.Run(context.Background(), models.ExtractionInput{Image: []byte("img")})
			require.NoError(t, err)

			assert.False(t, res.Success)
			assert.NotNil(t, res.Products)
			assert.Empty(t, res.Products)
			assert.Zero(t, res.Count)
			assert.Equal(t, NoProductsMessage, res.Message)
			assert.Empty(t, repo.saved)
		})
	}
}

func TestExtractionRunConfigErrorPropagates(t *testing.T) {
	repo := &fakeRepo{}
	uc := newTestExtractionUsecase(t, &fakeExtractor{err: models.ConfigError("openai API key is not configured", nil)}, repo)

	res, err := uc.Run(context.Background(), models.ExtractionInput{Image: []byte("img")})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, models.IsConfigError(err))
	assert.Empty(t, repo.saved)
}

func TestExtractionRunPersistenceErrorPropagates(t *testing.T) {
	repo := &fakeRepo{saveErr: models.PersistenceError("commit transaction", errors.New("disk full"))}
	uc := newTestExtractionUsecase(t, &fakeExtractor{raw: `{"products":[{"product_name":"Eggs","price":3}]}`}, repo)

	res, err := uc.Run(context.Background(), models.ExtractionInput{Image: []byte("img")})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, models.IsPersistenceError(err))
}

func TestProductUsecaseListDefaults(t *testing.T) {
	repo := &fakeRepo{}
	uc := NewProductUsecase(repo)

	res, err := uc.List(context.Background(), models.ListFilter{ProductName: "milk"})
	require.NoError(t, err)

	assert.Equal(t, models.ListFilter{Page: 1, PageSize: 20, ProductName: "milk"}, repo.listFilter)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 20, res.PageSize)
}

func TestProductUsecaseGetByID(t *testing.T) {
	repo := &fakeRepo{byID: map[int64]*models.ProductPrice{7: {ID: 7, ProductName: "Tofu"}}}
	uc := NewProductUsecase(repo)

	got, err := uc.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Tofu", got.ProductName)

	_, err = uc.GetByID(context.Background(), 8)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
