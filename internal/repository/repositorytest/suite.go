// Package repositorytest holds the behaviour every ProductPriceRepository
// implementation must show, run by each store's own tests.
package repositorytest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nguyentranbao-ct/price-extractor/internal/models"
	"github.com/nguyentranbao-ct/price-extractor/internal/repository"
	"github.com/nguyentranbao-ct/price-extractor/pkg/util"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a repository over empty storage that stamps batches with now.
type Factory func(t *testing.T, now func() time.Time) repository.ProductPriceRepository

// clock is shared by a repository and the case driving it.
type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Set(ts time.Time) { c.now = ts }

type newRepoFunc func(t *testing.T) (repository.ProductPriceRepository, *clock)

var storeCases = []struct {
	name string
	run  func(t *testing.T, newRepo newRepoFunc)
}{
	{"SaveBatchAssignsIDsAndSharedFields", testSaveBatchAssignsIDsAndSharedFields},
	{"SaveBatchEmptyIsNoop", testSaveBatchEmptyIsNoop},
	{"SaveBatchIsAtomic", testSaveBatchIsAtomic},
	{"ListEmpty", testListEmpty},
	{"ListOrdering", testListOrdering},
	{"ListPagination", testListPagination},
	{"ListNameFilter", testListNameFilter},
	{"ListDateRange", testListDateRange},
	{"GetByID", testGetByID},
}

// RunProductPriceSuite runs every case on a fresh repository from factory.
func RunProductPriceSuite(t *testing.T, factory Factory) {
	newRepo := func(t *testing.T) (repository.ProductPriceRepository, *clock) {
		clk := &clock{now: time.Now().UTC()}
		return factory(t, clk.Now), clk
	}
	for _, tc := range storeCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.run(t, newRepo)
		})
	}
}

func product(name, price string) models.ExtractedProduct {
	return models.ExtractedProduct{ProductName: name, Price: decimal.RequireFromString(price)}
}

func listAll(t *testing.T, repo repository.ProductPriceRepository, filter models.ListFilter) *models.PageResult {
	t.Helper()
	if filter.Page == 0 {
		filter.Page = models.DefaultPage
	}
	if filter.PageSize == 0 {
		filter.PageSize = models.MaxPageSize
	}
	res, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	return res
}

func names(items []*models.ProductPrice) []string {
	return util.ConvertList(items, func(p *models.ProductPrice) string { return p.ProductName })
}

func testSaveBatchAssignsIDsAndSharedFields(t *testing.T, newRepo newRepoFunc) {
	repo, clk := newRepo(t)
	// millisecond precision survives every backend
	ts := time.Date(2026, 3, 14, 9, 30, 0, 123000000, time.UTC)
	clk.Set(ts)
	ctx := context.Background()

	saved, err := repo.SaveBatch(ctx,
		[]models.ExtractedProduct{product("Eggs", "3.5"), product("Milk", "2500")},
		util.Ptr("uploads/product_1.jpg"),
		models.Metadata{"store_name": "Mart", "original_filename": "shelf.jpg"},
	)
	require.NoError(t, err)
	require.Len(t, saved, 2)

	assert.Greater(t, saved[1].ID, saved[0].ID)
	for _, p := range saved {
		assert.True(t, p.ExtractedAt.Equal(ts))
		assert.True(t, p.CreatedAt.Equal(p.ExtractedAt))
		assert.Equal(t, "uploads/product_1.jpg", util.Val(p.ImagePath))
	}

	got, err := repo.GetByID(ctx, saved[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Eggs", got.ProductName)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("3.50")))
	assert.True(t, got.ExtractedAt.Equal(saved[0].ExtractedAt))
	assert.Equal(t, "Mart", got.Metadata["store_name"])
	assert.Equal(t, "shelf.jpg", got.Metadata["original_filename"])
}

func testSaveBatchEmptyIsNoop(t *testing.T, newRepo newRepoFunc) {
	repo, _ := newRepo(t)

	saved, err := repo.SaveBatch(context.Background(), nil, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, saved)
	assert.Empty(t, saved)
	assert.Zero(t, listAll(t, repo, models.ListFilter{}).Total)
}

func testSaveBatchIsAtomic(t *testing.T, newRepo newRepoFunc) {
	repo, _ := newRepo(t)

	// the third row is rejected by the store
	_, err := repo.SaveBatch(context.Background(),
		[]models.ExtractedProduct{product("A", "1"), product("B", "2"), product("C", "0")},
		nil, nil,
	)
	require.Error(t, err)
	assert.True(t, models.IsPersistenceError(err))

	res := listAll(t, repo, models.ListFilter{})
	assert.Zero(t, res.Total)
	assert.Empty(t, res.Items)
}

func testListEmpty(t *testing.T, newRepo newRepoFunc) {
	repo, _ := newRepo(t)

	res, err := repo.List(context.Background(), models.ListFilter{Page: 1, PageSize: 20})
	require.NoError(t, err)

	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Zero(t, res.Total)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 20, res.PageSize)
	assert.Zero(t, res.TotalPages)
}

func testListOrdering(t *testing.T, newRepo newRepoFunc) {
	repo, clk := newRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	clk.Set(base)
	_, err := repo.SaveBatch(ctx, []models.ExtractedProduct{product("A", "1"), product("B", "2")}, nil, nil)
	require.NoError(t, err)

	clk.Set(base.Add(time.Minute))
	_, err = repo.SaveBatch(ctx, []models.ExtractedProduct{product("C", "3"), product("D", "4")}, nil, nil)
	require.NoError(t, err)

	res := listAll(t, repo, models.ListFilter{})
	assert.Equal(t, []string{"C", "D", "A", "B"}, names(res.Items))
}

func testListPagination(t *testing.T, newRepo newRepoFunc) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	batch := make([]models.ExtractedProduct, 45)
	for i := range batch {
		batch[i] = product(fmt.Sprintf("item-%02d", i), "1000")
	}
	_, err := repo.SaveBatch(ctx, batch, nil, nil)
	require.NoError(t, err)

	tests := []struct {
		page      int
		wantItems int
		wantFirst string
	}{
		{page: 1, wantItems: 20, wantFirst: "item-00"},
		{page: 2, wantItems: 20, wantFirst: "item-20"},
		{page: 3, wantItems: 5, wantFirst: "item-40"},
		{page: 4, wantItems: 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("page %d", tt.page), func(t *testing.T) {
			res, err := repo.List(ctx, models.ListFilter{Page: tt.page, PageSize: 20})
			require.NoError(t, err)

			assert.EqualValues(t, 45, res.Total)
			assert.Equal(t, 3, res.TotalPages)
			assert.Len(t, res.Items, tt.wantItems)
			if tt.wantItems > 0 {
				assert.Equal(t, tt.wantFirst, res.Items[0].ProductName)
			}
		})
	}
}

func testListNameFilter(t *testing.T, newRepo newRepoFunc) {
	repo, _ := newRepo(t)
	_, err := repo.SaveBatch(context.Background(), []models.ExtractedProduct{
		product("Seoul Milk", "2500"),
		product("MILK bread", "3000"),
		product("Water", "900"),
		product("100% Juice", "1800"),
		product("1000 Juice", "1900"),
		product("a_b", "1"),
		product("axb", "1"),
	}, nil, nil)
	require.NoError(t, err)

	tests := []struct {
		filter string
		want   []string
	}{
		{filter: "milk", want: []string{"Seoul Milk", "MILK bread"}},
		{filter: "MiLk", want: []string{"Seoul Milk", "MILK bread"}},
		{filter: "100%", want: []string{"100% Juice"}},
		{filter: "a_b", want: []string{"a_b"}},
		{filter: "coffee", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			res := listAll(t, repo, models.ListFilter{ProductName: tt.filter})
			assert.Equal(t, tt.want, names(res.Items))
			assert.EqualValues(t, len(tt.want), res.Total)
		})
	}
}

func testListDateRange(t *testing.T, newRepo newRepoFunc) {
	repo, clk := newRepo(t)
	ctx := context.Background()
	day1 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	day3 := day1.AddDate(0, 0, 2)

	for i, ts := range []time.Time{day1, day2, day3} {
		clk.Set(ts)
		_, err := repo.SaveBatch(ctx, []models.ExtractedProduct{product(fmt.Sprintf("day%d", i+1), "1")}, nil, nil)
		require.NoError(t, err)
	}

	start := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		filter models.ListFilter
		want   []string
	}{
		{name: "start only", filter: models.ListFilter{StartDate: &start}, want: []string{"day3", "day2"}},
		{name: "end only", filter: models.ListFilter{EndDate: &end}, want: []string{"day2", "day1"}},
		{name: "range", filter: models.ListFilter{StartDate: &start, EndDate: &end}, want: []string{"day2"}},
		{name: "end is exclusive", filter: models.ListFilter{StartDate: &start, EndDate: &day2}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := listAll(t, repo, tt.filter)
			assert.Equal(t, tt.want, names(res.Items))
		})
	}
}

func testGetByID(t *testing.T, newRepo newRepoFunc) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	saved, err := repo.SaveBatch(ctx, []models.ExtractedProduct{product("Tofu", "1500")}, nil, nil)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, saved[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Tofu", got.ProductName)
	assert.Nil(t, got.ImagePath)
	assert.Empty(t, got.Metadata)

	_, err = repo.GetByID(ctx, saved[0].ID+1000)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
