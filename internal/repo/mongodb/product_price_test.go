package mongodb

import (
	"testing"
	"time"

	"github.com/nguyentranbao-ct/price-extractor/internal/config"
	"github.com/nguyentranbao-ct/price-extractor/internal/models"
	"github.com/nguyentranbao-ct/price-extractor/pkg/util"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildFilter(t *testing.T) {
	start := time.Date(2026, 5, 2, 9, 0, 0, 0, time.FixedZone("KST", 9*3600))
	end := start.Add(24 * time.Hour)

	tests := []struct {
		name   string
		filter models.ListFilter
		want   bson.M
	}{
		{name: "no filter", filter: models.ListFilter{}, want: bson.M{}},
		{
			name:   "name is quoted and case insensitive",
			filter: models.ListFilter{ProductName: "1.5L (Cola)"},
			want: bson.M{
				"product_name": primitive.Regex{Pattern: `1\.5L \(Cola\)`, Options: "i"},
			},
		},
		{
			name:   "half-open date range in UTC",
			filter: models.ListFilter{StartDate: &start, EndDate: &end},
			want: bson.M{
				"extracted_at": bson.M{"$gte": start.UTC(), "$lt": end.UTC()},
			},
		},
		{
			name:   "start only",
			filter: models.ListFilter{StartDate: &start},
			want:   bson.M{"extracted_at": bson.M{"$gte": start.UTC()}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildFilter(tt.filter))
		})
	}
}

func TestProductPriceDocs(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	products := []models.ExtractedProduct{
		{ProductName: "Eggs", Price: decimal.RequireFromString("3.5")},
		{ProductName: "Milk", Price: decimal.RequireFromString("2500")},
	}
	meta := models.Metadata{"store_name": "Mart"}

	docs, err := newProductPriceDocs(products, 41, util.Ptr("uploads/a.jpg"), meta, ts)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.EqualValues(t, 41, docs[0].ID)
	assert.EqualValues(t, 42, docs[1].ID)
	assert.Equal(t, "3.50", docs[0].Price.String())

	got, err := docs[1].toModel()
	require.NoError(t, err)
	assert.Equal(t, "Milk", got.ProductName)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("2500")))
	assert.Equal(t, "uploads/a.jpg", util.Val(got.ImagePath))
	assert.True(t, got.ExtractedAt.Equal(ts))
	assert.Equal(t, "Mart", got.Metadata["store_name"])

	// documents do not share the caller's map
	meta["store_name"] = "Other"
	assert.Equal(t, "Mart", docs[0].Metadata["store_name"])
}

func TestProductPriceDocsRejectNonPositivePrice(t *testing.T) {
	products := []models.ExtractedProduct{
		{ProductName: "Eggs", Price: decimal.RequireFromString("3.5")},
		{ProductName: "Free", Price: decimal.Zero},
	}

	docs, err := newProductPriceDocs(products, 1, nil, nil, time.Now())
	assert.Error(t, err)
	assert.Nil(t, docs)
}

func TestClientOptions(t *testing.T) {
	opts := ClientOptions(config.DatabaseConfig{
		Hosts:    []string{"mongo-1:27017", "mongo-2:27017"},
		Username: "app",
		Password: "secret",
		AuthDB:   "admin",
	})

	assert.Equal(t, []string{"mongo-1:27017", "mongo-2:27017"}, opts.Hosts)
	require.NotNil(t, opts.Auth)
	assert.Equal(t, "app", opts.Auth.Username)
	assert.Equal(t, "admin", opts.Auth.AuthSource)

	assert.Nil(t, ClientOptions(config.DatabaseConfig{Hosts: []string{"localhost:27017"}}).Auth)
}
