//go:build integration

package mongodb

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/nguyentranbao-ct/price-extractor/internal/config"
	"github.com/nguyentranbao-ct/price-extractor/internal/models"
	"github.com/nguyentranbao-ct/price-extractor/internal/repository"
	"github.com/nguyentranbao-ct/price-extractor/internal/repository/repositorytest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
)

// newReplicaSetDB starts a single node replica set, which multi-document
// transactions require.
func newReplicaSetDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcmongo.Run(ctx, "mongo:7", tcmongo.WithReplicaSet())
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := ctr.Terminate(ctx); err != nil {
			t.Logf("failed to terminate mongo container: %v", err)
		}
	})

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "27017/tcp")
	require.NoError(t, err)

	db, err := NewConnection(ctx, config.DatabaseConfig{
		Hosts:    []string{net.JoinHostPort(host, port.Port())},
		Direct:   true,
		Database: "product_price_test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(ctx) })

	// wait for the node to become primary
	require.Eventually(t, func() bool {
		_, err := db.Database.Collection("startup").InsertOne(ctx, bson.M{"ready": true})
		return err == nil
	}, time.Minute, 500*time.Millisecond)
	return db
}

func resetDB(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, db.Database.Drop(ctx))
	require.NoError(t, EnsureIndexes(ctx, db))
}

func TestMongoStore(t *testing.T) {
	db := newReplicaSetDB(t)

	repositorytest.RunProductPriceSuite(t, func(t *testing.T, now func() time.Time) repository.ProductPriceRepository {
		resetDB(t, db)
		repo := newProductPriceRepo(db)
		repo.now = now
		return repo
	})
}

func TestMongoFailedBatchReleasesIDs(t *testing.T) {
	db := newReplicaSetDB(t)
	resetDB(t, db)
	repo := newProductPriceRepo(db)
	ctx := context.Background()

	_, err := repo.SaveBatch(ctx, []models.ExtractedProduct{
		{ProductName: "A", Price: decimal.RequireFromString("1")},
		{ProductName: "B", Price: decimal.Zero},
	}, nil, nil)
	require.Error(t, err)
	assert.True(t, models.IsPersistenceError(err))

	saved, err := repo.SaveBatch(ctx, []models.ExtractedProduct{
		{ProductName: "C", Price: decimal.RequireFromString("3")},
	}, nil, nil)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.EqualValues(t, 1, saved[0].ID)
}
