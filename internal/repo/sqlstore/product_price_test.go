package sqlstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/nguyentranbao-ct/price-extractor/internal/config"
	"github.com/nguyentranbao-ct/price-extractor/internal/models"
	"github.com/nguyentranbao-ct/price-extractor/internal/repository"
	"github.com/nguyentranbao-ct/price-extractor/internal/repository/repositorytest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: ":memory:",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestRepo(db *sql.DB, now func() time.Time) repository.ProductPriceRepository {
	repo := newProductPriceRepo(db)
	repo.now = now
	return repo
}

func TestSQLiteStore(t *testing.T) {
	repositorytest.RunProductPriceSuite(t, func(t *testing.T, now func() time.Time) repository.ProductPriceRepository {
		return newTestRepo(newSQLiteDB(t), now)
	})
}

func TestSaveBatchTruncatesToMicroseconds(t *testing.T) {
	repo := newProductPriceRepo(newSQLiteDB(t))
	ts := time.Date(2026, 3, 14, 9, 30, 0, 123456789, time.UTC)
	repo.now = func() time.Time { return ts }

	saved, err := repo.SaveBatch(context.Background(), []models.ExtractedProduct{{
		ProductName: "Eggs",
		Price:       decimal.RequireFromString("3.5"),
	}}, nil, nil)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.True(t, saved[0].ExtractedAt.Equal(ts.Truncate(time.Microsecond)))
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	db := newSQLiteDB(t)

	require.NoError(t, EnsureSchema(context.Background(), db, config.DriverSQLite))
	require.NoError(t, EnsureSchema(context.Background(), db, config.DriverSQLite))
	assert.Error(t, EnsureSchema(context.Background(), db, "oracle"))
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: config.DriverMongoDB})
	assert.Error(t, err)
}

func TestBuildWhere(t *testing.T) {
	where, args := buildWhere(models.ListFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = buildWhere(models.ListFilter{ProductName: "50%_Off"})
	assert.Equal(t, ` WHERE LOWER(product_name) LIKE $1 ESCAPE '\'`, where)
	assert.Equal(t, []any{`%50\%\_off%`}, args)
}
