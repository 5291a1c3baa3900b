package app

import (
	"path/filepath"
	"testing"

	"github.com/nguyentranbao-ct/price-extractor/internal/config"
	"github.com/nguyentranbao-ct/price-extractor/internal/repository"
	"github.com/nguyentranbao-ct/price-extractor/internal/server"
	"github.com/nguyentranbao-ct/price-extractor/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:        "0",
			Host:        "127.0.0.1",
			UploadDir:   t.TempDir(),
			CORSPattern: ".*",
			MaxUploadMB: 1,
		},
		Database: config.DatabaseConfig{
			Driver:     config.DriverSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "prices.db"),
		},
		LLM: config.LLMConfig{
			Provider:    config.ProviderOpenAI,
			Temperature: 0.1,
		},
		Log: config.LogConfig{Level: "info"},
	}
}

func TestGraphResolves(t *testing.T) {
	var (
		repo       repository.ProductPriceRepository
		extraction usecase.ExtractionUsecase
		products   usecase.ProductUsecase
		handler    server.Controller
	)
	app := NewWithConfig(testConfig(t), fx.Populate(&repo, &extraction, &products, &handler))
	require.NoError(t, app.Err())

	assert.NotNil(t, repo)
	assert.NotNil(t, extraction)
	assert.NotNil(t, products)
	assert.NotNil(t, handler)
}

func TestGraphFailsOnUnreachableDatabase(t *testing.T) {
	conf := testConfig(t)
	conf.Database.SQLitePath = filepath.Join(t.TempDir(), "missing", "dir", "prices.db")

	var repo repository.ProductPriceRepository
	app := NewWithConfig(conf, fx.Populate(&repo))
	assert.Error(t, app.Err())
}
