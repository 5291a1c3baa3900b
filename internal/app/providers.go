package app

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentranbao-ct/price-extractor/internal/config"
	"github.com/nguyentranbao-ct/price-extractor/internal/repo/mongodb"
	"github.com/nguyentranbao-ct/price-extractor/internal/repo/sqlstore"
	"github.com/nguyentranbao-ct/price-extractor/internal/repository"
	"go.uber.org/fx"
)

const connectTimeout = 10 * time.Second

func newProductPriceRepository(lc fx.Lifecycle, cfg *config.Config) (repository.ProductPriceRepository, error) {
	switch cfg.Database.Driver {
	case config.DriverMongoDB:
		db, err := newMongoDB(lc, cfg)
		if err != nil {
			return nil, err
		}
		return mongodb.NewProductPriceRepository(db), nil
	default:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		db, err := sqlstore.Open(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("init %s database: %w", cfg.Database.Driver, err)
		}
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return db.Close()
			},
		})
		return sqlstore.NewProductPriceRepository(db), nil
	}
}

func newMongoDB(lc fx.Lifecycle, cfg *config.Config) (*mongodb.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	db, err := mongodb.NewConnection(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init mongo client: %w", err)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := db.Ping(ctx); err != nil {
				return err
			}
			return mongodb.EnsureIndexes(ctx, db)
		},
		OnStop: func(ctx context.Context) error {
			return db.Close(ctx)
		},
	})
	return db, nil
}
