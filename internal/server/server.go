package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nguyentranbao-ct/price-extractor/internal/config"
	pkgmdw "github.com/nguyentranbao-ct/price-extractor/internal/server/middleware"
	"github.com/nguyentranbao-ct/price-extractor/pkg/logger"
	log "github.com/nguyentranbao-ct/price-extractor/pkg/logger/logctx"
	"go.uber.org/fx"
)

func StartServer(
	lc fx.Lifecycle,
	sd fx.Shutdowner,
	conf *config.Config,
	handler Controller,
) error {
	e, err := NewEcho(conf, handler)
	if err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			addr := conf.Server.Addr()
			go func() {
				log.Infow(ctx, "starting HTTP server", "addr", addr)
				if err := e.Start(addr); !errors.Is(err, http.ErrServerClosed) {
					log.Errorw(ctx, "HTTP server stopped", "error", err)
					_ = sd.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
	return nil
}

// NewEcho builds the HTTP router with its middleware chain.
func NewEcho(conf *config.Config, handler Controller) (*echo.Echo, error) {
	corsPattern, err := regexp.Compile(conf.Server.CORSPattern)
	if err != nil {
		return nil, fmt.Errorf("compile cors pattern: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = pkgmdw.NewValidator()
	e.HTTPErrorHandler = errorHandler()

	logConfig := pkgmdw.LogRequestConfig{
		Logger:     logger.MustNamed("http"),
		Skipper:    pkgmdw.SkipPaths("/health", "/metrics"),
		FormFields: []string{"store_name", "location"},
	}

	metricsConfig := pkgmdw.DefaultMetricsConfig
	metricsConfig.Skipper = pkgmdw.SkipPaths("/health")

	e.Use(pkgmdw.MetricsWithConfig(metricsConfig))
	e.Use(pkgmdw.RequestID())
	e.Use(pkgmdw.LogRequest(logConfig))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Errorw(c.Request().Context(), "PANIC RECOVER", "error", err, "stack", string(stack))
			return err
		},
	}))
	e.Use(pkgmdw.CORS(corsPattern))
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", conf.Server.MaxUploadMB)))

	e.GET("/", handler.Root)
	e.GET("/health", handler.Health)

	api := e.Group("/api/products")
	api.POST("/extract", handler.ExtractProducts)
	api.GET("/list", handler.ListProducts)
	api.GET("/:id", handler.GetProduct)

	return e, nil
}
