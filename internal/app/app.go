package app

import (
	"github.com/nguyentranbao-ct/price-extractor/internal/config"
	"github.com/nguyentranbao-ct/price-extractor/internal/repo/llm"
	"github.com/nguyentranbao-ct/price-extractor/internal/server"
	"github.com/nguyentranbao-ct/price-extractor/internal/usecase"
	"github.com/nguyentranbao-ct/price-extractor/pkg/logger"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"
)

// New builds the application graph from the environment configuration.
func New(opts ...fx.Option) *fx.App {
	conf := config.MustLoad()
	if err := logger.SetLevel(conf.Log.Level); err != nil {
		panic(err)
	}
	return NewWithConfig(conf, opts...)
}

func NewWithConfig(conf *config.Config, opts ...fx.Option) *fx.App {
	log := logger.MustNamed("app")
	log.Debugw("config loaded",
		"server_addr", conf.Server.Addr(),
		"database_driver", conf.Database.Driver,
		"llm_provider", conf.LLM.Provider,
		"llm_model", conf.LLM.ModelName(),
	)

	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{
				Logger: log.Desugar(),
			}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		fx.Supply(conf),
		fx.Provide(
			newProductPriceRepository,

			llm.NewExtractor,

			usecase.NewExtractionUsecase,
			usecase.NewProductUsecase,

			server.NewUploadStore,
			server.NewHandler,
		),
		fx.Options(opts...),
	)
}

func Invoke(funcs ...any) *fx.App {
	return New(fx.Invoke(funcs...))
}
