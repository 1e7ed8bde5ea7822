//go:build wireinject
// +build wireinject

package di

import (
	"hangeul/app"
	"hangeul/config"
	"hangeul/handlers"
	"hangeul/logger"
	"hangeul/metrics"
	"hangeul/middleware"

	"github.com/google/wire"
)

func InitApp(path config.Path) (*app.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		metrics.New,
		ProvideDB,
		ServiceSet,
		middleware.NewAuth,
		middleware.NewLimiters,
		handlers.New,
		handlers.NewApp,
		app.New,
	)
	return nil, nil, nil
}
