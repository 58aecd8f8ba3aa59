//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/cwa-weatherboard/internal/bootstrap"
	"github.com/yanqian/cwa-weatherboard/internal/domain/alert"
	"github.com/yanqian/cwa-weatherboard/internal/domain/cyclone"
	"github.com/yanqian/cwa-weatherboard/internal/domain/forecast"
	"github.com/yanqian/cwa-weatherboard/internal/domain/imagery"
	"github.com/yanqian/cwa-weatherboard/internal/infra/config"
	"github.com/yanqian/cwa-weatherboard/internal/infra/cwa"
	httpiface "github.com/yanqian/cwa-weatherboard/internal/interface/http"
	"github.com/yanqian/cwa-weatherboard/pkg/logger"
	"github.com/yanqian/cwa-weatherboard/pkg/metrics"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		metrics.NewMetrics,
		provideClock,
		provideLocation,
		provideCWAClient,
		provideAlertConfig,
		provideForecastConfig,
		provideCycloneConfig,
		provideImageryConfig,
		alert.NewService,
		forecast.NewService,
		cyclone.NewService,
		imagery.NewService,
		wire.Bind(new(alert.Fetcher), new(*cwa.Client)),
		wire.Bind(new(forecast.Fetcher), new(*cwa.Client)),
		wire.Bind(new(cyclone.Fetcher), new(*cwa.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
