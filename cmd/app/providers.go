package main

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/yanqian/cwa-weatherboard/internal/domain/alert"
	"github.com/yanqian/cwa-weatherboard/internal/domain/cyclone"
	"github.com/yanqian/cwa-weatherboard/internal/domain/forecast"
	"github.com/yanqian/cwa-weatherboard/internal/domain/imagery"
	"github.com/yanqian/cwa-weatherboard/internal/infra/config"
	"github.com/yanqian/cwa-weatherboard/internal/infra/cwa"
	"github.com/yanqian/cwa-weatherboard/pkg/metrics"
)

func provideClock() clockwork.Clock {
	return clockwork.NewRealClock()
}

func provideLocation(cfg *config.Config) (*time.Location, error) {
	return cfg.Location()
}

func provideCWAClient(cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) *cwa.Client {
	return cwa.NewClient(cfg.CWA.BaseURL, cfg.CWA.APIKey, m, logger)
}

func provideAlertConfig(cfg *config.Config, loc *time.Location) alert.Config {
	return alert.Config{
		Timeout:  cfg.CWA.AlertsTimeout,
		Location: loc,
	}
}

func provideForecastConfig(cfg *config.Config, loc *time.Location) forecast.Config {
	return forecast.Config{
		Timeout:        cfg.CWA.ForecastTimeout,
		PreferredOrder: cfg.PreferredOrder,
		Location:       loc,
	}
}

func provideCycloneConfig(cfg *config.Config) cyclone.Config {
	return cyclone.Config{
		Timeout: cfg.CWA.CycloneTimeout,
	}
}

func provideImageryConfig(cfg *config.Config, loc *time.Location) imagery.Config {
	return imagery.Config{
		RadarURLTemplate:     cfg.Imagery.RadarURLTemplate,
		SatelliteURLTemplate: cfg.Imagery.SatelliteURLTemplate,
		Location:             loc,
	}
}
