package alert

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/yanqian/cwa-weatherboard/pkg/metrics"
	"github.com/yanqian/cwa-weatherboard/pkg/util"
)

const (
	// DefaultDataset is the CWA hazard announcement dataset.
	DefaultDataset = "W-C0033-001"
	pipelineName   = "alert"
)

// Service exposes the alerts active right now.
type Service interface {
	Active(ctx context.Context) []Alert
}

// Fetcher retrieves a raw dataset document from upstream.
type Fetcher interface {
	Fetch(ctx context.Context, dataset string, params url.Values, timeout time.Duration) (json.RawMessage, error)
}

type service struct {
	cfg     Config
	fetcher Fetcher
	clock   clockwork.Clock
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewService wires up the alert domain.
func NewService(cfg Config, fetcher Fetcher, clock clockwork.Clock, m *metrics.Metrics, logger *slog.Logger) Service {
	if cfg.Dataset == "" {
		cfg.Dataset = DefaultDataset
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &service{
		cfg:     cfg,
		fetcher: fetcher,
		clock:   clock,
		metrics: m,
		logger:  logger.With("component", "alert.service"),
	}
}

// Active never fails: upstream or shape problems degrade to an empty list.
func (s *service) Active(ctx context.Context) []Alert {
	doc, err := s.fetcher.Fetch(ctx, s.cfg.Dataset, nil, s.cfg.Timeout)
	if err != nil {
		s.logger.Warn("alert fetch failed, showing no alerts", "dataset", s.cfg.Dataset, "error", err)
		s.metrics.Outcome(pipelineName, "fetch_failed")
		return []Alert{}
	}

	now := util.NowIn(s.clock.Now, s.cfg.Location)
	alerts, stats, err := Normalize(doc, now, s.cfg.Location)
	if err != nil {
		if errors.Is(err, ErrNoRecords) {
			s.logger.Info("alert payload has no locations", "dataset", s.cfg.Dataset)
			s.metrics.Outcome(pipelineName, "no_data")
		} else {
			s.logger.Warn("alert payload unreadable", "dataset", s.cfg.Dataset, "error", err)
			s.metrics.Outcome(pipelineName, "processing_error")
		}
		return []Alert{}
	}

	s.metrics.Skipped(pipelineName, "missing_fields", stats.MissingFields)
	s.metrics.Skipped(pipelineName, "bad_timestamp", stats.BadTimestamp)
	s.metrics.Skipped(pipelineName, "inactive", stats.Inactive)
	s.metrics.Emitted(pipelineName, stats.Active)
	s.metrics.Outcome(pipelineName, "ok")
	s.logger.Info("alerts normalized",
		"locations", stats.Locations,
		"hazards", stats.Hazards,
		"active", stats.Active,
		"skipped_missing", stats.MissingFields,
		"skipped_bad_time", stats.BadTimestamp,
	)
	return alerts
}
