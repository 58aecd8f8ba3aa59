package cyclone

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"time"

	apperrors "github.com/yanqian/cwa-weatherboard/pkg/errors"
	"github.com/yanqian/cwa-weatherboard/pkg/metrics"
)

const (
	// DefaultDataset is the CWA tropical cyclone track forecast dataset.
	DefaultDataset = "W-C0034-005"
	pipelineName   = "cyclone"
)

// Service exposes reconstructed tropical cyclone tracks.
type Service interface {
	Tracks(ctx context.Context) ([]Typhoon, error)
}

// Fetcher retrieves a raw dataset document from upstream.
type Fetcher interface {
	Fetch(ctx context.Context, dataset string, params url.Values, timeout time.Duration) (json.RawMessage, error)
}

type service struct {
	cfg     Config
	fetcher Fetcher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewService wires up the cyclone domain.
func NewService(cfg Config, fetcher Fetcher, m *metrics.Metrics, logger *slog.Logger) Service {
	if cfg.Dataset == "" {
		cfg.Dataset = DefaultDataset
	}
	return &service{
		cfg:     cfg,
		fetcher: fetcher,
		metrics: m,
		logger:  logger.With("component", "cyclone.service"),
	}
}

// Tracks returns an empty slice, not an error, when no storm is active.
func (s *service) Tracks(ctx context.Context) ([]Typhoon, error) {
	doc, err := s.fetcher.Fetch(ctx, s.cfg.Dataset, nil, s.cfg.Timeout)
	if err != nil {
		code := apperrors.CodeOf(err)
		switch code {
		case apperrors.CodeTimeout, apperrors.CodeUpstreamUnreachable, apperrors.CodeProcessing:
		default:
			code = apperrors.CodeUpstreamUnreachable
		}
		s.metrics.Outcome(pipelineName, code)
		return nil, apperrors.Wrap(code, apperrors.MessageOf(err), err)
	}

	typhoons, stats, err := Reconstruct(doc)
	if err != nil {
		if errors.Is(err, ErrNoCyclones) {
			s.logger.Info("no active tropical cyclones", "dataset", s.cfg.Dataset)
			s.metrics.Outcome(pipelineName, apperrors.CodeNoData)
			return []Typhoon{}, nil
		}
		s.logger.Error("cyclone processing failed", "dataset", s.cfg.Dataset, "error", err)
		s.metrics.Outcome(pipelineName, apperrors.CodeProcessing)
		return nil, apperrors.Wrap(apperrors.CodeProcessing, "cyclone processing failed", err)
	}

	for _, f := range stats.Failures {
		s.logger.Warn("skipping fix point", "storm", f.Storm, "kind", f.Kind, "fixTime", f.Time, "error", f.Err)
	}
	s.metrics.Skipped(pipelineName, "bad_point", len(stats.Failures))
	s.metrics.Emitted(pipelineName, stats.Analysis+stats.Forecast)
	s.metrics.Outcome(pipelineName, "ok")
	s.logger.Info("cyclone tracks reconstructed", "storms", stats.Storms, "analysis", stats.Analysis, "forecast", stats.Forecast, "skipped", len(stats.Failures))
	return typhoons, nil
}
