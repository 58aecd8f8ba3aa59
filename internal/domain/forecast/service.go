package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/yanqian/cwa-weatherboard/pkg/errors"
	"github.com/yanqian/cwa-weatherboard/pkg/metrics"
)

const (
	// DefaultDataset is the CWA 36-hour county forecast dataset.
	DefaultDataset    = "F-C0032-001"
	defaultMaxPeriods = 3
	pipelineName      = "forecast"
)

// DefaultElements are the weather elements requested from upstream.
var DefaultElements = []string{"Wx", "PoP", "MinT", "MaxT"}

// Service exposes the per-location short range forecast.
type Service interface {
	AllLocations(ctx context.Context, q Query) ([]LocationForecast, error)
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

// NewService wires up the forecast domain.
func NewService(cfg Config, fetcher Fetcher, m *metrics.Metrics, logger *slog.Logger) Service {
	if cfg.Dataset == "" {
		cfg.Dataset = DefaultDataset
	}
	if len(cfg.Elements) == 0 {
		cfg.Elements = DefaultElements
	}
	if cfg.MaxPeriods <= 0 {
		cfg.MaxPeriods = defaultMaxPeriods
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &service{
		cfg:     cfg,
		fetcher: fetcher,
		metrics: m,
		logger:  logger.With("component", "forecast.service"),
	}
}

func (s *service) AllLocations(ctx context.Context, q Query) ([]LocationForecast, error) {
	params := url.Values{
		"elementName": {strings.Join(s.cfg.Elements, ",")},
		"sort":        {"time"},
	}
	if names := cleanNames(q.LocationNames); len(names) > 0 {
		params.Set("locationName", strings.Join(names, ","))
	}

	doc, err := s.fetcher.Fetch(ctx, s.cfg.Dataset, params, s.cfg.Timeout)
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

	results, err := Aggregate(doc, s.cfg.MaxPeriods, s.cfg.PreferredOrder, s.cfg.Location)
	if err != nil {
		if errors.Is(err, ErrNoRecords) {
			s.logger.Warn("forecast payload has unexpected shape or no data", "dataset", s.cfg.Dataset)
			s.metrics.Outcome(pipelineName, apperrors.CodeNoData)
			return nil, apperrors.Wrap(apperrors.CodeNoData, "forecast data not found", err)
		}
		s.logger.Error("forecast processing failed", "dataset", s.cfg.Dataset, "error", err)
		s.metrics.Outcome(pipelineName, apperrors.CodeProcessing)
		return nil, apperrors.Wrap(apperrors.CodeProcessing, "forecast processing failed", err)
	}

	s.metrics.Emitted(pipelineName, len(results))
	s.metrics.Outcome(pipelineName, "ok")
	s.logger.Info("forecast aggregated", "locations", len(results))
	return results, nil
}

func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
