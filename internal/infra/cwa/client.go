package cwa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	apperrors "github.com/yanqian/cwa-weatherboard/pkg/errors"
	"github.com/yanqian/cwa-weatherboard/pkg/metrics"
)

const (
	defaultBaseURL = "https://opendata.cwa.gov.tw/api/v1/rest/datastore"
	maxBodyBytes   = 16 << 20
)

// Client fetches datasets from the CWA open-data REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	metrics    *metrics.Metrics
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewClient builds an API client. Per-call timeouts are supplied to Fetch.
func NewClient(baseURL, apiKey string, m *metrics.Metrics, logger *slog.Logger) *Client {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{},
		metrics:    m,
		clock:      clockwork.NewRealClock(),
		logger:     logger.With("component", "cwa.client"),
	}
}

// Fetch retrieves one dataset and returns its raw JSON document. Failures
// are AppErrors coded timeout, upstream_unreachable or processing_error.
func (c *Client) Fetch(ctx context.Context, dataset string, params url.Values, timeout time.Duration) (json.RawMessage, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	query := url.Values{}
	for k, vs := range params {
		query[k] = append([]string(nil), vs...)
	}
	query.Set("Authorization", c.apiKey)
	if query.Get("format") == "" {
		query.Set("format", "JSON")
	}
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, url.PathEscape(dataset), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeProcessing, "build upstream request", err)
	}
	req.Header.Set("Accept", "application/json")

	start := c.clock.Now()
	c.logger.Info("cwa request", "dataset", dataset, "timeout", timeout)

	body, err := c.do(req)
	outcome := outcomeOf(err)
	c.metrics.ObserveUpstream(dataset, outcome, c.clock.Since(start))
	if err != nil {
		c.logger.Error("cwa request failed", "dataset", dataset, "outcome", outcome, "error", err)
		return nil, err
	}
	return body, nil
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(req.Context(), err) {
			return nil, apperrors.Wrap(apperrors.CodeTimeout, "upstream request timed out", err)
		}
		return nil, apperrors.Wrap(apperrors.CodeUpstreamUnreachable, "upstream request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, apperrors.Wrap(apperrors.CodeUpstreamUnreachable, fmt.Sprintf("upstream returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if isTimeout(req.Context(), err) {
			return nil, apperrors.Wrap(apperrors.CodeTimeout, "upstream response timed out", err)
		}
		return nil, apperrors.Wrap(apperrors.CodeUpstreamUnreachable, "read upstream response", err)
	}
	if !json.Valid(body) {
		return nil, apperrors.Wrap(apperrors.CodeProcessing, "upstream response is not valid JSON", nil)
	}
	return body, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func outcomeOf(err error) string {
	switch apperrors.CodeOf(err) {
	case "":
		return "success"
	case apperrors.CodeTimeout:
		return "timeout"
	case apperrors.CodeUpstreamUnreachable:
		return "unreachable"
	default:
		return "invalid"
	}
}
