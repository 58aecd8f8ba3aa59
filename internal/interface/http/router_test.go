package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/cwa-weatherboard/internal/domain/alert"
	"github.com/yanqian/cwa-weatherboard/internal/domain/cyclone"
	"github.com/yanqian/cwa-weatherboard/internal/domain/forecast"
	"github.com/yanqian/cwa-weatherboard/internal/domain/imagery"
	"github.com/yanqian/cwa-weatherboard/internal/infra/config"
	apperrors "github.com/yanqian/cwa-weatherboard/pkg/errors"
)

func TestRouter_ForecastSuccess(t *testing.T) {
	want := []forecast.LocationForecast{{
		LocationName: "臺北市",
		Forecasts: []forecast.Period{{
			StartTime: "2024-07-01 06:00:00",
			EndTime:   "2024-07-01 18:00:00",
			Data:      map[string]string{"Wx": "晴時多雲", "PoP": "20"},
		}},
	}}
	fc := &stubForecast{fn: func(ctx context.Context, q forecast.Query) ([]forecast.LocationForecast, error) {
		require.Equal(t, []string{"臺北市", "基隆市", "新北市"}, q.LocationNames)
		return want, nil
	}}

	path := "/api/all_locations_forecast?locationName=" + url.QueryEscape("臺北市,基隆市") + "&locationName=" + url.QueryEscape("新北市")
	rec := performRequest(http.MethodGet, path, newRouterUnderTest(t, services{forecast: fc}))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []forecast.LocationForecast
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, want, got)
}

func TestRouter_ForecastErrors(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"timeout", apperrors.Wrap(apperrors.CodeTimeout, "upstream request timed out", nil), http.StatusGatewayTimeout, forecastMessages.Timeout},
		{"no data", apperrors.Wrap(apperrors.CodeNoData, "forecast data not found", nil), http.StatusNotFound, forecastMessages.NoData},
		{"unreachable", apperrors.Wrap(apperrors.CodeUpstreamUnreachable, "upstream returned status 503", nil), http.StatusInternalServerError, forecastMessages.Unreachable},
		{"processing", apperrors.Wrap(apperrors.CodeProcessing, "forecast processing failed", nil), http.StatusInternalServerError, forecastMessages.Processing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fc := &stubForecast{fn: func(ctx context.Context, q forecast.Query) ([]forecast.LocationForecast, error) {
				return nil, tc.err
			}}
			rec := performRequest(http.MethodGet, "/api/all_locations_forecast", newRouterUnderTest(t, services{forecast: fc}))
			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, map[string]string{"error": tc.message}, decodeErrorBody(t, rec.Body.Bytes()))
		})
	}
}

func TestRouter_TyphoonWarning(t *testing.T) {
	cy := &stubCyclone{typhoons: []cyclone.Typhoon{}}
	rec := performRequest(http.MethodGet, "/api/typhoon_warning", newRouterUnderTest(t, services{cyclone: cy}))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())

	cy = &stubCyclone{typhoons: []cyclone.Typhoon{{
		TyphoonName:    "GAEMI",
		Year:           "2024",
		AnalysisFixes:  []cyclone.Fix{{Time: "t1", Longitude: 121.5, Latitude: 23.7, Pressure: cyclone.Unavailable, QuadrantRadii15Ms: map[string]int{}}},
		ForecastPoints: []cyclone.ForecastFix{},
	}}}
	rec = performRequest(http.MethodGet, "/api/typhoon_warning", newRouterUnderTest(t, services{cyclone: cy}))
	require.Equal(t, http.StatusOK, rec.Code)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	fix := body[0]["analysisFixes"].([]any)[0].(map[string]any)
	require.Equal(t, "N/A", fix["pressure"])
	require.Equal(t, 0.0, fix["maxWindSpeed"])
	require.Equal(t, 121.5, fix["longitude"])

	cy = &stubCyclone{err: apperrors.Wrap(apperrors.CodeTimeout, "upstream request timed out", nil)}
	rec = performRequest(http.MethodGet, "/api/typhoon_warning", newRouterUnderTest(t, services{cyclone: cy}))
	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
	require.Equal(t, cycloneMessages.Timeout, decodeErrorBody(t, rec.Body.Bytes())["error"])
}

func TestRouter_IndexRendersAlertsAndImagery(t *testing.T) {
	al := &stubAlerts{alerts: []alert.Alert{{
		IssueTime: "2024-07-01 06:00:00",
		Title:     "基隆市 - 豪雨特報",
		Info:      "發布對象：基隆市",
		Severity:  alert.SeverityOrange,
	}}}
	rec := performRequest(http.MethodGet, "/", newRouterUnderTest(t, services{alerts: al}))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	page := rec.Body.String()
	require.Contains(t, page, "基隆市 - 豪雨特報")
	require.Contains(t, page, `class="alert orange"`)
	require.Contains(t, page, "https://example.test/radar.png")
	require.Contains(t, page, "https://example.test/satellite.jpg")

	rec = performRequest(http.MethodGet, "/", newRouterUnderTest(t, services{alerts: &stubAlerts{alerts: []alert.Alert{}}}))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "目前沒有生效中的天氣警特報")
}

func TestRouter_AlertsAndImageryJSON(t *testing.T) {
	al := &stubAlerts{alerts: []alert.Alert{{Title: "臺中市 - 大雨特報", Severity: alert.SeverityYellow}}}
	server := newRouterUnderTest(t, services{alerts: al})

	rec := performRequest(http.MethodGet, "/api/alerts", server)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[{"issueTime":"","title":"臺中市 - 大雨特報","info":"","severity":"yellow"}]`, rec.Body.String())

	rec = performRequest(http.MethodGet, "/api/imagery", server)
	require.Equal(t, http.StatusOK, rec.Code)
	var links imagery.Links
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &links))
	require.Equal(t, "https://example.test/radar.png", links.RadarURL)
}

func TestRouter_RequestID(t *testing.T) {
	server := newRouterUnderTest(t, services{})

	rec := performRequest(http.MethodGet, "/healthz", server)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, rec.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "trace-123")
	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, "trace-123", rec.Header().Get(requestIDHeader))
}

func TestRouter_CORSPreflight(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.AllowOrigins = []string{"https://weather.example.test"}
	server := NewRouter(cfg, newHandler(services{}), clockwork.NewFakeClock())

	req := httptest.NewRequest(http.MethodOptions, "/api/typhoon_warning", nil)
	req.Header.Set("Origin", "https://weather.example.test")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://weather.example.test", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 2}
	clock := clockwork.NewFakeClock()
	server := NewRouter(cfg, newHandler(services{}), clock)

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, performRequest(http.MethodGet, "/api/imagery", server).Code)
	}
	rec := performRequest(http.MethodGet, "/api/imagery", server)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, decodeErrorBody(t, rec.Body.Bytes())["error"])

	require.Equal(t, http.StatusOK, performRequest(http.MethodGet, "/healthz", server).Code)

	clock.Advance(2 * time.Second)
	require.Equal(t, http.StatusOK, performRequest(http.MethodGet, "/api/imagery", server).Code)
}

func performRequest(method, path string, server *http.Server) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

type services struct {
	alerts   alert.Service
	forecast forecast.Service
	cyclone  cyclone.Service
}

func newHandler(s services) *Handler {
	if s.alerts == nil {
		s.alerts = &stubAlerts{alerts: []alert.Alert{}}
	}
	if s.forecast == nil {
		s.forecast = &stubForecast{}
	}
	if s.cyclone == nil {
		s.cyclone = &stubCyclone{typhoons: []cyclone.Typhoon{}}
	}
	return NewHandler(s.alerts, s.forecast, s.cyclone, stubImagery{}, newTestLogger())
}

func newRouterUnderTest(t *testing.T, s services) *http.Server {
	t.Helper()
	return NewRouter(testConfig(), newHandler(s), clockwork.NewFakeClock())
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubAlerts struct {
	alerts []alert.Alert
}

func (s *stubAlerts) Active(ctx context.Context) []alert.Alert {
	return s.alerts
}

type stubForecast struct {
	fn func(ctx context.Context, q forecast.Query) ([]forecast.LocationForecast, error)
}

func (s *stubForecast) AllLocations(ctx context.Context, q forecast.Query) ([]forecast.LocationForecast, error) {
	if s.fn != nil {
		return s.fn(ctx, q)
	}
	return []forecast.LocationForecast{}, nil
}

type stubCyclone struct {
	typhoons []cyclone.Typhoon
	err      error
}

func (s *stubCyclone) Tracks(ctx context.Context) ([]cyclone.Typhoon, error) {
	return s.typhoons, s.err
}

type stubImagery struct{}

func (stubImagery) Current() imagery.Links {
	return imagery.Links{
		RadarURL:      "https://example.test/radar.png",
		SatelliteURL:  "https://example.test/satellite.jpg",
		RadarTime:     time.Date(2024, 7, 1, 14, 20, 0, 0, time.UTC),
		SatelliteTime: time.Date(2024, 7, 1, 14, 10, 0, 0, time.UTC),
	}
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
