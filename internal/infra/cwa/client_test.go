package cwa

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/cwa-weatherboard/pkg/errors"
	"github.com/yanqian/cwa-weatherboard/pkg/metrics"
)

func TestFetchSendsCredentialAndParams(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":"true","records":{}}`))
	}))
	defer srv.Close()

	m := metrics.NewMetricsForTesting()
	client := NewClient(srv.URL+"/", "CWA-KEY", m, newTestLogger())

	body, err := client.Fetch(context.Background(), "F-C0032-001", url.Values{"elementName": {"Wx,PoP"}}, time.Second)
	require.NoError(t, err)
	require.JSONEq(t, `{"success":"true","records":{}}`, string(body))

	require.Equal(t, "/F-C0032-001", got.URL.Path)
	require.Equal(t, "CWA-KEY", got.URL.Query().Get("Authorization"))
	require.Equal(t, "JSON", got.URL.Query().Get("format"))
	require.Equal(t, "Wx,PoP", got.URL.Query().Get("elementName"))
	require.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("F-C0032-001", "success")))
}

func TestFetchClassifiesTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(srv.URL, "k", metrics.NewMetricsForTesting(), newTestLogger())

	_, err := client.Fetch(context.Background(), "W-C0034-005", nil, 50*time.Millisecond)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeTimeout), "got %v", err)
}

func TestFetchClassifiesHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bad", nil, newTestLogger())

	_, err := client.Fetch(context.Background(), "W-C0033-001", nil, time.Second)
	require.True(t, apperrors.IsCode(err, apperrors.CodeUpstreamUnreachable))
	require.NotContains(t, apperrors.MessageOf(err), "Unauthorized")
}

func TestFetchClassifiesNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	client := NewClient(addr, "k", nil, newTestLogger())

	_, err := client.Fetch(context.Background(), "W-C0033-001", nil, time.Second)
	require.True(t, apperrors.IsCode(err, apperrors.CodeUpstreamUnreachable))
}

func TestFetchRejectsInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k", nil, newTestLogger())

	_, err := client.Fetch(context.Background(), "F-C0032-001", nil, time.Second)
	require.True(t, apperrors.IsCode(err, apperrors.CodeProcessing))
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
