package openagenda

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:           baseURL,
		APIKey:            "secret",
		AgendaUID:         "universite-paris-saclay",
		PageSize:          2,
		RequestsPerSecond: 1000,
	}
}

func TestSource_FetchAllFollowsCursor(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/agendas/universite-paris-saclay/events", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("key"))
		assert.Equal(t, "fr", r.Header.Get("lang"))
		assert.Equal(t, "2", r.URL.Query().Get("size"))

		switch after := r.URL.Query()["after"]; {
		case len(after) == 0:
			_, _ = w.Write([]byte(`{"total":3,"events":[{"uid":1},{"uid":2}],"after":["2026-01-01",2]}`))
		case after[0] == "2026-01-01" && after[1] == "2":
			_, _ = w.Write([]byte(`{"events":[{"uid":3}],"after":null}`))
		default:
			t.Errorf("unexpected cursor %v", after)
		}
	}))
	defer srv.Close()

	src, err := New(testConfig(srv.URL), srv.Client())
	require.NoError(t, err)
	assert.Equal(t, "universite-paris-saclay", src.Name())

	events, err := src.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.JSONEq(t, `{"uid":3}`, string(events[2]))
	assert.Equal(t, int32(2), calls.Load())
}

func TestSource_FetchAllStopsOnEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.Query()["after"]) == 0 {
			_, _ = w.Write([]byte(`{"data":[{"uid":1}],"after":["x"]}`))
			return
		}
		_, _ = w.Write([]byte(`{"events":[],"after":["y"]}`))
	}))
	defer srv.Close()

	src, err := New(testConfig(srv.URL), srv.Client())
	require.NoError(t, err)

	events, err := src.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestSource_MaxPages(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"events":[{"uid":1}],"after":["more"]}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxPages = 3
	src, err := New(cfg, srv.Client())
	require.NoError(t, err)

	events, err := src.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 3)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSource_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(strings.Repeat("x", 800)))
	}))
	defer srv.Close()

	src, err := New(testConfig(srv.URL), srv.Client())
	require.NoError(t, err)

	_, err = src.FetchAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Len(t, apiErr.Body, 500)
	assert.Contains(t, err.Error(), "OpenAgenda API error 403")
}

func TestSource_RetriesWhenThrottled(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"events":[{"uid":1}],"after":null}`))
	}))
	defer srv.Close()

	src, err := New(testConfig(srv.URL), srv.Client())
	require.NoError(t, err)

	events, err := src.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSource_GivesUpWhenThrottledRepeatedly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	src, err := New(testConfig(srv.URL), srv.Client())
	require.NoError(t, err)

	_, err = src.FetchAll(context.Background())
	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestSource_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"events":[]}`))
	}))
	defer srv.Close()

	src, err := New(testConfig(srv.URL), srv.Client())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.FetchAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_RequiresKeyAndAgenda(t *testing.T) {
	_, err := New(Config{}, nil)
	require.ErrorIs(t, err, ErrNotConfigured)
	assert.Contains(t, err.Error(), "openagenda.api_key")
	assert.Contains(t, err.Error(), "openagenda.agenda_uid")
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{BaseURL: "https://api.example.org/v2/", PageSize: 1000}.withDefaults()
	assert.Equal(t, "https://api.example.org/v2", cfg.BaseURL)
	assert.Equal(t, MaxPageSize, cfg.PageSize)
	assert.InDelta(t, DefaultRequestsPerSecond, cfg.RequestsPerSecond, 1e-9)

	fromSettings := ConfigFromSettings(domain.DefaultAppSettings().OpenAgenda)
	assert.Equal(t, DefaultBaseURL, fromSettings.BaseURL)
	assert.Equal(t, 100, fromSettings.PageSize)
}

func TestParseCursor(t *testing.T) {
	assert.Nil(t, parseCursor(nil))
	assert.Nil(t, parseCursor(json.RawMessage(`null`)))
	assert.Nil(t, parseCursor(json.RawMessage(`[]`)))
	assert.Equal(t, cursor{"a", "12"}, parseCursor(json.RawMessage(`["a", 12]`)))
	assert.Equal(t, cursor{"abc"}, parseCursor(json.RawMessage(`"abc"`)))
}
