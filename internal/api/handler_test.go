package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sqllab/internal/config"
	"sqllab/internal/domain"
	"sqllab/internal/middleware"
)

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func testConfig() *config.Config {
	return &config.Config{
		RateLimitRPS:             1000,
		RateLimitBurst:           1000,
		CORSAllowedOrigins:       []string{"*"},
		FeatureRequestValidation: true,
	}
}

// newTestServer serves the full router. Authentication is disabled, so
// every request runs as the anonymous caller.
func newTestServer(t *testing.T, qs QueryService, dbs DatabaseService, opts ...func(*config.Config)) *httptest.Server {
	t.Helper()
	cfg := testConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if qs == nil {
		qs = &mockQueryService{}
	}
	if dbs == nil {
		dbs = &mockDatabaseService{}
	}
	h, err := NewRouter(t.Context(), RouterDeps{
		Handler: NewHandler(qs, dbs, quietLogger()),
		Auth:    middleware.NewAuthenticator(nil, cfg.Auth, quietLogger()),
		Config:  cfg,
		Logger:  quietLogger(),
	})
	require.NoError(t, err)
	return newServer(t, h)
}

func newServer(t *testing.T, h http.Handler) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func strPtr(s string) *string { return &s }

var fixedTime = time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)

func sampleQuery(status domain.QueryStatus) *domain.Query {
	q := &domain.Query{
		ID:          7,
		ClientID:    "abc123defg",
		DatabaseID:  1,
		RawSQL:      "SELECT 1",
		RenderedSQL: "SELECT 1",
		ExecutedSQL: "SELECT 1\nLIMIT 1000",
		UserID:      middleware.AnonymousUser,
		Limit:       1000,
		LimitUsed:   true,
		Status:      status,
		StartTime:   fixedTime,
		ChangedOn:   fixedTime.Add(time.Second),
	}
	if status == domain.QueryStatusSuccess {
		q.ResultsKey = strPtr("key-1")
		q.RowCount = 1
		q.Progress = 100
		end := fixedTime.Add(2 * time.Second)
		q.EndTime = &end
	}
	return q
}
