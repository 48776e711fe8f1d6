package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqllab/internal/config"
	"sqllab/internal/domain"
	"sqllab/internal/middleware"
	"sqllab/internal/service/query"
)

func TestSubmitQuery_Sync(t *testing.T) {
	t.Parallel()
	var got query.SubmitRequest
	var gotCaller domain.Caller
	qs := &mockQueryService{
		submitFn: func(_ context.Context, caller domain.Caller, req query.SubmitRequest) (*query.ExecutionResult, error) {
			gotCaller, got = caller, req
			q := sampleQuery(domain.QueryStatusSuccess)
			return &query.ExecutionResult{
				Query: q,
				Data: &domain.ResultSet{
					Columns: []domain.Column{{Name: "n", Type: "INTEGER"}},
					Rows:    [][]interface{}{{1}},
				},
			}, nil
		},
	}
	srv := newTestServer(t, qs, nil)

	resp := do(t, http.MethodPost, srv.URL+"/v1/queries",
		`{"sql":"SELECT 1","database_id":1,"requested_limit":10,"tab":"Untitled","client_id":"abc123defg"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[ExecuteResponse](t, resp)
	assert.Equal(t, QueryStatusSUCCESS, body.Status)
	assert.Equal(t, "abc123defg", body.Query.ClientId)
	assert.Equal(t, []Column{{Name: "n", Type: "INTEGER"}}, body.Columns)
	require.Len(t, body.Rows, 1)
	assert.EqualValues(t, 1, body.Rows[0][0])
	assert.Equal(t, 1, body.RowCount)
	assert.Equal(t, fixedTime.UnixMilli(), body.Query.StartTimeMs)
	require.NotNil(t, body.Query.EndTimeMs)

	assert.Equal(t, middleware.AnonymousUser, gotCaller.UserID)
	assert.Equal(t, "SELECT 1", got.SQL)
	assert.EqualValues(t, 1, got.DatabaseID)
	assert.Equal(t, 10, got.RequestedLimit)
	assert.Equal(t, "abc123defg", got.ClientID)
	require.NotNil(t, got.TabName)
	assert.Equal(t, "Untitled", *got.TabName)
	assert.False(t, got.RunAsync)
}

func TestSubmitQuery_AsyncAccepted(t *testing.T) {
	t.Parallel()
	qs := &mockQueryService{
		submitFn: func(_ context.Context, _ domain.Caller, req query.SubmitRequest) (*query.ExecutionResult, error) {
			require.True(t, req.RunAsync)
			return &query.ExecutionResult{Query: sampleQuery(domain.QueryStatusPending)}, nil
		},
	}
	srv := newTestServer(t, qs, nil)

	resp := do(t, http.MethodPost, srv.URL+"/v1/queries", `{"sql":"SELECT 1","database_id":1,"run_async":true}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	body := decode[QueryResponse](t, resp)
	assert.Equal(t, QueryStatusPENDING, body.Query.Status)
	assert.Nil(t, body.Query.ResultsKey)
	assert.Nil(t, body.Query.EndTimeMs)
}

func TestSubmitQuery_Errors(t *testing.T) {
	t.Parallel()

	failed := func(msg string) *domain.Query {
		q := sampleQuery(domain.QueryStatusFailed)
		q.ErrorMessage = &msg
		return q
	}

	tests := []struct {
		name       string
		res        *query.ExecutionResult
		err        error
		wantStatus int
		wantQuery  bool
	}{
		{
			name:       "adapter error carries the failed record",
			res:        &query.ExecutionResult{Query: failed("no such table: t")},
			err:        &domain.AdapterError{Message: "no such table: t"},
			wantStatus: http.StatusUnprocessableEntity,
			wantQuery:  true,
		},
		{
			name:       "dispatch failure",
			res:        &query.ExecutionResult{Query: failed(domain.DispatchFailureMessage)},
			err:        &domain.DispatchError{Cause: errors.New("database is locked")},
			wantStatus: http.StatusServiceUnavailable,
			wantQuery:  true,
		},
		{
			name:       "timeout",
			res:        &query.ExecutionResult{Query: failed("timeout")},
			err:        &domain.ExecutionTimeoutError{Timeout: 30 * time.Second},
			wantStatus: http.StatusGatewayTimeout,
			wantQuery:  true,
		},
		{
			name:       "dml refused before a record exists",
			err:        domain.ErrAccessDenied("only SELECT statements are allowed against this database"),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "duplicate client id",
			err:        domain.ErrConflict("query %q already exists", "abc123defg"),
			wantStatus: http.StatusConflict,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			qs := &mockQueryService{
				submitFn: func(context.Context, domain.Caller, query.SubmitRequest) (*query.ExecutionResult, error) {
					return tc.res, tc.err
				},
			}
			srv := newTestServer(t, qs, nil)

			resp := do(t, http.MethodPost, srv.URL+"/v1/queries", `{"sql":"SELECT * FROM t","database_id":1}`)
			require.Equal(t, tc.wantStatus, resp.StatusCode)
			body := decode[Error](t, resp)
			assert.Equal(t, tc.wantStatus, body.Code)
			assert.Equal(t, tc.err.Error(), body.Message)
			if !tc.wantQuery {
				assert.Nil(t, body.Query)
				return
			}
			require.NotNil(t, body.Query)
			assert.Equal(t, QueryStatusFAILED, body.Query.Status)
			assert.Equal(t, tc.res.Query.ErrorMessage, body.Query.ErrorMessage)
		})
	}
}

func TestSubmitQuery_RejectsInvalidBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"missing sql", `{"database_id":1}`},
		{"wrong type", `{"sql":"SELECT 1","database_id":"one"}`},
		{"malformed json", `{"sql":`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := newTestServer(t, &mockQueryService{}, nil)
			resp := do(t, http.MethodPost, srv.URL+"/v1/queries", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestSubmitQuery_DecodeErrorWithoutRequestValidation(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &mockQueryService{}, nil, func(c *config.Config) { c.FeatureRequestValidation = false })

	resp := do(t, http.MethodPost, srv.URL+"/v1/queries", `{"sql":`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[Error](t, resp)
	assert.Contains(t, body.Message, "invalid request body")
}

func TestValidateQuery(t *testing.T) {
	t.Parallel()
	line := 1
	qs := &mockQueryService{
		validateFn: func(_ context.Context, _ domain.Caller, req query.ValidateRequest) ([]domain.Annotation, error) {
			assert.Equal(t, "SELEC 1", req.SQL)
			return []domain.Annotation{{Severity: domain.SeverityError, Message: "syntax error", Line: &line}}, nil
		},
	}
	srv := newTestServer(t, qs, nil)

	resp := do(t, http.MethodPost, srv.URL+"/v1/queries/validate", `{"sql":"SELEC 1","database_id":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[ValidateResponse](t, resp)
	require.Len(t, body.Annotations, 1)
	assert.Equal(t, "syntax error", body.Annotations[0].Message)
	assert.Equal(t, &line, body.Annotations[0].Line)
}

func TestValidateQuery_NoValidator(t *testing.T) {
	t.Parallel()
	qs := &mockQueryService{
		validateFn: func(context.Context, domain.Caller, query.ValidateRequest) ([]domain.Annotation, error) {
			return nil, &domain.NoValidatorConfiguredError{Engine: "sqlite"}
		},
	}
	srv := newTestServer(t, qs, nil)

	resp := do(t, http.MethodPost, srv.URL+"/v1/queries/validate", `{"sql":"SELECT 1","database_id":2}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[Error](t, resp).Message, "sqlite")
}

func TestListUpdatedQueries(t *testing.T) {
	t.Parallel()
	since := fixedTime.Add(-time.Minute)
	qs := &mockQueryService{
		updatedFn: func(_ context.Context, _ domain.Caller, got time.Time) ([]domain.Query, error) {
			assert.Equal(t, since.UnixMilli(), got.UnixMilli())
			return []domain.Query{*sampleQuery(domain.QueryStatusRunning)}, nil
		},
	}
	srv := newTestServer(t, qs, nil)

	resp := do(t, http.MethodGet, srv.URL+"/v1/queries/updated?since_ms="+strconv.FormatInt(since.UnixMilli(), 10), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[UpdatedQueriesResponse](t, resp)
	require.Contains(t, body.Queries, "abc123defg")
	assert.Equal(t, QueryStatusRUNNING, body.Queries["abc123defg"].Status)
}

func TestListUpdatedQueries_RequiresSince(t *testing.T) {
	t.Parallel()

	for _, validate := range []bool{true, false} {
		srv := newTestServer(t, &mockQueryService{}, nil, func(c *config.Config) { c.FeatureRequestValidation = validate })
		resp := do(t, http.MethodGet, srv.URL+"/v1/queries/updated", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "request validation %v", validate)
	}
}

func TestListUpdatedQueries_InvalidSinceNamesParameter(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &mockQueryService{}, nil, func(c *config.Config) { c.FeatureRequestValidation = false })

	resp := do(t, http.MethodGet, srv.URL+"/v1/queries/updated?since_ms=yesterday", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[Error](t, resp)
	assert.Equal(t, http.StatusBadRequest, body.Code)
	assert.Contains(t, body.Message, "invalid since_ms")
}

func TestSearchQueries(t *testing.T) {
	t.Parallel()
	var got domain.QueryFilter
	qs := &mockQueryService{
		searchFn: func(_ context.Context, _ domain.Caller, filter domain.QueryFilter) ([]domain.Query, int64, error) {
			got = filter
			return []domain.Query{*sampleQuery(domain.QueryStatusSuccess), *sampleQuery(domain.QueryStatusSuccess)}, 5, nil
		},
	}
	srv := newTestServer(t, qs, nil)

	params := url.Values{}
	params.Set("user_id", "alice")
	params.Set("database_id", "3")
	params.Set("status", "SUCCESS")
	params.Set("search_text", "orders")
	params.Set("from", "2024-03-01T00:00:00Z")
	params.Set("max_results", "2")
	params.Set("page_token", domain.EncodePageToken(2))

	resp := do(t, http.MethodGet, srv.URL+"/v1/queries/search?"+params.Encode(), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[SearchQueriesResponse](t, resp)
	assert.Len(t, body.Queries, 2)
	assert.EqualValues(t, 5, body.Total)
	require.NotNil(t, body.NextPageToken)
	assert.Equal(t, domain.EncodePageToken(4), *body.NextPageToken)

	require.NotNil(t, got.UserID)
	assert.Equal(t, "alice", *got.UserID)
	require.NotNil(t, got.DatabaseID)
	assert.EqualValues(t, 3, *got.DatabaseID)
	require.NotNil(t, got.Status)
	assert.Equal(t, domain.QueryStatusSuccess, *got.Status)
	require.NotNil(t, got.SearchText)
	assert.Equal(t, "orders", *got.SearchText)
	require.NotNil(t, got.From)
	assert.True(t, got.From.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, got.To)
	assert.Equal(t, 2, got.Page.MaxResults)
	assert.Equal(t, 2, got.Page.Offset())
}

func TestSearchQueries_RejectsUnknownStatus(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &mockQueryService{}, nil)
	resp := do(t, http.MethodGet, srv.URL+"/v1/queries/search?status=DONE", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetQuery(t *testing.T) {
	t.Parallel()
	qs := &mockQueryService{
		getFn: func(_ context.Context, _ domain.Caller, clientID string) (*domain.Query, error) {
			if clientID != "abc123defg" {
				return nil, domain.ErrNotFound("query %q not found", clientID)
			}
			return sampleQuery(domain.QueryStatusSuccess), nil
		},
	}
	srv := newTestServer(t, qs, nil)

	resp := do(t, http.MethodGet, srv.URL+"/v1/queries/abc123defg", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[QueryResponse](t, resp)
	assert.Equal(t, "SELECT 1", body.Query.Sql)
	assert.Equal(t, "SELECT 1\nLIMIT 1000", body.Query.ExecutedSql)
	require.NotNil(t, body.Query.ResultsKey)
	assert.Equal(t, "key-1", *body.Query.ResultsKey)

	resp = do(t, http.MethodGet, srv.URL+"/v1/queries/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetQuery_HidesInternalErrors(t *testing.T) {
	t.Parallel()
	qs := &mockQueryService{
		getFn: func(context.Context, domain.Caller, string) (*domain.Query, error) {
			return nil, errors.New("sqlite: disk I/O error")
		},
	}
	srv := newTestServer(t, qs, nil)

	resp := do(t, http.MethodGet, srv.URL+"/v1/queries/abc123defg", "")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, Error{Code: http.StatusInternalServerError, Message: "Internal Server Error"}, decode[Error](t, resp))
}

func TestSubmitQuery_DisabledResultsBackend(t *testing.T) {
	t.Parallel()
	qs := &mockQueryService{
		submitFn: func(context.Context, domain.Caller, query.SubmitRequest) (*query.ExecutionResult, error) {
			q := sampleQuery(domain.QueryStatusFailed)
			return &query.ExecutionResult{Query: q}, domain.ErrNotImplemented("results cannot be stored: RESULTS_BACKEND=none")
		},
	}
	srv := newTestServer(t, qs, nil)

	resp := do(t, http.MethodPost, srv.URL+"/v1/queries", `{"sql":"SELECT 1","database_id":1}`)
	require.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	body := decode[Error](t, resp)
	require.NotNil(t, body.Query)
	assert.Equal(t, QueryStatusFAILED, body.Query.Status)
}

func TestStopQuery(t *testing.T) {
	t.Parallel()
	qs := &mockQueryService{
		stopFn: func(_ context.Context, _ domain.Caller, clientID string) (*domain.Query, error) {
			q := sampleQuery(domain.QueryStatusStopped)
			q.ClientID = clientID
			return q, nil
		},
	}
	srv := newTestServer(t, qs, nil)

	resp := do(t, http.MethodPost, srv.URL+"/v1/queries/q-42/stop", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, StopResponse{ClientId: "q-42", Status: QueryStatusSTOPPED}, decode[StopResponse](t, resp))
}

func TestGetResults(t *testing.T) {
	t.Parallel()
	var gotRows int
	qs := &mockQueryService{
		getResultsFn: func(_ context.Context, _ domain.Caller, key string, rows int) (*query.FetchedResults, error) {
			if key != "key-1" {
				return nil, domain.ErrGone("Data could not be retrieved. You may want to re-run the query.")
			}
			gotRows = rows
			return &query.FetchedResults{
				Query:               sampleQuery(domain.QueryStatusSuccess),
				Data:                &domain.ResultSet{Columns: []domain.Column{{Name: "n", Type: "BIGINT"}}, Rows: [][]interface{}{{1}, {2}}},
				DisplayLimitReached: true,
			}, nil
		},
	}
	srv := newTestServer(t, qs, nil)

	resp := do(t, http.MethodGet, srv.URL+"/v1/results/key-1?rows=2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[ResultsResponse](t, resp)
	assert.Equal(t, 2, gotRows)
	assert.Equal(t, "abc123defg", body.ClientId)
	assert.Equal(t, 2, body.RowCount)
	assert.True(t, body.DisplayLimitReached)

	resp = do(t, http.MethodGet, srv.URL+"/v1/results/key-1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, gotRows)

	resp = do(t, http.MethodGet, srv.URL+"/v1/results/expired", "")
	require.Equal(t, http.StatusGone, resp.StatusCode)
	assert.Contains(t, decode[Error](t, resp).Message, "re-run")
}

func TestExportCSV(t *testing.T) {
	t.Parallel()
	qs := &mockQueryService{
		exportCSVFn: func(_ context.Context, _ domain.Caller, clientID string) (*query.CSVExport, error) {
			switch clientID {
			case "abc123defg":
				return &query.CSVExport{Filename: "sqllab_Untitled_abc123defg.csv", Data: []byte("n\n1\n")}, nil
			case "disabled":
				return nil, domain.ErrNotImplemented("CSV export is disabled")
			}
			return nil, domain.ErrNotFound("query %q not found", clientID)
		},
	}
	srv := newTestServer(t, qs, nil)

	resp := do(t, http.MethodGet, srv.URL+"/v1/queries/abc123defg/csv", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Equal(t, "4", resp.Header.Get("Content-Length"))
	assert.Equal(t, `attachment; filename="sqllab_Untitled_abc123defg.csv"`, resp.Header.Get("Content-Disposition"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "n\n1\n", string(data))

	resp = do(t, http.MethodGet, srv.URL+"/v1/queries/disabled/csv", "")
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/v1/queries/other/csv", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNextPageToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		offset int
		n      int
		total  int64
		want   *string
	}{
		{"empty page", 0, 0, 10, nil},
		{"more remain", 0, 2, 5, strPtr(domain.EncodePageToken(2))},
		{"last page", 4, 1, 5, nil},
		{"middle page", 2, 2, 5, strPtr(domain.EncodePageToken(4))},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, nextPageToken(tc.offset, tc.n, tc.total))
		})
	}
}
