package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"sqllab/internal/domain"
	"sqllab/internal/service/query"
)

// SubmitQuery handles POST /v1/queries. A sync submission answers 200 with
// the display rows; an async one answers 202 with the PENDING record.
// Failures that were written to a record carry it in the Error body.
func (h *APIHandler) SubmitQuery(ctx context.Context, req SubmitQueryRequestObject) (SubmitQueryResponseObject, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	body := req.Body
	runAsync := deref(body.RunAsync)

	res, err := h.queries.Submit(ctx, caller, query.SubmitRequest{
		SQL:            body.Sql,
		DatabaseID:     body.DatabaseId,
		Schema:         body.Schema,
		TemplateParams: deref(body.TemplateParams),
		RequestedLimit: deref(body.RequestedLimit),
		RunAsync:       runAsync,
		ClientID:       deref(body.ClientId),
		SelectAsCTA:    deref(body.SelectAsCta),
		TmpTableName:   body.TmpTableName,
		TabName:        body.Tab,
		SQLEditorID:    body.SqlEditorId,
	})
	if err != nil {
		var recorded *domain.Query
		if res != nil {
			recorded = res.Query
		}
		e := errorBody(err, recorded)
		switch e.Code {
		case http.StatusBadRequest:
			return SubmitQuery400JSONResponse(e), nil
		case http.StatusForbidden:
			return SubmitQuery403JSONResponse(e), nil
		case http.StatusNotFound:
			return SubmitQuery404JSONResponse(e), nil
		case http.StatusConflict:
			return SubmitQuery409JSONResponse(e), nil
		case http.StatusUnprocessableEntity:
			return SubmitQuery422JSONResponse(e), nil
		case http.StatusNotImplemented:
			return SubmitQuery501JSONResponse(e), nil
		case http.StatusServiceUnavailable:
			return SubmitQuery503JSONResponse(e), nil
		case http.StatusGatewayTimeout:
			return SubmitQuery504JSONResponse(e), nil
		}
		return nil, err
	}

	if runAsync {
		return SubmitQuery202JSONResponse{Query: queryToAPI(res.Query)}, nil
	}
	return SubmitQuery200JSONResponse{
		Query:               queryToAPI(res.Query),
		Status:              QueryStatus(res.Query.Status),
		Columns:             resultColumns(res.Data),
		Rows:                resultRows(res.Data),
		RowCount:            res.Query.RowCount,
		DisplayLimitReached: res.DisplayLimitReached,
	}, nil
}

// ValidateQuery handles POST /v1/queries/validate.
func (h *APIHandler) ValidateQuery(ctx context.Context, req ValidateQueryRequestObject) (ValidateQueryResponseObject, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	annotations, err := h.queries.Validate(ctx, caller, query.ValidateRequest{
		SQL:            req.Body.Sql,
		DatabaseID:     req.Body.DatabaseId,
		Schema:         req.Body.Schema,
		TemplateParams: deref(req.Body.TemplateParams),
	})
	if err != nil {
		e := errorBody(err, nil)
		switch e.Code {
		case http.StatusBadRequest:
			return ValidateQuery400JSONResponse(e), nil
		case http.StatusNotFound:
			return ValidateQuery404JSONResponse(e), nil
		case http.StatusNotImplemented:
			return ValidateQuery501JSONResponse(e), nil
		case http.StatusGatewayTimeout:
			return ValidateQuery504JSONResponse(e), nil
		}
		return nil, err
	}

	out := make([]Annotation, len(annotations))
	for i, a := range annotations {
		out[i] = annotationToAPI(a)
	}
	return ValidateQuery200JSONResponse{Annotations: out}, nil
}

// ListUpdatedQueries handles GET /v1/queries/updated?since_ms=.
func (h *APIHandler) ListUpdatedQueries(ctx context.Context, req ListUpdatedQueriesRequestObject) (ListUpdatedQueriesResponseObject, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	qs, err := h.queries.ListUpdatedSince(ctx, caller, time.UnixMilli(req.Params.SinceMs))
	if err != nil {
		if e := errorBody(err, nil); e.Code == http.StatusBadRequest {
			return ListUpdatedQueries400JSONResponse(e), nil
		}
		return nil, err
	}
	out := make(map[string]Query, len(qs))
	for i := range qs {
		out[qs[i].ClientID] = queryToAPI(&qs[i])
	}
	return ListUpdatedQueries200JSONResponse{Queries: out}, nil
}

// SearchQueries handles GET /v1/queries/search.
func (h *APIHandler) SearchQueries(ctx context.Context, req SearchQueriesRequestObject) (SearchQueriesResponseObject, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	p := req.Params
	filter := domain.QueryFilter{
		UserID:     p.UserId,
		DatabaseID: p.DatabaseId,
		SearchText: p.SearchText,
		From:       p.From,
		To:         p.To,
		Page: domain.PageRequest{
			MaxResults: deref(p.MaxResults),
			PageToken:  deref(p.PageToken),
		},
	}
	if p.Status != nil {
		status := domain.QueryStatus(*p.Status)
		filter.Status = &status
	}

	qs, total, err := h.queries.Search(ctx, caller, filter)
	if err != nil {
		if e := errorBody(err, nil); e.Code == http.StatusBadRequest {
			return SearchQueries400JSONResponse(e), nil
		}
		return nil, err
	}
	return SearchQueries200JSONResponse{
		Queries:       queriesToAPI(qs),
		Total:         total,
		NextPageToken: nextPageToken(filter.Page.Offset(), len(qs), total),
	}, nil
}

// GetQuery handles GET /v1/queries/{client_id}.
func (h *APIHandler) GetQuery(ctx context.Context, req GetQueryRequestObject) (GetQueryResponseObject, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	q, err := h.queries.Get(ctx, caller, req.ClientId)
	if err != nil {
		if e := errorBody(err, nil); e.Code == http.StatusNotFound {
			return GetQuery404JSONResponse(e), nil
		}
		return nil, err
	}
	return GetQuery200JSONResponse{Query: queryToAPI(q)}, nil
}

// StopQuery handles POST /v1/queries/{client_id}/stop. Stopping a finished
// query succeeds and reports its final status.
func (h *APIHandler) StopQuery(ctx context.Context, req StopQueryRequestObject) (StopQueryResponseObject, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	q, err := h.queries.Stop(ctx, caller, req.ClientId)
	if err != nil {
		if e := errorBody(err, nil); e.Code == http.StatusNotFound {
			return StopQuery404JSONResponse(e), nil
		}
		return nil, err
	}
	return StopQuery200JSONResponse{ClientId: q.ClientID, Status: QueryStatus(q.Status)}, nil
}

// GetResults handles GET /v1/results/{results_key}?rows=.
func (h *APIHandler) GetResults(ctx context.Context, req GetResultsRequestObject) (GetResultsResponseObject, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	res, err := h.queries.GetResults(ctx, caller, req.ResultsKey, deref(req.Params.Rows))
	if err != nil {
		e := errorBody(err, nil)
		switch e.Code {
		case http.StatusForbidden:
			return GetResults403JSONResponse(e), nil
		case http.StatusGone:
			return GetResults410JSONResponse(e), nil
		}
		return nil, err
	}
	return GetResults200JSONResponse{
		ClientId:            res.Query.ClientID,
		Status:              QueryStatus(res.Query.Status),
		Columns:             resultColumns(res.Data),
		Rows:                resultRows(res.Data),
		RowCount:            res.Data.RowCount(),
		DisplayLimitReached: res.DisplayLimitReached,
	}, nil
}

// ExportQueryCSV handles GET /v1/queries/{client_id}/csv.
func (h *APIHandler) ExportQueryCSV(ctx context.Context, req ExportQueryCSVRequestObject) (ExportQueryCSVResponseObject, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	export, err := h.queries.ExportCSV(ctx, caller, req.ClientId)
	if err != nil {
		e := errorBody(err, nil)
		switch e.Code {
		case http.StatusNotFound:
			return ExportQueryCSV404JSONResponse(e), nil
		case http.StatusGone:
			return ExportQueryCSV410JSONResponse(e), nil
		case http.StatusNotImplemented:
			return ExportQueryCSV501JSONResponse(e), nil
		}
		return nil, err
	}
	return ExportQueryCSV200TextcsvResponse{
		Body:          bytes.NewReader(export.Data),
		ContentLength: int64(len(export.Data)),
		Headers: ExportQueryCSV200ResponseHeaders{
			ContentDisposition: fmt.Sprintf("attachment; filename=%q", export.Filename),
		},
	}, nil
}

func nextPageToken(offset, n int, total int64) *string {
	if n == 0 || int64(offset+n) >= total {
		return nil
	}
	token := domain.EncodePageToken(offset + n)
	return &token
}
