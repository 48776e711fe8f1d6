package api

import (
	"context"
	"net/http"

	"sqllab/internal/domain"
)

// ListDatabases handles GET /v1/databases.
func (h *APIHandler) ListDatabases(ctx context.Context, req ListDatabasesRequestObject) (ListDatabasesResponseObject, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	page := domain.PageRequest{
		MaxResults: deref(req.Params.MaxResults),
		PageToken:  deref(req.Params.PageToken),
	}

	dbs, total, err := h.databases.List(ctx, caller, page)
	if err != nil {
		return nil, err
	}
	out := make([]Database, len(dbs))
	for i, d := range dbs {
		out[i] = databaseToAPI(d)
	}
	return ListDatabases200JSONResponse{
		Databases:     out,
		Total:         total,
		NextPageToken: nextPageToken(page.Offset(), len(dbs), total),
	}, nil
}

// RegisterDatabase handles POST /v1/databases. Registrations are exposed in
// SQL Lab unless the body says otherwise.
func (h *APIHandler) RegisterDatabase(ctx context.Context, req RegisterDatabaseRequestObject) (RegisterDatabaseResponseObject, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	body := req.Body
	d := &domain.Database{
		Name:            body.Name,
		Engine:          string(body.Engine),
		DSN:             deref(body.Dsn),
		ExposeInSQLLab:  body.ExposeInSqllab == nil || *body.ExposeInSqllab,
		AllowRunAsync:   deref(body.AllowRunAsync),
		AllowCTAS:       deref(body.AllowCtas),
		AllowDML:        deref(body.AllowDml),
		ForceCTASSchema: body.ForceCtasSchema,
	}

	created, err := h.databases.Register(ctx, caller, d)
	if err != nil {
		e := errorBody(err, nil)
		switch e.Code {
		case http.StatusBadRequest:
			return RegisterDatabase400JSONResponse(e), nil
		case http.StatusForbidden:
			return RegisterDatabase403JSONResponse(e), nil
		case http.StatusConflict:
			return RegisterDatabase409JSONResponse(e), nil
		}
		return nil, err
	}
	return RegisterDatabase201JSONResponse(databaseToAPI(*created)), nil
}
