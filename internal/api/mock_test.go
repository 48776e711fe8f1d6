package api

import (
	"context"
	"time"

	"sqllab/internal/domain"
	"sqllab/internal/service/query"
)

type mockQueryService struct {
	submitFn     func(ctx context.Context, caller domain.Caller, req query.SubmitRequest) (*query.ExecutionResult, error)
	validateFn   func(ctx context.Context, caller domain.Caller, req query.ValidateRequest) ([]domain.Annotation, error)
	getFn        func(ctx context.Context, caller domain.Caller, clientID string) (*domain.Query, error)
	stopFn       func(ctx context.Context, caller domain.Caller, clientID string) (*domain.Query, error)
	updatedFn    func(ctx context.Context, caller domain.Caller, since time.Time) ([]domain.Query, error)
	searchFn     func(ctx context.Context, caller domain.Caller, filter domain.QueryFilter) ([]domain.Query, int64, error)
	getResultsFn func(ctx context.Context, caller domain.Caller, key string, rows int) (*query.FetchedResults, error)
	exportCSVFn  func(ctx context.Context, caller domain.Caller, clientID string) (*query.CSVExport, error)
}

var _ QueryService = (*mockQueryService)(nil)

func (m *mockQueryService) Submit(ctx context.Context, caller domain.Caller, req query.SubmitRequest) (*query.ExecutionResult, error) {
	if m.submitFn == nil {
		panic("mockQueryService.Submit called but not configured")
	}
	return m.submitFn(ctx, caller, req)
}

func (m *mockQueryService) Validate(ctx context.Context, caller domain.Caller, req query.ValidateRequest) ([]domain.Annotation, error) {
	if m.validateFn == nil {
		panic("mockQueryService.Validate called but not configured")
	}
	return m.validateFn(ctx, caller, req)
}

func (m *mockQueryService) Get(ctx context.Context, caller domain.Caller, clientID string) (*domain.Query, error) {
	if m.getFn == nil {
		panic("mockQueryService.Get called but not configured")
	}
	return m.getFn(ctx, caller, clientID)
}

func (m *mockQueryService) Stop(ctx context.Context, caller domain.Caller, clientID string) (*domain.Query, error) {
	if m.stopFn == nil {
		panic("mockQueryService.Stop called but not configured")
	}
	return m.stopFn(ctx, caller, clientID)
}

func (m *mockQueryService) ListUpdatedSince(ctx context.Context, caller domain.Caller, since time.Time) ([]domain.Query, error) {
	if m.updatedFn == nil {
		panic("mockQueryService.ListUpdatedSince called but not configured")
	}
	return m.updatedFn(ctx, caller, since)
}

func (m *mockQueryService) Search(ctx context.Context, caller domain.Caller, filter domain.QueryFilter) ([]domain.Query, int64, error) {
	if m.searchFn == nil {
		panic("mockQueryService.Search called but not configured")
	}
	return m.searchFn(ctx, caller, filter)
}

func (m *mockQueryService) GetResults(ctx context.Context, caller domain.Caller, key string, rows int) (*query.FetchedResults, error) {
	if m.getResultsFn == nil {
		panic("mockQueryService.GetResults called but not configured")
	}
	return m.getResultsFn(ctx, caller, key, rows)
}

func (m *mockQueryService) ExportCSV(ctx context.Context, caller domain.Caller, clientID string) (*query.CSVExport, error) {
	if m.exportCSVFn == nil {
		panic("mockQueryService.ExportCSV called but not configured")
	}
	return m.exportCSVFn(ctx, caller, clientID)
}

type mockDatabaseService struct {
	listFn     func(ctx context.Context, caller domain.Caller, page domain.PageRequest) ([]domain.Database, int64, error)
	registerFn func(ctx context.Context, caller domain.Caller, d *domain.Database) (*domain.Database, error)
}

var _ DatabaseService = (*mockDatabaseService)(nil)

func (m *mockDatabaseService) List(ctx context.Context, caller domain.Caller, page domain.PageRequest) ([]domain.Database, int64, error) {
	if m.listFn == nil {
		panic("mockDatabaseService.List called but not configured")
	}
	return m.listFn(ctx, caller, page)
}

func (m *mockDatabaseService) Register(ctx context.Context, caller domain.Caller, d *domain.Database) (*domain.Database, error) {
	if m.registerFn == nil {
		panic("mockDatabaseService.Register called but not configured")
	}
	return m.registerFn(ctx, caller, d)
}
