package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"sqllab/internal/domain"
)

var _ domain.QueryRepository = (*QueryRepo)(nil)

const queryColumns = `id, client_id, database_id, schema_name, raw_sql, rendered_sql, executed_sql,
	select_sql, select_as_cta, tmp_table_name, user_id, sql_editor_id, tab_name, row_limit,
	limit_used, status, progress, start_time, end_time, error_message, tracking_url,
	results_key, row_count, changed_on`

// QueryRepo stores query records in the SQLite metastore.
type QueryRepo struct {
	db     *sql.DB
	readDB *sql.DB
	now    func() time.Time
}

// NewQueryRepo creates a QueryRepo. Writes go through writeDB; listing and
// search use readDB.
func NewQueryRepo(writeDB, readDB *sql.DB) *QueryRepo {
	if readDB == nil {
		readDB = writeDB
	}
	return &QueryRepo{db: writeDB, readDB: readDB, now: time.Now}
}

// SetClock overrides the time source used for lifecycle timestamps.
func (r *QueryRepo) SetClock(now func() time.Time) {
	r.now = now
}

// Create inserts a new query record in PENDING or RUNNING state.
func (r *QueryRepo) Create(ctx context.Context, q *domain.Query) (*domain.Query, error) {
	if q == nil {
		return nil, domain.ErrValidation("query is required")
	}
	if q.Status != domain.QueryStatusPending && q.Status != domain.QueryStatusRunning {
		return nil, domain.ErrValidation("new query must be PENDING or RUNNING, got %q", q.Status)
	}
	if q.Limit <= 0 {
		return nil, domain.ErrValidation("query limit must be positive")
	}
	if q.ClientID == "" {
		q.ClientID = domain.NewClientID()
	}
	now := r.now()
	if q.StartTime.IsZero() {
		q.StartTime = now
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO queries (client_id, database_id, schema_name, raw_sql, rendered_sql, executed_sql,
			select_sql, select_as_cta, tmp_table_name, user_id, sql_editor_id, tab_name, row_limit,
			limit_used, status, progress, start_time, tracking_url, changed_on)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?)
	`, q.ClientID, q.DatabaseID, nullString(q.Schema), q.RawSQL, q.RenderedSQL, q.ExecutedSQL,
		nullString(q.SelectSQL), boolToInt(q.SelectAsCTA), nullString(q.TmpTableName), q.UserID,
		nullString(q.SQLEditorID), nullString(q.TabName), q.Limit, boolToInt(q.LimitUsed),
		string(q.Status), toMillis(q.StartTime), nullString(q.TrackingURL), toMillis(now))
	if err != nil {
		var conflict *domain.ConflictError
		if mapped := mapDBError(err); errors.As(mapped, &conflict) {
			return nil, domain.ErrConflict("query with client_id %q already exists", q.ClientID)
		}
		return nil, fmt.Errorf("insert query: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return r.getOne(ctx, r.db, `SELECT `+queryColumns+` FROM queries WHERE id = ?`, id)
}

// GetByID returns a query by its store id.
func (r *QueryRepo) GetByID(ctx context.Context, id int64) (*domain.Query, error) {
	q, err := r.getOne(ctx, r.db, `SELECT `+queryColumns+` FROM queries WHERE id = ?`, id)
	if err != nil {
		return nil, notFoundAs(err, "query %d not found", id)
	}
	return q, nil
}

// GetByClientID returns a query by its client id.
func (r *QueryRepo) GetByClientID(ctx context.Context, clientID string) (*domain.Query, error) {
	q, err := r.getOne(ctx, r.db, `SELECT `+queryColumns+` FROM queries WHERE client_id = ?`, clientID)
	if err != nil {
		return nil, notFoundAs(err, "query %q not found", clientID)
	}
	return q, nil
}

// GetByResultsKey returns the query whose results are cached under key.
func (r *QueryRepo) GetByResultsKey(ctx context.Context, key string) (*domain.Query, error) {
	q, err := r.getOne(ctx, r.db, `SELECT `+queryColumns+` FROM queries WHERE results_key = ?`, key)
	if err != nil {
		return nil, notFoundAs(err, "no query holds results %q", key)
	}
	return q, nil
}

// MarkRunning moves a PENDING query to RUNNING.
func (r *QueryRepo) MarkRunning(ctx context.Context, id int64) error {
	return r.transition(ctx, id, domain.QueryStatusRunning, `progress = 0`)
}

// MarkSucceeded moves a RUNNING query to SUCCESS and records its results
// pointer in the same statement.
func (r *QueryRepo) MarkSucceeded(ctx context.Context, id int64, resultsKey string, rowCount int) error {
	if resultsKey == "" {
		return domain.ErrValidation("results key is required to mark a query successful")
	}
	return r.transition(ctx, id, domain.QueryStatusSuccess,
		`results_key = ?, row_count = ?, progress = 100, end_time = ?, error_message = NULL`,
		resultsKey, rowCount, toMillis(r.now()))
}

// MarkFailed moves a PENDING or RUNNING query to FAILED.
func (r *QueryRepo) MarkFailed(ctx context.Context, id int64, message string) error {
	return r.transition(ctx, id, domain.QueryStatusFailed,
		`error_message = ?, end_time = ?`, message, toMillis(r.now()))
}

// Stop moves a non-terminal query to STOPPED and returns the record as it
// stands afterwards. Stopping a terminal query changes nothing.
func (r *QueryRepo) Stop(ctx context.Context, id int64) (*domain.Query, error) {
	err := r.transition(ctx, id, domain.QueryStatusStopped, `end_time = ?`, toMillis(r.now()))
	var conflict *domain.ConflictError
	if err != nil && !errors.As(err, &conflict) {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// UpdateProgress records progress on a RUNNING query. It returns a
// ConflictError once the query has left RUNNING, which workers treat as a
// stop signal.
func (r *QueryRepo) UpdateProgress(ctx context.Context, id int64, progress int, trackingURL *string) error {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE queries
		SET progress = ?, tracking_url = COALESCE(?, tracking_url), changed_on = ?
		WHERE id = ? AND status = ?
	`, progress, nullString(trackingURL), toMillis(r.now()), id, string(domain.QueryStatusRunning))
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return r.transitionConflict(ctx, id, domain.QueryStatusRunning)
	}
	return nil
}

// ListUpdatedSince returns the user's queries changed at or after since.
func (r *QueryRepo) ListUpdatedSince(ctx context.Context, userID string, since time.Time) ([]domain.Query, error) {
	return r.list(ctx, `SELECT `+queryColumns+` FROM queries
		WHERE user_id = ? AND changed_on >= ?
		ORDER BY changed_on, id`, userID, toMillis(since))
}

// Search returns queries matching filter within scope, ordered by start time.
func (r *QueryRepo) Search(ctx context.Context, scope domain.QueryScope, filter domain.QueryFilter) ([]domain.Query, int64, error) {
	var (
		where []string
		args  []interface{}
	)

	if scope.OwnOnly {
		where = append(where, "user_id = ?")
		args = append(args, scope.UserID)
	}
	if len(scope.DatabaseIDs) > 0 {
		marks := make([]string, len(scope.DatabaseIDs))
		for i, id := range scope.DatabaseIDs {
			marks[i] = "?"
			args = append(args, id)
		}
		where = append(where, "database_id IN ("+strings.Join(marks, ", ")+")")
	}
	if filter.UserID != nil {
		where = append(where, "user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.DatabaseID != nil {
		where = append(where, "database_id = ?")
		args = append(args, *filter.DatabaseID)
	}
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.SearchText != nil && *filter.SearchText != "" {
		where = append(where, `raw_sql LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(*filter.SearchText)+"%")
	}
	if filter.From != nil {
		where = append(where, "start_time >= ?")
		args = append(args, toMillis(*filter.From))
	}
	if filter.To != nil {
		where = append(where, "start_time < ?")
		args = append(args, toMillis(*filter.To))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.readDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM queries`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count queries: %w", err)
	}

	pageArgs := append(append([]interface{}{}, args...), filter.Page.Limit(), filter.Page.Offset())
	queries, err := r.list(ctx, `SELECT `+queryColumns+` FROM queries`+clause+`
		ORDER BY start_time, id LIMIT ? OFFSET ?`, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	return queries, total, nil
}

// FailStale fails PENDING and RUNNING queries that have not changed since
// idleSince. It returns the number of records reaped.
func (r *QueryRepo) FailStale(ctx context.Context, idleSince time.Time, message string) (int64, error) {
	sources, srcArgs := statusPlaceholders(domain.TransitionSources(domain.QueryStatusFailed))
	now := toMillis(r.now())
	args := append([]interface{}{string(domain.QueryStatusFailed), message, now, now}, srcArgs...)
	args = append(args, toMillis(idleSince))
	res, err := r.db.ExecContext(ctx, `
		UPDATE queries
		SET status = ?, error_message = ?, end_time = ?, changed_on = ?
		WHERE status IN (`+sources+`) AND changed_on < ?
	`, args...)
	if err != nil {
		return 0, mapDBError(err)
	}
	return res.RowsAffected()
}

func (r *QueryRepo) transition(ctx context.Context, id int64, target domain.QueryStatus, set string, setArgs ...interface{}) error {
	sources, srcArgs := statusPlaceholders(domain.TransitionSources(target))
	args := []interface{}{string(target), toMillis(r.now())}
	args = append(args, setArgs...)
	args = append(args, id)
	args = append(args, srcArgs...)

	res, err := r.db.ExecContext(ctx, `
		UPDATE queries SET status = ?, changed_on = ?, `+set+`
		WHERE id = ? AND status IN (`+sources+`)
	`, args...)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return r.transitionConflict(ctx, id, target)
	}
	return nil
}

func (r *QueryRepo) transitionConflict(ctx context.Context, id int64, target domain.QueryStatus) error {
	var status string
	err := r.db.QueryRowContext(ctx, `SELECT status FROM queries WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound("query %d not found", id)
	}
	if err != nil {
		return fmt.Errorf("load query status: %w", err)
	}
	return domain.ErrConflict("query %d is %s and cannot move to %s", id, status, target)
}

func (r *QueryRepo) list(ctx context.Context, stmt string, args ...interface{}) ([]domain.Query, error) {
	rows, err := r.readDB.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Query
	for rows.Next() {
		q, err := scanQuery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

func (r *QueryRepo) getOne(ctx context.Context, db *sql.DB, stmt string, args ...interface{}) (*domain.Query, error) {
	q, err := scanQuery(db.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		return nil, mapDBError(err)
	}
	return q, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuery(row rowScanner) (*domain.Query, error) {
	var (
		q                                      domain.Query
		schema, selectSQL, tmpTable            sql.NullString
		editorID, tabName, errMsg, trackingURL sql.NullString
		resultsKey                             sql.NullString
		selectAsCTA, limitUsed                 int64
		status                                 string
		startTime, changedOn                   int64
		endTime                                sql.NullInt64
	)
	err := row.Scan(
		&q.ID, &q.ClientID, &q.DatabaseID, &schema, &q.RawSQL, &q.RenderedSQL, &q.ExecutedSQL,
		&selectSQL, &selectAsCTA, &tmpTable, &q.UserID, &editorID, &tabName, &q.Limit,
		&limitUsed, &status, &q.Progress, &startTime, &endTime, &errMsg, &trackingURL,
		&resultsKey, &q.RowCount, &changedOn,
	)
	if err != nil {
		return nil, err
	}
	q.Schema = stringPtr(schema)
	q.SelectSQL = stringPtr(selectSQL)
	q.SelectAsCTA = selectAsCTA != 0
	q.TmpTableName = stringPtr(tmpTable)
	q.SQLEditorID = stringPtr(editorID)
	q.TabName = stringPtr(tabName)
	q.LimitUsed = limitUsed != 0
	q.Status = domain.QueryStatus(status)
	q.StartTime = fromMillis(startTime)
	q.EndTime = timePtr(endTime)
	q.ErrorMessage = stringPtr(errMsg)
	q.TrackingURL = stringPtr(trackingURL)
	q.ResultsKey = stringPtr(resultsKey)
	q.ChangedOn = fromMillis(changedOn)
	return &q, nil
}

func notFoundAs(err error, format string, args ...interface{}) error {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return domain.ErrNotFound(format, args...)
	}
	return err
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
