package domain

import "time"

// QueryStatus represents the lifecycle state of a submitted query.
type QueryStatus string

// Query lifecycle statuses.
const (
	QueryStatusPending QueryStatus = "PENDING"
	QueryStatusRunning QueryStatus = "RUNNING"
	QueryStatusSuccess QueryStatus = "SUCCESS"
	QueryStatusFailed  QueryStatus = "FAILED"
	QueryStatusStopped QueryStatus = "STOPPED"
)

// IsTerminal reports whether no further transition is allowed out of s.
func (s QueryStatus) IsTerminal() bool {
	switch s {
	case QueryStatusSuccess, QueryStatusFailed, QueryStatusStopped:
		return true
	}
	return false
}

// Valid reports whether s is a known status.
func (s QueryStatus) Valid() bool {
	switch s {
	case QueryStatusPending, QueryStatusRunning, QueryStatusSuccess, QueryStatusFailed, QueryStatusStopped:
		return true
	}
	return false
}

// TransitionSources returns the statuses from which a query may move to
// target. Store implementations use it to build conditional updates.
func TransitionSources(target QueryStatus) []QueryStatus {
	switch target {
	case QueryStatusRunning:
		return []QueryStatus{QueryStatusPending}
	case QueryStatusSuccess:
		return []QueryStatus{QueryStatusRunning}
	case QueryStatusFailed, QueryStatusStopped:
		return []QueryStatus{QueryStatusPending, QueryStatusRunning}
	}
	return nil
}

// CanTransition reports whether from -> to is a legal status transition.
func CanTransition(from, to QueryStatus) bool {
	for _, s := range TransitionSources(to) {
		if s == from {
			return true
		}
	}
	return false
}

// Query is the persisted record of one submitted SQL execution.
type Query struct {
	ID       int64
	ClientID string

	DatabaseID   int64
	Schema       *string
	RawSQL       string
	RenderedSQL  string
	ExecutedSQL  string
	SelectSQL    *string
	SelectAsCTA  bool
	TmpTableName *string

	UserID      string
	SQLEditorID *string
	TabName     *string
	Limit       int
	LimitUsed   bool

	Status       QueryStatus
	Progress     int
	StartTime    time.Time
	EndTime      *time.Time
	ErrorMessage *string
	TrackingURL  *string

	ResultsKey *string
	RowCount   int

	ChangedOn time.Time
}

// Name returns the display name used for exports, derived from the tab and
// client id.
func (q *Query) Name() string {
	tab := "untitled"
	if q.TabName != nil && *q.TabName != "" {
		tab = *q.TabName
	}
	return "sqllab_" + sanitizeFilenamePart(tab) + "_" + q.ClientID
}

func sanitizeFilenamePart(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// QueryFilter holds independently combinable search filters.
type QueryFilter struct {
	UserID     *string
	DatabaseID *int64
	Status     *QueryStatus
	SearchText *string
	From       *time.Time
	To         *time.Time
	Page       PageRequest
}

// QueryScope restricts which queries a caller may see. It is computed by the
// permission collaborator and applied verbatim by the store. Empty slices
// mean "no restriction" on that dimension unless OwnOnly is set.
type QueryScope struct {
	OwnOnly     bool
	UserID      string
	DatabaseIDs []int64
}

// OwnerScope returns a scope limited to queries submitted by caller.
func OwnerScope(caller Caller) QueryScope {
	return QueryScope{OwnOnly: true, UserID: caller.UserID}
}

// Task is a durable message asking a worker to execute a pending query.
type Task struct {
	ID          int64
	QueryID     int64
	ClientID    string
	Attempts    int
	LeaseOwner  *string
	LeaseExpiry *time.Time
	CreatedAt   time.Time
}
