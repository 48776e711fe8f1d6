package api

import "sqllab/internal/domain"

func queryToAPI(q *domain.Query) Query {
	out := Query{
		ClientId:     q.ClientID,
		DatabaseId:   q.DatabaseID,
		Schema:       q.Schema,
		Sql:          q.RawSQL,
		ExecutedSql:  q.ExecutedSQL,
		SelectSql:    q.SelectSQL,
		SelectAsCta:  q.SelectAsCTA,
		TmpTableName: q.TmpTableName,
		UserId:       q.UserID,
		SqlEditorId:  q.SQLEditorID,
		Tab:          q.TabName,
		Limit:        q.Limit,
		LimitUsed:    q.LimitUsed,
		Status:       QueryStatus(q.Status),
		Progress:     q.Progress,
		StartTimeMs:  q.StartTime.UnixMilli(),
		ChangedOnMs:  q.ChangedOn.UnixMilli(),
		ErrorMessage: q.ErrorMessage,
		TrackingUrl:  q.TrackingURL,
		ResultsKey:   q.ResultsKey,
		RowCount:     q.RowCount,
	}
	if q.EndTime != nil {
		ms := q.EndTime.UnixMilli()
		out.EndTimeMs = &ms
	}
	return out
}

func queriesToAPI(qs []domain.Query) []Query {
	out := make([]Query, len(qs))
	for i := range qs {
		out[i] = queryToAPI(&qs[i])
	}
	return out
}

// databaseToAPI never copies the DSN.
func databaseToAPI(d domain.Database) Database {
	return Database{
		Id:              d.ID,
		Name:            d.Name,
		Engine:          d.Engine,
		ExposeInSqllab:  d.ExposeInSQLLab,
		AllowRunAsync:   d.AllowRunAsync,
		AllowCtas:       d.AllowCTAS,
		AllowDml:        d.AllowDML,
		ForceCtasSchema: d.ForceCTASSchema,
		CreatedAt:       d.CreatedAt,
	}
}

func annotationToAPI(a domain.Annotation) Annotation {
	return Annotation{
		Severity: AnnotationSeverity(a.Severity),
		Message:  a.Message,
		Line:     a.Line,
		Column:   a.Column,
	}
}

// resultColumns and resultRows never return nil so empty results encode
// as [] rather than null.
func resultColumns(rs *domain.ResultSet) []Column {
	if rs == nil {
		return []Column{}
	}
	out := make([]Column, len(rs.Columns))
	for i, c := range rs.Columns {
		out[i] = Column{Name: c.Name, Type: c.Type}
	}
	return out
}

func resultRows(rs *domain.ResultSet) [][]interface{} {
	if rs == nil || rs.Rows == nil {
		return [][]interface{}{}
	}
	return rs.Rows
}
