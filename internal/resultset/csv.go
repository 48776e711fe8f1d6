package resultset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"sqllab/internal/domain"
)

// CSVOptions controls CSV rendering.
type CSVOptions struct {
	Delimiter rune // defaults to ','
	NullValue string
}

// WriteCSV writes rs as CSV with a header row.
func WriteCSV(w io.Writer, rs *domain.ResultSet, opts CSVOptions) error {
	cw := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		cw.Comma = opts.Delimiter
	}

	if rs == nil {
		rs = &domain.ResultSet{}
	}
	header := make([]string, len(rs.Columns))
	for i, c := range rs.Columns {
		header[i] = c.Name
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(rs.Columns))
	for _, row := range rs.Rows {
		if len(row) != len(record) {
			record = make([]string, len(row))
		}
		for i, v := range row {
			record[i] = formatCell(v, opts.NullValue)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCell(v interface{}, null string) string {
	switch t := v.(type) {
	case nil:
		return null
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
