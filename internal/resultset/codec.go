// Package resultset serializes, compresses, truncates, and exports
// materialized query results.
package resultset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"sqllab/internal/domain"
)

// payloadVersion is bumped whenever the payload layout changes.
const payloadVersion = 1

type payload struct {
	Version int             `json:"v"`
	Columns []domain.Column `json:"columns"`
	Rows    [][]interface{} `json:"data"`
}

// Encode serializes rs to JSON and compresses it with zlib.
func Encode(rs *domain.ResultSet) ([]byte, error) {
	if rs == nil {
		rs = &domain.ResultSet{}
	}
	rows := rs.Rows
	if rows == nil {
		rows = [][]interface{}{}
	}

	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestSpeed)
	if err != nil {
		return nil, fmt.Errorf("create compressor: %w", err)
	}
	if err := json.NewEncoder(zw).Encode(payload{Version: payloadVersion, Columns: rs.Columns, Rows: rows}); err != nil {
		_ = zw.Close()
		return nil, fmt.Errorf("encode result set: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("flush compressor: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reverses Encode. Numbers decode as json.Number so integers keep
// their precision.
func Decode(data []byte) (*domain.ResultSet, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open compressed payload: %w", err)
	}
	defer zr.Close() //nolint:errcheck

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var p payload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode result set: %w", err)
	}
	if p.Version != payloadVersion {
		return nil, fmt.Errorf("unsupported payload version %d", p.Version)
	}
	return &domain.ResultSet{Columns: p.Columns, Rows: p.Rows}, nil
}

// Truncate returns at most max rows of rs and reports whether rows were
// dropped. The input is not modified.
func Truncate(rs *domain.ResultSet, max int) (*domain.ResultSet, bool) {
	if rs == nil || max <= 0 || len(rs.Rows) <= max {
		return rs, false
	}
	return &domain.ResultSet{Columns: rs.Columns, Rows: rs.Rows[:max]}, true
}
