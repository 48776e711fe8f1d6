package resultset

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqllab/internal/domain"
)

func sampleResultSet() *domain.ResultSet {
	return &domain.ResultSet{
		Columns: []domain.Column{{Name: "id", Type: "BIGINT"}, {Name: "name", Type: "VARCHAR"}, {Name: "score", Type: "DOUBLE"}},
		Rows: [][]interface{}{
			{int64(9007199254740993), "alice", 1.5},
			{int64(2), nil, 0.25},
		},
	}
}

func TestEncodeDecode_PreservesValues(t *testing.T) {
	t.Parallel()

	payload, err := Encode(sampleResultSet())
	require.NoError(t, err)

	rs, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, sampleResultSet().Columns, rs.Columns)
	require.Len(t, rs.Rows, 2)
	assert.Equal(t, json.Number("9007199254740993"), rs.Rows[0][0], "large integers keep precision")
	assert.Equal(t, "alice", rs.Rows[0][1])
	assert.Nil(t, rs.Rows[1][1])
}

func TestEncode_EmptyResult(t *testing.T) {
	t.Parallel()

	payload, err := Encode(&domain.ResultSet{Columns: []domain.Column{{Name: "a", Type: "INT"}}})
	require.NoError(t, err)
	rs, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, 0, rs.RowCount())
	assert.NotNil(t, rs.Rows)
}

func TestDecode_RejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte("not compressed"))
	require.Error(t, err)
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	rs := sampleResultSet()
	out, truncated := Truncate(rs, 1)
	assert.True(t, truncated)
	assert.Equal(t, 1, out.RowCount())
	assert.Equal(t, 2, rs.RowCount(), "input is untouched")

	out, truncated = Truncate(rs, 10)
	assert.False(t, truncated)
	assert.Same(t, rs, out)
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	payload, err := Encode(sampleResultSet())
	require.NoError(t, err)
	decoded, err := Decode(payload)
	require.NoError(t, err)

	tests := []struct {
		name string
		rs   *domain.ResultSet
		opts CSVOptions
		want string
	}{
		{
			name: "direct",
			rs:   sampleResultSet(),
			want: "id,name,score\n9007199254740993,alice,1.5\n2,,0.25\n",
		},
		{
			name: "decoded from cache matches direct",
			rs:   decoded,
			want: "id,name,score\n9007199254740993,alice,1.5\n2,,0.25\n",
		},
		{
			name: "semicolon with null marker",
			rs:   sampleResultSet(),
			opts: CSVOptions{Delimiter: ';', NullValue: "NULL"},
			want: "id;name;score\n9007199254740993;alice;1.5\n2;NULL;0.25\n",
		},
		{
			name: "quoting",
			rs: &domain.ResultSet{
				Columns: []domain.Column{{Name: "v", Type: "VARCHAR"}},
				Rows:    [][]interface{}{{"a,b"}, {`say "hi"`}},
			},
			want: "v\n\"a,b\"\n\"say \"\"hi\"\"\"\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			require.NoError(t, WriteCSV(&buf, tc.rs, tc.opts))
			assert.Equal(t, tc.want, buf.String())
		})
	}
}
