package engine

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"time"
	"unicode/utf8"
)

// normalizeValue converts a scanned driver value into something that
// encodes to JSON without loss of meaning.
func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case nil, bool, int, int8, int16, int32, int64, uint8, uint16, uint32, uint64, time.Time:
		return t
	case string:
		if utf8.ValidString(t) {
			return t
		}
		return binaryText([]byte(t))
	case float32:
		return normalizeFloat(float64(t))
	case float64:
		return normalizeFloat(t)
	case []byte:
		if utf8.Valid(t) {
			return string(t)
		}
		return binaryText(t)
	case *big.Int:
		return t.String()
	case json.Number:
		return t
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			out[k] = normalizeValue(e)
		}
		return out
	case fmt.Stringer:
		return t.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		out := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = normalizeValue(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := range out {
			out[i] = normalizeValue(rv.Index(i).Interface())
		}
		return out
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return normalizeValue(rv.Elem().Interface())
	default:
		return fmt.Sprint(v)
	}
}

// normalizeFloat renders NaN and infinities as strings; JSON has no
// representation for them.
func normalizeFloat(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return f
}

// binaryText renders bytes that are not valid UTF-8 in PostgreSQL's bytea
// hex format, since JSON strings cannot carry them.
func binaryText(b []byte) string {
	return `\x` + hex.EncodeToString(b)
}
