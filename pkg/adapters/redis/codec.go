package redis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// encodeKey renders a cache key as a stable string. Strings pass through;
// everything else goes through JSON, which keeps integers compact ("42").
func encodeKey(key any) (string, error) {
	switch k := key.(type) {
	case string:
		return k, nil
	case fmt.Stringer:
		return k.String(), nil
	default:
		data, err := json.Marshal(key)
		if err != nil {
			return "", fmt.Errorf("unsupported cache key %T: %w", key, err)
		}
		return string(data), nil
	}
}

// encodeValue serializes a value for storage. Raw bytes pass through
// untouched so keep-binary writers control their own encoding.
func encodeValue(value any) ([]byte, error) {
	if b, ok := value.([]byte); ok {
		return b, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	return data, nil
}

// decodeValue deserializes a stored value. In keep-binary mode the raw bytes
// are returned without decoding. Data that is not valid JSON (e.g. written by
// a keep-binary producer) is surfaced as a string rather than an error.
// Numbers decode through json.Number and integral values come back as int,
// so a stored integer reads as the same value and type on every adapter.
func decodeValue(data []byte, keepBinary bool) any {
	if keepBinary {
		return data
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return string(data)
	}
	return normalizeNumbers(v)
}

// normalizeNumbers rewrites json.Number leaves in place: integral values
// become int (int64 when they do not fit), anything else float64. Applied
// recursively so nested maps and lists compare equal to what was stored.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(t.String(), 10, 0); err == nil {
			return int(i)
		}
		if i, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
		return t
	default:
		return v
	}
}
