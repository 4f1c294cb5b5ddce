package kplr

import (
	"fmt"
	"strconv"
)

// Row is one normalized record as produced by a gateway: a mapping from
// column name to a typed scalar (nil, int64, float64, or string). Rows are
// treated as immutable once constructed.
type Row map[string]any

// Get returns the value stored under key. A key that is absent from the
// row is an ErrMissingField; a present-but-null value returns nil without
// error, since null is a legitimate normalized value.
func (r Row) Get(key string) (any, error) {
	v, ok := r[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingField, key)
	}
	return v, nil
}

// Int returns the value under key as an int64. Float values are accepted
// when they carry an integral value, and strings are parsed, so callers
// see the same result regardless of how the source service typed the field.
func (r Row) Int(key string) (int64, error) {
	v, err := r.Get(key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case float64:
		if n == float64(int64(n)) {
			return int64(n), nil
		}
		return 0, fmt.Errorf("kplr: field %q: %v is not an integer", key, n)
	case string:
		i, perr := strconv.ParseInt(n, 10, 64)
		if perr != nil {
			return 0, fmt.Errorf("kplr: field %q: %w", key, perr)
		}
		return i, nil
	case nil:
		return 0, fmt.Errorf("%w: %q is null", ErrMissingField, key)
	default:
		return 0, fmt.Errorf("kplr: field %q: unexpected type %T", key, v)
	}
}

// Float returns the value under key as a float64.
func (r Row) Float(key string) (float64, error) {
	v, err := r.Get(key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case string:
		f, perr := strconv.ParseFloat(n, 64)
		if perr != nil {
			return 0, fmt.Errorf("kplr: field %q: %w", key, perr)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("%w: %q is null", ErrMissingField, key)
	default:
		return 0, fmt.Errorf("kplr: field %q: unexpected type %T", key, v)
	}
}

// Str returns the value under key rendered as a string.
func (r Row) Str(key string) (string, error) {
	v, err := r.Get(key)
	if err != nil {
		return "", err
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case nil:
		return "", fmt.Errorf("%w: %q is null", ErrMissingField, key)
	default:
		return fmt.Sprint(v), nil
	}
}
