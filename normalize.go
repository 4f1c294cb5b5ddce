package kplr

import "strconv"

// normalizeString coerces a raw archive value into a typed scalar. The
// archives ship every field as text with no schema, so typing is purely
// syntactic: empty means null, then integer, then float, otherwise the
// string stays as-is.
func normalizeString(s string) any {
	if s == "" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// normalizeValue applies normalizeString to string values and passes
// already-typed scalars through unchanged, so normalization is idempotent.
func normalizeValue(v any) any {
	switch s := v.(type) {
	case nil:
		return nil
	case string:
		return normalizeString(s)
	default:
		return v
	}
}

// normalizeRow normalizes every value of a raw row independently. The same
// pass is applied to catalog and survey responses so record field types do
// not depend on which service produced them.
func normalizeRow(raw map[string]any) Row {
	row := make(Row, len(raw))
	for k, v := range raw {
		row[k] = normalizeValue(v)
	}
	return row
}
