package kplr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  any
	}{
		{name: "empty string becomes null", input: "", want: nil},
		{name: "integer", input: "123", want: int64(123)},
		{name: "negative integer", input: "-42", want: int64(-42)},
		{name: "float", input: "1.5", want: float64(1.5)},
		{name: "scientific notation", input: "1.5e3", want: float64(1500)},
		{name: "plain string survives", input: "abc", want: "abc"},
		{name: "mixed alphanumeric stays string", input: "K00752.01", want: "K00752.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, normalizeString(tt.input))
		})
	}
}

func TestNormalizeValueIdempotent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input any
	}{
		{name: "nil", input: nil},
		{name: "int64", input: int64(123)},
		{name: "float64", input: float64(1.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.input, normalizeValue(tt.input))
			assert.Equal(t, normalizeValue(tt.input), normalizeValue(normalizeValue(tt.input)))
		})
	}
}

func TestNormalizeRow(t *testing.T) {
	t.Parallel()

	row := normalizeRow(map[string]any{
		"kepid":      "10797460",
		"koi_period": "9.48803557",
		"kepoi_name": "K00752.01",
		"koi_tce":    "",
	})

	assert.Equal(t, Row{
		"kepid":      int64(10797460),
		"koi_period": float64(9.48803557),
		"kepoi_name": "K00752.01",
		"koi_tce":    nil,
	}, row)
}
