package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthOf(t *testing.T) {
	assert.Equal(t, "2024-03", MonthOf(time.Date(2024, time.March, 31, 23, 0, 0, 0, time.UTC)))
}

func TestStartOfMonth(t *testing.T) {
	got := StartOfMonth(time.Date(2024, time.February, 29, 13, 45, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		want  float64
		valid bool
	}{
		{"float", 12.5, 12.5, true},
		{"int", 7, 7, true},
		{"int64", int64(9), 9, true},
		{"numeric string", " 3.25 ", 3.25, true},
		{"text", "n/a", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat(tt.in)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateID(t *testing.T) {
	id, err := GenerateID(UploadIDSize)
	require.NoError(t, err)
	assert.Len(t, id, UploadIDSize)
	assert.Regexp(t, "^[A-Za-z0-9]+$", id)

	other, err := GenerateID(UploadIDSize)
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestPrettyJson(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": 1\n}", PrettyJson(map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"b\": true\n}", PrettyJson([]byte(`{"b":true}`)))
	assert.Equal(t, "not json", PrettyJson([]byte("not json")))
}
