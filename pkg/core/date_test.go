package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "iso date", input: "2024-03-01", want: "2024-03-01"},
		{name: "timestamp", input: "2024-03-01T10:30:00Z", want: "2024-03-01"},
		{name: "sql timestamp", input: "2024-03-01 10:30:00", want: "2024-03-01"},
		{name: "empty is unset", input: "", want: ""},
		{name: "blank is unset", input: "  ", want: ""},
		{name: "garbage", input: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestNewDate_TruncatesTime(t *testing.T) {
	d := NewDate(time.Date(2024, 5, 6, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, "2024-05-06", d.String())
	assert.True(t, NewDate(time.Time{}).IsZero())
}

func TestDate_JSON(t *testing.T) {
	ds := Dataset{Name: "a", LastAuditDate: NewDate(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))}
	data, err := json.Marshal(ds)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"last_audit_date":"2024-01-02"`)

	data, err = json.Marshal(Dataset{Name: "b"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"last_audit_date":null`)

	var decoded Dataset
	require.NoError(t, json.Unmarshal([]byte(`{"name":"c","last_audit_date":"2023-12-31"}`), &decoded))
	assert.Equal(t, "2023-12-31", decoded.LastAuditDate.String())
}
