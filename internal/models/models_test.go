package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampParsing(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{
			name: "bare iso-8601",
			in:   `"2024-05-10T09:00:05"`,
			want: time.Date(2024, 5, 10, 9, 0, 5, 0, time.UTC),
		},
		{
			name: "fractional seconds no zone",
			in:   `"2024-05-10T09:00:05.123456"`,
			want: time.Date(2024, 5, 10, 9, 0, 5, 123456000, time.UTC),
		},
		{
			name: "zulu",
			in:   `"2024-05-10T09:00:05Z"`,
			want: time.Date(2024, 5, 10, 9, 0, 5, 0, time.UTC),
		},
		{
			name: "offset",
			in:   `"2024-05-10T09:00:05+02:00"`,
			want: time.Date(2024, 5, 10, 9, 0, 5, 0, time.FixedZone("", 2*60*60)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.in), &ts))
			assert.True(t, ts.Equal(tt.want), "got %v, want %v", ts.Time, tt.want)
		})
	}
}

func TestTimestampMalformed(t *testing.T) {
	for _, in := range []string{`"not-a-time"`, `"2024-13-45T99:00:00"`, `12345`, `""`} {
		var ts Timestamp
		require.Error(t, json.Unmarshal([]byte(in), &ts), "input %s", in)
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	ts := Timestamp{Time: time.Date(2024, 5, 10, 9, 0, 5, 123000000, time.UTC)}
	data, err := json.Marshal(ts)
	require.NoError(t, err)

	var back Timestamp
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equal(ts.Time))
}

func TestCompileEventOptionalErrorMessage(t *testing.T) {
	var event CompileEvent
	require.NoError(t, json.Unmarshal([]byte(
		`{"timestamp": "2024-05-10T09:00:05", "success": true, "warning_count": 2}`), &event))
	assert.Nil(t, event.ErrorMessage)
	assert.Equal(t, 2, event.WarningCount)

	require.NoError(t, json.Unmarshal([]byte(
		`{"timestamp": "2024-05-10T09:00:05", "success": false, "error_message": "syntax error"}`), &event))
	require.NotNil(t, event.ErrorMessage)
	assert.Equal(t, "syntax error", *event.ErrorMessage)
}
