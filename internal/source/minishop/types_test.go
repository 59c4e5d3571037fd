package minishop

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexIDAcceptsStringsAndNumbers(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw  string
		want FlexID
	}{
		{raw: `"1714557600000-512"`, want: "1714557600000-512"},
		{raw: `42`, want: "42"},
		{raw: `null`, want: ""},
	}
	for _, tt := range tests {
		var id FlexID
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &id), tt.raw)
		assert.Equal(t, tt.want, id, tt.raw)
	}
}

func TestFlexTimeShapes(t *testing.T) {
	t.Parallel()
	local := time.Date(2024, 5, 1, 10, 15, 30, 0, time.Local)
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{name: "local iso", raw: `"2024-05-01T10:15:30"`, want: local},
		{name: "local iso with fraction", raw: `"2024-05-01T10:15:30.5"`, want: local.Add(500 * time.Millisecond)},
		{name: "rfc3339", raw: `"2024-05-01T10:15:30Z"`, want: time.Date(2024, 5, 1, 10, 15, 30, 0, time.UTC)},
		{name: "jackson array", raw: `[2024,5,1,10,15,30]`, want: local},
		{name: "jackson array with nanos", raw: `[2024,5,1,10,15,30,1000]`, want: local.Add(time.Microsecond)},
		{name: "epoch millis", raw: `1714558530000`, want: time.UnixMilli(1714558530000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ft FlexTime
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &ft))
			assert.True(t, tt.want.Equal(ft.Time), "got %v, want %v", ft.Time, tt.want)
		})
	}
}

func TestFlexTimeGarbageIsZero(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{`"yesterday"`, `null`, `[2024]`, `{}`} {
		var ft FlexTime
		require.NoError(t, json.Unmarshal([]byte(raw), &ft), raw)
		assert.True(t, ft.IsZero(), raw)
	}
}

func TestMalformedTimestampKeepsNotification(t *testing.T) {
	t.Parallel()
	var n Notification
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","timestamp":"not a time","severity":" error "}`), &n))

	m := n.toModel()
	assert.Equal(t, "x", m.ID)
	assert.True(t, m.Timestamp.IsZero())
	assert.EqualValues(t, "ERROR", m.Severity)
}
