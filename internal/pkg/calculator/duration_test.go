package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) *time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339Nano, s)
	require.NoError(t, err)
	return &ts
}

func TestWorkHours(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  string
		checkOut string
		want     string
	}{
		{"regular shift", "2024-01-01T09:00:00Z", "2024-01-01T17:30:00Z", "8.50"},
		{"same instant", "2024-01-01T09:00:00Z", "2024-01-01T09:00:00Z", "0.00"},
		{"one minute", "2024-01-01T09:00:00Z", "2024-01-01T09:01:00Z", "0.02"},
		{"half rounds away from zero", "2024-01-01T09:00:00Z", "2024-01-01T09:00:18Z", "0.01"},
		{"below half rounds down", "2024-01-01T09:00:00Z", "2024-01-01T09:00:17.999Z", "0.00"},
		{"overnight", "2024-01-01T22:00:00Z", "2024-01-02T06:15:00Z", "8.25"},
		{"across offsets", "2024-01-01T09:00:00+07:00", "2024-01-01T17:00:00+08:00", "7.00"},
		{"inverted", "2024-01-01T17:30:00Z", "2024-01-01T09:00:00Z", "8.50"},
		{"thirds", "2024-01-01T09:00:00Z", "2024-01-01T09:20:00Z", "0.33"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WorkHours(mustTime(t, tt.checkIn), mustTime(t, tt.checkOut))
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.StringFixed(2))
			assert.False(t, got.IsNegative())
		})
	}
}

func TestWorkHours_MissingInstant(t *testing.T) {
	in := mustTime(t, "2024-01-01T09:00:00Z")

	assert.Nil(t, WorkHours(in, nil))
	assert.Nil(t, WorkHours(nil, in))
	assert.Nil(t, WorkHours(nil, nil))
}

func TestWorkHours_Symmetric(t *testing.T) {
	a := mustTime(t, "2024-02-29T08:12:45.123Z")
	b := mustTime(t, "2024-03-01T19:59:01.987Z")

	ab := WorkHours(a, b)
	ba := WorkHours(b, a)
	require.NotNil(t, ab)
	require.NotNil(t, ba)
	assert.True(t, ab.Equal(*ba))
}

func TestWorkHours_Deterministic(t *testing.T) {
	a := mustTime(t, "2024-01-01T09:00:00Z")
	b := mustTime(t, "2024-01-01T13:47:13Z")

	first := WorkHours(a, b)
	for i := 0; i < 10; i++ {
		assert.True(t, first.Equal(*WorkHours(a, b)))
	}
}
