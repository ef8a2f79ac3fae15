package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLeaveDays(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"same day", date(2024, 3, 10), date(2024, 3, 10), 1},
		{"three days", date(2024, 3, 10), date(2024, 3, 12), 3},
		{"across month end", date(2024, 2, 28), date(2024, 3, 1), 3},
		{"leap year february", date(2024, 2, 1), date(2024, 2, 29), 29},
		{"across year end", date(2023, 12, 30), date(2024, 1, 2), 4},
		{"inverted", date(2024, 3, 12), date(2024, 3, 10), 3},
		{"partial day rounds up", date(2024, 3, 10), date(2024, 3, 10).Add(90 * time.Minute), 2},
		{"one day minus a millisecond", date(2024, 3, 10), date(2024, 3, 11).Add(-time.Millisecond), 2},
		{"exact day boundary", date(2024, 3, 10), date(2024, 3, 11), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LeaveDays(tt.start, tt.end))
		})
	}
}

func TestLeaveDays_SameInstantIsOneDay(t *testing.T) {
	instants := []time.Time{
		date(2024, 3, 10),
		time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC),
		time.Date(1999, 12, 31, 12, 0, 0, 0, time.FixedZone("WIB", 7*3600)),
	}
	for _, ts := range instants {
		assert.Equal(t, 1, LeaveDays(ts, ts))
	}
}

func TestLeaveDays_Symmetric(t *testing.T) {
	a := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	b := time.Date(2024, 5, 9, 17, 0, 0, 0, time.UTC)

	assert.Equal(t, LeaveDays(a, b), LeaveDays(b, a))
	assert.GreaterOrEqual(t, LeaveDays(a, b), 1)
}
