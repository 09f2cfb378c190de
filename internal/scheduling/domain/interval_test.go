package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, time.March, 12, hour, minute, 0, 0, time.UTC)
}

func iv(sh, sm, eh, em int) Interval {
	return Interval{Start: at(sh, sm), End: at(eh, em)}
}

func TestMergeIntervals(t *testing.T) {
	tests := []struct {
		name string
		in   []Interval
		want []Interval
	}{
		{
			name: "disjoint stay separate",
			in:   []Interval{iv(9, 0, 10, 0), iv(11, 0, 12, 0)},
			want: []Interval{iv(9, 0, 10, 0), iv(11, 0, 12, 0)},
		},
		{
			name: "overlapping coalesce",
			in:   []Interval{iv(9, 0, 10, 30), iv(10, 0, 11, 0)},
			want: []Interval{iv(9, 0, 11, 0)},
		},
		{
			name: "touching coalesce",
			in:   []Interval{iv(9, 0, 10, 0), iv(10, 0, 11, 0)},
			want: []Interval{iv(9, 0, 11, 0)},
		},
		{
			name: "unsorted input",
			in:   []Interval{iv(14, 0, 15, 0), iv(9, 0, 10, 0)},
			want: []Interval{iv(9, 0, 10, 0), iv(14, 0, 15, 0)},
		},
		{
			name: "contained interval vanishes",
			in:   []Interval{iv(9, 0, 12, 0), iv(10, 0, 11, 0)},
			want: []Interval{iv(9, 0, 12, 0)},
		},
		{
			name: "empty intervals dropped",
			in:   []Interval{iv(9, 0, 9, 0), iv(10, 0, 11, 0)},
			want: []Interval{iv(10, 0, 11, 0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeIntervals(tt.in))
		})
	}
}

func TestPadIntervals(t *testing.T) {
	got := PadIntervals([]Interval{iv(10, 0, 11, 0)}, 15*time.Minute)
	require.Len(t, got, 1)
	assert.Equal(t, iv(9, 45, 11, 15), got[0])

	// Padding can bridge a small gap between meetings.
	got = PadIntervals([]Interval{iv(10, 0, 11, 0), iv(11, 20, 12, 0)}, 15*time.Minute)
	require.Len(t, got, 1)
	assert.Equal(t, iv(9, 45, 12, 15), got[0])
}

func TestSubtractIntervals(t *testing.T) {
	free := []Interval{iv(9, 0, 12, 0), iv(14, 0, 18, 0)}

	t.Run("no busy keeps windows", func(t *testing.T) {
		assert.Equal(t, free, SubtractIntervals(free, nil))
	})

	t.Run("busy splits a window", func(t *testing.T) {
		busy := []Interval{iv(10, 0, 10, 30)}
		assert.Equal(t, []Interval{
			iv(9, 0, 10, 0), iv(10, 30, 12, 0), iv(14, 0, 18, 0),
		}, SubtractIntervals(free, busy))
	})

	t.Run("busy covering a window removes it", func(t *testing.T) {
		busy := []Interval{iv(8, 0, 13, 0)}
		assert.Equal(t, []Interval{iv(14, 0, 18, 0)}, SubtractIntervals(free, busy))
	})

	t.Run("busy overlapping window edges", func(t *testing.T) {
		busy := []Interval{iv(8, 0, 9, 30), iv(17, 0, 19, 0)}
		assert.Equal(t, []Interval{
			iv(9, 30, 12, 0), iv(14, 0, 17, 0),
		}, SubtractIntervals(free, busy))
	})
}

func TestParseWindow(t *testing.T) {
	start, end, err := ParseWindow("09:00-12:30")
	require.NoError(t, err)
	assert.Equal(t, 9*60, start)
	assert.Equal(t, 12*60+30, end)

	for _, bad := range []string{"", "nine to five", "12:00-09:00", "09:00-09:00", "09:61-10:00"} {
		_, _, err := ParseWindow(bad)
		assert.ErrorIs(t, err, ErrInvalidWindow, bad)
	}
}

func TestWindowInterval(t *testing.T) {
	w, err := NewWindow(uuid.New(), time.Wednesday, 9*60, 12*60)
	require.NoError(t, err)
	got := w.Interval(at(0, 0))
	assert.Equal(t, at(9, 0), got.Start)
	assert.Equal(t, at(12, 0), got.End)
	assert.Equal(t, "09:00-12:00", w.String())

	_, err = NewWindow(uuid.New(), time.Wednesday, 12*60, 9*60)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}
