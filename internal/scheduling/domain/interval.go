package domain

import (
	"sort"
	"time"
)

// Interval is a half-open time span [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Duration returns the interval's length.
func (i Interval) Duration() time.Duration { return i.End.Sub(i.Start) }

// Overlaps reports whether two intervals share any time.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// MergeIntervals sorts and coalesces overlapping or touching
// intervals. Zero and negative length inputs are dropped.
func MergeIntervals(intervals []Interval) []Interval {
	valid := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.End.After(iv.Start) {
			valid = append(valid, iv)
		}
	}
	if len(valid) == 0 {
		return nil
	}
	sort.Slice(valid, func(a, b int) bool { return valid[a].Start.Before(valid[b].Start) })

	merged := []Interval{valid[0]}
	for _, iv := range valid[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// PadIntervals widens each interval by the buffer on both sides and
// re-merges. The padding keeps planned tasks from backing directly
// onto meetings.
func PadIntervals(intervals []Interval, buffer time.Duration) []Interval {
	if buffer <= 0 {
		return MergeIntervals(intervals)
	}
	padded := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		padded = append(padded, Interval{
			Start: iv.Start.Add(-buffer),
			End:   iv.End.Add(buffer),
		})
	}
	return MergeIntervals(padded)
}

// SubtractIntervals removes the busy spans from the free ones and
// returns the remaining gaps in chronological order. busy must be
// merged and sorted.
func SubtractIntervals(free, busy []Interval) []Interval {
	var gaps []Interval
	for _, f := range free {
		cursor := f.Start
		for _, b := range busy {
			if !b.End.After(cursor) {
				continue
			}
			if !b.Start.Before(f.End) {
				break
			}
			if b.Start.After(cursor) {
				gaps = append(gaps, Interval{Start: cursor, End: b.Start})
			}
			if b.End.After(cursor) {
				cursor = b.End
			}
		}
		if cursor.Before(f.End) {
			gaps = append(gaps, Interval{Start: cursor, End: f.End})
		}
	}
	return gaps
}
