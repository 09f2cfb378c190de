package task

import "time"

// Horizon groups tasks by how soon they are due. It is always derived
// from the due date, never stored.
type Horizon string

const (
	HorizonToday    Horizon = "today"
	HorizonThisWeek Horizon = "this_week"
	HorizonNextWeek Horizon = "next_week"
	HorizonLater    Horizon = "later"
	HorizonBacklog  Horizon = "backlog"
)

// AllHorizons lists the horizons in board display order.
var AllHorizons = []Horizon{HorizonToday, HorizonThisWeek, HorizonNextWeek, HorizonLater, HorizonBacklog}

// IsValid reports whether h is a known horizon value.
func (h Horizon) IsValid() bool {
	switch h {
	case HorizonToday, HorizonThisWeek, HorizonNextWeek, HorizonLater, HorizonBacklog:
		return true
	}
	return false
}

func (h Horizon) String() string { return string(h) }

// DateOf truncates a timestamp to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SundayOfWeek returns the Sunday that ends the week containing d.
// Weeks run Monday through Sunday, so a Sunday maps to itself.
func SundayOfWeek(d time.Time) time.Time {
	d = DateOf(d)
	days := (7 - int(d.Weekday())) % 7
	return d.AddDate(0, 0, days)
}

// EndOfMonth returns the last day of d's month.
func EndOfMonth(d time.Time) time.Time {
	d = DateOf(d)
	firstOfNext := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1)
}

// DeriveHorizon maps a due date onto a horizon relative to today.
// Overdue tasks land in today, not a separate group.
func DeriveHorizon(due *time.Time, today time.Time) Horizon {
	if due == nil {
		return HorizonBacklog
	}
	d := DateOf(*due)
	t := DateOf(today)
	sunday := SundayOfWeek(t)
	switch {
	case !d.After(t):
		return HorizonToday
	case !d.After(sunday):
		return HorizonThisWeek
	case !d.After(sunday.AddDate(0, 0, 7)):
		return HorizonNextWeek
	default:
		return HorizonLater
	}
}

// DueDateForHorizon returns the anchor due date a task receives when it
// is dropped on a horizon. The anchor is the latest date that still
// derives back to the same horizon, so a round trip is stable.
func DueDateForHorizon(h Horizon, today time.Time) *time.Time {
	t := DateOf(today)
	switch h {
	case HorizonToday:
		return &t
	case HorizonThisWeek:
		sunday := SundayOfWeek(t)
		return &sunday
	case HorizonNextWeek:
		sunday := SundayOfWeek(t).AddDate(0, 0, 7)
		return &sunday
	case HorizonLater:
		// End of the current month, unless that is not past the
		// next-week boundary, then end of the following month.
		end := EndOfMonth(t)
		if !end.After(SundayOfWeek(t).AddDate(0, 0, 7)) {
			end = EndOfMonth(end.AddDate(0, 0, 1))
		}
		return &end
	default:
		return nil
	}
}
