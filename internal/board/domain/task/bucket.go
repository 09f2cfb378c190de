package task

import (
	"time"

	"github.com/google/uuid"
)

// BucketType distinguishes the two kinds of ordered task lists.
type BucketType string

const (
	BucketHorizon BucketType = "horizon"
	BucketProject BucketType = "project"
)

// Bucket identifies one ordered list on the board: either a horizon
// column or a project list. Membership in a horizon bucket follows
// from the due date; membership in a project bucket from the project
// assignment.
type Bucket struct {
	Type BucketType
	Key  string
}

// HorizonBucket returns the bucket for a horizon column.
func HorizonBucket(h Horizon) Bucket {
	return Bucket{Type: BucketHorizon, Key: string(h)}
}

// ProjectBucket returns the bucket for a project list.
func ProjectBucket(id uuid.UUID) Bucket {
	return Bucket{Type: BucketProject, Key: id.String()}
}

// Horizon returns the horizon a horizon bucket stands for.
func (b Bucket) Horizon() (Horizon, bool) {
	if b.Type != BucketHorizon {
		return "", false
	}
	h := Horizon(b.Key)
	return h, h.IsValid()
}

// ProjectID returns the project a project bucket stands for.
func (b Bucket) ProjectID() (uuid.UUID, bool) {
	if b.Type != BucketProject {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(b.Key)
	return id, err == nil
}

// Filter describes bucket membership in terms a repository can put in
// a WHERE clause. Exactly one of ProjectID, DueIsNull, or the due date
// bounds applies.
type Filter struct {
	ProjectID *uuid.UUID
	DueIsNull bool
	// DueAfter is exclusive, DueUntil inclusive. Either may be nil.
	DueAfter *time.Time
	DueUntil *time.Time
}

// Filter resolves the bucket into concrete membership bounds relative
// to today.
func (b Bucket) Filter(today time.Time) Filter {
	if b.Type == BucketProject {
		if id, ok := b.ProjectID(); ok {
			return Filter{ProjectID: &id}
		}
		return Filter{}
	}

	t := DateOf(today)
	sunday := SundayOfWeek(t)
	nextSunday := sunday.AddDate(0, 0, 7)

	switch Horizon(b.Key) {
	case HorizonToday:
		return Filter{DueUntil: &t}
	case HorizonThisWeek:
		return Filter{DueAfter: &t, DueUntil: &sunday}
	case HorizonNextWeek:
		return Filter{DueAfter: &sunday, DueUntil: &nextSunday}
	case HorizonLater:
		return Filter{DueAfter: &nextSunday}
	default:
		return Filter{DueIsNull: true}
	}
}
