package engagement

import (
	"fmt"
	"time"

	"github.com/strivefit/engagement-engine/internal/domain"
)

// WindowUnit is the width of a single trend bucket.
type WindowUnit string

const (
	UnitDay   WindowUnit = "day"
	UnitWeek  WindowUnit = "week"
	UnitMonth WindowUnit = "month"
)

// Window defines a backward-looking run of fixed-width buckets ending at
// "now". Boundaries walk back in fixed increments; they are not
// calendar-aligned unless the caller aligns now itself.
type Window struct {
	Unit  WindowUnit `json:"unit"`
	Count int        `json:"count"`
}

// Valid reports whether the window can produce at least one bucket.
func (w Window) Valid() bool {
	switch w.Unit {
	case UnitDay, UnitWeek, UnitMonth:
		return w.Count > 0
	}
	return false
}

func (w Window) width() time.Duration {
	switch w.Unit {
	case UnitDay:
		return 24 * time.Hour
	case UnitWeek:
		return 7 * 24 * time.Hour
	default: // UnitMonth, fixed 30-day increments
		return 30 * 24 * time.Hour
	}
}

func (w Window) label(start time.Time) string {
	switch w.Unit {
	case UnitDay:
		return start.Format("Jan 2")
	case UnitWeek:
		return fmt.Sprintf("Wk of %s", start.Format("Jan 2"))
	default:
		return start.Format("Jan 2006")
	}
}

// Bucketize distributes a timeline into w.Count buckets ending at now,
// oldest first. Buckets with no events are emitted with Count 0 so chart
// axes have no gaps. An event belongs to the bucket whose range
// [start, end) contains its timestamp; events outside the overall range
// are ignored.
func Bucketize(tl Timeline, w Window, now time.Time) []domain.TrendBucket {
	if !w.Valid() {
		return nil
	}
	width := w.width()
	buckets := make([]domain.TrendBucket, w.Count)
	for i := 0; i < w.Count; i++ {
		start := now.Add(-time.Duration(w.Count-i) * width)
		buckets[i] = domain.TrendBucket{
			Label:  w.label(start),
			Start:  start,
			End:    start.Add(width),
			ByKind: make(map[domain.ActivityKind]int),
		}
	}
	windowStart := buckets[0].Start
	for _, e := range tl {
		if e.OccurredAt.Before(windowStart) || !e.OccurredAt.Before(now) {
			continue
		}
		idx := int(e.OccurredAt.Sub(windowStart) / width)
		if idx < 0 || idx >= len(buckets) {
			continue
		}
		buckets[idx].Count++
		buckets[idx].ByKind[e.Kind]++
	}
	return buckets
}
