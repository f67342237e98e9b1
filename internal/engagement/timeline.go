package engagement

import (
	"sort"
	"time"

	"github.com/strivefit/engagement-engine/internal/domain"
)

// Timeline is one client's activity history, sorted oldest-first.
type Timeline []domain.ActivityEvent

// Aggregate merges any number of raw event slices (typically the meal,
// workout, and hydration logs for one client) into a single sorted
// timeline. Any slice may be nil or empty. The result is deterministic
// for the same input set regardless of slice order: ties on timestamp are
// broken by kind, then client ID.
func Aggregate(groups ...[]domain.ActivityEvent) Timeline {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	tl := make(Timeline, 0, total)
	for _, g := range groups {
		tl = append(tl, g...)
	}
	sort.SliceStable(tl, func(i, j int) bool {
		if !tl[i].OccurredAt.Equal(tl[j].OccurredAt) {
			return tl[i].OccurredAt.Before(tl[j].OccurredAt)
		}
		if tl[i].Kind != tl[j].Kind {
			return tl[i].Kind < tl[j].Kind
		}
		return tl[i].ClientID < tl[j].ClientID
	})
	return tl
}

// Last returns the most recent event and true, or a zero event and false
// for an empty timeline.
func (t Timeline) Last() (domain.ActivityEvent, bool) {
	if len(t) == 0 {
		return domain.ActivityEvent{}, false
	}
	return t[len(t)-1], true
}

// CountBetween returns the number of events in [start, end).
func (t Timeline) CountBetween(start, end time.Time) int {
	n := 0
	for _, e := range t {
		if !e.OccurredAt.Before(start) && e.OccurredAt.Before(end) {
			n++
		}
	}
	return n
}

// ActiveDays returns the number of distinct calendar days with at least
// one event in [since, now]. Days are resolved in now's location so a
// single invocation counts consistently.
func (t Timeline) ActiveDays(since, now time.Time) int {
	days := make(map[string]struct{})
	loc := now.Location()
	for _, e := range t {
		if e.OccurredAt.Before(since) || e.OccurredAt.After(now) {
			continue
		}
		days[e.OccurredAt.In(loc).Format("2006-01-02")] = struct{}{}
	}
	return len(days)
}

// ActiveWithin reports whether the client logged anything in the window
// ending at now. This is the shared definition of "active" used by both
// cohort retention and the recency factor's outermost bracket.
func (t Timeline) ActiveWithin(now time.Time, window time.Duration) bool {
	for i := len(t) - 1; i >= 0; i-- {
		e := t[i]
		if e.OccurredAt.After(now) {
			continue
		}
		return now.Sub(e.OccurredAt) <= window
	}
	return false
}
