// Package cohort groups clients by join month and reports, per cohort,
// the fraction still active as of a caller-supplied now.
package cohort

import (
	"time"

	"github.com/strivefit/engagement-engine/internal/domain"
	"github.com/strivefit/engagement-engine/internal/engagement"
	"github.com/strivefit/engagement-engine/internal/risk"
)

// DefaultMonths is the retention lookback used when the caller does not
// choose one.
const DefaultMonths = 6

// Member pairs a client with their aggregated timeline.
type Member struct {
	Client   domain.Client
	Timeline engagement.Timeline
}

// Retention buckets members by join month over the trailing `months`
// calendar months ending at now and computes each cohort's retention
// rate. "Active" means at least one event inside the risk scorer's
// recency window, so cohort actives line up with the none/low risk
// population. Rows come back oldest-month-first; months with no joiners
// are emitted with a 0 rate rather than dropped.
//
// A member with no join date cannot be cohorted and raises an
// InvalidRecordError rather than being silently dropped.
func Retention(members []Member, months int, now time.Time) ([]domain.CohortRow, error) {
	if months <= 0 {
		months = DefaultMonths
	}

	totals := make(map[string]int)
	actives := make(map[string]int)
	for _, m := range members {
		if m.Client.CreatedAt.IsZero() {
			return nil, &domain.InvalidRecordError{ClientID: m.Client.ID, Field: "created_at", Reason: "missing"}
		}
		key := m.Client.JoinMonth()
		totals[key]++
		if m.Timeline.ActiveWithin(now, risk.RecencyWindow) {
			actives[key]++
		}
	}

	// Anchor month stepping at the first of the month so late-month "now"
	// values can't skip February and friends.
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	rows := make([]domain.CohortRow, 0, months)
	for i := months - 1; i >= 0; i-- {
		key := anchor.AddDate(0, -i, 0).Format("2006-01")
		row := domain.CohortRow{
			CohortMonth:   key,
			TotalClients:  totals[key],
			ActiveClients: actives[key],
		}
		if row.TotalClients > 0 {
			row.RetentionRate = float64(row.ActiveClients) / float64(row.TotalClients) * 100
		}
		rows = append(rows, row)
	}
	return rows, nil
}
