package risk

import (
	"github.com/strivefit/engagement-engine/internal/domain"
)

// interventions maps each risk tier to its ordered playbook. The table is
// intentionally static so it can be audited and tested apart from the
// scorer.
var interventions = map[domain.RiskTier][]string{
	domain.RiskHigh: {
		"send personalized re-engagement message within 24 hours",
		"schedule a check-in call",
	},
	domain.RiskMedium: {
		"review goals and send motivational message",
		"offer additional support",
	},
	domain.RiskLow: {
		"send gentle activity reminder",
		"share momentum tips",
	},
}

// Recommend returns the suggested interventions for an assessment,
// highest priority first. Clients not at risk get an empty list.
func Recommend(a domain.RiskAssessment) []domain.Recommendation {
	actions := interventions[a.Tier]
	recs := make([]domain.Recommendation, 0, len(actions))
	for i, action := range actions {
		recs = append(recs, domain.Recommendation{Priority: i + 1, Action: action})
	}
	return recs
}
