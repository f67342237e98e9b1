// Package risk computes the composite churn-risk score for a client and
// maps scored tiers to intervention recommendations.
//
// The score is a deterministic, explainable weighted heuristic, not a
// learned model: four independently capped factors (recency 0-40,
// frequency 0-30, trend 0-20, goal progress 0-10) summed and clamped to
// 0-100, then thresholded into none/low/medium/high. The factor
// breakdown is always retained on the output so dashboards can explain
// the score and tests can pin each contribution.
package risk
