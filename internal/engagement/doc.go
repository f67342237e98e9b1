// Package engagement turns raw per-client activity logs into the
// normalized shapes the rest of the engine consumes: a single sorted
// timeline per client, and fixed-width backward-looking trend buckets.
//
// Everything here is a pure function of its inputs. Callers pass one
// captured "now" through a whole computation so bucket boundaries and
// recency windows stay internally consistent.
package engagement
