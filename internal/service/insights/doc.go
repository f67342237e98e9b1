// Package insights orchestrates the engagement analytics engine: it
// fetches a snapshot of clients, activity events, and goals through the
// Repository interface, then runs the pure analytics components
// (engagement, risk, cohort, revenue) over that snapshot.
//
// Every computation captures a single "now" up front and threads it
// through all window math, so one invocation is internally consistent.
// The service holds no mutable analytic state between invocations; each
// request operates on its own fetched snapshot, and results for a stale
// request are never applied to the cache after a newer request has
// started.
//
// Repository implementations live in repository/postgres/.
package insights
