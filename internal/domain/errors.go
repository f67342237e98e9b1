package domain

import "fmt"

// InvalidRecordError reports a client record that revenue or cohort math
// cannot use: an unknown subscription tier or a missing join date.
// Missing activity or goal data never produces this error; it degrades to
// zero contributions instead.
type InvalidRecordError struct {
	ClientID string
	Field    string
	Reason   string
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid client record %s: %s %s", e.ClientID, e.Field, e.Reason)
}
