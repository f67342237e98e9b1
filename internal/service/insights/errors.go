package insights

import "errors"

// Sentinel errors for the insights service layer.
var (
	ErrClientNotFound = errors.New("client not found")
	ErrInvalidWindow  = errors.New("invalid trend window")
)
