package model

import "time"

// Order is a read-only projection of an ACORD 121 order.
type Order struct {
	TrackingID    string
	Sid           string
	SourceCode    string
	Naic          string
	PolicyNumber  string
	FirstName     string
	LastName      string
	Ssn           string
	DateReceived  time.Time
	DateCancelled *time.Time
}

// IsASAP reports whether the order was submitted through the ASAP
// e-submissions channel, as opposed to a manually keyed order.
func (o Order) IsASAP() bool {
	return hasPrefix(o.SourceCode, "ESubmissions-")
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
