package model

// Acord103 is a single ACORD 103 XML transaction keyed primarily by
// TrackingID, with secondary lookups by TrackingID103, TransRefGuid and
// PolicyNumber (spec.md §4.7).
type Acord103 struct {
	TrackingID    string
	TrackingID103 string
	TransRefGuid  string
	PolicyNumber  string
	Blob          []byte
	// Superseded is true once a newer 103 has arrived for the same
	// TrackingID; superseded records are retained, never deleted
	// (spec.md §3 Acord103 invariants).
	Superseded bool
}
