// Package model defines the case/document/contact data model shared by
// every other package in this module.
package model

import "time"

// HoldFlag values that make a Sample unreleasable, per LIMS convention.
const (
	HoldFlagTilde = "~"
	HoldFlagHash  = "#"
)

// Sample is a read-only projection of a LIMS sample row.
type Sample struct {
	Sid          string
	ClientID     string
	RegionID     string
	Examiner     string
	TransmitDate *time.Time
	HoldFlag     string
}

// Releasable reports whether the sample's hold flag does not block release.
func (s Sample) Releasable() bool {
	return s.HoldFlag != HoldFlagTilde && s.HoldFlag != HoldFlagHash
}
