package model

import "time"

// CaseQCState is the monotone QC lifecycle state of a case.
type CaseQCState string

const (
	CaseQCStateNew      CaseQCState = "New"
	CaseQCStatePending  CaseQCState = "Pending"
	CaseQCStateReleased CaseQCState = "Released"
)

// CaseQCAction identifies a CaseQCHistoryItem's kind.
type CaseQCAction string

const (
	CaseQCActionCreate   CaseQCAction = "Create"
	CaseQCActionAdd      CaseQCAction = "Add"
	CaseQCActionInsert   CaseQCAction = "Insert"
	CaseQCActionDelete   CaseQCAction = "Delete"
	CaseQCActionPend     CaseQCAction = "Pend"
	CaseQCActionUpdate   CaseQCAction = "Update"
	CaseQCActionReleased CaseQCAction = "Released"
)

// CaseQCHistoryItem is one append-only entry in a CaseQC's history.
type CaseQCHistoryItem struct {
	Comment        string
	Action         CaseQCAction
	DocumentID     int
	DocumentTypeID int
	DocumentType   string
	PageID         int
	CreatedBy      string
	CreatedDate    time.Time
}

// CaseQC is the QC-review record for a case.
type CaseQC struct {
	Sid            string
	TrackingID     string
	State          CaseQCState
	CreatedDate    time.Time
	LastViewedBy   string
	LastViewedDate *time.Time
	FirstName      string
	LastName       string
	Ssn            string
	PolicyNumber   string
	SourceCode     string
	Naic           string
	CarrierDesc    string
	DateReceived   *time.Time
	History        []CaseQCHistoryItem
}

// CanAdvanceTo reports whether the state transition is one of the normal
// monotone flow transitions (New -> Pending, Pending <-> Pending, Pending
// -> Released). Released is terminal; there is no transition out of it in
// the normal flow.
func (c CaseQC) CanAdvanceTo(next CaseQCState) bool {
	switch c.State {
	case CaseQCStateNew:
		return next == CaseQCStatePending
	case CaseQCStatePending:
		return next == CaseQCStatePending || next == CaseQCStateReleased
	default:
		return false
	}
}
