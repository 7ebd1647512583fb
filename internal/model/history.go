package model

import "time"

// HistoryAction identifies a document-history transition (spec.md §3).
type HistoryAction string

const (
	ActionRelease   HistoryAction = "release"
	ActionInvoice   HistoryAction = "invoice"
	ActionTransmit  HistoryAction = "transmit"
	ActionReconcile HistoryAction = "reconcile"
)

// HistoryItem is one append-only row in the document-history audit log.
type HistoryItem struct {
	Sid         string
	DocumentID  int
	ContactID   string
	Action      HistoryAction
	ActionDate  time.Time
}
