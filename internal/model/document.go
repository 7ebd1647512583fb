package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BillingCode classifies how a document type is billed and whether it is
// sent to the carrier at all.
type BillingCode string

const (
	BillingCodeBill         BillingCode = "bill"
	BillingCodeNoBill       BillingCode = "no_bill"
	BillingCodeNoBillNoSend BillingCode = "no_bill_no_send"
)

// Document is an imaged page group belonging to exactly one Case. Per the
// Design Notes (spec.md §9) a Document never back-references its Case;
// callers that need both pass the CaseID alongside.
type Document struct {
	DocumentID  int
	DocTypeName string
	PageCount   int
	FileName    string
	DateCreated time.Time
	FBill       bool
	FSend       bool

	// TransmitHistory is populated by the viable-case resolver from the
	// document-history log; it is a read-only snapshot, not authoritative.
	TransmitHistory []HistoryItem
}

// FileNameForPageID builds the 8.3 image file name for a page id: the
// base name is the page id left-padded to 8 digits, extension ".tif".
func FileNameForPageID(pageID int) string {
	return fmt.Sprintf("%08d.tif", pageID)
}

// FirstPageID extracts the leading integer component of a document's
// 8.3 file name, which is by convention the first page's id.
func FirstPageID(fileName string) (int, error) {
	base := fileName
	if idx := strings.IndexByte(base, '.'); idx >= 0 {
		base = base[:idx]
	}
	return strconv.Atoi(base)
}

// ResolveBilling derives fBill/fSend from a document type's configured
// billing code, per the Case invariant that a document may be added only
// if its billing code is not no-bill-no-send.
func ResolveBilling(code BillingCode) (fBill, fSend bool, addable bool) {
	switch code {
	case BillingCodeBill:
		return true, true, true
	case BillingCodeNoBill:
		return false, true, true
	case BillingCodeNoBillNoSend:
		return false, false, false
	default:
		return false, false, false
	}
}
