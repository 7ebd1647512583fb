// Package viablecase implements the viable-case resolver: given a starting
// identifier, it walks the five search tracks described in spec.md §4.2,
// assembling a model.ViableCase from whichever of the six backing sources
// actually have data, and linking any sibling cases discovered along the
// way. Grounded on original_source/ASAP_2.7/ViableCaseFactory.py and
// ViableCase.py.
package viablecase

import (
	"context"
	"time"

	"github.com/ridgeline/docxmit/internal/model"
)

// SampleSource resolves the LIMS sample for a sid.
type SampleSource interface {
	FromSid(ctx context.Context, sid string) (*model.Sample, error)
}

// OrderSource resolves ACORD 121 orders by sid, tracking id, or
// SelectQuote ref id.
type OrderSource interface {
	FromSid(ctx context.Context, sid string) ([]*model.Order, error)
	FromTrackingID(ctx context.Context, trackingID string) (*model.Order, error)
	FromSelectQuoteRefID(ctx context.Context, refID string) ([]*model.Order, error)
}

// CaseQCSource resolves case-QC records by sid or tracking id.
type CaseQCSource interface {
	FromSid(ctx context.Context, sid string) (*model.CaseQC, error)
	FromTrackingID(ctx context.Context, trackingID string) ([]*model.CaseQC, error)
}

// DocGroupSource resolves the Delta-QC document group for a sid, and a
// single document by id (used by the documentId search track to recover
// the sid it belongs to). FromDocumentID returns the owning sid alongside
// the document since model.Document never back-references its case.
type DocGroupSource interface {
	FromSid(ctx context.Context, sid string) (*model.DocGroup, error)
	FromDocumentID(ctx context.Context, documentID int) (sid string, doc *model.Document, err error)
}

// ContactSource resolves the ASAP contact responsible for a sid.
type ContactSource interface {
	ForSid(ctx context.Context, sid string) (*model.ASAPContact, error)
}

// Acord103Source resolves ACORD 103 confirmations.
type Acord103Source interface {
	ByTrackingID(ctx context.Context, trackingID string) (*model.Acord103, error)
	ByPolicyNumber(ctx context.Context, policyNumber string) (*model.Acord103, error)
}

// CaseSource resolves the already-staged ASAP case for a sid, used only by
// Analyze to check whether a case has already been transmitted.
type CaseSource interface {
	FromSid(ctx context.Context, sid string) (*model.Case, error)
}

// HistorySource resolves document-history rows, used to populate transmit
// history onto documents in a resolved doc group.
type HistorySource interface {
	TrackedDocIDs(ctx context.Context, sid, contactID string, action model.HistoryAction) (map[int]time.Time, error)
}
