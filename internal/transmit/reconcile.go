package transmit

import (
	"context"
	"fmt"
	"time"

	"github.com/ridgeline/docxmit/internal/history"
	"github.com/ridgeline/docxmit/internal/model"
	"github.com/ridgeline/docxmit/internal/ports"
)

// ReconConfirmation is one carrier-reported confirmation that a tracking
// id's documents were received, as recovered from whatever reconciliation
// feed the carrier provides (a downloaded sent-list, an API response, a
// flat file drop). Grounded on BANReconCustom.py's sentlist-driven recon
// pass, generalized away from its single hard-coded carrier.
type ReconConfirmation struct {
	Sid         string
	TrackingID  string
	DocumentIDs []int
}

// ReconSource supplies a contact's pending reconciliation confirmations
// for one run. A carrier hook implements this over its own feed format.
type ReconSource interface {
	Confirmations(ctx context.Context, contact *model.Contact) ([]ReconConfirmation, error)
}

// OverdueDocument is a transmitted document whose latest transmit is older
// than its contact's configured lookback window and has not been
// reconciled since.
type OverdueDocument struct {
	Sid          string
	DocumentID   int
	TransmitDate time.Time
}

// Reconciler tracks carrier reconciliation confirmations and surfaces
// documents overdue for one.
type Reconciler struct {
	hist *history.Store
	log  ports.Logger
}

// NewReconciler builds a Reconciler over the given history store.
func NewReconciler(hist *history.Store, log ports.Logger) *Reconciler {
	return &Reconciler{hist: hist, log: log}
}

// Reconcile records an ActionReconcile history entry for every document in
// every confirmation source returns, returning the count tracked. A
// confirmation with no matching transmitted documents still tracks
// whatever document ids it names; it is the carrier hook's responsibility
// to only report ids it actually confirmed.
func (r *Reconciler) Reconcile(ctx context.Context, contact *model.Contact, source ReconSource) (int, error) {
	confirmations, err := source.Confirmations(ctx, contact)
	if err != nil {
		return 0, fmt.Errorf("transmit: fetching reconciliation confirmations for %s: %w", contact.ContactID, err)
	}
	tracked := 0
	for _, c := range confirmations {
		for _, docID := range c.DocumentIDs {
			if err := r.hist.Track(ctx, c.Sid, docID, contact.ContactID, model.ActionReconcile); err != nil {
				return tracked, fmt.Errorf("transmit: tracking reconciliation for %s/%d: %w", c.Sid, docID, err)
			}
			tracked++
		}
		r.log.Info("reconciled documents", "contact", contact.ContactID, "sid", c.Sid, "trackingId", c.TrackingID, "count", len(c.DocumentIDs))
	}
	return tracked, nil
}

// Overdue returns every document in cases whose latest transmit is at least
// contact.ReconLookbackHours old and has no reconciliation entry dated at
// or after that transmit. Transmits newer than the lookback are not
// reported yet. A zero ReconLookbackHours means the contact does not track
// reconciliation and Overdue always returns nil.
func (r *Reconciler) Overdue(ctx context.Context, contact *model.Contact, cases []*model.Case, now time.Time) ([]OverdueDocument, error) {
	if contact.ReconLookbackHours <= 0 {
		return nil, nil
	}
	cutoff := now.Add(-time.Duration(contact.ReconLookbackHours) * time.Hour)

	var overdue []OverdueDocument
	for _, c := range cases {
		transmitted, err := r.hist.TrackedDocIDs(ctx, c.Sid, contact.ContactID, model.ActionTransmit)
		if err != nil {
			return nil, fmt.Errorf("transmit: loading transmit history for %s: %w", c.Sid, err)
		}
		reconciled, err := r.hist.TrackedDocIDs(ctx, c.Sid, contact.ContactID, model.ActionReconcile)
		if err != nil {
			return nil, fmt.Errorf("transmit: loading reconcile history for %s: %w", c.Sid, err)
		}
		for docID, xmitDate := range transmitted {
			if xmitDate.After(cutoff) {
				continue
			}
			if reconDate, ok := reconciled[docID]; ok && !reconDate.Before(xmitDate) {
				continue
			}
			overdue = append(overdue, OverdueDocument{Sid: c.Sid, DocumentID: docID, TransmitDate: xmitDate})
		}
	}
	return overdue, nil
}
