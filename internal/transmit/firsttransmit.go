package transmit

import (
	"context"

	"github.com/ridgeline/docxmit/internal/history"
	"github.com/ridgeline/docxmit/internal/model"
)

// IsFirstTransmit reports whether c has never been transmitted to contact
// before: no prior ActionTransmit history row exists for any of its
// documents. Grounded on TransmitHandler.py's _isFirstTransmit, the gate a
// carrier's stageIndexedCase hook uses to decide whether to bundle the
// ACORD 103 (spec.md §4.4).
func IsFirstTransmit(ctx context.Context, hist *history.Store, contact *model.Contact, c *model.Case) (bool, error) {
	transmitted, err := hist.TrackedDocIDs(ctx, c.Sid, contact.ContactID, model.ActionTransmit)
	if err != nil {
		return false, err
	}
	return len(transmitted) == 0, nil
}

// IsFullTransmit reports whether every document previously transmitted for
// c is still present in c's current document set: a case that dropped a
// previously-sent document during re-indexing is a partial transmit, not a
// full one. Grounded on TransmitHandler.py's _isFullTransmit.
func IsFullTransmit(ctx context.Context, hist *history.Store, contact *model.Contact, c *model.Case) (bool, error) {
	transmitted, err := hist.TrackedDocIDs(ctx, c.Sid, contact.ContactID, model.ActionTransmit)
	if err != nil {
		return false, err
	}
	current := c.Documents()
	for docID := range transmitted {
		if _, ok := current[docID]; !ok {
			return false, nil
		}
	}
	return true, nil
}
