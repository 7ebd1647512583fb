// Package history implements the append-only document-history audit log:
// one row per (sid, documentId, contactId, action) transition. Grounded on
// original_source/ASAP_2.7/DocumentHistory.py.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ridgeline/docxmit/internal/model"
	"github.com/ridgeline/docxmit/internal/ports"
)

const table = "asap_document_history"

// Store is the document-history audit log.
type Store struct {
	db ports.DB
}

// NewStore returns a Store backed by db.
func NewStore(db ports.DB) *Store {
	return &Store{db: db}
}

// Track records one history transition. An insert that fails or does not
// report exactly one row affected is retried with a flat 100ms wait, five
// attempts in all, as the original did.
func (s *Store) Track(ctx context.Context, sid string, documentID int, contactID string, action model.HistoryAction) error {
	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(100*time.Millisecond), 4)

	return backoff.Retry(func() error {
		affected, err := s.db.Exec(ctx, fmt.Sprintf(`
			insert into %s (sid, documentid, contact_id, actionitem, actiondate)
			values (?, ?, ?, ?, current_timestamp)`, table),
			sid, documentID, contactID, string(action))
		if err != nil {
			return err
		}
		if affected != 1 {
			return fmt.Errorf("history: insert affected %d rows, want 1", affected)
		}
		return nil
	}, backoff.WithContext(bo, ctx))
}

// DateTracked returns the most recent time action was recorded for a
// document, or the zero time if it was never tracked.
func (s *Store) DateTracked(ctx context.Context, sid string, documentID int, contactID string, action model.HistoryAction) (time.Time, error) {
	row, err := s.db.QueryRow(ctx, fmt.Sprintf(`
		select max(actiondate) as actiondate
		from %s
		where sid = ? and documentid = ? and contact_id = ? and actionitem = ?`, table),
		sid, documentID, contactID, string(action))
	if err != nil {
		return time.Time{}, err
	}
	ts, _ := row["actiondate"].(time.Time)
	return ts, nil
}

// TrackedDocIDs returns every document id tracked for action under sid,
// with the most recent action date for each, keyed by document id.
func (s *Store) TrackedDocIDs(ctx context.Context, sid string, contactID string, action model.HistoryAction) (map[int]time.Time, error) {
	rows, err := s.db.Query(ctx, fmt.Sprintf(`
		select documentid, max(actiondate) as actiondate
		from %s
		where sid = ? and contact_id = ? and actionitem = ?
		group by documentid
		order by documentid`, table),
		sid, contactID, string(action))
	if err != nil {
		return nil, err
	}
	result := make(map[int]time.Time, len(rows))
	for _, row := range rows {
		id, _ := row["documentid"].(int64)
		ts, _ := row["actiondate"].(time.Time)
		result[int(id)] = ts
	}
	return result, nil
}
