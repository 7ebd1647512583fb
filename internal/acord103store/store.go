// Package acord103store implements the ACORD 103 (policy confirmation)
// lookup and retrieval-flag store. Unlike document history and case QC,
// the original Python tree has no dedicated module for this table — it is
// queried inline wherever a viable case needs a 103 record — so this store
// follows the same query-port shape as internal/history.Store and
// internal/model's Acord103 type for consistency with the rest of the data
// layer (spec.md component C5).
package acord103store

import (
	"context"
	"fmt"

	"github.com/ridgeline/docxmit/internal/model"
	"github.com/ridgeline/docxmit/internal/ports"
)

const table = "acord_103"

// Store looks up and updates ACORD 103 records.
type Store struct {
	db ports.DB
}

// NewStore returns a Store backed by db.
func NewStore(db ports.DB) *Store {
	return &Store{db: db}
}

// ByTrackingID returns the 103 record for a tracking id, if any.
func (s *Store) ByTrackingID(ctx context.Context, trackingID string) (*model.Acord103, error) {
	row, err := s.db.QueryRow(ctx, fmt.Sprintf(`
		select tracking_id, tracking_id_103, trans_ref_guid, policy_number, blob, superseded
		from %s where tracking_id = ?`, table), trackingID)
	if err != nil {
		return nil, nil
	}
	return rowToAcord103(row), nil
}

// ByPolicyNumber returns the 103 record for a policy number, if any.
func (s *Store) ByPolicyNumber(ctx context.Context, policyNumber string) (*model.Acord103, error) {
	row, err := s.db.QueryRow(ctx, fmt.Sprintf(`
		select tracking_id, tracking_id_103, trans_ref_guid, policy_number, blob, superseded
		from %s where policy_number = ? and superseded = 0`, table), policyNumber)
	if err != nil {
		return nil, nil
	}
	return rowToAcord103(row), nil
}

// SetToRetrieve flags a 103 record as superseded, so the viable-case
// resolver's discrepancy analysis can distinguish a live confirmation
// from one replaced by a later amendment.
func (s *Store) SetToRetrieve(ctx context.Context, trackingID string) error {
	_, err := s.db.Exec(ctx, fmt.Sprintf(`update %s set superseded = 1 where tracking_id = ?`, table), trackingID)
	return err
}

func rowToAcord103(row ports.Row) *model.Acord103 {
	superseded, _ := row["superseded"].(int64)
	blob, _ := row["blob"].([]byte)
	return &model.Acord103{
		TrackingID:    toStr(row["tracking_id"]),
		TrackingID103: toStr(row["tracking_id_103"]),
		TransRefGuid:  toStr(row["trans_ref_guid"]),
		PolicyNumber:  toStr(row["policy_number"]),
		Blob:          blob,
		Superseded:    superseded != 0,
	}
}

func toStr(v any) string {
	s, _ := v.(string)
	return s
}
