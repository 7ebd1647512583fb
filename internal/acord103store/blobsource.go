package acord103store

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ridgeline/docxmit/internal/ports"
	"github.com/ridgeline/docxmit/internal/xmiterr"
)

// BlobSource implements index.AcordBlobSource: ACORD 121 order blobs live
// in the acord_order/rh_blobs tables and are fetched by trackingId
// (original_source/ASAP_2.7/IndexHandler.py's __processAcord121Fields);
// ACORD 103 confirmations are plain files dropped in a contact's
// configured acord103_dir (__processAcord103Fields), so Acord103Blob reads
// the file straight off disk instead of querying the acord_103 table this
// package otherwise owns.
type BlobSource struct {
	db ports.DB
	fs ports.Filesystem
}

// NewBlobSource returns a BlobSource backed by db and fs.
func NewBlobSource(db ports.DB, fs ports.Filesystem) *BlobSource {
	return &BlobSource{db: db, fs: fs}
}

// Acord121Blob fetches the most recent ACORD 121 order blob for a tracking
// id, mirroring the original's max(blobid)-per-trackingid subselect.
func (b *BlobSource) Acord121Blob(ctx context.Context, sourceCode, trackingID string) (_ []byte, err error) {
	row, err := b.db.QueryRow(ctx, `
		select blobhandle
		from rh_blobs
		where blobid = (
			select max(blobid) from acord_order
			where trackingid = ? and source_code = ?
		)`, trackingID, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("acord103store: fetching 121 blob for %s: %w", trackingID, err)
	}
	blob, _ := row["blobhandle"].([]byte)
	if blob == nil {
		return nil, xmiterr.New("BlobSource.Acord121Blob", xmiterr.KindData, fmt.Errorf("no 121 blob found for tracking id %s", trackingID))
	}
	return blob, nil
}

// Acord103Blob reads the ACORD 103 confirmation file for trackingID out of
// acord103Dir. The directory name is the same one index field resolution
// uses via Contact.Paths.Acord103Dir.
func (b *BlobSource) Acord103Blob(ctx context.Context, trackingID, acord103Dir string) ([]byte, error) {
	if acord103Dir == "" {
		return nil, xmiterr.New("BlobSource.Acord103Blob", xmiterr.KindConfig, fmt.Errorf("contact not configured to process ACORD 103 files"))
	}
	path := filepath.Join(acord103Dir, trackingID+".xml")
	data, err := b.fs.ReadFile(path)
	if err != nil {
		return nil, xmiterr.New("BlobSource.Acord103Blob", xmiterr.KindData, fmt.Errorf("reading %s: %w", path, err))
	}
	return data, nil
}
