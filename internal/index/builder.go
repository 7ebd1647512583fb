// Package index builds the per-case or per-document index files a
// carrier's transmit bundle ships alongside its images. Grounded on
// original_source/ASAP_2.7/IndexHandler.py's buildIndexesForCase.
package index

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ridgeline/docxmit/internal/idxfmt"
	"github.com/ridgeline/docxmit/internal/model"
	"github.com/ridgeline/docxmit/internal/ports"
	"github.com/ridgeline/docxmit/internal/xmiterr"
)

// AcordBlobSource fetches the raw ACORD 121/103 XML blob an index's
// ACORD-sourced fields are resolved from.
type AcordBlobSource interface {
	Acord121Blob(ctx context.Context, sourceCode, trackingID string) ([]byte, error)
	Acord103Blob(ctx context.Context, trackingID, acord103Dir string) ([]byte, error)
}

// Builder builds index files for a case, writing them to the contact's
// configured index directory.
type Builder struct {
	db   ports.DB
	fs   ports.Filesystem
	xml  ports.XMLLookup
	blob AcordBlobSource
}

// NewBuilder constructs a Builder over the given ports.
func NewBuilder(db ports.DB, fs ports.Filesystem, xml ports.XMLLookup, blob AcordBlobSource) *Builder {
	return &Builder{db: db, fs: fs, xml: xml, blob: blob}
}

// BuildForCase resolves every configured index field and writes one index
// file per document (or one per case, for IndexTypeCase contacts),
// returning the paths written. A false, nil return from hooks.IsReadyToIndex
// is not an error: the case is simply not indexed this run.
func (b *Builder) BuildForCase(ctx context.Context, c *model.Case, hooks Hooks) ([]string, error) {
	idx := &c.Contact.Index
	idx.Reset()

	ready, err := hooks.IsReadyToIndex(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("index: checking readiness: %w", err)
	}
	if !ready {
		return nil, nil
	}
	if err := hooks.PreProcess(ctx, c); err != nil {
		return nil, fmt.Errorf("index: preprocess for case %s/%s: %w", c.Sid, c.TrackingID, err)
	}

	groups := idx.FieldsBySource()
	if err := b.processLIMSFields(ctx, c.Sid, groups[model.SourceLIMS]); err != nil {
		idx.Reset()
		b.moveToError(c, nil)
		return nil, err
	}
	if err := b.processAcord121Fields(ctx, c, groups[model.SourceAcord121]); err != nil {
		idx.Reset()
		b.moveToError(c, nil)
		return nil, err
	}
	if err := b.processAcord103Fields(ctx, c, groups[model.SourceAcord103]); err != nil {
		idx.Reset()
		b.moveToError(c, nil)
		return nil, err
	}

	var idxPaths []string
	for _, docID := range sortedDocumentIDs(c) {
		doc := c.Documents()[docID]
		if err := b.processDeltaQCFields(c, doc, groups[model.SourceDeltaQC]); err != nil {
			idx.Reset()
			b.moveToError(c, idxPaths)
			return nil, fmt.Errorf("index: delta-qc fields for doc %d: %w", doc.DocumentID, err)
		}
		if err := hooks.ProcessDerivedFields(ctx, c, doc); err != nil {
			idx.Reset()
			b.moveToError(c, idxPaths)
			return nil, fmt.Errorf("index: derived fields for doc %d: %w", doc.DocumentID, err)
		}
		path, err := b.writeIndex(c, doc, idx)
		if err != nil {
			idx.Reset()
			b.moveToError(c, idxPaths)
			return nil, err
		}
		idxPaths = append(idxPaths, path)
		if c.Contact.Index.Type == model.IndexTypeCase {
			break
		}
	}

	if err := hooks.PostProcess(ctx, c, idxPaths); err != nil {
		idx.Reset()
		b.moveToError(c, idxPaths)
		return idxPaths, fmt.Errorf("index: postprocess for case %s/%s: %w", c.Sid, c.TrackingID, err)
	}
	b.moveToProcessed(c)
	return idxPaths, nil
}

// moveToProcessed copies every document image in c to
// contact.docDir/<processedSubdir>/ on a successful build (spec.md §4.3
// step 8; grounded on IndexHandler.py's __moveImagesToProcessed, which
// copies rather than moves and silently skips an already-missing source).
func (b *Builder) moveToProcessed(c *model.Case) {
	destDir := filepath.Join(c.Contact.Paths.DocDir, processedSubdir(c.Contact))
	for _, doc := range c.Documents() {
		b.copyIntoDir(filepath.Join(c.Contact.Paths.DocDir, doc.FileName), destDir, doc.FileName)
	}
}

// moveToError quarantines a case's already-written index files and
// document images into <dir>/<errorSubdir>/ on any step 3-7 failure
// (spec.md §4.3 error policy; grounded on Case.py's moveToError, which is
// best-effort and always succeeds rather than compounding the original
// failure with a quarantine failure).
func (b *Builder) moveToError(c *model.Case, idxPaths []string) {
	subdir := errorSubdir(c.Contact)
	idxDestDir := filepath.Join(c.Contact.Paths.IndexDir, subdir)
	for _, p := range idxPaths {
		b.copyIntoDir(p, idxDestDir, filepath.Base(p))
	}
	docDestDir := filepath.Join(c.Contact.Paths.DocDir, subdir)
	for _, doc := range c.Documents() {
		b.copyIntoDir(filepath.Join(c.Contact.Paths.DocDir, doc.FileName), docDestDir, doc.FileName)
	}
}

// copyIntoDir copies srcPath to destDir/destName, silently doing nothing
// if srcPath does not exist or the copy otherwise fails - quarantine and
// processed-move are both best-effort housekeeping, never a reason to
// mask the build result that triggered them.
func (b *Builder) copyIntoDir(srcPath, destDir, destName string) {
	data, err := b.fs.ReadFile(srcPath)
	if err != nil {
		return
	}
	if err := b.fs.MkdirAll(destDir); err != nil {
		return
	}
	b.fs.WriteFile(filepath.Join(destDir, destName), data)
}

func processedSubdir(c *model.Contact) string {
	if c.Paths.ProcessedSubdir != "" {
		return c.Paths.ProcessedSubdir
	}
	return "processed"
}

func errorSubdir(c *model.Contact) string {
	if c.Paths.ErrorSubdir != "" {
		return c.Paths.ErrorSubdir
	}
	return "error"
}

func (b *Builder) writeIndex(c *model.Case, doc *model.Document, idx *model.Index) (string, error) {
	var base string
	if idx.Type == model.IndexTypeCase {
		base = c.TrackingID
	} else {
		base = strings.TrimSuffix(doc.FileName, filepath.Ext(doc.FileName))
	}
	path := filepath.Join(c.Contact.Paths.IndexDir, base+".IDX")
	if err := idxfmt.WriteFile(idx, path); err != nil {
		return "", fmt.Errorf("index: writing %s: %w", path, err)
	}
	return path, nil
}

func (b *Builder) processLIMSFields(ctx context.Context, sid string, fields []*model.IndexField) error {
	if len(fields) == 0 {
		return nil
	}
	byTable := map[string][]*model.IndexField{}
	for _, f := range fields {
		table, _, ok := f.Table()
		if !ok {
			return xmiterr.New("Builder.processLIMSFields", xmiterr.KindConfig, fmt.Errorf("malformed LIMS reference %q on field %q", f.Reference, f.Name))
		}
		byTable[table] = append(byTable[table], f)
	}
	for table, tableFields := range byTable {
		cols := make([]string, len(tableFields))
		for i, f := range tableFields {
			_, col, _ := f.Table()
			cols[i] = col
		}
		query := fmt.Sprintf("select %s from %s where sid = ?", strings.Join(cols, ","), table)
		row, err := b.db.QueryRow(ctx, query, sid)
		if err != nil {
			return fmt.Errorf("index: LIMS lookup for sid %s in %s: %w", sid, table, err)
		}
		for _, f := range tableFields {
			_, col, _ := f.Table()
			f.SetValue(limsValueToString(row[col]))
		}
	}
	return nil
}

func limsValueToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func (b *Builder) processAcord121Fields(ctx context.Context, c *model.Case, fields []*model.IndexField) error {
	if len(fields) == 0 {
		return nil
	}
	blob, err := b.blob.Acord121Blob(ctx, c.SourceCode, c.TrackingID)
	if err != nil {
		return fmt.Errorf("index: fetching ACORD 121 blob for %s: %w", c.TrackingID, err)
	}
	return b.applyXMLFields(blob, fields)
}

func (b *Builder) processAcord103Fields(ctx context.Context, c *model.Case, fields []*model.IndexField) error {
	if len(fields) == 0 {
		return nil
	}
	if c.Contact.Paths.Acord103Dir == "" {
		return xmiterr.New("Builder.processAcord103Fields", xmiterr.KindConfig, fmt.Errorf("ACORD 103 fields configured but contact %s has no acord103 directory", c.Contact.ContactID))
	}
	blob, err := b.blob.Acord103Blob(ctx, c.TrackingID, c.Contact.Paths.Acord103Dir)
	if err != nil {
		return fmt.Errorf("index: fetching ACORD 103 blob for %s: %w", c.TrackingID, err)
	}
	return b.applyXMLFields(blob, fields)
}

func (b *Builder) applyXMLFields(blob []byte, fields []*model.IndexField) error {
	for _, f := range fields {
		value, ok := b.xml.Lookup(blob, f.Reference)
		if !ok {
			continue // required check at encode time reports the miss
		}
		f.SetValue(value)
	}
	return nil
}

func (b *Builder) processDeltaQCFields(c *model.Case, doc *model.Document, fields []*model.IndexField) error {
	for _, f := range fields {
		object, attr, ok := splitReference(f.Reference)
		if !ok {
			return xmiterr.New("Builder.processDeltaQCFields", xmiterr.KindConfig, fmt.Errorf("malformed delta-qc reference %q on field %q", f.Reference, f.Name))
		}
		var value string
		switch {
		case object == "case" && attr == "docCount":
			value = strconv.Itoa(len(c.Documents()))
		case object == "case" && attr == "trackingId":
			value = c.TrackingID
		case object == "document" && attr == "dateCreated":
			value = doc.DateCreated.Format("2006-01-02 15:04:05")
		case object == "document" && attr == "pageCount":
			value = strconv.Itoa(doc.PageCount)
		case object == "document" && attr == "docTypeName":
			value = doc.DocTypeName
		case object == "document" && attr == "clientDocName":
			value = c.Contact.DocTypeClientNameMap[doc.DocTypeName]
		default:
			return xmiterr.New("Builder.processDeltaQCFields", xmiterr.KindUnsupported, fmt.Errorf("reference %s.%s is not supported", object, attr))
		}
		f.SetValue(value)
	}
	return nil
}

func splitReference(ref string) (object, attr string, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(ref), ".", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func sortedDocumentIDs(c *model.Case) []int {
	ids := c.DocumentIDs()
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}
