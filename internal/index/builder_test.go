package index_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridgeline/docxmit/internal/index"
	"github.com/ridgeline/docxmit/internal/model"
	"github.com/ridgeline/docxmit/internal/ports"
)

type fakeDB struct {
	row ports.Row
}

func (f *fakeDB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return 0, nil
}
func (f *fakeDB) QueryRow(ctx context.Context, query string, args ...any) (ports.Row, error) {
	return f.row, nil
}
func (f *fakeDB) Query(ctx context.Context, query string, args ...any) ([]ports.Row, error) {
	return nil, nil
}

type fakeXML struct {
	values map[string]string
}

func (f fakeXML) Lookup(doc []byte, dottedPath string) (string, bool) {
	v, ok := f.values[dottedPath]
	return v, ok
}

type fakeBlobSource struct {
	acord121 []byte
	acord103 []byte
	err      error
}

func (f fakeBlobSource) Acord121Blob(ctx context.Context, sourceCode, trackingID string) ([]byte, error) {
	return f.acord121, f.err
}
func (f fakeBlobSource) Acord103Blob(ctx context.Context, trackingID, acord103Dir string) ([]byte, error) {
	return f.acord103, f.err
}

type scriptedHooks struct {
	ready      bool
	readyErr   error
	preErr     error
	derivedErr error
	postErr    error
}

func (h scriptedHooks) IsReadyToIndex(ctx context.Context, c *model.Case) (bool, error) {
	return h.ready, h.readyErr
}
func (h scriptedHooks) PreProcess(ctx context.Context, c *model.Case) error { return h.preErr }
func (h scriptedHooks) ProcessDerivedFields(ctx context.Context, c *model.Case, doc *model.Document) error {
	return h.derivedErr
}
func (h scriptedHooks) PostProcess(ctx context.Context, c *model.Case, idxPaths []string) error {
	return h.postErr
}

func newIndexedContact(t *testing.T, typ model.IndexType, fields []*model.IndexField) *model.Contact {
	t.Helper()
	idx, err := model.NewIndex(typ, "|", "=", fields)
	require.NoError(t, err)
	return &model.Contact{
		ContactID: "c1",
		Index:     *idx,
		Paths:     model.ContactPaths{IndexDir: t.TempDir(), Acord103Dir: t.TempDir()},
		DocTypeClientNameMap: map[string]string{
			"DEC": "Declaration",
		},
		DocTypeBillingMap: map[string]model.BillingCode{"DEC": model.BillingCodeBill},
	}
}

func TestBuildForCaseNotReadySkipsWithoutError(t *testing.T) {
	contact := newIndexedContact(t, model.IndexTypeDocument, nil)
	c := model.NewCase("S1", "T1", "lims", contact)
	b := index.NewBuilder(&fakeDB{}, ports.OSFilesystem{}, fakeXML{}, fakeBlobSource{})

	paths, err := b.BuildForCase(context.Background(), c, scriptedHooks{ready: false})
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestBuildForCaseWritesOneIndexPerDocument(t *testing.T) {
	fields := []*model.IndexField{
		{Name: "TrackingId", Source: model.SourceDeltaQC, Reference: "case.trackingId"},
		{Name: "PageCount", Source: model.SourceDeltaQC, Reference: "document.pageCount"},
		{Name: "ClientDocName", Source: model.SourceDeltaQC, Reference: "document.clientDocName"},
	}
	contact := newIndexedContact(t, model.IndexTypeDocument, fields)
	c := model.NewCase("S1", "T1", "lims", contact)
	require.NoError(t, c.AddDocument(model.Document{
		DocumentID: 1, DocTypeName: "DEC", PageCount: 3, FileName: "00000001.tif", DateCreated: time.Now(),
	}))
	require.NoError(t, c.AddDocument(model.Document{
		DocumentID: 2, DocTypeName: "DEC", PageCount: 1, FileName: "00000002.tif", DateCreated: time.Now(),
	}))

	b := index.NewBuilder(&fakeDB{}, ports.OSFilesystem{}, fakeXML{}, fakeBlobSource{})
	paths, err := b.BuildForCase(context.Background(), c, scriptedHooks{ready: true})
	require.NoError(t, err)
	require.Len(t, paths, 2)

	content, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), "TrackingId=T1")
	assert.Contains(t, string(content), "ClientDocName=Declaration")
}

func TestBuildForCaseWritesOneIndexPerCase(t *testing.T) {
	fields := []*model.IndexField{
		{Name: "TrackingId", Source: model.SourceDeltaQC, Reference: "case.trackingId"},
	}
	contact := newIndexedContact(t, model.IndexTypeCase, fields)
	c := model.NewCase("S1", "T1", "lims", contact)
	require.NoError(t, c.AddDocument(model.Document{DocumentID: 1, DocTypeName: "DEC", FileName: "00000001.tif"}))
	require.NoError(t, c.AddDocument(model.Document{DocumentID: 2, DocTypeName: "DEC", FileName: "00000002.tif"}))

	b := index.NewBuilder(&fakeDB{}, ports.OSFilesystem{}, fakeXML{}, fakeBlobSource{})
	paths, err := b.BuildForCase(context.Background(), c, scriptedHooks{ready: true})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.True(t, strings.HasSuffix(paths[0], "T1.IDX"))
}

func TestBuildForCaseResolvesLIMSFields(t *testing.T) {
	fields := []*model.IndexField{
		{Name: "Examiner", Source: model.SourceLIMS, Reference: "casemaster.examiner"},
	}
	contact := newIndexedContact(t, model.IndexTypeCase, fields)
	c := model.NewCase("S1", "T1", "lims", contact)
	require.NoError(t, c.AddDocument(model.Document{DocumentID: 1, DocTypeName: "DEC", FileName: "00000001.tif"}))

	db := &fakeDB{row: ports.Row{"examiner": "jdoe"}}
	b := index.NewBuilder(db, ports.OSFilesystem{}, fakeXML{}, fakeBlobSource{})
	paths, err := b.BuildForCase(context.Background(), c, scriptedHooks{ready: true})
	require.NoError(t, err)
	content, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), "Examiner=jdoe")
}

func TestBuildForCaseResolvesAcord121Fields(t *testing.T) {
	fields := []*model.IndexField{
		{Name: "PolicyNumber", Source: model.SourceAcord121, Reference: "Policy.PolicyNumber"},
	}
	contact := newIndexedContact(t, model.IndexTypeCase, fields)
	c := model.NewCase("S1", "T1", "lims", contact)
	require.NoError(t, c.AddDocument(model.Document{DocumentID: 1, DocTypeName: "DEC", FileName: "00000001.tif"}))

	xml := fakeXML{values: map[string]string{"Policy.PolicyNumber": "PN-1"}}
	b := index.NewBuilder(&fakeDB{}, ports.OSFilesystem{}, xml, fakeBlobSource{acord121: []byte("<doc/>")})
	paths, err := b.BuildForCase(context.Background(), c, scriptedHooks{ready: true})
	require.NoError(t, err)
	content, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), "PolicyNumber=PN-1")
}

func TestBuildForCaseAcord103WithoutDirIsConfigError(t *testing.T) {
	fields := []*model.IndexField{
		{Name: "PolicyNumber", Source: model.SourceAcord103, Reference: "Policy.PolicyNumber"},
	}
	contact := newIndexedContact(t, model.IndexTypeCase, fields)
	contact.Paths.Acord103Dir = ""
	c := model.NewCase("S1", "T1", "lims", contact)
	require.NoError(t, c.AddDocument(model.Document{DocumentID: 1, DocTypeName: "DEC", FileName: "00000001.tif"}))

	b := index.NewBuilder(&fakeDB{}, ports.OSFilesystem{}, fakeXML{}, fakeBlobSource{})
	_, err := b.BuildForCase(context.Background(), c, scriptedHooks{ready: true})
	assert.Error(t, err)
}

func TestBuildForCaseUnsupportedDeltaQCReferenceErrors(t *testing.T) {
	fields := []*model.IndexField{
		{Name: "Bogus", Source: model.SourceDeltaQC, Reference: "document.nonsense"},
	}
	contact := newIndexedContact(t, model.IndexTypeCase, fields)
	c := model.NewCase("S1", "T1", "lims", contact)
	require.NoError(t, c.AddDocument(model.Document{DocumentID: 1, DocTypeName: "DEC", FileName: "00000001.tif"}))

	b := index.NewBuilder(&fakeDB{}, ports.OSFilesystem{}, fakeXML{}, fakeBlobSource{})
	_, err := b.BuildForCase(context.Background(), c, scriptedHooks{ready: true})
	assert.Error(t, err)
}

func TestBuildForCasePropagatesDerivedFieldsError(t *testing.T) {
	contact := newIndexedContact(t, model.IndexTypeCase, nil)
	c := model.NewCase("S1", "T1", "lims", contact)
	require.NoError(t, c.AddDocument(model.Document{DocumentID: 1, DocTypeName: "DEC", FileName: "00000001.tif"}))

	b := index.NewBuilder(&fakeDB{}, ports.OSFilesystem{}, fakeXML{}, fakeBlobSource{})
	_, err := b.BuildForCase(context.Background(), c, scriptedHooks{ready: true, derivedErr: assert.AnError})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestBuildForCasePropagatesPostProcessErrorButKeepsPaths(t *testing.T) {
	contact := newIndexedContact(t, model.IndexTypeCase, nil)
	c := model.NewCase("S1", "T1", "lims", contact)
	require.NoError(t, c.AddDocument(model.Document{DocumentID: 1, DocTypeName: "DEC", FileName: "00000001.tif"}))

	b := index.NewBuilder(&fakeDB{}, ports.OSFilesystem{}, fakeXML{}, fakeBlobSource{})
	paths, err := b.BuildForCase(context.Background(), c, scriptedHooks{ready: true, postErr: assert.AnError})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Len(t, paths, 1)
}

func TestBuildForCaseMovesImagesToProcessedOnSuccess(t *testing.T) {
	docDir := t.TempDir()
	contact := newIndexedContact(t, model.IndexTypeCase, nil)
	contact.Paths.DocDir = docDir
	c := model.NewCase("S1", "T1", "lims", contact)
	require.NoError(t, c.AddDocument(model.Document{DocumentID: 1, DocTypeName: "DEC", FileName: "00000001.tif"}))
	require.NoError(t, os.WriteFile(filepath.Join(docDir, "00000001.tif"), []byte("image"), 0o644))

	b := index.NewBuilder(&fakeDB{}, ports.OSFilesystem{}, fakeXML{}, fakeBlobSource{})
	_, err := b.BuildForCase(context.Background(), c, scriptedHooks{ready: true})
	require.NoError(t, err)

	moved, err := os.ReadFile(filepath.Join(docDir, "processed", "00000001.tif"))
	require.NoError(t, err)
	assert.Equal(t, "image", string(moved))
}

func TestBuildForCaseQuarantinesOnPostProcessFailure(t *testing.T) {
	docDir := t.TempDir()
	contact := newIndexedContact(t, model.IndexTypeCase, nil)
	contact.Paths.DocDir = docDir
	c := model.NewCase("S1", "T1", "lims", contact)
	require.NoError(t, c.AddDocument(model.Document{DocumentID: 1, DocTypeName: "DEC", FileName: "00000001.tif"}))
	require.NoError(t, os.WriteFile(filepath.Join(docDir, "00000001.tif"), []byte("image"), 0o644))

	b := index.NewBuilder(&fakeDB{}, ports.OSFilesystem{}, fakeXML{}, fakeBlobSource{})
	paths, err := b.BuildForCase(context.Background(), c, scriptedHooks{ready: true, postErr: assert.AnError})
	assert.ErrorIs(t, err, assert.AnError)
	require.Len(t, paths, 1)

	_, err = os.Stat(filepath.Join(contact.Paths.IndexDir, "error", "T1.IDX"))
	require.NoError(t, err)

	quarantinedImg, err := os.ReadFile(filepath.Join(docDir, "error", "00000001.tif"))
	require.NoError(t, err)
	assert.Equal(t, "image", string(quarantinedImg))

	_, err = os.Stat(filepath.Join(docDir, "processed", "00000001.tif"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuildForCaseIndexDirUsesCaseTrackingIDName(t *testing.T) {
	contact := newIndexedContact(t, model.IndexTypeCase, nil)
	c := model.NewCase("S1", "ABC123", "lims", contact)
	require.NoError(t, c.AddDocument(model.Document{DocumentID: 1, DocTypeName: "DEC", FileName: "00000001.tif"}))

	b := index.NewBuilder(&fakeDB{}, ports.OSFilesystem{}, fakeXML{}, fakeBlobSource{})
	paths, err := b.BuildForCase(context.Background(), c, scriptedHooks{ready: true})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(contact.Paths.IndexDir, "ABC123.IDX"), paths[0])
}
