// Package aglite is a concrete carrier specialization demonstrating how a
// contact's HookName selects behavior beyond the generic defaults.
// Grounded on original_source/ASAP_2.7/AGLiteCustom.py's
// AGLiteIndexHandler/AGLiteTransmitHandler: the carrier wants one index
// field (SUBJECT) derived from the image file name, stages the processed
// image/index pair plus an optional ACORD 103 into its own xmit staging
// area, zips whatever it staged, and ships the zip out over its
// configured transport.
package aglite

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ridgeline/docxmit/internal/carrier"
	"github.com/ridgeline/docxmit/internal/history"
	"github.com/ridgeline/docxmit/internal/model"
	"github.com/ridgeline/docxmit/internal/ports"
	"github.com/ridgeline/docxmit/internal/trackedfile"
	"github.com/ridgeline/docxmit/internal/transmit"
)

// HookName is the registry key contacts configure to select this carrier.
const HookName = "aglite"

// IndexHooks derives the SUBJECT field from the current document's file
// name, leaving every other field to its configured source.
type IndexHooks struct {
	carrier.GenericHooks
}

func (IndexHooks) ProcessDerivedFields(_ context.Context, c *model.Case, doc *model.Document) error {
	subject, ok := c.Contact.Index.Field("SUBJECT")
	if !ok {
		return nil
	}
	base := strings.TrimSuffix(doc.FileName, filepath.Ext(doc.FileName))
	subject.SetValue(base)
	return nil
}

// TransmitHooks sweeps any files left in the xmit staging directory from a
// previous incomplete run into a retrans subfolder before staging starts,
// copies each staged case's processed image/index pair (and, on a case's
// first transmit, its ACORD 103) into the staging area, then zips and
// delivers whatever accumulated there. It is registered once and shared
// across every contact bound to this carrier, so it builds a
// contact-scoped Manager per call rather than holding one (a tracked-file
// Manager is scoped to a single contact_id).
type TransmitHooks struct {
	transmit.NopHooks
	DB    ports.DB
	FS    ports.Filesystem
	Hist  *history.Store
	Clock ports.Clock
}

func (h TransmitHooks) PreStage(ctx context.Context, contact *model.Contact) (bool, error) {
	files := trackedfile.NewManager(h.DB, h.FS, contact.ContactID, contact.Paths.XmitDir)
	leftover, err := files.Glob(ctx, path.Join(contact.Paths.XmitDir, "*"))
	if err != nil {
		return false, fmt.Errorf("aglite: scanning xmit staging dir: %w", err)
	}
	for _, f := range leftover {
		if _, err := files.MoveFile(ctx, f, "retrans", f.FileName); err != nil {
			return false, fmt.Errorf("aglite: moving leftover %s to retrans: %w", f.FileName, err)
		}
	}
	return true, nil
}

// processedSubdir names the DocDir subfolder the index builder moved c's
// processed images into, matching the builder's own default.
func processedSubdir(contact *model.Contact) string {
	if contact.Paths.ProcessedSubdir != "" {
		return contact.Paths.ProcessedSubdir
	}
	return "processed"
}

// indexBaseFor names the index file a document's case writes, matching
// the index builder's own naming: one file per case when the contact
// indexes by case, one file per document otherwise.
func indexBaseFor(idxType model.IndexType, c *model.Case, doc *model.Document) string {
	if idxType == model.IndexTypeCase {
		return c.TrackingID
	}
	return strings.TrimSuffix(doc.FileName, filepath.Ext(doc.FileName))
}

// StageIndexedCase copies c's processed image and index file into the
// contact's xmit staging directory as a <base>.tif/<base>.ndx pair per
// document, then, if this is c's first transmit and the contact has a
// configured ACORD 103 directory, bundles the 103 in alongside them as
// <trackingId>.XML. On success it zips everything it just staged into the
// xmit directory's zip subfolder; on any failure it sweeps what it staged
// into retrans and reports the case as not staged, mirroring
// AGLiteCustom.py's _stageIndexedCase/zip-or-retrans fallback.
func (h TransmitHooks) StageIndexedCase(ctx context.Context, c *model.Case) (bool, error) {
	contact := c.Contact
	files := trackedfile.NewManager(h.DB, h.FS, contact.ContactID, contact.Paths.XmitDir)

	var staged []string
	fail := func(err error) (bool, error) {
		for _, f := range staged {
			rel, relErr := filepath.Rel(contact.Paths.XmitDir, f)
			if relErr != nil {
				continue
			}
			_, _ = files.MoveFile(ctx, files.NewFile("", rel), "retrans", filepath.Base(f))
		}
		return false, err
	}

	for _, doc := range c.Documents() {
		base := indexBaseFor(contact.Index.Type, c, doc)
		srcImg := filepath.Join(contact.Paths.DocDir, processedSubdir(contact), doc.FileName)
		img, err := h.FS.ReadFile(srcImg)
		if err != nil {
			return fail(fmt.Errorf("aglite: reading processed image %s: %w", srcImg, err))
		}
		srcIdx := filepath.Join(contact.Paths.IndexDir, base+".IDX")
		idx, err := h.FS.ReadFile(srcIdx)
		if err != nil {
			return fail(fmt.Errorf("aglite: reading index file %s: %w", srcIdx, err))
		}
		if err := h.FS.MkdirAll(contact.Paths.XmitDir); err != nil {
			return fail(fmt.Errorf("aglite: preparing xmit dir: %w", err))
		}
		dstImg := filepath.Join(contact.Paths.XmitDir, base+".tif")
		if err := h.FS.WriteFile(dstImg, img); err != nil {
			return fail(fmt.Errorf("aglite: staging image %s: %w", dstImg, err))
		}
		staged = append(staged, dstImg)
		dstIdx := filepath.Join(contact.Paths.XmitDir, base+".ndx")
		if err := h.FS.WriteFile(dstIdx, idx); err != nil {
			return fail(fmt.Errorf("aglite: staging index %s: %w", dstIdx, err))
		}
		staged = append(staged, dstIdx)
	}

	if contact.Paths.Acord103Dir != "" {
		first, err := transmit.IsFirstTransmit(ctx, h.Hist, contact, c)
		if err != nil {
			return fail(fmt.Errorf("aglite: checking first-transmit status: %w", err))
		}
		if first {
			src103 := filepath.Join(contact.Paths.Acord103Dir, c.TrackingID+".XML")
			blob, err := h.FS.ReadFile(src103)
			if err != nil {
				return fail(fmt.Errorf("aglite: reading acord 103 %s: %w", src103, err))
			}
			dst103 := filepath.Join(contact.Paths.XmitDir, c.TrackingID+".XML")
			if err := h.FS.WriteFile(dst103, blob); err != nil {
				return fail(fmt.Errorf("aglite: staging acord 103 %s: %w", dst103, err))
			}
			staged = append(staged, dst103)
		}
	}

	if len(staged) == 0 {
		return true, nil
	}

	zipName := zipFileName(contact, c.TrackingID, h.Clock.Now())
	if err := h.zipStaged(staged, zipName); err != nil {
		return fail(fmt.Errorf("aglite: zipping staged files for %s: %w", c.TrackingID, err))
	}
	for _, f := range staged {
		_ = h.FS.Remove(f)
	}
	return true, nil
}

func (h TransmitHooks) zipStaged(srcPaths []string, zipName string) error {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range srcPaths {
		data, err := h.FS.ReadFile(p)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.Base(p))
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	zipDir := filepath.Join(filepath.Dir(srcPaths[0]), "zip")
	if err := h.FS.MkdirAll(zipDir); err != nil {
		return err
	}
	return h.FS.WriteFile(filepath.Join(zipDir, zipName), buf.Bytes())
}

// zipFileName builds the contact-specific bundle name AGLiteCustom.py's
// two region handlers each hard-coded (CRLAGUL_.../CRLAGLA_...),
// generalized to any contact by falling back to a name built from its
// contact id when no known prefix applies.
func zipFileName(contact *model.Contact, trackingID string, now time.Time) string {
	prefix := strings.ToUpper(contact.ContactID)
	switch contact.ContactID {
	case "agimtdapps":
		prefix = "CRLAGUL"
	case "agnmtxapps":
		prefix = "CRLAGLA"
	}
	return fmt.Sprintf("%s_%s_%s.ZIP", prefix, trackingID, now.Format("20060102150405"))
}

// TransmitStagedCases uploads every zip bundle sitting in the contact's
// xmit/zip subfolder over its configured transport, moving each delivered
// bundle into xmit/sent on success. A per-bundle delivery failure leaves
// that bundle in xmit/zip and makes the call return transmitted=false,
// without halting delivery of the remaining bundles, matching
// AGLiteCustom.py's _transmitStagedCases loop over every *.ZIP file.
func (h TransmitHooks) TransmitStagedCases(ctx context.Context, contact *model.Contact, staged []*model.Case) (bool, error) {
	zipDir := filepath.Join(contact.Paths.XmitDir, "zip")
	bundles, err := h.FS.Glob(filepath.Join(zipDir, "*.ZIP"))
	if err != nil {
		return false, fmt.Errorf("aglite: listing staged bundles: %w", err)
	}
	if len(bundles) == 0 {
		return true, nil
	}

	t, err := ports.NewTransport(ctx, contact.Transport)
	if err != nil {
		return false, fmt.Errorf("aglite: dialing transport for %s: %w", contact.ContactID, err)
	}
	defer t.Close()

	sentDir := filepath.Join(contact.Paths.XmitDir, "sent")
	allDelivered := true
	for _, bundle := range bundles {
		data, err := h.FS.ReadFile(bundle)
		if err != nil {
			allDelivered = false
			continue
		}
		if err := t.Send(ctx, filepath.Base(bundle), bytes.NewReader(data)); err != nil {
			allDelivered = false
			continue
		}
		if err := h.FS.MkdirAll(sentDir); err != nil {
			allDelivered = false
			continue
		}
		if err := h.FS.WriteFile(filepath.Join(sentDir, filepath.Base(bundle)), data); err != nil {
			allDelivered = false
			continue
		}
		_ = h.FS.Remove(bundle)
	}
	return allDelivered, nil
}
