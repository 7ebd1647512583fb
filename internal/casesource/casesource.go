// Package casesource implements scheduler.ContactWorkSource: it queries
// which cases are ready to index or ready to stage for a contact, and
// assembles model.Case values with their documents attached. Grounded on
// original_source/ASAP_2.7/CaseFactory.py's fromSid (casemaster lookup,
// per-document addDocument loop) and DocumentFactory.py's fromDocumentId
// (tblpages/tbldocuments/tbldocumenttypes join for one document's shape).
package casesource

import (
	"context"
	"fmt"
	"time"

	"github.com/ridgeline/docxmit/internal/model"
	"github.com/ridgeline/docxmit/internal/ports"
)

// status values in the asap_case_status table this pipeline owns: a case
// starts EXPORTED once casemaster links it to a contact, moves to INDEXED
// once BuildForCase succeeds, STAGED once the transmit orchestrator
// stages it, and RESTAGE_PENDING if staging raised and should be retried.
const (
	statusExported       = "EXPORTED"
	statusIndexed        = "INDEXED"
	statusStaged         = "STAGED"
	statusRestagePending = "RESTAGE_PENDING"
)

// Source implements scheduler.ContactWorkSource and scheduler.Restager
// over a database connection.
type Source struct {
	db ports.DB
}

// New returns a Source backed by db.
func New(db ports.DB) *Source {
	return &Source{db: db}
}

// ExportedCases returns every case in status EXPORTED or
// RESTAGE_PENDING for contact, fully assembled with documents.
func (s *Source) ExportedCases(ctx context.Context, contact *model.Contact) ([]*model.Case, error) {
	return s.casesInStatus(ctx, contact, statusExported, statusRestagePending)
}

// IndexedCases returns every case in status INDEXED for contact.
func (s *Source) IndexedCases(ctx context.Context, contact *model.Contact) ([]*model.Case, error) {
	return s.casesInStatus(ctx, contact, statusIndexed)
}

// Restage moves a case back to RESTAGE_PENDING so the next run's
// ExportedCases picks it up again, the Go analogue of
// ASAP_UTILITY.reStageToTransmit.
func (s *Source) Restage(ctx context.Context, c *model.Case) error {
	_, err := s.db.Exec(ctx, `
		update asap_case_status set status = ? where sid = ? and contact_id = ?`,
		statusRestagePending, c.Sid, c.Contact.ContactID)
	if err != nil {
		return fmt.Errorf("casesource: restaging %s: %w", c.Sid, err)
	}
	return nil
}

// MarkIndexed transitions a case from EXPORTED/RESTAGE_PENDING to
// INDEXED once its index has been built successfully.
func (s *Source) MarkIndexed(ctx context.Context, c *model.Case) error {
	return s.setStatus(ctx, c.Sid, c.Contact.ContactID, statusIndexed)
}

// MarkStaged transitions a case to STAGED once it has staged
// successfully for transmission.
func (s *Source) MarkStaged(ctx context.Context, c *model.Case) error {
	return s.setStatus(ctx, c.Sid, c.Contact.ContactID, statusStaged)
}

func (s *Source) setStatus(ctx context.Context, sid, contactID, status string) error {
	_, err := s.db.Exec(ctx, `
		update asap_case_status set status = ? where sid = ? and contact_id = ?`,
		status, sid, contactID)
	return err
}

func (s *Source) casesInStatus(ctx context.Context, contact *model.Contact, statuses ...string) ([]*model.Case, error) {
	placeholders := make([]any, 0, len(statuses)+1)
	placeholders = append(placeholders, contact.ContactID)
	inClause := ""
	for i, st := range statuses {
		if i > 0 {
			inClause += ","
		}
		inClause += "?"
		placeholders = append(placeholders, st)
	}

	rows, err := s.db.Query(ctx, fmt.Sprintf(`
		select cs.sid, cm.trackingid, cm.source_code
		from asap_case_status cs
		inner join casemaster cm on cm.sampleid = cs.sid
		where cs.contact_id = ? and cs.status in (%s)`, inClause), placeholders...)
	if err != nil {
		return nil, fmt.Errorf("casesource: querying status for %s: %w", contact.ContactID, err)
	}

	cases := make([]*model.Case, 0, len(rows))
	for _, row := range rows {
		sid := toStr(row["sid"])
		trackingID := toStr(row["trackingid"])
		sourceCode := toStr(row["source_code"])
		c := model.NewCase(sid, trackingID, sourceCode, contact)
		docs, err := s.documentsForSid(ctx, sid)
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			if err := c.AddDocument(doc); err != nil {
				return nil, fmt.Errorf("casesource: adding document to %s: %w", sid, err)
			}
		}
		cases = append(cases, c)
	}
	return cases, nil
}

func (s *Source) documentsForSid(ctx context.Context, sid string) ([]model.Document, error) {
	rows, err := s.db.Query(ctx, `
		select d.documentid, p.pagefilename, d.documentdatecreated, dt.documenttypename,
		       (select count(*) from tblpages p2 where p2.documentid = d.documentid) as pagecount
		from tbldocuments d
		inner join tbldocumenttypes dt on d.documenttypeid = dt.documenttypeid
		inner join tblpages p on p.documentid = d.documentid
		  and p.pagesequence = (select min(p3.pagesequence) from tblpages p3 where p3.documentid = d.documentid)
		where d.sid = ?`, sid)
	if err != nil {
		return nil, fmt.Errorf("casesource: loading documents for %s: %w", sid, err)
	}
	docs := make([]model.Document, 0, len(rows))
	for _, row := range rows {
		docID := toInt(row["documentid"])
		created, _ := row["documentdatecreated"].(time.Time)
		pageCount := toInt(row["pagecount"])
		docs = append(docs, model.Document{
			DocumentID:  docID,
			DocTypeName: toStr(row["documenttypename"]),
			PageCount:   pageCount,
			FileName:    model.FileNameForPageID(docID),
			DateCreated: created,
		})
	}
	return docs, nil
}

func toStr(v any) string {
	s, _ := v.(string)
	return s
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}
