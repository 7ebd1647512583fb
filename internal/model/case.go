package model

import "fmt"

// Case is owned exclusively by the worker of its Contact during a run
// (spec.md §3 Ownership rules). It is never shared across goroutines.
type Case struct {
	Sid        string
	TrackingID string
	SourceCode string
	Contact    *Contact
	documents  map[int]*Document
}

// NewCase constructs an empty case bound to a contact.
func NewCase(sid, trackingID, sourceCode string, contact *Contact) *Case {
	return &Case{
		Sid:        sid,
		TrackingID: trackingID,
		SourceCode: sourceCode,
		Contact:    contact,
		documents:  map[int]*Document{},
	}
}

// AddDocument adds a document to the case, deriving FBill/FSend from the
// contact's configured billing code for the document's type. Per spec.md
// §3, a document whose billing code is no-bill-no-send is rejected.
func (c *Case) AddDocument(doc Document) error {
	code := c.Contact.BillingCodeFor(doc.DocTypeName)
	fBill, fSend, addable := ResolveBilling(code)
	if !addable {
		return fmt.Errorf("document type %q is configured no-bill-no-send, not addable to case %s", doc.DocTypeName, c.Sid)
	}
	doc.FBill = fBill
	doc.FSend = fSend
	c.documents[doc.DocumentID] = &doc
	return nil
}

// Documents returns the case's documents keyed by document id. The
// returned map is owned by the caller's iteration only; mutate through
// AddDocument/RemoveDocument.
func (c *Case) Documents() map[int]*Document {
	return c.documents
}

// DocumentIDs returns the case's document ids.
func (c *Case) DocumentIDs() []int {
	ids := make([]int, 0, len(c.documents))
	for id := range c.documents {
		ids = append(ids, id)
	}
	return ids
}

// RemoveDocument drops a document from the case (used when a partial
// resend excludes previously-transmitted documents from re-staging).
func (c *Case) RemoveDocument(documentID int) {
	delete(c.documents, documentID)
}
