package viablecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/ridgeline/docxmit/internal/model"
	"github.com/ridgeline/docxmit/internal/ports"
)

// consentDocTypeNames are the document type names carriers use for the
// consent/lab-slip document a case's discrepancy check looks for (grounded
// on BANCustom.py/TROCustom.py's doc-type-name maps, e.g. "Lab Slip" ->
// "LABSLIP"; generalized here since the resolver is carrier-agnostic).
var consentDocTypeNames = map[string]bool{
	"CONSENT": true,
	"LABSLIP": true,
}

// sidSentinel is the placeholder sid value that terminates the sid search
// track immediately, avoiding the unbounded recursive search a malformed
// upstream record could otherwise trigger.
const sidSentinel = "XXXXXXXX"

// Resolver builds model.ViableCase graphs by walking the search tracks
// described in spec.md §4.2.
type Resolver struct {
	samples  SampleSource
	orders   OrderSource
	caseQCs  CaseQCSource
	docs     DocGroupSource
	contacts ContactSource
	acord103 Acord103Source
	cases    CaseSource
	history  HistorySource
	log      ports.Logger

	sidCaseMap        map[string]*model.ViableCase
	trackingIDCaseMap map[string]*model.ViableCase
}

// NewResolver constructs a Resolver over the given backing sources.
func NewResolver(
	samples SampleSource,
	orders OrderSource,
	caseQCs CaseQCSource,
	docs DocGroupSource,
	contacts ContactSource,
	acord103 Acord103Source,
	cases CaseSource,
	history HistorySource,
	log ports.Logger,
) *Resolver {
	return &Resolver{
		samples: samples, orders: orders, caseQCs: caseQCs, docs: docs,
		contacts: contacts, acord103: acord103, cases: cases, history: history,
		log: log,
	}
}

func (r *Resolver) reset() {
	r.sidCaseMap = map[string]*model.ViableCase{}
	r.trackingIDCaseMap = map[string]*model.ViableCase{}
}

// FromSid resolves a viable case starting from the sid search track.
func (r *Resolver) FromSid(ctx context.Context, sid string) (*model.ViableCase, error) {
	r.reset()
	vc := model.NewViableCase()
	if err := r.sidSearchTrack(ctx, sid, vc); err != nil {
		return nil, err
	}
	return vc, nil
}

// FromTrackingID resolves a viable case starting from the trackingId
// search track.
func (r *Resolver) FromTrackingID(ctx context.Context, trackingID string) (*model.ViableCase, error) {
	r.reset()
	vc := model.NewViableCase()
	if err := r.trackingIDSearchTrack(ctx, trackingID, vc); err != nil {
		return nil, err
	}
	return vc, nil
}

// FromPolicyNumber resolves a viable case starting from the policyNumber
// search track.
func (r *Resolver) FromPolicyNumber(ctx context.Context, policyNumber string) (*model.ViableCase, error) {
	r.reset()
	vc := model.NewViableCase()
	if err := r.policyNumberSearchTrack(ctx, policyNumber, vc); err != nil {
		return nil, err
	}
	return vc, nil
}

// FromRefID resolves a viable case starting from the SelectQuote refId
// search track.
func (r *Resolver) FromRefID(ctx context.Context, refID string) (*model.ViableCase, error) {
	r.reset()
	vc := model.NewViableCase()
	if err := r.refIDSearchTrack(ctx, refID, vc); err != nil {
		return nil, err
	}
	return vc, nil
}

// FromDocumentID resolves a viable case starting from the documentId
// search track.
func (r *Resolver) FromDocumentID(ctx context.Context, documentID int) (*model.ViableCase, error) {
	r.reset()
	vc := model.NewViableCase()
	if err := r.documentIDSearchTrack(ctx, documentID, vc); err != nil {
		return nil, err
	}
	return vc, nil
}

// sidSearchTrack: LIMS ->> ACORD 121 -> Delta QC -> Case QC -> ASAP Xmit.
func (r *Resolver) sidSearchTrack(ctx context.Context, sid string, vc *model.ViableCase) error {
	if sid == "" {
		return nil
	}
	if strings.EqualFold(sid, sidSentinel) {
		return nil
	}

	if r.sidCaseMap[sid] == nil {
		r.sidCaseMap[sid] = vc

		contact, err := r.contacts.ForSid(ctx, sid)
		if err != nil {
			return err
		}
		vc.AsapContact = contact

		sample, err := r.samples.FromSid(ctx, sid)
		if err != nil {
			return err
		}
		vc.Sample = sample
		if vc.Sample == nil {
			vc.AddError(model.ErrNoSampleExists, "sid", sid)
		} else if vc.AsapContact == nil {
			vc.AddError(model.ErrNonASAPSample, "sid", sid)
		}

		docGroup, err := r.docs.FromSid(ctx, sid)
		if err != nil {
			return err
		}
		vc.DocGroup = docGroup
		if vc.DocGroup != nil && !hasConsentDocument(vc.DocGroup) {
			vc.AddError(model.ErrMissingConsent, "sid", sid)
		}

		caseQC, err := r.caseQCs.FromSid(ctx, sid)
		if err != nil {
			return err
		}
		vc.CaseQC = caseQC

		if vc.Sample != nil && vc.AsapContact != nil {
			if err := r.attachTransmitHistory(ctx, sid, vc); err != nil {
				return err
			}
		}
	}

	orders, err := r.orders.FromSid(ctx, sid)
	if err != nil {
		return err
	}
	if len(orders) > 0 {
		orders = dropMatchingTrackingID(orders, vc.Order)

		var asapOrders, nonASAPOrders []*model.Order
		for _, o := range orders {
			if o.IsASAP() {
				asapOrders = append(asapOrders, o)
			} else {
				nonASAPOrders = append(nonASAPOrders, o)
			}
		}

		switch {
		case len(asapOrders) > 0:
			vc.Order = asapOrders[0]
			for _, extra := range asapOrders[1:] {
				vc.AddError(model.ErrMultipleOrdersOneSample, extra.TrackingID, sid)
				if extra.DateCancelled == nil {
					sibling := model.NewViableCase()
					sibling.Sample = vc.Sample
					sibling.Order = extra
					vc.AddSibling(model.IDTrackingID, model.ViableCaseLink{
						FromSource: model.SrcAcord121, ToSource: model.SrcLIMS, Case: sibling,
					})
				}
			}
			if err := r.trackingIDSearchTrack(ctx, vc.Order.TrackingID, vc); err != nil {
				return err
			}
		case vc.Order == nil && len(nonASAPOrders) > 0:
			vc.Order = nonASAPOrders[0]
		}
	}

	for _, link := range vc.ViableCaseMap[model.IDSid] {
		member := sourceMember(link.Case, link.FromSource)
		caseSid, ok := sidOf(member)
		if !ok {
			continue
		}
		if caseSid == sid {
			setSourceMember(link.Case, model.SrcLIMS, member)
		} else if err := r.sidSearchTrack(ctx, caseSid, link.Case); err != nil {
			return err
		}
	}
	return nil
}

// trackingIDSearchTrack: ACORD 121 ->> Case QC -> ACORD 103.
func (r *Resolver) trackingIDSearchTrack(ctx context.Context, trackingID string, vc *model.ViableCase) error {
	if trackingID == "" {
		return nil
	}
	if r.trackingIDCaseMap[trackingID] == nil {
		r.trackingIDCaseMap[trackingID] = vc

		if vc.Order == nil {
			order, err := r.orders.FromTrackingID(ctx, trackingID)
			if err != nil {
				return err
			}
			vc.Order = order
		}

		caseQCs, err := r.caseQCs.FromTrackingID(ctx, trackingID)
		if err != nil {
			return err
		}
		caseQCs = dropMatchingCaseQCSid(caseQCs, vc.CaseQC)

		if vc.Order != nil {
			if matched, rest := extractCaseQCBySid(caseQCs, vc.Order.Sid); matched != nil {
				vc.CaseQC = matched
				caseQCs = rest
			}
		}
		for _, extra := range caseQCs {
			vc.AddError(model.ErrCaseExistsForOrder, extra.TrackingID, extra.Sid)
			sibling := model.NewViableCase()
			sibling.Order = vc.Order
			sibling.CaseQC = extra
			vc.AddSibling(model.IDSid, model.ViableCaseLink{
				FromSource: model.SrcCaseQC, ToSource: model.SrcAcord121, Case: sibling,
			})
		}
	}

	if vc.Order != nil {
		if err := r.sidSearchTrack(ctx, vc.Order.Sid, vc); err != nil {
			return err
		}
	}

	if vc.Order != nil && vc.CaseQC != nil && vc.Order.Naic != "" && vc.CaseQC.Naic != "" && vc.Order.Naic != vc.CaseQC.Naic {
		vc.AddError(model.ErrCarrierMismatch, trackingID, fmt.Sprintf("order naic=%s caseQC naic=%s", vc.Order.Naic, vc.CaseQC.Naic))
	}

	if vc.Acord103 == nil {
		rec, err := r.acord103.ByTrackingID(ctx, trackingID)
		if err != nil {
			return err
		}
		vc.Acord103 = rec
	}

	for _, link := range vc.ViableCaseMap[model.IDTrackingID] {
		member := sourceMember(link.Case, link.FromSource)
		caseTrackingID, ok := trackingIDOf(member)
		if !ok {
			continue
		}
		if caseTrackingID == trackingID {
			setSourceMember(link.Case, model.SrcAcord121, member)
		} else if err := r.trackingIDSearchTrack(ctx, caseTrackingID, link.Case); err != nil {
			return err
		}
	}
	return nil
}

// policyNumberSearchTrack: ACORD 121 -> Case QC -> ACORD 103.
func (r *Resolver) policyNumberSearchTrack(ctx context.Context, policyNumber string, vc *model.ViableCase) error {
	if vc.Acord103 != nil {
		return nil
	}
	rec, err := r.acord103.ByPolicyNumber(ctx, policyNumber)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}
	vc.Acord103 = rec
	return r.trackingIDSearchTrack(ctx, rec.TrackingID, vc)
}

// refIDSearchTrack: ACORD 121 -> Delta QC (manual review only).
func (r *Resolver) refIDSearchTrack(ctx context.Context, refID string, vc *model.ViableCase) error {
	if vc.Order != nil {
		return nil
	}
	orders, err := r.orders.FromSelectQuoteRefID(ctx, refID)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return nil
	}
	vc.Order = orders[0]
	for _, extra := range orders[1:] {
		vc.AddError(model.ErrMultipleSelqOrders, extra.TrackingID, refID)
		sibling := model.NewViableCase()
		sibling.Order = extra
		vc.AddSibling(model.IDTrackingID, model.ViableCaseLink{
			FromSource: model.SrcAcord121, ToSource: model.SrcAcord121, Case: sibling,
		})
	}
	return r.trackingIDSearchTrack(ctx, vc.Order.TrackingID, vc)
}

// documentIDSearchTrack recovers the sid a document belongs to, then
// re-dispatches onto the sid track.
func (r *Resolver) documentIDSearchTrack(ctx context.Context, documentID int, vc *model.ViableCase) error {
	if vc.Sample != nil {
		return nil
	}
	sid, doc, err := r.docs.FromDocumentID(ctx, documentID)
	if err != nil || doc == nil {
		return err
	}
	return r.sidSearchTrack(ctx, sid, vc)
}

func (r *Resolver) attachTransmitHistory(ctx context.Context, sid string, vc *model.ViableCase) error {
	if vc.DocGroup == nil || vc.AsapContact == nil {
		return nil
	}
	byDoc := map[int][]model.HistoryItem{}
	for _, action := range []model.HistoryAction{
		model.ActionRelease, model.ActionInvoice, model.ActionTransmit, model.ActionReconcile,
	} {
		dates, err := r.history.TrackedDocIDs(ctx, sid, vc.AsapContact.ContactID, action)
		if err != nil {
			return err
		}
		for docID, date := range dates {
			byDoc[docID] = append(byDoc[docID], model.HistoryItem{
				Sid: sid, DocumentID: docID, ContactID: vc.AsapContact.ContactID,
				Action: action, ActionDate: date,
			})
		}
	}
	for _, doc := range vc.DocGroup.Documents {
		doc.TransmitHistory = byDoc[doc.DocumentID]
	}
	return nil
}
