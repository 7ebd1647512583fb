package viablecase

import (
	"strings"

	"github.com/ridgeline/docxmit/internal/model"
)

// sourceMember returns the ViableCase field a Source names, replacing the
// original's getattr(case, srcMemberMap[src]) dynamic lookup with an
// explicit switch (spec.md's Go idiom preference over reflection for
// domain dispatch).
func sourceMember(vc *model.ViableCase, src model.Source) any {
	switch src {
	case model.SrcLIMS:
		return vc.Sample
	case model.SrcDeltaQC:
		return vc.DocGroup
	case model.SrcAcord121:
		return vc.Order
	case model.SrcCaseQC:
		return vc.CaseQC
	case model.SrcAcord103:
		return vc.Acord103
	case model.SrcASAPXmit:
		return vc.AsapContact
	default:
		return nil
	}
}

// setSourceMember assigns value into the field src names.
func setSourceMember(vc *model.ViableCase, src model.Source, value any) {
	switch src {
	case model.SrcLIMS:
		if v, ok := value.(*model.Sample); ok {
			vc.Sample = v
		}
	case model.SrcDeltaQC:
		if v, ok := value.(*model.DocGroup); ok {
			vc.DocGroup = v
		}
	case model.SrcAcord121:
		if v, ok := value.(*model.Order); ok {
			vc.Order = v
		}
	case model.SrcCaseQC:
		if v, ok := value.(*model.CaseQC); ok {
			vc.CaseQC = v
		}
	case model.SrcAcord103:
		if v, ok := value.(*model.Acord103); ok {
			vc.Acord103 = v
		}
	case model.SrcASAPXmit:
		if v, ok := value.(*model.ASAPContact); ok {
			vc.AsapContact = v
		}
	}
}

// sidOf extracts the sid identifying a source member, if it has one.
func sidOf(member any) (string, bool) {
	switch v := member.(type) {
	case *model.Sample:
		if v == nil {
			return "", false
		}
		return v.Sid, true
	case *model.Order:
		if v == nil {
			return "", false
		}
		return v.Sid, true
	case *model.CaseQC:
		if v == nil {
			return "", false
		}
		return v.Sid, true
	case *model.DocGroup:
		if v == nil {
			return "", false
		}
		return v.Sid, true
	default:
		return "", false
	}
}

// trackingIDOf extracts the tracking id identifying a source member, if it
// has one.
func trackingIDOf(member any) (string, bool) {
	switch v := member.(type) {
	case *model.Order:
		if v == nil {
			return "", false
		}
		return v.TrackingID, true
	case *model.CaseQC:
		if v == nil {
			return "", false
		}
		return v.TrackingID, true
	case *model.Acord103:
		if v == nil {
			return "", false
		}
		return v.TrackingID, true
	default:
		return "", false
	}
}

// hasConsentDocument reports whether a doc group contains a consent or lab
// slip document, per consentDocTypeNames.
func hasConsentDocument(group *model.DocGroup) bool {
	for _, doc := range group.Documents {
		if consentDocTypeNames[strings.ToUpper(doc.DocTypeName)] {
			return true
		}
	}
	return false
}

// dropMatchingTrackingID removes from orders the one order whose tracking
// id already matches existing, if present (the original's "already have
// this order, skip it" guard in the sid search track).
func dropMatchingTrackingID(orders []*model.Order, existing *model.Order) []*model.Order {
	if existing == nil {
		return orders
	}
	for i, o := range orders {
		if o.TrackingID == existing.TrackingID {
			return append(append([]*model.Order{}, orders[:i]...), orders[i+1:]...)
		}
	}
	return orders
}

// dropMatchingCaseQCSid removes from caseQCs the one record whose sid
// already matches existing, if present.
func dropMatchingCaseQCSid(caseQCs []*model.CaseQC, existing *model.CaseQC) []*model.CaseQC {
	if existing == nil {
		return caseQCs
	}
	for i, c := range caseQCs {
		if c.Sid == existing.Sid {
			return append(append([]*model.CaseQC{}, caseQCs[:i]...), caseQCs[i+1:]...)
		}
	}
	return caseQCs
}

// extractCaseQCBySid removes and returns the CaseQC matching sid, if any,
// along with the remaining slice.
func extractCaseQCBySid(caseQCs []*model.CaseQC, sid string) (*model.CaseQC, []*model.CaseQC) {
	for i, c := range caseQCs {
		if c.Sid == sid {
			rest := append(append([]*model.CaseQC{}, caseQCs[:i]...), caseQCs[i+1:]...)
			return c, rest
		}
	}
	return nil, caseQCs
}
