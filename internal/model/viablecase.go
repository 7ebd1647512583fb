package model

// IdentifierKind names the five identifier types the viable-case resolver
// can start from or discover mid-walk (spec.md §4.2).
type IdentifierKind string

const (
	IDSid          IdentifierKind = "sid"
	IDTrackingID   IdentifierKind = "trackingId"
	IDPolicyNumber IdentifierKind = "policyNumber"
	IDRefID        IdentifierKind = "refId"
	IDDocumentID   IdentifierKind = "documentId"
)

// Source names one of the six backing projections a ViableCase links.
type Source string

const (
	SrcLIMS     Source = "LIMS"
	SrcDeltaQC  Source = "Delta QC"
	SrcAcord121 Source = "ACORD 121"
	SrcCaseQC   Source = "Case QC"
	SrcAcord103 Source = "ACORD 103"
	SrcASAPXmit Source = "ASAP Xmit"
)

// DiscrepancyFlag is a non-fatal bit recorded in ViableCase.Errors
// (spec.md §4.2).
type DiscrepancyFlag uint32

const (
	ErrNone                    DiscrepancyFlag = 0
	ErrMultipleOrdersOneSample DiscrepancyFlag = 1 << iota
	ErrCaseExistsForOrder
	ErrNonASAPSample
	ErrCarrierMismatch
	ErrNoSampleExists
	ErrMissingConsent
	ErrMultipleSelqOrders
)

// DiscrepancyDescriptions gives a human-readable summary for each flag,
// for inclusion in viable-case discrepancy reports.
var DiscrepancyDescriptions = map[DiscrepancyFlag]string{
	ErrMultipleOrdersOneSample: "the LIMS sample is matched to more than one ACORD ASAP order",
	ErrCaseExistsForOrder:      "a case QC record already exists for the ACORD order(s)",
	ErrNonASAPSample:           "the LIMS sample is not associated with an ASAP imaging contact",
	ErrCarrierMismatch:         "the ACORD order carrier does not match the LIMS sample",
	ErrNoSampleExists:          "no sample exists in LIMS for this case",
	ErrMissingConsent:          "consent/labslip document is missing for this case",
	ErrMultipleSelqOrders:      "there are one or more unmatched SelectQuote orders that match this case",
}

// Has reports whether flag is set in errs.
func (errs DiscrepancyFlag) Has(flag DiscrepancyFlag) bool {
	return errs&flag != 0
}

// DocGroup is the Delta-QC document group for a sid: the case's
// in-flight document set prior to being promoted into a model.Case.
type DocGroup struct {
	Sid       string
	Documents []*Document
}

// ASAPContact is the thin Delta-QC/ASAP-side contact projection used by
// the resolver; it is looked up by (clientId, regionId, examiner) and
// resolves to a full Contact via the config store once a run needs one.
type ASAPContact struct {
	ContactID string
	ClientID  string
	RegionID  string
	Examiner  string
}

// ViableCaseLink records one sibling case discovered while resolving
// another, keyed by the identifier kind the caller should re-dispatch on.
type ViableCaseLink struct {
	FromSource Source
	ToSource   Source
	Case       *ViableCase
}

// ViableCase is the candidate ASAP case graph assembled by the resolver
// (spec.md §3, §4.2). A sid whose value is the literal XXXXXXXX sentinel
// terminates the sid track before any of these fields beyond what the
// caller supplied are populated.
type ViableCase struct {
	Sample      *Sample
	AsapContact *ASAPContact
	DocGroup    *DocGroup
	Order       *Order
	CaseQC      *CaseQC
	Acord103    *Acord103

	// ViableCaseMap links discovered sibling cases, keyed by the
	// identifier kind a caller should recurse on to resolve them fully.
	ViableCaseMap map[IdentifierKind][]ViableCaseLink

	Errors         DiscrepancyFlag
	ErrorDetailMap map[DiscrepancyFlag]map[string]string
}

// NewViableCase returns an empty ViableCase ready for the resolver to
// populate.
func NewViableCase() *ViableCase {
	return &ViableCase{
		ViableCaseMap:  map[IdentifierKind][]ViableCaseLink{},
		ErrorDetailMap: map[DiscrepancyFlag]map[string]string{},
	}
}

// AddError records a discrepancy flag with optional detail, without
// overwriting any detail already recorded for the same flag+key pair.
func (v *ViableCase) AddError(flag DiscrepancyFlag, detailKey, detailValue string) {
	v.Errors |= flag
	detail, ok := v.ErrorDetailMap[flag]
	if !ok {
		detail = map[string]string{}
		v.ErrorDetailMap[flag] = detail
	}
	if detailKey != "" {
		detail[detailKey] = detailValue
	}
}

// AddSibling links a newly-discovered sibling case under kind, the
// identifier the caller should use to continue resolving it.
func (v *ViableCase) AddSibling(kind IdentifierKind, link ViableCaseLink) {
	v.ViableCaseMap[kind] = append(v.ViableCaseMap[kind], link)
}
