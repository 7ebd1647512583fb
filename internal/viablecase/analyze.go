package viablecase

import (
	"context"
	"fmt"

	"github.com/ridgeline/docxmit/internal/model"
)

// resultsDependentClients names clients whose cases must wait on lab
// results before they are ready to transmit, matching the original's
// hard-coded gate map.
var resultsDependentClients = map[string]string{
	"AGI": "American General",
	"MNM": "Minnesota Life",
	"TRO": "Transamerica",
	"PIC": "Prudential",
	"UST": "American General",
}

// Contact103Requirement reports whether a contact's configuration requires
// an ACORD 103 confirmation before a case is transmittable.
type Contact103Requirement func(contactID string) bool

// RestageCheck reports whether an already-staged case should be restaged
// for transmission (the transmit orchestrator's reStageToTransmit
// predicate, spec.md §4.8).
type RestageCheck func(existing *model.Case) bool

// Analyze returns a human-readable readiness summary for a resolved
// viable case, checking the same gate chain as the original's
// analyzeCase: cancellation, missing case QC, missing sample, QC state,
// pending lab results, excluded client codes, missing ASAP contact,
// missing required ACORD 103, and prior transmission.
func (r *Resolver) Analyze(ctx context.Context, vc *model.ViableCase, requires103 Contact103Requirement, restage RestageCheck) (string, error) {
	if vc == nil {
		return "This case could not be located in CRL's system", nil
	}

	status, err := r.analyzeStatus(ctx, vc, requires103, restage)
	if err != nil {
		return "", err
	}
	if vc.Sample != nil && vc.Sample.Sid != "" {
		status += ", sid = " + vc.Sample.Sid
	}
	return status, nil
}

func (r *Resolver) analyzeStatus(ctx context.Context, vc *model.ViableCase, requires103 Contact103Requirement, restage RestageCheck) (string, error) {
	switch {
	case vc.Order != nil && vc.Order.DateCancelled != nil:
		return "This case has been cancelled", nil
	case vc.CaseQC == nil:
		return "There is no case record for APPS to review at this time", nil
	case vc.Sample == nil:
		return "CRL has not received a lab sample", nil
	case vc.CaseQC.State != model.CaseQCStateReleased:
		return "The case images have not been released by APPS at this time", nil
	case vc.Sample.TransmitDate == nil && isResultsDependent(vc.Sample.ClientID):
		return fmt.Sprintf("Lab results are not yet ready for this case (required for %s)", resultsDependentClients[vc.Sample.ClientID]), nil
	case vc.Sample.ClientID == "ORP":
		return "Sample is coded to ORP in CRL's system", nil
	case vc.AsapContact == nil:
		return fmt.Sprintf("No ASAP contact found for CLI/REG/EXAMINER %s/%s/%s", vc.Sample.ClientID, vc.Sample.RegionID, vc.Sample.Examiner), nil
	case vc.Acord103 == nil && requires103 != nil && requires103(vc.AsapContact.ContactID):
		return "CRL has not received an ACORD 103 XML file from APPS at this time", nil
	case vc.Sample.TransmitDate != nil:
		return "Case has previously transmitted to carrier, transmit date = " + vc.Sample.TransmitDate.String(), nil
	default:
		existing, err := r.cases.FromSid(ctx, vc.Sample.Sid)
		if err != nil {
			return "", err
		}
		if existing == nil || restage == nil || restage(existing) {
			return "Case has been restaged to transmit to carrier", nil
		}
		return "Case has previously transmitted to carrier", nil
	}
}

func isResultsDependent(clientID string) bool {
	_, ok := resultsDependentClients[clientID]
	return ok
}
