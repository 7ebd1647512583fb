package transmit

import (
	"time"

	"github.com/google/uuid"

	"github.com/ridgeline/docxmit/internal/model"
)

// AcordAlert is the ACORD approved-by-client status notification some
// carriers require alongside document delivery, distinguished by its own
// transaction reference guid so the carrier can correlate it with the
// transmitted batch independent of the documents' own ids. Grounded on
// BANReconCustom.py's reference to "ASAPUtility to push an ACORD
// approved-by-client status", generalized off its one hard-coded carrier.
type AcordAlert struct {
	TransRefGuid string
	ContactID    string
	Sid          string
	TrackingID   string
	SentAt       time.Time
}

// BuildAcordAlerts returns one AcordAlert per staged case whose contact is
// configured with AcordAlertOnTransmit, stamped at sentAt.
func BuildAcordAlerts(contact *model.Contact, staged []*model.Case, sentAt time.Time) []AcordAlert {
	if !contact.AcordAlertOnTransmit {
		return nil
	}
	alerts := make([]AcordAlert, 0, len(staged))
	for _, c := range staged {
		alerts = append(alerts, AcordAlert{
			TransRefGuid: uuid.NewString(),
			ContactID:    contact.ContactID,
			Sid:          c.Sid,
			TrackingID:   c.TrackingID,
			SentAt:       sentAt,
		})
	}
	return alerts
}
