package models

import (
	"time"

	"github.com/google/uuid"
)

// Offer status enums. OfferStatusExpired is never written to the store; it is
// derived at read time from valid_until (see EffectiveStatus).
const (
	OfferStatusPending  = "pending"
	OfferStatusAccepted = "accepted"
	OfferStatusRejected = "rejected"
	OfferStatusExpired  = "expired"
)

// Offer is a contractor's priced bid on a purchased lead. Unique per
// (project_id, contractor_id); re-submission upserts.
type Offer struct {
	ID           uuid.UUID `json:"id"`
	ProjectID    uuid.UUID `json:"project_id"`
	ContractorID uuid.UUID `json:"contractor_id"`
	AmountCents  int64     `json:"amount_cents"`
	Message      string    `json:"message"`
	Status       string    `json:"status"`
	ValidUntil   time.Time `json:"valid_until"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EffectiveStatus returns the status as of now: a pending offer past its
// valid_until reads as expired. There is no sweeper; expiry is computed
// wherever offer status is read or acted upon.
func (o *Offer) EffectiveStatus(now time.Time) string {
	if o.Status == OfferStatusPending && now.After(o.ValidUntil) {
		return OfferStatusExpired
	}
	return o.Status
}
