// Package notify delivers marketplace events to the external notification
// sender (email service). Delivery is fire-and-forget: the core never waits
// on it and a failed enqueue or send must never unwind a committed ledger or
// offer transition.
package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Event kinds.
const (
	EventProjectMatched  = "project.matched"
	EventLeadPurchased   = "lead.purchased"
	EventOfferReceived   = "offer.received"
	EventOfferAccepted   = "offer.accepted"
	EventOfferRejected   = "offer.rejected"
	EventWalletRecharged = "wallet.recharged"
)

// Event describes something the notification sender should tell a user about.
// Only the fields relevant to the kind are set.
type Event struct {
	Kind         string    `json:"kind"`
	ProjectID    uuid.UUID `json:"project_id,omitempty"`
	ContractorID uuid.UUID `json:"contractor_id,omitempty"`
	CustomerID   uuid.UUID `json:"customer_id,omitempty"`
	OfferID      uuid.UUID `json:"offer_id,omitempty"`
	AmountCents  int64     `json:"amount_cents,omitempty"`
}

// InsertNotificationFunc enqueues a notification job. Provided by main as a
// closure over river.Client.Insert (breaks the init cycle, same pattern as
// the job-insert wiring in cmd/api).
type InsertNotificationFunc func(ctx context.Context, args NotificationJobArgs) error

// RiverSink enqueues events as river jobs. Enqueue failures are logged and
// swallowed; river retries delivery out-of-band once the job is in.
type RiverSink struct {
	insert InsertNotificationFunc
	logger *slog.Logger
}

// NewRiverSink returns a RiverSink.
func NewRiverSink(insert InsertNotificationFunc, logger *slog.Logger) *RiverSink {
	return &RiverSink{insert: insert, logger: logger}
}

// Notify enqueues the event. Never returns an error.
func (s *RiverSink) Notify(ctx context.Context, e Event) {
	if err := s.insert(ctx, NotificationJobArgs{Event: e}); err != nil {
		s.logger.Warn("enqueue notification failed", "kind", e.Kind, "error", err)
	}
}
