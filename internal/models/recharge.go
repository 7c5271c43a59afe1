package models

import (
	"time"

	"github.com/google/uuid"
)

// Recharge status enums. A recharge stays pending until a provider signal
// (webhook or poll) resolves it.
const (
	RechargeStatusPending = "pending"
	RechargeStatusPaid    = "paid"
	RechargeStatusFailed  = "failed"
)

// WalletRecharge is a pending wallet top-up awaiting payment confirmation.
// SessionID is the payment-provider session/intent id; it doubles as the
// ledger idempotency reference, so the webhook and the poll path can both
// attempt the credit and only one lands. AmountCents is the full requested
// recharge; PayableCents is what the contractor pays externally after any
// promo discount. The wallet is always credited AmountCents.
type WalletRecharge struct {
	ID           uuid.UUID  `json:"id"`
	ContractorID uuid.UUID  `json:"contractor_id"`
	AmountCents  int64      `json:"amount_cents"`
	PayableCents int64      `json:"payable_cents"`
	PromoCode    *string    `json:"promo_code,omitempty"`
	SessionID    string     `json:"session_id"`
	Status       string     `json:"status"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
