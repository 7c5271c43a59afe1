package models

import (
	"time"

	"github.com/google/uuid"
)

// Wallet transaction entry types.
const (
	WalletEntryRecharge     = "WALLET_RECHARGE"
	WalletEntryLeadPurchase = "LEAD_PURCHASE"
	WalletEntryRefund       = "REFUND"
)

// WalletTransaction is one entry in the append-only wallet ledger.
// AmountCents is signed with respect to the balance effect (recharges and
// refunds positive, lead purchases negative). Reference is the external
// idempotency key: (contractor_id, reference) is unique, so replaying the
// same logical event is a no-op. BalanceAfter snapshots the wallet balance
// the entry produced; the newest entry's snapshot must equal the
// contractor's cached wallet_balance_cents.
type WalletTransaction struct {
	ID                uuid.UUID `json:"id"`
	ContractorID      uuid.UUID `json:"contractor_id"`
	EntryType         string    `json:"entry_type"`
	AmountCents       int64     `json:"amount_cents"`
	BalanceAfterCents int64     `json:"balance_after_cents"`
	Reference         string    `json:"reference"`
	Description       string    `json:"description"`
	CreatedAt         time.Time `json:"created_at"`
}
