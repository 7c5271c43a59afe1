package models

import (
	"time"

	"github.com/google/uuid"
)

type Contractor struct {
	ID                 uuid.UUID `json:"id"`
	AccountID          uuid.UUID `json:"account_id"`
	CompanyName        string    `json:"company_name"`
	TradeIDs           []string  `json:"trade_ids"`
	PostalCode         string    `json:"postal_code"`
	ServiceRadiusKM    float64   `json:"service_radius_km"`
	MinProjectCents    int64     `json:"min_project_cents"`
	WalletBalanceCents int64     `json:"wallet_balance_cents"`
	QualityScore       int       `json:"quality_score"`
	AcceptsUrgent      bool      `json:"accepts_urgent"`
	IsVerified         bool      `json:"is_verified"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// OffersTrade reports whether the contractor's trade set contains tradeID.
func (c *Contractor) OffersTrade(tradeID string) bool {
	for _, t := range c.TradeIDs {
		if t == tradeID {
			return true
		}
	}
	return false
}
