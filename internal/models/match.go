package models

import (
	"time"

	"github.com/google/uuid"
)

// Match type and status enums.
const (
	MatchTypeSuggested = "suggested"
	MatchTypeDemo      = "demo"

	MatchStatusPending  = "pending"
	MatchStatusAccepted = "accepted"
	MatchStatusLost     = "lost"
	MatchStatusWon      = "won"
)

// Match pairs a contractor with a project. At most one row exists per
// (project_id, contractor_id); the matching coordinator relies on that
// uniqueness for idempotence.
type Match struct {
	ID            uuid.UUID  `json:"id"`
	ProjectID     uuid.UUID  `json:"project_id"`
	ContractorID  uuid.UUID  `json:"contractor_id"`
	Score         int        `json:"score"`
	Type          string     `json:"type"`
	Status        string     `json:"status"`
	LeadPurchased bool       `json:"lead_purchased"`
	PurchasedAt   *time.Time `json:"purchased_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
