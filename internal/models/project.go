package models

import (
	"time"

	"github.com/google/uuid"
)

// Project status and visibility enums, mirrored in the projects table.
const (
	ProjectStatusOpen       = "open"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusCompleted  = "completed"
	ProjectStatusCancelled  = "cancelled"

	ProjectVisibilityPublic  = "public"
	ProjectVisibilityPrivate = "private"
)

// Urgency tiers. UrgencyHigh is the only tier that affects scoring.
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

type Project struct {
	ID              uuid.UUID `json:"id"`
	CustomerID      uuid.UUID `json:"customer_id"`
	TradeID         string    `json:"trade_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	PostalCode      string    `json:"postal_code"`
	City            string    `json:"city"`
	Urgency         string    `json:"urgency"`
	BudgetMinCents  *int64    `json:"budget_min_cents,omitempty"`
	BudgetMaxCents  *int64    `json:"budget_max_cents,omitempty"`
	EstimatedCents  *int64    `json:"estimated_cents,omitempty"`
	// FinalPriceCents is the lead price: what a contractor pays to unlock
	// the project's contact details.
	FinalPriceCents int64     `json:"final_price_cents"`
	Status          string    `json:"status"`
	Visibility      string    `json:"visibility"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BudgetCents returns the value used for the min-project-value comparison:
// budget_max when set and nonzero, otherwise estimated value, otherwise 0.
func (p *Project) BudgetCents() int64 {
	if p.BudgetMaxCents != nil && *p.BudgetMaxCents > 0 {
		return *p.BudgetMaxCents
	}
	if p.EstimatedCents != nil && *p.EstimatedCents > 0 {
		return *p.EstimatedCents
	}
	return 0
}
