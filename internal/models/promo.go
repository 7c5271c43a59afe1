package models

import (
	"time"

	"github.com/google/uuid"
)

// Promo discount types.
const (
	DiscountFixed      = "fixed"
	DiscountPercentage = "percentage"
)

type PromoCode struct {
	ID            uuid.UUID  `json:"id"`
	Code          string     `json:"code"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue int64      `json:"discount_value"` // cents for fixed, percent points for percentage
	Active        bool       `json:"active"`
	ValidFrom     *time.Time `json:"valid_from,omitempty"`
	ValidUntil    *time.Time `json:"valid_until,omitempty"`
	UsageCap      *int       `json:"usage_cap,omitempty"`
	UsedCount     int        `json:"used_count"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Usable reports whether the code can be redeemed at the given time.
func (p *PromoCode) Usable(now time.Time) bool {
	if !p.Active {
		return false
	}
	if p.ValidFrom != nil && now.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidUntil != nil && now.After(*p.ValidUntil) {
		return false
	}
	if p.UsageCap != nil && p.UsedCount >= *p.UsageCap {
		return false
	}
	return true
}
