package matching

import (
	"math"

	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/models"
)

// Scoring weights. The budget bonus reuses the same budget-vs-min-value
// comparison that already gates eligibility; the legacy formula double-counts
// that signal on purpose and we keep it that way.
const (
	baseScore            = 100.0
	distancePenaltyPerKM = 0.5
	qualityWeight        = 0.3
	budgetBonus          = 20.0
	urgentPenalty        = 50.0
)

// Score computes the relevance score for an eligible (contractor, project)
// pair. Intermediate math is floating point; the result is rounded to the
// nearest integer at the end and clamped to zero. A zero score still produces
// a match row — only the eligibility filter excludes pairs outright.
func Score(c *models.Contractor, p *models.Project, distanceKM float64) int {
	s := baseScore
	s -= distanceKM * distancePenaltyPerKM
	s += float64(c.QualityScore) * qualityWeight

	if budget := p.BudgetCents(); budget > 0 && budget >= c.MinProjectCents {
		s += budgetBonus
	}
	if p.Urgency == models.UrgencyHigh && !c.AcceptsUrgent {
		s -= urgentPenalty
	}

	score := int(math.Round(s))
	if score < 0 {
		return 0
	}
	return score
}
