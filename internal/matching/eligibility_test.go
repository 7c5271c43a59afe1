package matching

import (
	"testing"

	"github.com/google/uuid"

	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/geo"
	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/models"
)

func int64ptr(v int64) *int64 { return &v }

func baseContractor() *models.Contractor {
	return &models.Contractor{
		ID:                 uuid.New(),
		CompanyName:        "Elektro Huber GmbH",
		TradeIDs:           []string{"electrician"},
		PostalCode:         "4320",
		ServiceRadiusKM:    50,
		MinProjectCents:    0,
		WalletBalanceCents: 10000,
		QualityScore:       80,
		AcceptsUrgent:      true,
	}
}

func baseProject() *models.Project {
	return &models.Project{
		ID:              uuid.New(),
		TradeID:         "electrician",
		PostalCode:      "4320",
		Urgency:         models.UrgencyMedium,
		Status:          models.ProjectStatusOpen,
		Visibility:      models.ProjectVisibilityPublic,
		FinalPriceCents: 3500,
	}
}

func newTestFilter() *Filter {
	return NewFilter(geo.NewResolver())
}

func TestEligibleSamePostalCode(t *testing.T) {
	// Same postal code resolves to the same region center: distance ~0,
	// well inside a 50km radius.
	out := newTestFilter().Evaluate(baseContractor(), baseProject(), false)
	if !out.Eligible {
		t.Fatalf("expected eligible, excluded for %s", out.Reason)
	}
	if out.DistanceKM > 1 {
		t.Errorf("same-region distance: got %.2f km, want ~0", out.DistanceKM)
	}
}

func TestExclusionReasons(t *testing.T) {
	cases := []struct {
		name           string
		mutate         func(c *models.Contractor, p *models.Project)
		alreadyMatched bool
		want           Reason
	}{
		{
			name:   "trade mismatch",
			mutate: func(c *models.Contractor, p *models.Project) { p.TradeID = "roofer" },
			want:   ReasonTradeMismatch,
		},
		{
			name:           "already matched",
			mutate:         func(c *models.Contractor, p *models.Project) {},
			alreadyMatched: true,
			want:           ReasonAlreadyMatched,
		},
		{
			name:   "contractor postal code unresolvable",
			mutate: func(c *models.Contractor, p *models.Project) { c.PostalCode = "" },
			want:   ReasonLocationUnresolved,
		},
		{
			name:   "project postal code unresolvable",
			mutate: func(c *models.Contractor, p *models.Project) { p.PostalCode = "X999" },
			want:   ReasonLocationUnresolved,
		},
		{
			// Linz region to Wien region is roughly 155km.
			name: "out of radius",
			mutate: func(c *models.Contractor, p *models.Project) {
				p.PostalCode = "1010"
				c.ServiceRadiusKM = 50
			},
			want: ReasonOutOfRadius,
		},
		{
			name: "budget below contractor minimum",
			mutate: func(c *models.Contractor, p *models.Project) {
				c.MinProjectCents = 500000
				p.BudgetMaxCents = int64ptr(100000)
			},
			want: ReasonBelowMinValue,
		},
		{
			name: "wallet cannot cover the lead price",
			mutate: func(c *models.Contractor, p *models.Project) {
				c.WalletBalanceCents = 30
				p.FinalPriceCents = 35
			},
			want: ReasonInsufficientWallet,
		},
	}

	f := newTestFilter()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, p := baseContractor(), baseProject()
			tc.mutate(c, p)
			out := f.Evaluate(c, p, tc.alreadyMatched)
			if out.Eligible {
				t.Fatal("expected exclusion")
			}
			if out.Reason != tc.want {
				t.Errorf("reason: got %s, want %s", out.Reason, tc.want)
			}
		})
	}
}

func TestNoBudgetSkipsMinValueGate(t *testing.T) {
	c, p := baseContractor(), baseProject()
	c.MinProjectCents = 500000
	// Neither budget_max nor estimated value set: the gate does not apply.
	out := newTestFilter().Evaluate(c, p, false)
	if !out.Eligible {
		t.Fatalf("expected eligible with no declared budget, excluded for %s", out.Reason)
	}
}

func TestEstimatedValueFeedsMinValueGate(t *testing.T) {
	c, p := baseContractor(), baseProject()
	c.MinProjectCents = 200000
	p.EstimatedCents = int64ptr(100000)
	out := newTestFilter().Evaluate(c, p, false)
	if out.Eligible || out.Reason != ReasonBelowMinValue {
		t.Errorf("estimated value should gate like budget_max: %+v", out)
	}
}
