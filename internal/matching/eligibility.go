// Package matching decides which contractors are eligible for a project,
// scores each eligible pair, and persists the resulting match rows.
package matching

import (
	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/geo"
	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/models"
)

// Reason identifies which eligibility check excluded a pair. Exclusion is
// normal business behavior, not an error; reasons exist for observability.
type Reason string

const (
	ReasonTradeMismatch      Reason = "trade_mismatch"
	ReasonAlreadyMatched     Reason = "already_matched"
	ReasonLocationUnresolved Reason = "location_unresolved"
	ReasonOutOfRadius        Reason = "out_of_radius"
	ReasonBelowMinValue      Reason = "below_min_value"
	ReasonInsufficientWallet Reason = "insufficient_wallet"
)

// Outcome is the result of evaluating one (contractor, project) pair.
// DistanceKM is only meaningful when both locations resolved.
type Outcome struct {
	Eligible   bool
	Reason     Reason
	DistanceKM float64
}

// pairInput carries everything the check pipeline needs.
type pairInput struct {
	contractor     *models.Contractor
	project        *models.Project
	alreadyMatched bool
	distanceKM     float64
	geoErr         error
}

// check is one named predicate in the eligibility pipeline.
type check struct {
	reason Reason
	pass   func(in *pairInput) bool
}

// checks run in order; the first failing check's reason is reported.
var checks = []check{
	{ReasonTradeMismatch, func(in *pairInput) bool {
		return in.contractor.OffersTrade(in.project.TradeID)
	}},
	{ReasonAlreadyMatched, func(in *pairInput) bool {
		return !in.alreadyMatched
	}},
	{ReasonLocationUnresolved, func(in *pairInput) bool {
		return in.geoErr == nil
	}},
	{ReasonOutOfRadius, func(in *pairInput) bool {
		return in.distanceKM <= in.contractor.ServiceRadiusKM
	}},
	{ReasonBelowMinValue, func(in *pairInput) bool {
		// Only gate when the project declares a budget or estimate.
		budget := in.project.BudgetCents()
		return budget == 0 || budget >= in.contractor.MinProjectCents
	}},
	{ReasonInsufficientWallet, func(in *pairInput) bool {
		return in.contractor.WalletBalanceCents >= in.project.FinalPriceCents
	}},
}

// Filter applies the hard eligibility constraints.
type Filter struct {
	resolver *geo.Resolver
}

// NewFilter returns a Filter resolving locations through the given resolver.
func NewFilter(resolver *geo.Resolver) *Filter {
	return &Filter{resolver: resolver}
}

// Evaluate runs the check pipeline for one pair. alreadyMatched is supplied
// by the caller (the coordinator knows whether a match row exists).
func (f *Filter) Evaluate(c *models.Contractor, p *models.Project, alreadyMatched bool) Outcome {
	in := &pairInput{
		contractor:     c,
		project:        p,
		alreadyMatched: alreadyMatched,
	}

	home, err := f.resolver.Resolve(c.PostalCode)
	if err != nil {
		in.geoErr = err
	} else {
		site, err := f.resolver.Resolve(p.PostalCode)
		if err != nil {
			in.geoErr = err
		} else {
			in.distanceKM = geo.Distance(home, site)
		}
	}

	for _, ch := range checks {
		if !ch.pass(in) {
			return Outcome{Eligible: false, Reason: ch.reason, DistanceKM: in.distanceKM}
		}
	}
	return Outcome{Eligible: true, DistanceKM: in.distanceKM}
}
