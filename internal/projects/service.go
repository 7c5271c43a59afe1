// Package projects handles customer project intake: schema validation, lead
// pricing, persistence, and kicking off contractor matching.
package projects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/models"
)

// Lead pricing: a flat cut of the declared budget, clamped to a band that
// keeps leads affordable on small jobs and worth selling on large ones.
// Projects without any budget signal get the mid-band default.
const (
	leadPricePermille = 50 // 5% of budget
	leadPriceMinCents = 1500
	leadPriceMaxCents = 9900
	leadPriceDefault  = 3500
)

var (
	// ErrForbidden is returned when the caller does not own the project.
	ErrForbidden = errors.New("not allowed")

	// ErrNotOpen is returned when cancelling a project that already left the
	// open state.
	ErrNotOpen = errors.New("project is not open")
)

// CreateInput is the accepted project payload, shaped by the JSON schema.
type CreateInput struct {
	TradeID        string `json:"trade_id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	PostalCode     string `json:"postal_code"`
	City           string `json:"city"`
	Urgency        string `json:"urgency"`
	BudgetMinCents *int64 `json:"budget_min_cents,omitempty"`
	BudgetMaxCents *int64 `json:"budget_max_cents,omitempty"`
	EstimatedCents *int64 `json:"estimated_cents,omitempty"`
	Visibility     string `json:"visibility,omitempty"`
}

// Store is the project persistence the service needs.
type Store interface {
	Create(ctx context.Context, p *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*models.Project, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// Matcher runs contractor matching for a freshly opened project.
type Matcher interface {
	MatchProject(ctx context.Context, p *models.Project) (int, error)
}

// Service implements project intake and lifecycle.
type Service struct {
	Store     Store
	Validator *Validator
	Matcher   Matcher
	Logger    *slog.Logger
}

// NewService returns a Service.
func NewService(store Store, validator *Validator, matcher Matcher, logger *slog.Logger) *Service {
	return &Service{
		Store:     store,
		Validator: validator,
		Matcher:   matcher,
		Logger:    logger,
	}
}

// Create validates the raw payload, persists the project as open, and runs
// matching. A matching failure does not fail the creation; the backfill path
// picks the project up later.
func (s *Service) Create(ctx context.Context, customerID uuid.UUID, raw json.RawMessage) (*models.Project, int, error) {
	if err := s.Validator.Validate(raw); err != nil {
		return nil, 0, err
	}
	var in CreateInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, 0, fmt.Errorf("decode project payload: %w", err)
	}

	visibility := in.Visibility
	if visibility == "" {
		visibility = models.ProjectVisibilityPublic
	}

	p := &models.Project{
		ID:             uuid.New(),
		CustomerID:     customerID,
		TradeID:        in.TradeID,
		Title:          in.Title,
		Description:    in.Description,
		PostalCode:     in.PostalCode,
		City:           in.City,
		Urgency:        in.Urgency,
		BudgetMinCents: in.BudgetMinCents,
		BudgetMaxCents: in.BudgetMaxCents,
		EstimatedCents: in.EstimatedCents,
		Status:         models.ProjectStatusOpen,
		Visibility:     visibility,
	}
	p.FinalPriceCents = leadPrice(p)

	if err := s.Store.Create(ctx, p); err != nil {
		return nil, 0, fmt.Errorf("create project: %w", err)
	}

	matched, err := s.Matcher.MatchProject(ctx, p)
	if err != nil {
		s.Logger.Error("matching after project create failed", "project_id", p.ID, "error", err)
		return p, 0, nil
	}
	return p, matched, nil
}

// Get returns a project for its owner.
func (s *Service) Get(ctx context.Context, customerID, projectID uuid.UUID) (*models.Project, error) {
	p, err := s.Store.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.CustomerID != customerID {
		return nil, ErrForbidden
	}
	return p, nil
}

// ListMine returns the customer's projects, newest first.
func (s *Service) ListMine(ctx context.Context, customerID uuid.UUID) ([]*models.Project, error) {
	return s.Store.ListByCustomer(ctx, customerID)
}

// Cancel moves an open project to cancelled. Matched contractors keep any
// leads they already purchased.
func (s *Service) Cancel(ctx context.Context, customerID, projectID uuid.UUID) error {
	p, err := s.Store.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if p.CustomerID != customerID {
		return ErrForbidden
	}
	if p.Status != models.ProjectStatusOpen {
		return ErrNotOpen
	}
	return s.Store.UpdateStatus(ctx, projectID, models.ProjectStatusCancelled)
}

// leadPrice derives the lead price from the project's budget signal.
func leadPrice(p *models.Project) int64 {
	budget := p.BudgetCents()
	if budget == 0 {
		return leadPriceDefault
	}
	price := budget * leadPricePermille / 1000
	if price < leadPriceMinCents {
		return leadPriceMinCents
	}
	if price > leadPriceMaxCents {
		return leadPriceMaxCents
	}
	return price
}
