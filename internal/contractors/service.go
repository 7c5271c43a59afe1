// Package contractors manages contractor profiles. Profile changes that
// widen a contractor's reach (trades, location, radius) trigger a match
// backfill against currently open projects.
package contractors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/models"
)

// ErrProfileExists is returned when an account registers a second profile.
var ErrProfileExists = errors.New("contractor profile already exists")

// ProfileInput carries the contractor-editable profile fields.
type ProfileInput struct {
	CompanyName     string   `json:"company_name"`
	TradeIDs        []string `json:"trade_ids"`
	PostalCode      string   `json:"postal_code"`
	ServiceRadiusKM float64  `json:"service_radius_km"`
	MinProjectCents int64    `json:"min_project_cents"`
	AcceptsUrgent   bool     `json:"accepts_urgent"`
}

// Store is the contractor persistence the service needs.
type Store interface {
	Create(ctx context.Context, c *models.Contractor) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contractor, error)
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*models.Contractor, error)
	UpdateProfile(ctx context.Context, c *models.Contractor) error
}

// Backfiller matches a contractor against open projects.
type Backfiller interface {
	BackfillContractor(ctx context.Context, c *models.Contractor) (int, error)
}

// Service implements contractor profile management.
type Service struct {
	Store      Store
	Backfiller Backfiller
	Logger     *slog.Logger
}

// NewService returns a Service.
func NewService(store Store, backfiller Backfiller, logger *slog.Logger) *Service {
	return &Service{Store: store, Backfiller: backfiller, Logger: logger}
}

func validateProfile(in *ProfileInput) error {
	if in.CompanyName == "" {
		return errors.New("company_name is required")
	}
	if len(in.TradeIDs) == 0 {
		return errors.New("at least one trade is required")
	}
	if in.PostalCode == "" {
		return errors.New("postal_code is required")
	}
	if in.ServiceRadiusKM <= 0 {
		return errors.New("service_radius_km must be positive")
	}
	if in.MinProjectCents < 0 {
		return errors.New("min_project_cents must not be negative")
	}
	return nil
}

// RegisterProfile creates the contractor profile for an account and runs the
// initial backfill.
func (s *Service) RegisterProfile(ctx context.Context, accountID uuid.UUID, in *ProfileInput) (*models.Contractor, error) {
	if err := validateProfile(in); err != nil {
		return nil, err
	}
	if existing, err := s.Store.GetByAccountID(ctx, accountID); err == nil && existing != nil {
		return nil, ErrProfileExists
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check existing profile: %w", err)
	}

	c := &models.Contractor{
		ID:              uuid.New(),
		AccountID:       accountID,
		CompanyName:     in.CompanyName,
		TradeIDs:        in.TradeIDs,
		PostalCode:      in.PostalCode,
		ServiceRadiusKM: in.ServiceRadiusKM,
		MinProjectCents: in.MinProjectCents,
		AcceptsUrgent:   in.AcceptsUrgent,
	}
	if err := s.Store.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create contractor: %w", err)
	}

	s.backfill(ctx, c)
	return c, nil
}

// UpdateProfile rewrites the profile and re-runs the backfill; the uniqueness
// invariant on match rows makes the re-run safe.
func (s *Service) UpdateProfile(ctx context.Context, accountID uuid.UUID, in *ProfileInput) (*models.Contractor, error) {
	if err := validateProfile(in); err != nil {
		return nil, err
	}
	c, err := s.Store.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	c.CompanyName = in.CompanyName
	c.TradeIDs = in.TradeIDs
	c.PostalCode = in.PostalCode
	c.ServiceRadiusKM = in.ServiceRadiusKM
	c.MinProjectCents = in.MinProjectCents
	c.AcceptsUrgent = in.AcceptsUrgent
	if err := s.Store.UpdateProfile(ctx, c); err != nil {
		return nil, fmt.Errorf("update contractor: %w", err)
	}

	s.backfill(ctx, c)
	return c, nil
}

// GetByAccount resolves the profile behind an authenticated account.
func (s *Service) GetByAccount(ctx context.Context, accountID uuid.UUID) (*models.Contractor, error) {
	return s.Store.GetByAccountID(ctx, accountID)
}

// backfill is best effort; a failure leaves the profile change committed and
// is recovered by the next profile update or project open.
func (s *Service) backfill(ctx context.Context, c *models.Contractor) {
	created, err := s.Backfiller.BackfillContractor(ctx, c)
	if err != nil {
		s.Logger.Error("contractor backfill failed", "contractor_id", c.ID, "error", err)
		return
	}
	if created > 0 {
		s.Logger.Info("contractor backfilled", "contractor_id", c.ID, "matches_created", created)
	}
}
