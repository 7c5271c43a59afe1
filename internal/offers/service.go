// Package offers manages contractor bids on purchased leads: submission,
// customer accept/reject, and read-time expiry. Accepting one offer settles
// the whole project in a single transaction.
package offers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/models"
	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/notify"
)

// validityWindow is how long a submitted offer stays acceptable.
// Re-submitting resets the window.
const validityWindow = 14 * 24 * time.Hour

var (
	// ErrForbidden is returned when the caller does not own the resource the
	// operation acts on, or has not purchased the lead it requires.
	ErrForbidden = errors.New("not allowed")

	// ErrNotOpen is returned when submitting against a project that is no
	// longer open.
	ErrNotOpen = errors.New("project is not open")

	// ErrInvalidState is returned when accepting or rejecting an offer that
	// is not effectively pending (already decided, or expired).
	ErrInvalidState = errors.New("offer is not pending")
)

// Store persists offers. Upsert must be keyed on (project_id, contractor_id):
// a second submission for the same pair overwrites amount, message, and
// validity instead of creating a new row.
type Store interface {
	Upsert(ctx context.Context, o *models.Offer) (*models.Offer, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Offer, error)
	ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]*models.Offer, error)
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string) error
	RejectPendingSiblingsTx(ctx context.Context, tx pgx.Tx, projectID, acceptedID uuid.UUID) ([]uuid.UUID, error)
}

// ProjectStore is the slice of project persistence the offer flow needs.
type ProjectStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	SetInProgressTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// MatchStore reads the purchase gate and settles match outcomes.
type MatchStore interface {
	GetByPair(ctx context.Context, projectID, contractorID uuid.UUID) (*models.Match, error)
	SettleTx(ctx context.Context, tx pgx.Tx, projectID, winnerContractorID uuid.UUID) error
}

// TxBeginner opens the transaction for the accept flow.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Notifier is the fire-and-forget notification sink.
type Notifier interface {
	Notify(ctx context.Context, e notify.Event)
}

// Service implements the offer lifecycle.
type Service struct {
	Pool     TxBeginner
	Offers   Store
	Projects ProjectStore
	Matches  MatchStore
	Sink     Notifier
	Logger   *slog.Logger
}

// NewService returns a Service.
func NewService(pool TxBeginner, offers Store, projects ProjectStore, matches MatchStore, sink Notifier, logger *slog.Logger) *Service {
	return &Service{
		Pool:     pool,
		Offers:   offers,
		Projects: projects,
		Matches:  matches,
		Sink:     sink,
		Logger:   logger,
	}
}

// Submit creates or refreshes the contractor's offer on a project. The
// contractor must have purchased the lead, and the project must still be
// open. A repeat submission replaces the previous amount and message and
// restarts the validity window.
func (s *Service) Submit(ctx context.Context, contractorID, projectID uuid.UUID, amountCents int64, message string) (*models.Offer, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("offer amount must be positive, got %d", amountCents)
	}

	project, err := s.Projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.Status != models.ProjectStatusOpen {
		return nil, ErrNotOpen
	}

	match, err := s.Matches.GetByPair(ctx, projectID, contractorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("look up match: %w", err)
	}
	if !match.LeadPurchased {
		return nil, ErrForbidden
	}

	offer, err := s.Offers.Upsert(ctx, &models.Offer{
		ID:           uuid.New(),
		ProjectID:    projectID,
		ContractorID: contractorID,
		AmountCents:  amountCents,
		Message:      message,
		Status:       models.OfferStatusPending,
		ValidUntil:   time.Now().Add(validityWindow),
	})
	if err != nil {
		return nil, fmt.Errorf("upsert offer: %w", err)
	}

	s.Sink.Notify(ctx, notify.Event{
		Kind:         notify.EventOfferReceived,
		ProjectID:    projectID,
		ContractorID: contractorID,
		CustomerID:   project.CustomerID,
		OfferID:      offer.ID,
	})
	return offer, nil
}

// Accept marks the offer accepted on behalf of the project owner. In one
// transaction it also rejects every other pending offer on the project,
// moves the project to in_progress, and settles the match outcomes (winner
// accepted, rivals lost).
func (s *Service) Accept(ctx context.Context, customerID, offerID uuid.UUID) (*models.Offer, error) {
	offer, project, err := s.loadForDecision(ctx, customerID, offerID)
	if err != nil {
		return nil, err
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin accept tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.Offers.UpdateStatusTx(ctx, tx, offer.ID, models.OfferStatusAccepted); err != nil {
		return nil, fmt.Errorf("accept offer: %w", err)
	}
	rejected, err := s.Offers.RejectPendingSiblingsTx(ctx, tx, offer.ProjectID, offer.ID)
	if err != nil {
		return nil, fmt.Errorf("reject sibling offers: %w", err)
	}
	if err := s.Projects.SetInProgressTx(ctx, tx, offer.ProjectID); err != nil {
		return nil, fmt.Errorf("move project to in_progress: %w", err)
	}
	if err := s.Matches.SettleTx(ctx, tx, offer.ProjectID, offer.ContractorID); err != nil {
		return nil, fmt.Errorf("settle matches: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit accept tx: %w", err)
	}

	offer.Status = models.OfferStatusAccepted
	s.Sink.Notify(ctx, notify.Event{
		Kind:         notify.EventOfferAccepted,
		ProjectID:    offer.ProjectID,
		ContractorID: offer.ContractorID,
		CustomerID:   project.CustomerID,
		OfferID:      offer.ID,
	})
	for _, id := range rejected {
		s.Logger.Info("offer rejected alongside accept", "offer_id", id, "project_id", offer.ProjectID)
	}
	return offer, nil
}

// Reject marks a single pending offer rejected. The project stays open.
func (s *Service) Reject(ctx context.Context, customerID, offerID uuid.UUID) (*models.Offer, error) {
	offer, project, err := s.loadForDecision(ctx, customerID, offerID)
	if err != nil {
		return nil, err
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin reject tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.Offers.UpdateStatusTx(ctx, tx, offer.ID, models.OfferStatusRejected); err != nil {
		return nil, fmt.Errorf("reject offer: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit reject tx: %w", err)
	}

	offer.Status = models.OfferStatusRejected
	s.Sink.Notify(ctx, notify.Event{
		Kind:         notify.EventOfferRejected,
		ProjectID:    offer.ProjectID,
		ContractorID: offer.ContractorID,
		CustomerID:   project.CustomerID,
		OfferID:      offer.ID,
	})
	return offer, nil
}

// loadForDecision fetches the offer and its project and enforces the shared
// accept/reject preconditions: caller owns the project, project still open,
// offer effectively pending.
func (s *Service) loadForDecision(ctx context.Context, customerID, offerID uuid.UUID) (*models.Offer, *models.Project, error) {
	offer, err := s.Offers.GetByID(ctx, offerID)
	if err != nil {
		return nil, nil, err
	}
	project, err := s.Projects.GetByID(ctx, offer.ProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("load project for offer: %w", err)
	}
	if project.CustomerID != customerID {
		return nil, nil, ErrForbidden
	}
	if project.Status != models.ProjectStatusOpen {
		return nil, nil, ErrInvalidState
	}
	if offer.EffectiveStatus(time.Now()) != models.OfferStatusPending {
		return nil, nil, ErrInvalidState
	}
	return offer, project, nil
}

// ListForProject returns a project's offers for its owner, with expiry
// applied to each status.
func (s *Service) ListForProject(ctx context.Context, customerID, projectID uuid.UUID) ([]*models.Offer, error) {
	project, err := s.Projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.CustomerID != customerID {
		return nil, ErrForbidden
	}
	offers, err := s.Offers.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	applyExpiry(offers)
	return offers, nil
}

// ListForContractor returns the contractor's own offers with expiry applied.
func (s *Service) ListForContractor(ctx context.Context, contractorID uuid.UUID) ([]*models.Offer, error) {
	offers, err := s.Offers.ListByContractor(ctx, contractorID)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	applyExpiry(offers)
	return offers, nil
}

func applyExpiry(offers []*models.Offer) {
	now := time.Now()
	for _, o := range offers {
		o.Status = o.EffectiveStatus(now)
	}
}
