// Package leads sells project contact details to matched contractors. A
// purchase debits the wallet and flips the match's lead_purchased flag in one
// transaction, keyed so that retries never charge twice.
package leads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/models"
	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/notify"
	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/wallet"
)

var (
	// ErrNotMatched is returned when a contractor tries to buy a lead for a
	// project it was never matched with.
	ErrNotMatched = errors.New("no match for this contractor and project")

	// ErrNotOpen is returned when buying a lead on a project that is no
	// longer open.
	ErrNotOpen = errors.New("project is not open")
)

// Purchase is the outcome of a lead purchase.
type Purchase struct {
	Match             *models.Match
	BalanceAfterCents int64
	AlreadyPurchased  bool
}

// MatchStore reads and marks the match rows gating lead access.
type MatchStore interface {
	GetByPair(ctx context.Context, projectID, contractorID uuid.UUID) (*models.Match, error)
	MarkLeadPurchasedTx(ctx context.Context, tx pgx.Tx, projectID, contractorID uuid.UUID) error
}

// ProjectStore resolves the project carrying the lead price.
type ProjectStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

// Wallet is the ledger slice the purchase flow needs.
type Wallet interface {
	DebitTx(ctx context.Context, tx pgx.Tx, contractorID uuid.UUID, amountCents int64, entryType, reference, description string) (wallet.Result, error)
	CreditTx(ctx context.Context, tx pgx.Tx, contractorID uuid.UUID, amountCents int64, entryType, reference, description string) (wallet.Result, error)
}

// TxBeginner opens the purchase transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Notifier is the fire-and-forget notification sink.
type Notifier interface {
	Notify(ctx context.Context, e notify.Event)
}

// Service implements lead purchase and refund.
type Service struct {
	Pool     TxBeginner
	Matches  MatchStore
	Projects ProjectStore
	Wallet   Wallet
	Sink     Notifier
	Logger   *slog.Logger
}

// NewService returns a Service.
func NewService(pool TxBeginner, matches MatchStore, projects ProjectStore, w Wallet, sink Notifier, logger *slog.Logger) *Service {
	return &Service{
		Pool:     pool,
		Matches:  matches,
		Projects: projects,
		Wallet:   w,
		Sink:     sink,
		Logger:   logger,
	}
}

// purchaseReference is the idempotency key for a lead purchase. One key per
// (project, contractor) pair means a retried purchase debits at most once.
func purchaseReference(projectID, contractorID uuid.UUID) string {
	return fmt.Sprintf("lead:%s:%s", projectID, contractorID)
}

// PurchaseLead charges the project's lead price against the contractor's
// wallet and unlocks the lead. The project must still be open; insufficient
// balance surfaces as wallet.ErrInsufficientFunds with no state change.
// Buying an already bought lead is a confirmed no-op.
func (s *Service) PurchaseLead(ctx context.Context, contractorID, projectID uuid.UUID) (*Purchase, error) {
	match, err := s.Matches.GetByPair(ctx, projectID, contractorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotMatched
		}
		return nil, fmt.Errorf("look up match: %w", err)
	}
	if match.LeadPurchased {
		return &Purchase{Match: match, AlreadyPurchased: true}, nil
	}

	project, err := s.Projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if project.Status != models.ProjectStatusOpen {
		return nil, ErrNotOpen
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin purchase tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var res wallet.Result
	if project.FinalPriceCents > 0 {
		res, err = s.Wallet.DebitTx(ctx, tx, contractorID, project.FinalPriceCents,
			models.WalletEntryLeadPurchase, purchaseReference(projectID, contractorID),
			fmt.Sprintf("lead purchase: %s", project.Title))
		if err != nil {
			return nil, err
		}
	}
	// The mark is an idempotent update, so it is safe even when the debit
	// turned out to be a replay.
	if err := s.Matches.MarkLeadPurchasedTx(ctx, tx, projectID, contractorID); err != nil {
		return nil, fmt.Errorf("mark lead purchased: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase tx: %w", err)
	}

	if !res.AlreadyProcessed {
		s.Sink.Notify(ctx, notify.Event{
			Kind:         notify.EventLeadPurchased,
			ProjectID:    projectID,
			ContractorID: contractorID,
			CustomerID:   project.CustomerID,
			AmountCents:  project.FinalPriceCents,
		})
	}

	updated, err := s.Matches.GetByPair(ctx, projectID, contractorID)
	if err != nil {
		return nil, fmt.Errorf("reload match: %w", err)
	}
	return &Purchase{
		Match:             updated,
		BalanceAfterCents: res.BalanceAfterCents,
		AlreadyPurchased:  res.AlreadyProcessed,
	}, nil
}

// RefundLead returns the lead price to the contractor's wallet, for support
// flows where the lead turned out to be bogus. The refund reference mirrors
// the purchase reference, so a lead can be refunded at most once. The
// purchase flag stays set; the contractor has already seen the contact data.
func (s *Service) RefundLead(ctx context.Context, contractorID, projectID uuid.UUID) (*wallet.Result, error) {
	match, err := s.Matches.GetByPair(ctx, projectID, contractorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotMatched
		}
		return nil, fmt.Errorf("look up match: %w", err)
	}
	if !match.LeadPurchased {
		return nil, fmt.Errorf("lead for project %s was never purchased", projectID)
	}

	project, err := s.Projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if project.FinalPriceCents <= 0 {
		return &wallet.Result{AlreadyProcessed: true}, nil
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin refund tx: %w", err)
	}
	defer tx.Rollback(ctx)

	res, err := s.Wallet.CreditTx(ctx, tx, contractorID, project.FinalPriceCents,
		models.WalletEntryRefund, "refund:"+purchaseReference(projectID, contractorID),
		fmt.Sprintf("lead refund: %s", project.Title))
	if err != nil {
		return nil, fmt.Errorf("credit refund: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit refund tx: %w", err)
	}

	if res.AlreadyProcessed {
		s.Logger.Info("refund replayed, no-op", "project_id", projectID, "contractor_id", contractorID)
	}
	return &res, nil
}
