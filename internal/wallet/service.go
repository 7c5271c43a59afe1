// Package wallet implements the contractor wallet ledger: an append-only
// transaction log plus a cached balance projection on the contractor row.
// The ledger is the source of truth; the newest entry's balance_after must
// always equal the cached balance.
package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/models"
)

// ErrInsufficientFunds is returned when a debit exceeds the wallet balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Result is the outcome of a ledger operation. AlreadyProcessed means an
// entry with the same (contractor, reference) already existed; the stored
// balance_after is returned and nothing was mutated.
type Result struct {
	BalanceAfterCents int64
	AlreadyProcessed  bool
}

// Store is the persistence interface the ledger needs. InsertEntry must be a
// conditional write on the (contractor_id, reference) unique constraint and
// report whether the row landed — idempotency is enforced at the storage
// layer, not by a read-then-write check.
type Store interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	GetBalanceForUpdate(ctx context.Context, tx pgx.Tx, contractorID uuid.UUID) (int64, error)
	InsertEntry(ctx context.Context, tx pgx.Tx, e *models.WalletTransaction) (inserted bool, err error)
	FindByReference(ctx context.Context, tx pgx.Tx, contractorID uuid.UUID, reference string) (*models.WalletTransaction, error)
	SetBalance(ctx context.Context, tx pgx.Tx, contractorID uuid.UUID, balanceCents int64) error
	ListByContractor(ctx context.Context, contractorID uuid.UUID, limit int) ([]*models.WalletTransaction, error)
}

// Service applies credits and debits exactly once per reference.
type Service struct {
	store Store
}

// NewService returns a wallet Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Credit increases the wallet balance in its own transaction.
func (s *Service) Credit(ctx context.Context, contractorID uuid.UUID, amountCents int64, entryType, reference, description string) (Result, error) {
	return s.inTx(ctx, func(tx pgx.Tx) (Result, error) {
		return s.CreditTx(ctx, tx, contractorID, amountCents, entryType, reference, description)
	})
}

// Debit decreases the wallet balance in its own transaction. Fails with
// ErrInsufficientFunds when the balance cannot cover the amount.
func (s *Service) Debit(ctx context.Context, contractorID uuid.UUID, amountCents int64, entryType, reference, description string) (Result, error) {
	return s.inTx(ctx, func(tx pgx.Tx) (Result, error) {
		return s.DebitTx(ctx, tx, contractorID, amountCents, entryType, reference, description)
	})
}

// CreditTx is Credit running inside the caller's transaction, for callers
// that need the ledger entry atomic with their own writes (payment
// reconciliation, promo usage counters).
func (s *Service) CreditTx(ctx context.Context, tx pgx.Tx, contractorID uuid.UUID, amountCents int64, entryType, reference, description string) (Result, error) {
	if amountCents <= 0 {
		return Result{}, fmt.Errorf("credit amount must be positive, got %d", amountCents)
	}
	return s.apply(ctx, tx, contractorID, amountCents, entryType, reference, description)
}

// DebitTx is Debit running inside the caller's transaction.
func (s *Service) DebitTx(ctx context.Context, tx pgx.Tx, contractorID uuid.UUID, amountCents int64, entryType, reference, description string) (Result, error) {
	if amountCents <= 0 {
		return Result{}, fmt.Errorf("debit amount must be positive, got %d", amountCents)
	}
	return s.apply(ctx, tx, contractorID, -amountCents, entryType, reference, description)
}

// ListTransactions returns the contractor's ledger tail, newest first.
func (s *Service) ListTransactions(ctx context.Context, contractorID uuid.UUID, limit int) ([]*models.WalletTransaction, error) {
	return s.store.ListByContractor(ctx, contractorID, limit)
}

// apply locks the contractor row (serializing all ledger operations for that
// contractor), then inserts the entry and updates the cached balance as one
// atomic unit. A conflicting reference returns the previously stored
// balance_after as a confirmed no-op.
func (s *Service) apply(ctx context.Context, tx pgx.Tx, contractorID uuid.UUID, deltaCents int64, entryType, reference, description string) (Result, error) {
	balance, err := s.store.GetBalanceForUpdate(ctx, tx, contractorID)
	if err != nil {
		return Result{}, fmt.Errorf("lock wallet balance: %w", err)
	}

	newBalance := balance + deltaCents
	if newBalance < 0 {
		return Result{}, ErrInsufficientFunds
	}

	entry := &models.WalletTransaction{
		ID:                uuid.New(),
		ContractorID:      contractorID,
		EntryType:         entryType,
		AmountCents:       deltaCents,
		BalanceAfterCents: newBalance,
		Reference:         reference,
		Description:       description,
	}
	inserted, err := s.store.InsertEntry(ctx, tx, entry)
	if err != nil {
		return Result{}, fmt.Errorf("insert ledger entry: %w", err)
	}
	if !inserted {
		prev, err := s.store.FindByReference(ctx, tx, contractorID, reference)
		if err != nil {
			return Result{}, fmt.Errorf("load existing ledger entry: %w", err)
		}
		return Result{BalanceAfterCents: prev.BalanceAfterCents, AlreadyProcessed: true}, nil
	}

	if err := s.store.SetBalance(ctx, tx, contractorID, newBalance); err != nil {
		return Result{}, fmt.Errorf("update wallet balance: %w", err)
	}
	return Result{BalanceAfterCents: newBalance}, nil
}

func (s *Service) inTx(ctx context.Context, fn func(tx pgx.Tx) (Result, error)) (Result, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("begin wallet tx: %w", err)
	}
	defer tx.Rollback(ctx)

	res, err := fn(tx)
	if err != nil {
		return Result{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Result{}, fmt.Errorf("commit wallet tx: %w", err)
	}
	return res, nil
}
