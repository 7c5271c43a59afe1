package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/models"
)

// Repository is the pgx-backed wallet store. Idempotency rides on the
// wallet_transactions unique index on (contractor_id, reference).
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// GetBalanceForUpdate locks the contractor row. All ledger operations for a
// contractor serialize on this lock.
func (r *Repository) GetBalanceForUpdate(ctx context.Context, tx pgx.Tx, contractorID uuid.UUID) (int64, error) {
	var balance int64
	err := tx.QueryRow(ctx, `
		SELECT wallet_balance_cents FROM contractors WHERE id = $1 FOR UPDATE
	`, contractorID).Scan(&balance)
	return balance, err
}

// InsertEntry appends a ledger entry. A conflicting (contractor_id,
// reference) pair inserts nothing and returns inserted=false.
func (r *Repository) InsertEntry(ctx context.Context, tx pgx.Tx, e *models.WalletTransaction) (bool, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO wallet_transactions (id, contractor_id, entry_type, amount_cents, balance_after_cents, reference, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (contractor_id, reference) DO NOTHING
	`, e.ID, e.ContractorID, e.EntryType, e.AmountCents, e.BalanceAfterCents, e.Reference, e.Description)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) FindByReference(ctx context.Context, tx pgx.Tx, contractorID uuid.UUID, reference string) (*models.WalletTransaction, error) {
	var e models.WalletTransaction
	err := tx.QueryRow(ctx, `
		SELECT id, contractor_id, entry_type, amount_cents, balance_after_cents, reference, description, created_at
		FROM wallet_transactions WHERE contractor_id = $1 AND reference = $2
	`, contractorID, reference).Scan(&e.ID, &e.ContractorID, &e.EntryType, &e.AmountCents, &e.BalanceAfterCents, &e.Reference, &e.Description, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repository) SetBalance(ctx context.Context, tx pgx.Tx, contractorID uuid.UUID, balanceCents int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE contractors SET wallet_balance_cents = $2, updated_at = now() WHERE id = $1
	`, contractorID, balanceCents)
	return err
}

func (r *Repository) ListByContractor(ctx context.Context, contractorID uuid.UUID, limit int) ([]*models.WalletTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, contractor_id, entry_type, amount_cents, balance_after_cents, reference, description, created_at
		FROM wallet_transactions WHERE contractor_id = $1 ORDER BY created_at DESC LIMIT $2
	`, contractorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.WalletTransaction
	for rows.Next() {
		var e models.WalletTransaction
		if err := rows.Scan(&e.ID, &e.ContractorID, &e.EntryType, &e.AmountCents, &e.BalanceAfterCents, &e.Reference, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
