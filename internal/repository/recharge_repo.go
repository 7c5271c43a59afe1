package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/models"
)

type RechargeRepo struct {
	pool *pgxpool.Pool
}

func NewRechargeRepo(pool *pgxpool.Pool) *RechargeRepo {
	return &RechargeRepo{pool: pool}
}

const rechargeColumns = `id, contractor_id, amount_cents, payable_cents, promo_code, session_id, status, resolved_at, created_at`

func (r *RechargeRepo) Create(ctx context.Context, w *models.WalletRecharge) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO wallet_recharges (id, contractor_id, amount_cents, payable_cents, promo_code, session_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, w.ID, w.ContractorID, w.AmountCents, w.PayableCents, w.PromoCode, w.SessionID, w.Status).Scan(&w.CreatedAt)
}

func (r *RechargeRepo) GetBySession(ctx context.Context, sessionID string) (*models.WalletRecharge, error) {
	var w models.WalletRecharge
	err := r.pool.QueryRow(ctx, `
		SELECT `+rechargeColumns+` FROM wallet_recharges WHERE session_id = $1
	`, sessionID).Scan(&w.ID, &w.ContractorID, &w.AmountCents, &w.PayableCents, &w.PromoCode, &w.SessionID, &w.Status, &w.ResolvedAt, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *RechargeRepo) MarkResolvedTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string) error {
	_, err := tx.Exec(ctx, `
		UPDATE wallet_recharges SET status = $1, resolved_at = now() WHERE id = $2
	`, status, id)
	return err
}

// MarkFailed only moves a still-pending recharge; late failure signals after
// a successful credit are ignored.
func (r *RechargeRepo) MarkFailed(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE wallet_recharges SET status = $1, resolved_at = now()
		WHERE id = $2 AND status = $3
	`, models.RechargeStatusFailed, id, models.RechargeStatusPending)
	return err
}

func (r *RechargeRepo) ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]*models.WalletRecharge, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+rechargeColumns+` FROM wallet_recharges
		WHERE contractor_id = $1 ORDER BY created_at DESC
	`, contractorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.WalletRecharge
	for rows.Next() {
		var w models.WalletRecharge
		if err := rows.Scan(&w.ID, &w.ContractorID, &w.AmountCents, &w.PayableCents, &w.PromoCode, &w.SessionID, &w.Status, &w.ResolvedAt, &w.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}
