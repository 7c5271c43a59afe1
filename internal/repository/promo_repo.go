package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/models"
)

type PromoRepo struct {
	pool *pgxpool.Pool
}

func NewPromoRepo(pool *pgxpool.Pool) *PromoRepo {
	return &PromoRepo{pool: pool}
}

func (r *PromoRepo) Create(ctx context.Context, p *models.PromoCode) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO promo_codes (id, code, discount_type, discount_value, active, valid_from, valid_until, usage_cap)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, p.ID, p.Code, p.DiscountType, p.DiscountValue, p.Active, p.ValidFrom, p.ValidUntil, p.UsageCap).Scan(&p.CreatedAt)
}

func (r *PromoRepo) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var p models.PromoCode
	err := r.pool.QueryRow(ctx, `
		SELECT id, code, discount_type, discount_value, active, valid_from, valid_until, usage_cap, used_count, created_at
		FROM promo_codes WHERE code = $1
	`, code).Scan(&p.ID, &p.Code, &p.DiscountType, &p.DiscountValue, &p.Active, &p.ValidFrom, &p.ValidUntil, &p.UsageCap, &p.UsedCount, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// IncrementUsageTx bumps used_count inside the recharge transaction, so the
// consumption commits or rolls back together with the ledger credit.
func (r *PromoRepo) IncrementUsageTx(ctx context.Context, tx pgx.Tx, code string) error {
	tag, err := tx.Exec(ctx, `UPDATE promo_codes SET used_count = used_count + 1 WHERE code = $1`, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
