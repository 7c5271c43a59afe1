package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/models"
)

type ContractorRepo struct {
	pool *pgxpool.Pool
}

func NewContractorRepo(pool *pgxpool.Pool) *ContractorRepo {
	return &ContractorRepo{pool: pool}
}

const contractorColumns = `id, account_id, company_name, trade_ids, postal_code, service_radius_km, min_project_cents, wallet_balance_cents, quality_score, accepts_urgent, is_verified, created_at, updated_at`

func (r *ContractorRepo) Create(ctx context.Context, c *models.Contractor) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO contractors (id, account_id, company_name, trade_ids, postal_code, service_radius_km, min_project_cents, wallet_balance_cents, quality_score, accepts_urgent, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, c.ID, c.AccountID, c.CompanyName, c.TradeIDs, c.PostalCode, c.ServiceRadiusKM, c.MinProjectCents, c.WalletBalanceCents, c.QualityScore, c.AcceptsUrgent, c.IsVerified).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *ContractorRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Contractor, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+contractorColumns+` FROM contractors WHERE id = $1`, id)
	return scanContractor(row)
}

func (r *ContractorRepo) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*models.Contractor, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+contractorColumns+` FROM contractors WHERE account_id = $1`, accountID)
	return scanContractor(row)
}

func (r *ContractorRepo) ListByTrade(ctx context.Context, tradeID string) ([]*models.Contractor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+contractorColumns+` FROM contractors
		WHERE $1 = ANY(trade_ids)
		ORDER BY created_at
	`, tradeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Contractor
	for rows.Next() {
		var c models.Contractor
		if err := rows.Scan(&c.ID, &c.AccountID, &c.CompanyName, &c.TradeIDs, &c.PostalCode, &c.ServiceRadiusKM, &c.MinProjectCents, &c.WalletBalanceCents, &c.QualityScore, &c.AcceptsUrgent, &c.IsVerified, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// UpdateProfile writes the matching-relevant profile fields. The wallet
// balance is owned by the ledger and never written here.
func (r *ContractorRepo) UpdateProfile(ctx context.Context, c *models.Contractor) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE contractors SET company_name = $2, trade_ids = $3, postal_code = $4, service_radius_km = $5, min_project_cents = $6, accepts_urgent = $7, updated_at = now()
		WHERE id = $1
	`, c.ID, c.CompanyName, c.TradeIDs, c.PostalCode, c.ServiceRadiusKM, c.MinProjectCents, c.AcceptsUrgent)
	return err
}

func scanContractor(row pgx.Row) (*models.Contractor, error) {
	var c models.Contractor
	err := row.Scan(&c.ID, &c.AccountID, &c.CompanyName, &c.TradeIDs, &c.PostalCode, &c.ServiceRadiusKM, &c.MinProjectCents, &c.WalletBalanceCents, &c.QualityScore, &c.AcceptsUrgent, &c.IsVerified, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
