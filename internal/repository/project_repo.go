package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/models"
)

type ProjectRepo struct {
	pool *pgxpool.Pool
}

func NewProjectRepo(pool *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{pool: pool}
}

const projectColumns = `id, customer_id, trade_id, title, description, postal_code, city, urgency, budget_min_cents, budget_max_cents, estimated_cents, final_price_cents, status, visibility, created_at, updated_at`

func (r *ProjectRepo) Create(ctx context.Context, p *models.Project) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO projects (id, customer_id, trade_id, title, description, postal_code, city, urgency, budget_min_cents, budget_max_cents, estimated_cents, final_price_cents, status, visibility)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`, p.ID, p.CustomerID, p.TradeID, p.Title, p.Description, p.PostalCode, p.City, p.Urgency, p.BudgetMinCents, p.BudgetMaxCents, p.EstimatedCents, p.FinalPriceCents, p.Status, p.Visibility).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *ProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	return scanProject(row)
}

func (r *ProjectRepo) GetOpenPublicProjects(ctx context.Context, tradeIDs []string) ([]*models.Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE status = $1 AND visibility = $2 AND trade_id = ANY($3)
		ORDER BY created_at DESC
	`, models.ProjectStatusOpen, models.ProjectVisibilityPublic, tradeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjects(rows)
}

func (r *ProjectRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*models.Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE customer_id = $1 ORDER BY created_at DESC
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjects(rows)
}

func (r *ProjectRepo) SetInProgressTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `
		UPDATE projects SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
	`, models.ProjectStatusInProgress, id, models.ProjectStatusOpen)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdateStatus is the unconditional status write used by cancel/complete.
func (r *ProjectRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE projects SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.CustomerID, &p.TradeID, &p.Title, &p.Description, &p.PostalCode, &p.City, &p.Urgency, &p.BudgetMinCents, &p.BudgetMaxCents, &p.EstimatedCents, &p.FinalPriceCents, &p.Status, &p.Visibility, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProjects(rows pgx.Rows) ([]*models.Project, error) {
	var list []*models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.CustomerID, &p.TradeID, &p.Title, &p.Description, &p.PostalCode, &p.City, &p.Urgency, &p.BudgetMinCents, &p.BudgetMaxCents, &p.EstimatedCents, &p.FinalPriceCents, &p.Status, &p.Visibility, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
