package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/models"
)

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

const matchColumns = `id, project_id, contractor_id, score, type, status, lead_purchased, purchased_at, created_at`

func (r *MatchRepo) Exists(ctx context.Context, projectID, contractorID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM matches WHERE project_id = $1 AND contractor_id = $2)
	`, projectID, contractorID).Scan(&exists)
	return exists, err
}

// InsertBatch inserts the batch in one transaction. The unique
// (project_id, contractor_id) index turns concurrent duplicate attempts into
// no-ops; the returned slice holds only rows actually inserted.
func (r *MatchRepo) InsertBatch(ctx context.Context, matches []*models.Match) ([]*models.Match, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var inserted []*models.Match
	for _, m := range matches {
		tag, err := tx.Exec(ctx, `
			INSERT INTO matches (id, project_id, contractor_id, score, type, status, lead_purchased)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (project_id, contractor_id) DO NOTHING
		`, m.ID, m.ProjectID, m.ContractorID, m.Score, m.Type, m.Status, m.LeadPurchased)
		if err != nil {
			return nil, err
		}
		if tag.RowsAffected() > 0 {
			inserted = append(inserted, m)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return inserted, nil
}

func (r *MatchRepo) GetByPair(ctx context.Context, projectID, contractorID uuid.UUID) (*models.Match, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+matchColumns+` FROM matches WHERE project_id = $1 AND contractor_id = $2
	`, projectID, contractorID)
	return scanMatch(row)
}

func (r *MatchRepo) MarkLeadPurchasedTx(ctx context.Context, tx pgx.Tx, projectID, contractorID uuid.UUID) error {
	tag, err := tx.Exec(ctx, `
		UPDATE matches SET lead_purchased = TRUE, purchased_at = COALESCE(purchased_at, now())
		WHERE project_id = $1 AND contractor_id = $2
	`, projectID, contractorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SettleTx records the offer outcome on the match rows of a project: the
// winning contractor's match moves to accepted, everyone else's to lost.
func (r *MatchRepo) SettleTx(ctx context.Context, tx pgx.Tx, projectID, winnerContractorID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `
		UPDATE matches SET status = $1 WHERE project_id = $2 AND contractor_id = $3
	`, models.MatchStatusAccepted, projectID, winnerContractorID); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `
		UPDATE matches SET status = $1 WHERE project_id = $2 AND contractor_id <> $3 AND status = $4
	`, models.MatchStatusLost, projectID, winnerContractorID, models.MatchStatusPending)
	return err
}

func (r *MatchRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Match, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+matchColumns+` FROM matches WHERE project_id = $1 ORDER BY score DESC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMatches(rows)
}

func (r *MatchRepo) ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]*models.Match, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+matchColumns+` FROM matches WHERE contractor_id = $1 ORDER BY created_at DESC
	`, contractorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMatches(rows)
}

func scanMatch(row pgx.Row) (*models.Match, error) {
	var m models.Match
	err := row.Scan(&m.ID, &m.ProjectID, &m.ContractorID, &m.Score, &m.Type, &m.Status, &m.LeadPurchased, &m.PurchasedAt, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanMatches(rows pgx.Rows) ([]*models.Match, error) {
	var list []*models.Match
	for rows.Next() {
		var m models.Match
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.ContractorID, &m.Score, &m.Type, &m.Status, &m.LeadPurchased, &m.PurchasedAt, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
