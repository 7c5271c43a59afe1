package offers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/models"
)

// Repository is the pgx-backed offer store.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

const offerColumns = `id, project_id, contractor_id, amount_cents, message, status, valid_until, created_at, updated_at`

// Upsert inserts the offer or, when the (project_id, contractor_id) pair
// already has one, overwrites its amount, message, and validity and resets it
// to pending. The stored row is returned either way.
func (r *Repository) Upsert(ctx context.Context, o *models.Offer) (*models.Offer, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO offers (id, project_id, contractor_id, amount_cents, message, status, valid_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (project_id, contractor_id) DO UPDATE SET
			amount_cents = EXCLUDED.amount_cents,
			message = EXCLUDED.message,
			status = EXCLUDED.status,
			valid_until = EXCLUDED.valid_until,
			updated_at = now()
		RETURNING `+offerColumns,
		o.ID, o.ProjectID, o.ContractorID, o.AmountCents, o.Message, o.Status, o.ValidUntil)
	return scanOffer(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1`, id)
	return scanOffer(row)
}

func (r *Repository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Offer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+offerColumns+` FROM offers
		WHERE project_id = $1
		ORDER BY created_at DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query offers by project: %w", err)
	}
	defer rows.Close()
	return scanOffers(rows)
}

func (r *Repository) ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]*models.Offer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+offerColumns+` FROM offers
		WHERE contractor_id = $1
		ORDER BY created_at DESC`, contractorID)
	if err != nil {
		return nil, fmt.Errorf("query offers by contractor: %w", err)
	}
	defer rows.Close()
	return scanOffers(rows)
}

func (r *Repository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string) error {
	tag, err := tx.Exec(ctx, `UPDATE offers SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update offer status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// RejectPendingSiblingsTx rejects every other pending offer on the project
// and returns their ids.
func (r *Repository) RejectPendingSiblingsTx(ctx context.Context, tx pgx.Tx, projectID, acceptedID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := tx.Query(ctx, `
		UPDATE offers SET status = $1, updated_at = now()
		WHERE project_id = $2 AND id <> $3 AND status = $4
		RETURNING id`,
		models.OfferStatusRejected, projectID, acceptedID, models.OfferStatusPending)
	if err != nil {
		return nil, fmt.Errorf("reject sibling offers: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan rejected offer id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanOffer(row pgx.Row) (*models.Offer, error) {
	var o models.Offer
	err := row.Scan(&o.ID, &o.ProjectID, &o.ContractorID, &o.AmountCents, &o.Message,
		&o.Status, &o.ValidUntil, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanOffers(rows pgx.Rows) ([]*models.Offer, error) {
	var out []*models.Offer
	for rows.Next() {
		var o models.Offer
		if err := rows.Scan(&o.ID, &o.ProjectID, &o.ContractorID, &o.AmountCents, &o.Message,
			&o.Status, &o.ValidUntil, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}
