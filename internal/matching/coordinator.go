package matching

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/models"
	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/notify"
)

// ContractorSource lists contractors for a trade.
type ContractorSource interface {
	ListByTrade(ctx context.Context, tradeID string) ([]*models.Contractor, error)
}

// ProjectSource lists open public projects for a set of trades.
type ProjectSource interface {
	GetOpenPublicProjects(ctx context.Context, tradeIDs []string) ([]*models.Project, error)
}

// MatchStore persists match rows. InsertBatch must insert atomically and
// treat conflicting (project_id, contractor_id) pairs as no-ops, returning
// only the rows actually inserted.
type MatchStore interface {
	Exists(ctx context.Context, projectID, contractorID uuid.UUID) (bool, error)
	InsertBatch(ctx context.Context, matches []*models.Match) ([]*models.Match, error)
}

// Notifier is the fire-and-forget notification sink.
type Notifier interface {
	Notify(ctx context.Context, e notify.Event)
}

// Coordinator orchestrates resolve → filter → score → persist for both entry
// points: a newly opened project and an on-demand contractor backfill. Both
// are idempotent; re-running never duplicates match rows.
type Coordinator struct {
	Contractors ContractorSource
	Projects    ProjectSource
	Matches     MatchStore
	Filter      *Filter
	Sink        Notifier
	Logger      *slog.Logger
}

// NewCoordinator returns a Coordinator.
func NewCoordinator(contractors ContractorSource, projects ProjectSource, matches MatchStore, filter *Filter, sink Notifier, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		Contractors: contractors,
		Projects:    projects,
		Matches:     matches,
		Filter:      filter,
		Sink:        sink,
		Logger:      logger,
	}
}

// MatchProject evaluates a newly opened project against every contractor in
// its trade and persists one match row per eligible contractor. Returns the
// number of match rows created.
func (co *Coordinator) MatchProject(ctx context.Context, p *models.Project) (int, error) {
	contractors, err := co.Contractors.ListByTrade(ctx, p.TradeID)
	if err != nil {
		return 0, fmt.Errorf("list contractors for trade %s: %w", p.TradeID, err)
	}

	var batch []*models.Match
	for _, c := range contractors {
		out := co.Filter.Evaluate(c, p, false)
		if !out.Eligible {
			co.Logger.Debug("contractor excluded",
				"project_id", p.ID, "contractor_id", c.ID, "reason", out.Reason)
			continue
		}
		batch = append(batch, newMatch(p, c, out.DistanceKM))
	}
	if len(batch) == 0 {
		return 0, nil
	}

	inserted, err := co.Matches.InsertBatch(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("insert match batch: %w", err)
	}

	// Only freshly inserted pairs get notified; a re-run whose inserts all
	// conflicted stays silent.
	for _, m := range inserted {
		co.Sink.Notify(ctx, notify.Event{
			Kind:         notify.EventProjectMatched,
			ProjectID:    m.ProjectID,
			ContractorID: m.ContractorID,
		})
	}
	return len(inserted), nil
}

// BackfillContractor evaluates one contractor against all currently open and
// public projects in its trades, skipping projects it is already matched to.
// Returns the number of match rows created.
func (co *Coordinator) BackfillContractor(ctx context.Context, c *models.Contractor) (int, error) {
	if len(c.TradeIDs) == 0 {
		return 0, nil
	}
	projects, err := co.Projects.GetOpenPublicProjects(ctx, c.TradeIDs)
	if err != nil {
		return 0, fmt.Errorf("list open projects: %w", err)
	}

	var batch []*models.Match
	for _, p := range projects {
		exists, err := co.Matches.Exists(ctx, p.ID, c.ID)
		if err != nil {
			return 0, fmt.Errorf("check existing match: %w", err)
		}
		out := co.Filter.Evaluate(c, p, exists)
		if !out.Eligible {
			co.Logger.Debug("project excluded from backfill",
				"project_id", p.ID, "contractor_id", c.ID, "reason", out.Reason)
			continue
		}
		batch = append(batch, newMatch(p, c, out.DistanceKM))
	}
	if len(batch) == 0 {
		return 0, nil
	}

	inserted, err := co.Matches.InsertBatch(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("insert backfill batch: %w", err)
	}
	return len(inserted), nil
}

func newMatch(p *models.Project, c *models.Contractor, distanceKM float64) *models.Match {
	return &models.Match{
		ID:           uuid.New(),
		ProjectID:    p.ID,
		ContractorID: c.ID,
		Score:        Score(c, p, distanceKM),
		Type:         models.MatchTypeSuggested,
		Status:       models.MatchStatusPending,
	}
}
