package matching

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/models"
	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/notify"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockContractors struct {
	byTrade map[string][]*models.Contractor
}

func (m *mockContractors) ListByTrade(_ context.Context, tradeID string) ([]*models.Contractor, error) {
	return m.byTrade[tradeID], nil
}

type mockProjects struct {
	open []*models.Project
}

func (m *mockProjects) GetOpenPublicProjects(_ context.Context, tradeIDs []string) ([]*models.Project, error) {
	var out []*models.Project
	for _, p := range m.open {
		for _, t := range tradeIDs {
			if p.TradeID == t {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

type matchPair struct{ projectID, contractorID uuid.UUID }

// mockMatchStore enforces the (project_id, contractor_id) uniqueness the real
// table provides: conflicting inserts are counted as no-ops.
type mockMatchStore struct {
	mu   sync.Mutex
	rows map[matchPair]*models.Match
}

func newMockMatchStore() *mockMatchStore {
	return &mockMatchStore{rows: make(map[matchPair]*models.Match)}
}

func (m *mockMatchStore) Exists(_ context.Context, projectID, contractorID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[matchPair{projectID, contractorID}]
	return ok, nil
}

func (m *mockMatchStore) InsertBatch(_ context.Context, matches []*models.Match) ([]*models.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var inserted []*models.Match
	for _, match := range matches {
		k := matchPair{match.ProjectID, match.ContractorID}
		if _, exists := m.rows[k]; exists {
			continue
		}
		cp := *match
		m.rows[k] = &cp
		inserted = append(inserted, match)
	}
	return inserted, nil
}

type mockSink struct {
	mu     sync.Mutex
	events []notify.Event
}

func (m *mockSink) Notify(_ context.Context, e notify.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

func newTestCoordinator(contractors *mockContractors, projects *mockProjects, store *mockMatchStore, sink *mockSink) *Coordinator {
	return NewCoordinator(contractors, projects, store, newTestFilter(), sink, slog.Default())
}

// ---------------------------------------------------------------------------
// On-open matching
// ---------------------------------------------------------------------------

func TestMatchProjectCreatesMatchRows(t *testing.T) {
	eligible1 := baseContractor()
	eligible2 := baseContractor()
	eligible2.ID = uuid.New()
	broke := baseContractor()
	broke.ID = uuid.New()
	broke.WalletBalanceCents = 0

	p := baseProject()
	contractors := &mockContractors{byTrade: map[string][]*models.Contractor{
		"electrician": {eligible1, eligible2, broke},
	}}
	store := newMockMatchStore()
	sink := &mockSink{}
	co := newTestCoordinator(contractors, &mockProjects{}, store, sink)

	created, err := co.MatchProject(context.Background(), p)
	if err != nil {
		t.Fatalf("MatchProject: %v", err)
	}
	if created != 2 {
		t.Errorf("matches created: got %d, want 2", created)
	}
	for _, m := range store.rows {
		if m.Status != models.MatchStatusPending || m.Type != models.MatchTypeSuggested {
			t.Errorf("new match should be pending/suggested: %+v", m)
		}
		if m.LeadPurchased {
			t.Errorf("new match must not have lead_purchased set: %+v", m)
		}
		if m.Score <= 0 {
			t.Errorf("same-region match should score well above zero: %+v", m)
		}
	}
	if len(sink.events) != 2 {
		t.Errorf("project.matched events: got %d, want 2", len(sink.events))
	}
	for _, e := range sink.events {
		if e.Kind != notify.EventProjectMatched {
			t.Errorf("unexpected event kind %s", e.Kind)
		}
	}
}

func TestMatchProjectIdempotent(t *testing.T) {
	c := baseContractor()
	p := baseProject()
	contractors := &mockContractors{byTrade: map[string][]*models.Contractor{"electrician": {c}}}
	store := newMockMatchStore()
	co := newTestCoordinator(contractors, &mockProjects{}, store, &mockSink{})

	ctx := context.Background()
	first, err := co.MatchProject(ctx, p)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := co.MatchProject(ctx, p)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if first != 1 || second != 0 {
		t.Errorf("created counts: got (%d, %d), want (1, 0)", first, second)
	}
	if len(store.rows) != 1 {
		t.Errorf("match rows after re-run: got %d, want 1", len(store.rows))
	}
}

func TestMatchProjectRerunNotifiesOnlyNewPairs(t *testing.T) {
	c1 := baseContractor()
	p := baseProject()
	contractors := &mockContractors{byTrade: map[string][]*models.Contractor{"electrician": {c1}}}
	store := newMockMatchStore()
	sink := &mockSink{}
	co := newTestCoordinator(contractors, &mockProjects{}, store, sink)

	ctx := context.Background()
	if _, err := co.MatchProject(ctx, p); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(sink.events) != 1 {
		t.Fatalf("events after first run: got %d, want 1", len(sink.events))
	}

	// A re-run with an additional contractor must notify that contractor
	// only; c1's conflicting insert stays silent.
	c2 := baseContractor()
	c2.ID = uuid.New()
	contractors.byTrade["electrician"] = append(contractors.byTrade["electrician"], c2)

	created, err := co.MatchProject(ctx, p)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if created != 1 {
		t.Errorf("second run created: got %d, want 1", created)
	}
	if len(sink.events) != 2 {
		t.Fatalf("events after re-run: got %d, want 2", len(sink.events))
	}
	if sink.events[1].ContractorID != c2.ID {
		t.Errorf("re-run notified wrong contractor: %s", sink.events[1].ContractorID)
	}
}

func TestMatchProjectNoEligibleContractors(t *testing.T) {
	p := baseProject()
	p.TradeID = "chimney_sweep"
	co := newTestCoordinator(&mockContractors{byTrade: map[string][]*models.Contractor{}}, &mockProjects{}, newMockMatchStore(), &mockSink{})

	created, err := co.MatchProject(context.Background(), p)
	if err != nil {
		t.Fatalf("MatchProject: %v", err)
	}
	if created != 0 {
		t.Errorf("created: got %d, want 0", created)
	}
}

// ---------------------------------------------------------------------------
// Contractor backfill
// ---------------------------------------------------------------------------

func TestBackfillSkipsExistingMatches(t *testing.T) {
	c := baseContractor()
	p1 := baseProject()
	p2 := baseProject()
	p2.ID = uuid.New()

	projects := &mockProjects{open: []*models.Project{p1, p2}}
	store := newMockMatchStore()
	// Pre-existing match for p1.
	if _, err := store.InsertBatch(context.Background(), []*models.Match{{
		ID: uuid.New(), ProjectID: p1.ID, ContractorID: c.ID,
		Status: models.MatchStatusPending, Type: models.MatchTypeSuggested,
	}}); err != nil {
		t.Fatalf("seed match: %v", err)
	}
	co := newTestCoordinator(&mockContractors{}, projects, store, &mockSink{})

	created, err := co.BackfillContractor(context.Background(), c)
	if err != nil {
		t.Fatalf("BackfillContractor: %v", err)
	}
	if created != 1 {
		t.Errorf("backfill created: got %d, want 1 (p2 only)", created)
	}
	if len(store.rows) != 2 {
		t.Errorf("total match rows: got %d, want 2", len(store.rows))
	}
}

func TestBackfillContractorWithoutTrades(t *testing.T) {
	c := baseContractor()
	c.TradeIDs = nil
	co := newTestCoordinator(&mockContractors{}, &mockProjects{}, newMockMatchStore(), &mockSink{})

	created, err := co.BackfillContractor(context.Background(), c)
	if err != nil {
		t.Fatalf("BackfillContractor: %v", err)
	}
	if created != 0 {
		t.Errorf("created: got %d, want 0", created)
	}
}
