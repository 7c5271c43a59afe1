package payments

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/models"
	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/notify"
	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/wallet"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type fakeTx struct{ pgx.Tx }

func (fakeTx) Commit(context.Context) error   { return nil }
func (fakeTx) Rollback(context.Context) error { return nil }

type mockPool struct{}

func (mockPool) Begin(context.Context) (pgx.Tx, error) { return fakeTx{}, nil }

type mockRecharges struct {
	mu        sync.Mutex
	bySession map[string]*models.WalletRecharge
}

func newMockRecharges() *mockRecharges {
	return &mockRecharges{bySession: make(map[string]*models.WalletRecharge)}
}

func (m *mockRecharges) Create(_ context.Context, r *models.WalletRecharge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.bySession[r.SessionID] = &cp
	return nil
}

func (m *mockRecharges) GetBySession(_ context.Context, sessionID string) (*models.WalletRecharge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.bySession[sessionID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (m *mockRecharges) MarkResolvedTx(_ context.Context, _ pgx.Tx, id uuid.UUID, status string) error {
	return m.mark(id, status)
}

func (m *mockRecharges) MarkFailed(_ context.Context, id uuid.UUID) error {
	return m.mark(id, models.RechargeStatusFailed)
}

func (m *mockRecharges) mark(id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.bySession {
		if r.ID == id {
			r.Status = status
			now := time.Now()
			r.ResolvedAt = &now
		}
	}
	return nil
}

type mockPromos struct {
	mu     sync.Mutex
	byCode map[string]*models.PromoCode
	usage  map[string]int
}

func newMockPromos(codes ...*models.PromoCode) *mockPromos {
	m := &mockPromos{byCode: make(map[string]*models.PromoCode), usage: make(map[string]int)}
	for _, c := range codes {
		m.byCode[c.Code] = c
	}
	return m
}

func (m *mockPromos) GetByCode(_ context.Context, code string) (*models.PromoCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byCode[code]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (m *mockPromos) IncrementUsageTx(_ context.Context, _ pgx.Tx, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage[code]++
	return nil
}

// mockLedger reproduces the reference-idempotency contract of the wallet.
type mockLedger struct {
	mu      sync.Mutex
	credits map[string]int64 // reference -> amount
	balance int64
}

func newMockLedger() *mockLedger {
	return &mockLedger{credits: make(map[string]int64)}
}

func (m *mockLedger) CreditTx(_ context.Context, _ pgx.Tx, _ uuid.UUID, amountCents int64, _, reference, _ string) (wallet.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.credits[reference]; dup {
		return wallet.Result{BalanceAfterCents: m.balance, AlreadyProcessed: true}, nil
	}
	m.credits[reference] = amountCents
	m.balance += amountCents
	return wallet.Result{BalanceAfterCents: m.balance}, nil
}

type mockProvider struct {
	mu       sync.Mutex
	sessions map[string]SessionStatus
	nextID   string
}

func (m *mockProvider) CreateSession(_ context.Context, _ int64) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions == nil {
		m.sessions = make(map[string]SessionStatus)
	}
	id := m.nextID
	if id == "" {
		id = "sess_" + uuid.NewString()[:8]
	}
	m.sessions[id] = StatusPending
	return Session{ID: id, RedirectURL: "https://pay.example/" + id}, nil
}

func (m *mockProvider) GetSession(_ context.Context, sessionID string) (SessionStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[sessionID], nil
}

func (m *mockProvider) setStatus(sessionID string, s SessionStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions == nil {
		m.sessions = make(map[string]SessionStatus)
	}
	m.sessions[sessionID] = s
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

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestReconciler(recharges *mockRecharges, promos *mockPromos, ledger *mockLedger, provider *mockProvider, sink *mockSink) *Reconciler {
	enqueue := func(context.Context, string, time.Time) error { return nil }
	return NewReconciler(mockPool{}, recharges, promos, ledger, provider, enqueue, sink, slog.Default())
}

func pctPromo(code string, percent int64) *models.PromoCode {
	return &models.PromoCode{ID: uuid.New(), Code: code, DiscountType: models.DiscountPercentage, DiscountValue: percent, Active: true}
}

// ---------------------------------------------------------------------------
// 1. Initiate: promo discounts the payable, not the credited amount.
// ---------------------------------------------------------------------------

func TestInitiateRechargeWithPromo(t *testing.T) {
	recharges := newMockRecharges()
	promos := newMockPromos(pctPromo("BAU20", 20))
	provider := &mockProvider{nextID: "sess_1"}
	rec := newTestReconciler(recharges, promos, newMockLedger(), provider, &mockSink{})

	contractor := uuid.New()
	recharge, sess, err := rec.InitiateRecharge(context.Background(), contractor, 5000, "BAU20")
	if err != nil {
		t.Fatalf("InitiateRecharge: %v", err)
	}
	if recharge.AmountCents != 5000 {
		t.Errorf("recharge amount: got %d, want 5000", recharge.AmountCents)
	}
	if recharge.PayableCents != 4000 {
		t.Errorf("payable after 20%% discount: got %d, want 4000", recharge.PayableCents)
	}
	if recharge.Status != models.RechargeStatusPending {
		t.Errorf("status: got %s, want pending", recharge.Status)
	}
	if sess.ID != "sess_1" || sess.RedirectURL == "" {
		t.Errorf("unexpected session: %+v", sess)
	}
}

func TestInitiateRechargeInvalidPromo(t *testing.T) {
	rec := newTestReconciler(newMockRecharges(), newMockPromos(), newMockLedger(), &mockProvider{}, &mockSink{})

	_, _, err := rec.InitiateRecharge(context.Background(), uuid.New(), 5000, "NOPE")
	if err != ErrPromoInvalid {
		t.Fatalf("expected ErrPromoInvalid, got %v", err)
	}

	expired := pctPromo("OLD", 10)
	past := time.Now().Add(-time.Hour)
	expired.ValidUntil = &past
	rec = newTestReconciler(newMockRecharges(), newMockPromos(expired), newMockLedger(), &mockProvider{}, &mockSink{})
	if _, _, err := rec.InitiateRecharge(context.Background(), uuid.New(), 5000, "OLD"); err != ErrPromoInvalid {
		t.Fatalf("expired promo: expected ErrPromoInvalid, got %v", err)
	}
}

func TestInitiateRechargeBelowMinimum(t *testing.T) {
	rec := newTestReconciler(newMockRecharges(), newMockPromos(), newMockLedger(), &mockProvider{}, &mockSink{})
	if _, _, err := rec.InitiateRecharge(context.Background(), uuid.New(), 500, ""); err == nil {
		t.Error("recharge below minimum should be rejected")
	}
}

// ---------------------------------------------------------------------------
// 2. Paid webhook credits the full pre-discount amount exactly once and
//    consumes the promo.
// ---------------------------------------------------------------------------

func TestWebhookPaidCreditsFullAmount(t *testing.T) {
	recharges := newMockRecharges()
	promos := newMockPromos(pctPromo("BAU20", 20))
	ledger := newMockLedger()
	provider := &mockProvider{nextID: "sess_2"}
	sink := &mockSink{}
	rec := newTestReconciler(recharges, promos, ledger, provider, sink)

	contractor := uuid.New()
	ctx := context.Background()
	if _, _, err := rec.InitiateRecharge(ctx, contractor, 5000, "BAU20"); err != nil {
		t.Fatalf("InitiateRecharge: %v", err)
	}

	if err := rec.HandleProviderSignal(ctx, Signal{SessionID: "sess_2", AmountCents: 4000, Status: StatusPaid}); err != nil {
		t.Fatalf("HandleProviderSignal: %v", err)
	}

	// Full 5000 lands in the wallet even though only 4000 was paid.
	if got := ledger.credits["sess_2"]; got != 5000 {
		t.Errorf("credited amount: got %d, want 5000", got)
	}
	if got := promos.usage["BAU20"]; got != 1 {
		t.Errorf("promo usage: got %d, want 1", got)
	}

	stored, err := recharges.GetBySession(ctx, "sess_2")
	if err != nil {
		t.Fatalf("GetBySession: %v", err)
	}
	if stored.Status != models.RechargeStatusPaid {
		t.Errorf("recharge status: got %s, want paid", stored.Status)
	}
	if len(sink.events) != 1 || sink.events[0].Kind != notify.EventWalletRecharged {
		t.Errorf("expected one wallet.recharged event, got %+v", sink.events)
	}
}

// ---------------------------------------------------------------------------
// 3. Webhook and poll converge: the second path is a no-op and the promo is
//    not consumed twice.
// ---------------------------------------------------------------------------

func TestWebhookThenPollCreditsOnce(t *testing.T) {
	recharges := newMockRecharges()
	promos := newMockPromos(pctPromo("BAU20", 20))
	ledger := newMockLedger()
	provider := &mockProvider{nextID: "sess_3"}
	rec := newTestReconciler(recharges, promos, ledger, provider, &mockSink{})

	ctx := context.Background()
	if _, _, err := rec.InitiateRecharge(ctx, uuid.New(), 5000, "BAU20"); err != nil {
		t.Fatalf("InitiateRecharge: %v", err)
	}
	provider.setStatus("sess_3", StatusPaid)

	// Webhook first.
	if err := rec.HandleProviderSignal(ctx, Signal{SessionID: "sess_3", Status: StatusPaid}); err != nil {
		t.Fatalf("webhook: %v", err)
	}
	// Then the client redirect verification, then a stray webhook retry.
	if _, err := rec.VerifyRecharge(ctx, "sess_3"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := rec.HandleProviderSignal(ctx, Signal{SessionID: "sess_3", Status: StatusPaid}); err != nil {
		t.Fatalf("webhook retry: %v", err)
	}

	if ledger.balance != 5000 {
		t.Errorf("wallet credited %d, want exactly 5000", ledger.balance)
	}
	if got := promos.usage["BAU20"]; got != 1 {
		t.Errorf("promo consumed %d times, want 1", got)
	}
}

// ---------------------------------------------------------------------------
// 4. Failed payment never touches the ledger.
// ---------------------------------------------------------------------------

func TestFailedPaymentAnnotatesOnly(t *testing.T) {
	recharges := newMockRecharges()
	ledger := newMockLedger()
	provider := &mockProvider{nextID: "sess_4"}
	rec := newTestReconciler(recharges, newMockPromos(), ledger, provider, &mockSink{})

	ctx := context.Background()
	if _, _, err := rec.InitiateRecharge(ctx, uuid.New(), 5000, ""); err != nil {
		t.Fatalf("InitiateRecharge: %v", err)
	}
	if err := rec.HandleProviderSignal(ctx, Signal{SessionID: "sess_4", Status: StatusFailed}); err != nil {
		t.Fatalf("failed signal: %v", err)
	}

	if ledger.balance != 0 {
		t.Errorf("failed payment credited the wallet: balance %d", ledger.balance)
	}
	stored, _ := recharges.GetBySession(ctx, "sess_4")
	if stored.Status != models.RechargeStatusFailed {
		t.Errorf("recharge status: got %s, want failed", stored.Status)
	}
}

func TestUnknownSessionSignal(t *testing.T) {
	rec := newTestReconciler(newMockRecharges(), newMockPromos(), newMockLedger(), &mockProvider{}, &mockSink{})
	err := rec.HandleProviderSignal(context.Background(), Signal{SessionID: "sess_missing", Status: StatusPaid})
	if err != pgx.ErrNoRows {
		t.Fatalf("expected pgx.ErrNoRows for unknown session, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// 5. Provider amount conversion.
// ---------------------------------------------------------------------------

func TestAmountConversion(t *testing.T) {
	if got := CentsToAmount(4990); got != "49.90" {
		t.Errorf("CentsToAmount(4990) = %q, want \"49.90\"", got)
	}
	cents, err := AmountToCents("49.90")
	if err != nil {
		t.Fatalf("AmountToCents: %v", err)
	}
	if cents != 4990 {
		t.Errorf("AmountToCents(\"49.90\") = %d, want 4990", cents)
	}
	if _, err := AmountToCents("not-a-number"); err == nil {
		t.Error("invalid amount should error")
	}
}

func TestFixedDiscountClamp(t *testing.T) {
	p := &models.PromoCode{DiscountType: models.DiscountFixed, DiscountValue: 10000, Active: true}
	if got := discount(p, 5000); got != 5000 {
		t.Errorf("fixed discount should clamp to amount: got %d, want 5000", got)
	}
}
