// Package payments reconciles payment-provider signals with the wallet
// ledger. A recharge can be confirmed by a push webhook, by the client's
// post-redirect verification call, or by a delayed poll job — all three
// converge on one ledger credit keyed by the provider session id, so
// whichever arrives first performs the credit and the rest are confirmed
// no-ops.
package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/models"
	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/notify"
	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/wallet"
)

const (
	// minRechargeCents keeps micro top-ups off the books.
	minRechargeCents = 1000

	// verifyDelay is how long after session creation the fallback poll job
	// runs, in case neither the webhook nor the client redirect ever lands.
	verifyDelay = 15 * time.Minute
)

// ErrPromoInvalid is returned when a promo code is unknown, inactive,
// outside its validity window, or used up.
var ErrPromoInvalid = errors.New("promo code not usable")

// Signal is a normalized provider event (webhook push or poll result).
type Signal struct {
	SessionID   string
	AmountCents int64 // 0 when the provider omitted it
	Status      SessionStatus
}

// RechargeStore persists pending recharge records.
type RechargeStore interface {
	Create(ctx context.Context, r *models.WalletRecharge) error
	GetBySession(ctx context.Context, sessionID string) (*models.WalletRecharge, error)
	MarkResolvedTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
}

// PromoStore reads and consumes promo codes.
type PromoStore interface {
	GetByCode(ctx context.Context, code string) (*models.PromoCode, error)
	IncrementUsageTx(ctx context.Context, tx pgx.Tx, code string) error
}

// Ledger is the wallet operation the reconciler needs.
type Ledger interface {
	CreditTx(ctx context.Context, tx pgx.Tx, contractorID uuid.UUID, amountCents int64, entryType, reference, description string) (wallet.Result, error)
}

// TxBeginner opens the transaction spanning ledger credit, promo usage, and
// recharge resolution.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// EnqueueVerifyFunc schedules the fallback poll job. Provided by main as a
// closure over river.Client.Insert with ScheduledAt.
type EnqueueVerifyFunc func(ctx context.Context, sessionID string, runAt time.Time) error

// Notifier is the fire-and-forget notification sink.
type Notifier interface {
	Notify(ctx context.Context, e notify.Event)
}

// Reconciler drives a recharge from session creation to ledger credit.
type Reconciler struct {
	Pool          TxBeginner
	Recharges     RechargeStore
	Promos        PromoStore
	Ledger        Ledger
	Provider      Provider
	EnqueueVerify EnqueueVerifyFunc
	Sink          Notifier
	Logger        *slog.Logger
}

// NewReconciler returns a Reconciler.
func NewReconciler(pool TxBeginner, recharges RechargeStore, promos PromoStore, ledger Ledger, provider Provider, enqueueVerify EnqueueVerifyFunc, sink Notifier, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		Pool:          pool,
		Recharges:     recharges,
		Promos:        promos,
		Ledger:        ledger,
		Provider:      provider,
		EnqueueVerify: enqueueVerify,
		Sink:          sink,
		Logger:        logger,
	}
}

// InitiateRecharge validates the promo code, opens a provider session for
// the discounted payable amount, and records the pending recharge. The
// wallet is not touched until a paid signal arrives. The returned session
// carries the redirect URL for the client.
func (r *Reconciler) InitiateRecharge(ctx context.Context, contractorID uuid.UUID, amountCents int64, promoCode string) (*models.WalletRecharge, Session, error) {
	if amountCents < minRechargeCents {
		return nil, Session{}, fmt.Errorf("recharge amount must be at least %d cents", minRechargeCents)
	}

	payable := amountCents
	var promoPtr *string
	if promoCode != "" {
		promo, err := r.Promos.GetByCode(ctx, promoCode)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, Session{}, ErrPromoInvalid
			}
			return nil, Session{}, fmt.Errorf("look up promo code: %w", err)
		}
		if !promo.Usable(time.Now()) {
			return nil, Session{}, ErrPromoInvalid
		}
		payable = amountCents - discount(promo, amountCents)
		if payable < 0 {
			payable = 0
		}
		promoPtr = &promoCode
	}

	sess, err := r.Provider.CreateSession(ctx, payable)
	if err != nil {
		return nil, Session{}, fmt.Errorf("create provider session: %w", err)
	}

	recharge := &models.WalletRecharge{
		ID:           uuid.New(),
		ContractorID: contractorID,
		AmountCents:  amountCents,
		PayableCents: payable,
		PromoCode:    promoPtr,
		SessionID:    sess.ID,
		Status:       models.RechargeStatusPending,
	}
	if err := r.Recharges.Create(ctx, recharge); err != nil {
		return nil, Session{}, fmt.Errorf("persist pending recharge: %w", err)
	}

	// Best effort: if the webhook and the client redirect both get lost,
	// the poll job settles the session later.
	if err := r.EnqueueVerify(ctx, sess.ID, time.Now().Add(verifyDelay)); err != nil {
		r.Logger.Warn("enqueue verification poll failed", "session_id", sess.ID, "error", err)
	}

	return recharge, sess, nil
}

// HandleProviderSignal applies a webhook push. Unknown sessions surface as
// pgx.ErrNoRows for the handler to turn into a 404.
func (r *Reconciler) HandleProviderSignal(ctx context.Context, sig Signal) error {
	recharge, err := r.Recharges.GetBySession(ctx, sig.SessionID)
	if err != nil {
		return err
	}
	if sig.AmountCents > 0 && sig.AmountCents != recharge.PayableCents {
		r.Logger.Warn("provider amount differs from recorded payable",
			"session_id", sig.SessionID, "provider_cents", sig.AmountCents, "payable_cents", recharge.PayableCents)
	}
	return r.apply(ctx, recharge, sig.Status)
}

// VerifyRecharge is the pull path: the client after redirect, or the delayed
// poll job. Resolved recharges return immediately without touching the
// provider.
func (r *Reconciler) VerifyRecharge(ctx context.Context, sessionID string) (*models.WalletRecharge, error) {
	recharge, err := r.Recharges.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if recharge.Status != models.RechargeStatusPending {
		return recharge, nil
	}

	status, err := r.Provider.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("poll provider session: %w", err)
	}
	if err := r.apply(ctx, recharge, status); err != nil {
		return nil, err
	}
	return r.Recharges.GetBySession(ctx, sessionID)
}

// apply converges a provider status onto the ledger. Paid credits the FULL
// pre-discount amount — the discount affects what the contractor paid
// externally, not what lands in the wallet — and consumes the promo code in
// the same transaction as the ledger entry. Failed only annotates the
// recharge record; no ledger mutation. Pending does nothing.
func (r *Reconciler) apply(ctx context.Context, recharge *models.WalletRecharge, status SessionStatus) error {
	switch status {
	case StatusPending:
		return nil

	case StatusFailed:
		if recharge.Status != models.RechargeStatusPending {
			return nil
		}
		return r.Recharges.MarkFailed(ctx, recharge.ID)

	case StatusPaid:
		tx, err := r.Pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin recharge tx: %w", err)
		}
		defer tx.Rollback(ctx)

		res, err := r.Ledger.CreditTx(ctx, tx, recharge.ContractorID, recharge.AmountCents,
			models.WalletEntryRecharge, recharge.SessionID, "wallet recharge")
		if err != nil {
			return fmt.Errorf("credit wallet: %w", err)
		}
		if res.AlreadyProcessed {
			// The other path won the race; nothing left to do.
			return tx.Commit(ctx)
		}

		if recharge.PromoCode != nil {
			if err := r.Promos.IncrementUsageTx(ctx, tx, *recharge.PromoCode); err != nil {
				return fmt.Errorf("consume promo code: %w", err)
			}
		}
		if err := r.Recharges.MarkResolvedTx(ctx, tx, recharge.ID, models.RechargeStatusPaid); err != nil {
			return fmt.Errorf("mark recharge paid: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit recharge tx: %w", err)
		}

		r.Sink.Notify(ctx, notify.Event{
			Kind:         notify.EventWalletRecharged,
			ContractorID: recharge.ContractorID,
			AmountCents:  recharge.AmountCents,
		})
		return nil

	default:
		return fmt.Errorf("unknown session status %q", status)
	}
}

// discount computes the promo deduction in cents against the recharge amount.
func discount(p *models.PromoCode, amountCents int64) int64 {
	switch p.DiscountType {
	case models.DiscountFixed:
		if p.DiscountValue > amountCents {
			return amountCents
		}
		return p.DiscountValue
	case models.DiscountPercentage:
		return amountCents * p.DiscountValue / 100
	default:
		return 0
	}
}
