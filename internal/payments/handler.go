package payments

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/middleware"
	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/models"
)

type InitiateRequest struct {
	AmountCents int64  `json:"amount_cents"`
	PromoCode   string `json:"promo_code,omitempty"`
}

type InitiateResponse struct {
	RechargeID   string `json:"recharge_id"`
	SessionID    string `json:"session_id"`
	RedirectURL  string `json:"redirect_url"`
	AmountCents  int64  `json:"amount_cents"`
	PayableCents int64  `json:"payable_cents"`
}

// webhookPayload is what the provider POSTs. Amount arrives as a decimal
// string; only id, amount, and status matter.
type webhookPayload struct {
	SessionID string `json:"session_id"`
	Amount    string `json:"amount"`
	Status    string `json:"status"`
}

// ContractorResolver maps the authenticated account to its contractor profile.
type ContractorResolver interface {
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*models.Contractor, error)
}

type Handler struct {
	reconciler  *Reconciler
	contractors ContractorResolver
	log         *slog.Logger
}

func NewHandler(reconciler *Reconciler, contractors ContractorResolver, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{reconciler: reconciler, contractors: contractors, log: log}
}

// InitiateRecharge handles POST /wallet/recharges for contractors.
func (h *Handler) InitiateRecharge(w http.ResponseWriter, r *http.Request) {
	contractor, ok := h.resolveContractor(w, r)
	if !ok {
		return
	}
	var req InitiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	recharge, sess, err := h.reconciler.InitiateRecharge(r.Context(), contractor.ID, req.AmountCents, req.PromoCode)
	if err != nil {
		if errors.Is(err, ErrPromoInvalid) {
			http.Error(w, "promo code not usable", http.StatusBadRequest)
			return
		}
		h.log.Error("initiate recharge failed", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(InitiateResponse{
		RechargeID:   recharge.ID.String(),
		SessionID:    sess.ID,
		RedirectURL:  sess.RedirectURL,
		AmountCents:  recharge.AmountCents,
		PayableCents: recharge.PayableCents,
	})
}

// Webhook handles POST /webhooks/payment from the provider. It always
// answers 200 for known sessions so the provider stops retrying; the
// reconciler makes replays harmless.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	var p webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	sig := Signal{SessionID: p.SessionID, Status: SessionStatus(p.Status)}
	if p.Amount != "" {
		cents, err := AmountToCents(p.Amount)
		if err != nil {
			h.log.Warn("webhook with unparsable amount", "session_id", p.SessionID, "amount", p.Amount)
		} else {
			sig.AmountCents = cents
		}
	}
	if err := h.reconciler.HandleProviderSignal(r.Context(), sig); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, "unknown session", http.StatusNotFound)
			return
		}
		h.log.Error("webhook processing failed", "session_id", p.SessionID, "error", err)
		http.Error(w, "processing failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// VerifyRecharge handles GET /wallet/recharges/{session}/verify, the client's
// post-redirect confirmation call.
func (h *Handler) VerifyRecharge(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.resolveContractor(w, r); !ok {
		return
	}
	sessionID := r.PathValue("session")
	if sessionID == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}
	recharge, err := h.reconciler.VerifyRecharge(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, "unknown session", http.StatusNotFound)
			return
		}
		h.log.Error("verify recharge failed", "session_id", sessionID, "error", err)
		http.Error(w, "verification failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(recharge)
}

func (h *Handler) resolveContractor(w http.ResponseWriter, r *http.Request) (*models.Contractor, bool) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	contractor, err := h.contractors.GetByAccountID(r.Context(), actor.AccountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, "no contractor profile", http.StatusForbidden)
			return nil, false
		}
		h.log.Error("resolve contractor failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}
	return contractor, true
}
