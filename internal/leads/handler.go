package leads

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
	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/wallet"
)

type PurchaseResponse struct {
	Match             *models.Match `json:"match"`
	BalanceAfterCents int64         `json:"balance_after_cents"`
	AlreadyPurchased  bool          `json:"already_purchased"`
}

// ContractorResolver maps the authenticated account to its contractor profile.
type ContractorResolver interface {
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*models.Contractor, error)
}

type Handler struct {
	svc         *Service
	contractors ContractorResolver
	log         *slog.Logger
}

func NewHandler(svc *Service, contractors ContractorResolver, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, contractors: contractors, log: log}
}

// Purchase handles POST /projects/{id}/lead for contractors.
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	contractor, ok := h.resolveContractor(w, r)
	if !ok {
		return
	}
	projectID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}
	p, err := h.svc.PurchaseLead(r.Context(), contractor.ID, projectID)
	if err != nil {
		h.writeServiceError(w, "purchase lead", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(PurchaseResponse{
		Match:             p.Match,
		BalanceAfterCents: p.BalanceAfterCents,
		AlreadyPurchased:  p.AlreadyPurchased,
	})
}

// Refund handles POST /projects/{id}/lead/refund for contractors.
func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	contractor, ok := h.resolveContractor(w, r)
	if !ok {
		return
	}
	projectID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}
	res, err := h.svc.RefundLead(r.Context(), contractor.ID, projectID)
	if err != nil {
		h.writeServiceError(w, "refund lead", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"balance_after_cents": res.BalanceAfterCents,
		"already_processed":   res.AlreadyProcessed,
	})
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

func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotMatched):
		http.Error(w, "no match for this project", http.StatusForbidden)
	case errors.Is(err, ErrNotOpen):
		http.Error(w, "project is not open", http.StatusConflict)
	case errors.Is(err, wallet.ErrInsufficientFunds):
		http.Error(w, "insufficient wallet balance", http.StatusPaymentRequired)
	case errors.Is(err, pgx.ErrNoRows):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		h.log.Error(op+" failed", "error", err)
		http.Error(w, op+" failed", http.StatusInternalServerError)
	}
}
