package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/middleware"
	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/models"
)

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

// ListTransactions handles GET /wallet/transactions for contractors. The
// newest entry's balance_after doubles as the current balance.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	contractor, ok := h.resolveContractor(w, r)
	if !ok {
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}
	list, err := h.svc.ListTransactions(r.Context(), contractor.ID, limit)
	if err != nil {
		h.log.Error("list wallet transactions failed", "error", err)
		http.Error(w, "list transactions failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"balance_cents": contractor.WalletBalanceCents,
		"transactions":  list,
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
