package offers

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

type SubmitRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Message     string `json:"message"`
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

// Submit handles POST /projects/{id}/offers for contractors.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	contractor, ok := h.resolveContractor(w, r)
	if !ok {
		return
	}
	projectID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.AmountCents <= 0 {
		http.Error(w, "amount_cents must be positive", http.StatusBadRequest)
		return
	}
	offer, err := h.svc.Submit(r.Context(), contractor.ID, projectID, req.AmountCents, req.Message)
	if err != nil {
		h.writeServiceError(w, "submit offer", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(offer)
}

// Accept handles POST /offers/{id}/accept for the project owner.
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.svc.Accept)
}

// Reject handles POST /offers/{id}/reject for the project owner.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.svc.Reject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID, uuid.UUID) (*models.Offer, error)) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	offerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid offer id", http.StatusBadRequest)
		return
	}
	offer, err := op(r.Context(), actor.AccountID, offerID)
	if err != nil {
		h.writeServiceError(w, "decide offer", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(offer)
}

// ListForProject handles GET /projects/{id}/offers for the project owner.
func (h *Handler) ListForProject(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	projectID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}
	list, err := h.svc.ListForProject(r.Context(), actor.AccountID, projectID)
	if err != nil {
		h.writeServiceError(w, "list offers", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// ListMine handles GET /offers for contractors.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	contractor, ok := h.resolveContractor(w, r)
	if !ok {
		return
	}
	list, err := h.svc.ListForContractor(r.Context(), contractor.ID)
	if err != nil {
		h.writeServiceError(w, "list offers", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
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
	case errors.Is(err, pgx.ErrNoRows):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotOpen):
		http.Error(w, "project is not open", http.StatusConflict)
	case errors.Is(err, ErrInvalidState):
		http.Error(w, "offer is not pending", http.StatusConflict)
	default:
		h.log.Error(op+" failed", "error", err)
		http.Error(w, op+" failed", http.StatusInternalServerError)
	}
}
