// Package router wires the HTTP surface: public auth and webhook endpoints,
// customer project/offer routes, and contractor lead/wallet routes.
package router

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/auth"
	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/contractors"
	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/leads"
	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/middleware"
	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/models"
	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/offers"
	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/payments"
	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/projects"
	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/repository"
	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/wallet"
)

// Handlers bundles the feature handlers the router mounts.
type Handlers struct {
	Auth        *auth.Handler
	Projects    *projects.Handler
	Contractors *contractors.Handler
	Offers      *offers.Handler
	Leads       *leads.Handler
	Wallet      *wallet.Handler
	Payments    *payments.Handler

	// ProjectIntakeDisabled skips mounting POST /projects when the schema
	// validator could not be compiled at boot.
	ProjectIntakeDisabled bool
}

// New returns the http.Handler serving the API under /api/v1.
func New(h Handlers, authSvc auth.Service, matchRepo *repository.MatchRepo, contractorRepo *repository.ContractorRepo, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	base := "/api/v1"

	authed := middleware.JWTAuth(authSvc)
	customer := middleware.RequireRole(models.RoleCustomer)
	contractor := middleware.RequireRole(models.RoleContractor)

	// Public.
	mux.HandleFunc("POST "+base+"/auth/register", h.Auth.Register)
	mux.HandleFunc("POST "+base+"/auth/login", h.Auth.Login)
	mux.HandleFunc("POST "+base+"/webhooks/payment", h.Payments.Webhook)

	// Customer: projects and offer decisions.
	if !h.ProjectIntakeDisabled {
		mux.Handle("POST "+base+"/projects", authed(customer(http.HandlerFunc(h.Projects.Create))))
	}
	mux.Handle("GET "+base+"/projects", authed(customer(http.HandlerFunc(h.Projects.List))))
	mux.Handle("GET "+base+"/projects/{id}", authed(customer(http.HandlerFunc(h.Projects.Get))))
	mux.Handle("POST "+base+"/projects/{id}/cancel", authed(customer(http.HandlerFunc(h.Projects.Cancel))))
	mux.Handle("GET "+base+"/projects/{id}/offers", authed(customer(http.HandlerFunc(h.Offers.ListForProject))))
	mux.Handle("POST "+base+"/offers/{id}/accept", authed(customer(http.HandlerFunc(h.Offers.Accept))))
	mux.Handle("POST "+base+"/offers/{id}/reject", authed(customer(http.HandlerFunc(h.Offers.Reject))))

	// Contractor: profile, matches, leads, offers, wallet.
	mux.Handle("POST "+base+"/contractors", authed(contractor(http.HandlerFunc(h.Contractors.RegisterProfile))))
	mux.Handle("GET "+base+"/contractors/me", authed(contractor(http.HandlerFunc(h.Contractors.GetMe))))
	mux.Handle("PUT "+base+"/contractors/me", authed(contractor(http.HandlerFunc(h.Contractors.UpdateProfile))))
	mux.Handle("GET "+base+"/matches", authed(contractor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		listMatches(w, r, matchRepo, contractorRepo, logger)
	}))))
	mux.Handle("POST "+base+"/projects/{id}/lead", authed(contractor(http.HandlerFunc(h.Leads.Purchase))))
	mux.Handle("POST "+base+"/projects/{id}/lead/refund", authed(contractor(http.HandlerFunc(h.Leads.Refund))))
	mux.Handle("POST "+base+"/projects/{id}/offers", authed(contractor(http.HandlerFunc(h.Offers.Submit))))
	mux.Handle("GET "+base+"/offers", authed(contractor(http.HandlerFunc(h.Offers.ListMine))))
	mux.Handle("GET "+base+"/wallet/transactions", authed(contractor(http.HandlerFunc(h.Wallet.ListTransactions))))
	mux.Handle("POST "+base+"/wallet/recharges", authed(contractor(http.HandlerFunc(h.Payments.InitiateRecharge))))
	mux.Handle("GET "+base+"/wallet/recharges/{session}/verify", authed(contractor(http.HandlerFunc(h.Payments.VerifyRecharge))))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	return mux
}

func listMatches(w http.ResponseWriter, r *http.Request, matchRepo *repository.MatchRepo, contractorRepo *repository.ContractorRepo, logger *slog.Logger) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	c, err := contractorRepo.GetByAccountID(r.Context(), actor.AccountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, `{"error":"no contractor profile"}`, http.StatusForbidden)
			return
		}
		logger.Error("resolve contractor", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	matches, err := matchRepo.ListByContractor(r.Context(), c.ID)
	if err != nil {
		logger.Error("list matches", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(matches)
}
