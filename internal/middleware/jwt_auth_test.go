package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/Momentumlabs1/bau-connect-austria-sub001/internal/models"
)

type stubAuth struct {
	accountID uuid.UUID
	role      string
	err       error
}

func (s *stubAuth) Register(context.Context, string, string, string, string) (*models.Account, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAuth) Login(context.Context, string, string) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubAuth) ValidateToken(_ context.Context, token string) (uuid.UUID, string, error) {
	if s.err != nil {
		return uuid.Nil, "", s.err
	}
	return s.accountID, s.role, nil
}

func TestJWTAuthSetsActor(t *testing.T) {
	accountID := uuid.New()
	svc := &stubAuth{accountID: accountID, role: models.RoleContractor}

	var got *Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ActorFromCtx(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	rec := httptest.NewRecorder()
	JWTAuth(svc)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if got == nil || got.AccountID != accountID || got.Role != models.RoleContractor {
		t.Errorf("actor not set correctly: %+v", got)
	}
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	svc := &stubAuth{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	JWTAuth(svc)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}

func TestJWTAuthRejectsInvalidToken(t *testing.T) {
	svc := &stubAuth{err: errors.New("expired")}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer expiredtoken")
	rec := httptest.NewRecorder()
	JWTAuth(svc)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithActor(req.Context(), &Actor{AccountID: uuid.New(), Role: models.RoleCustomer}))

	rec := httptest.NewRecorder()
	RequireRole(models.RoleCustomer)(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("matching role: got %d, want 204", rec.Code)
	}

	rec = httptest.NewRecorder()
	RequireRole(models.RoleContractor)(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong role: got %d, want 403", rec.Code)
	}
}
