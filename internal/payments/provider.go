package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SessionStatus is the only provider field the core depends on, besides the
// session id and the amount.
type SessionStatus string

const (
	StatusPaid    SessionStatus = "paid"
	StatusPending SessionStatus = "pending"
	StatusFailed  SessionStatus = "failed"
)

// Session is a checkout session created at the provider.
type Session struct {
	ID          string
	RedirectURL string
}

// Provider is the payment-provider boundary. Implementations translate
// whatever the provider speaks into (id, amount, status).
type Provider interface {
	CreateSession(ctx context.Context, amountCents int64) (Session, error)
	GetSession(ctx context.Context, sessionID string) (SessionStatus, error)
}

// HTTPProvider talks JSON to the provider's REST API. The provider quotes
// amounts as decimal EUR strings ("49.90"); the store keeps integer cents,
// so conversion happens here and nowhere else.
type HTTPProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPProvider returns an HTTPProvider for the given base URL.
func NewHTTPProvider(baseURL, apiKey string) *HTTPProvider {
	return &HTTPProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

var _ Provider = (*HTTPProvider)(nil)

// CentsToAmount renders integer cents as the provider's decimal string.
func CentsToAmount(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// AmountToCents parses a provider decimal string into integer cents.
func AmountToCents(amount string) (int64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("parse provider amount %q: %w", amount, err)
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}

type createSessionRequest struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type sessionResponse struct {
	ID          string `json:"id"`
	RedirectURL string `json:"redirect_url"`
	Status      string `json:"status"`
}

func (p *HTTPProvider) CreateSession(ctx context.Context, amountCents int64) (Session, error) {
	body, err := json.Marshal(createSessionRequest{Amount: CentsToAmount(amountCents), Currency: "EUR"})
	if err != nil {
		return Session{}, fmt.Errorf("marshal session request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/sessions", strings.NewReader(string(body)))
	if err != nil {
		return Session{}, fmt.Errorf("create session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("call payment provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Session{}, fmt.Errorf("payment provider returned status %d", resp.StatusCode)
	}
	var sr sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return Session{}, fmt.Errorf("decode session response: %w", err)
	}
	return Session{ID: sr.ID, RedirectURL: sr.RedirectURL}, nil
}

func (p *HTTPProvider) GetSession(ctx context.Context, sessionID string) (SessionStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/sessions/"+sessionID, nil)
	if err != nil {
		return "", fmt.Errorf("create session lookup request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call payment provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("payment provider returned status %d", resp.StatusCode)
	}
	var sr sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("decode session response: %w", err)
	}
	switch SessionStatus(sr.Status) {
	case StatusPaid, StatusPending, StatusFailed:
		return SessionStatus(sr.Status), nil
	default:
		return "", fmt.Errorf("unknown provider session status %q", sr.Status)
	}
}
