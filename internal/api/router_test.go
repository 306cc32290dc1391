package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/bandq/devconsole/internal/core/domain"
	"github.com/bandq/devconsole/internal/core/service"
)

const testSecret = "router-test-secret"

type issueCall struct {
	userID           string
	expiresInSeconds int
}

type fakeProvider struct {
	users      map[string]string // email -> id
	issueCalls []issueCall
	listCalls  []domain.DirectoryQuery
}

func (p *fakeProvider) FindUserByEmail(ctx context.Context, email string) (*domain.ProviderUser, error) {
	id, ok := p.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &domain.ProviderUser{ID: id, EmailAddresses: []string{email}}, nil
}

func (p *fakeProvider) ListUsers(ctx context.Context, q domain.DirectoryQuery) ([]domain.ProviderUser, int, error) {
	p.listCalls = append(p.listCalls, q)
	return []domain.ProviderUser{{ID: "u42", FirstName: "Aiko", EmailAddresses: []string{"a@bandq.jp"}}}, -1, nil
}

func (p *fakeProvider) IssueSignInToken(ctx context.Context, userID string, expiresInSeconds int) (*domain.SignInToken, error) {
	p.issueCalls = append(p.issueCalls, issueCall{userID: userID, expiresInSeconds: expiresInSeconds})
	return &domain.SignInToken{Token: "tok_opaque", URL: "https://accounts.example/sign-in?__clerk_ticket=tok_opaque"}, nil
}

func newTestRouter(t *testing.T, policy domain.EnvironmentPolicy, provider *fakeProvider) *echo.Echo {
	t.Helper()
	gate := service.NewGate(policy, domain.NewAllowlist(nil, []string{domain.DefaultAllowedDomain}))
	log := zerolog.Nop()
	return NewRouter(Dependencies{
		Policy:        policy,
		Allowlist:     domain.NewAllowlist(nil, []string{domain.DefaultAllowedDomain}),
		JWTSecret:     testSecret,
		Impersonation: service.NewImpersonationService(gate, provider, nil, log),
		Directory:     service.NewDirectoryService(gate, provider, log),
		Logger:        log,
		Registerer:    prometheus.NewRegistry(),
	})
}

func sessionFor(t *testing.T, sub string, emails ...string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    sub,
		"emails": emails,
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign session: %v", err)
	}
	return signed
}

func do(e *echo.Echo, method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

var devPolicy = domain.EnvironmentPolicy{Env: "development", DevAuthEnabled: true}

func TestRouter_ImpersonateByEmail(t *testing.T) {
	provider := &fakeProvider{users: map[string]string{"a@bandq.jp": "u42"}}
	e := newTestRouter(t, devPolicy, provider)

	rec := do(e, http.MethodPost, "/dev/impersonate", `{"email":"a@bandq.jp"}`, sessionFor(t, "op_1", "ops@bandq.jp"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] == "" || resp["url"] == "" || resp["mode"] != "ticket" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(provider.issueCalls) != 1 || provider.issueCalls[0] != (issueCall{userID: "u42", expiresInSeconds: 300}) {
		t.Fatalf("unexpected issuance: %+v", provider.issueCalls)
	}
}

func TestRouter_Statuses(t *testing.T) {
	operator := sessionFor(t, "op_1", "ops@bandq.jp")
	outsider := sessionFor(t, "op_2", "someone@example.com")

	tests := []struct {
		name     string
		policy   domain.EnvironmentPolicy
		body     string
		token    string
		wantCode int
		wantKind string
	}{
		{name: "production", policy: domain.EnvironmentPolicy{Env: "production", DevAuthEnabled: true}, body: `{"targetUserId":"u1"}`, token: operator, wantCode: http.StatusForbidden, wantKind: "forbidden"},
		{name: "disabled ignores payload", policy: domain.EnvironmentPolicy{Env: "development"}, body: `{"email":`, token: "", wantCode: http.StatusForbidden, wantKind: "forbidden"},
		{name: "no session", policy: devPolicy, body: `{"targetUserId":"u1"}`, wantCode: http.StatusUnauthorized, wantKind: "unauthenticated"},
		{name: "not allowlisted", policy: devPolicy, body: `{"targetUserId":"u1"}`, token: outsider, wantCode: http.StatusForbidden, wantKind: "forbidden"},
		{name: "no target", policy: devPolicy, body: `{}`, token: operator, wantCode: http.StatusBadRequest, wantKind: "invalid_request"},
		{name: "impersonation mode", policy: devPolicy, body: `{"targetUserId":"u1","mode":"impersonation"}`, token: operator, wantCode: http.StatusBadRequest, wantKind: "unsupported_mode"},
		{name: "unknown email", policy: devPolicy, body: `{"email":"x@y.com"}`, token: operator, wantCode: http.StatusNotFound, wantKind: "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{users: map[string]string{}}
			e := newTestRouter(t, tt.policy, provider)

			rec := do(e, http.MethodPost, "/dev/impersonate", tt.body, tt.token)
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Code != tt.wantKind {
				t.Fatalf("expected code %q, got %+v", tt.wantKind, resp)
			}
			if len(provider.issueCalls) != 0 {
				t.Fatalf("no token should be issued, got %+v", provider.issueCalls)
			}
		})
	}
}

func TestRouter_SearchUsersClampsLimit(t *testing.T) {
	provider := &fakeProvider{}
	e := newTestRouter(t, devPolicy, provider)

	rec := do(e, http.MethodGet, "/dev/users?limit=500", "", sessionFor(t, "op_1", "ops@bandq.jp"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(provider.listCalls) != 1 || provider.listCalls[0].Limit != domain.MaxDirectoryLimit {
		t.Fatalf("expected limit clamped to %d, got %+v", domain.MaxDirectoryLimit, provider.listCalls)
	}

	var resp struct {
		Users      []map[string]any `json:"users"`
		TotalCount int              `json:"totalCount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.TotalCount != 1 || len(resp.Users) != 1 {
		t.Fatalf("expected total to fall back to page length: %+v", resp)
	}
	if _, leaked := resp.Users[0]["firstName"]; leaked {
		t.Fatalf("provider fields must not leak: %+v", resp.Users[0])
	}
}

func TestRouter_HealthIsOpen(t *testing.T) {
	e := newTestRouter(t, domain.EnvironmentPolicy{Env: "production"}, &fakeProvider{})

	for _, path := range []string{"/health", "/health/ready"} {
		rec := do(e, http.MethodGet, path, "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}
