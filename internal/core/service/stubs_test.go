package service

import (
	"context"
	"sync"

	"github.com/bandq/devconsole/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub identity provider
// ---------------------------------------------------------------------------

type issueCall struct {
	userID           string
	expiresInSeconds int
}

type stubProvider struct {
	findFn  func(ctx context.Context, email string) (*domain.ProviderUser, error)
	listFn  func(ctx context.Context, q domain.DirectoryQuery) ([]domain.ProviderUser, int, error)
	issueFn func(ctx context.Context, userID string, expiresInSeconds int) (*domain.SignInToken, error)

	findCalls  []string
	listCalls  []domain.DirectoryQuery
	issueCalls []issueCall
}

func (p *stubProvider) FindUserByEmail(ctx context.Context, email string) (*domain.ProviderUser, error) {
	p.findCalls = append(p.findCalls, email)
	if p.findFn == nil {
		return nil, domain.ErrUserNotFound
	}
	return p.findFn(ctx, email)
}

func (p *stubProvider) ListUsers(ctx context.Context, q domain.DirectoryQuery) ([]domain.ProviderUser, int, error) {
	p.listCalls = append(p.listCalls, q)
	if p.listFn == nil {
		return nil, 0, nil
	}
	return p.listFn(ctx, q)
}

func (p *stubProvider) IssueSignInToken(ctx context.Context, userID string, expiresInSeconds int) (*domain.SignInToken, error) {
	p.issueCalls = append(p.issueCalls, issueCall{userID: userID, expiresInSeconds: expiresInSeconds})
	if p.issueFn == nil {
		return &domain.SignInToken{Token: "tok_" + userID, URL: "https://accounts.example/sign-in?__clerk_ticket=tok_" + userID}, nil
	}
	return p.issueFn(ctx, userID, expiresInSeconds)
}

func (p *stubProvider) calls() int {
	return len(p.findCalls) + len(p.listCalls) + len(p.issueCalls)
}

type stubAudit struct {
	mu      sync.Mutex
	records []domain.ImpersonationAudit
}

func (a *stubAudit) Record(r domain.ImpersonationAudit) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, r)
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func devGate() Gate {
	return NewGate(
		domain.EnvironmentPolicy{Env: "development", DevAuthEnabled: true},
		domain.NewAllowlist(nil, []string{"@bandq.jp"}),
	)
}

func operator() *domain.Caller {
	return &domain.Caller{ID: "op_1", VerifiedEmails: []string{"ops@bandq.jp"}}
}

func intPtr(v int) *int { return &v }
