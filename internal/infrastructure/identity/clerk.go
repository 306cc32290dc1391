// Package identity adapts the Clerk Backend API to ports.IdentityProvider.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bandq/devconsole/internal/core/domain"
	"github.com/bandq/devconsole/internal/pkg/metrics"
)

const defaultTimeout = 10 * time.Second

// Config captures the settings for talking to the backend API.
type Config struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
	Logger    zerolog.Logger
}

// ClerkProvider implements ports.IdentityProvider over HTTP.
type ClerkProvider struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClerkProvider returns a provider, or domain.ErrMisconfiguredDependency
// when no secret key is set.
func NewClerkProvider(cfg Config) (*ClerkProvider, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, domain.ErrMisconfiguredDependency
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &ClerkProvider{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		secretKey: cfg.SecretKey,
		log:       cfg.Logger,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// FindUserByEmail looks up a user by exact email address.
func (p *ClerkProvider) FindUserByEmail(ctx context.Context, email string) (*domain.ProviderUser, error) {
	start := time.Now()
	params := url.Values{"email_address": {email}, "limit": {"1"}}

	var users []clerkUser
	err := p.doJSON(ctx, http.MethodGet, "/users?"+params.Encode(), nil, &users)
	if err == nil && len(users) == 0 {
		err = domain.ErrUserNotFound
	}
	observe("find_user_by_email", start, err)
	if err != nil {
		return nil, err
	}

	u := users[0].toDomain()
	return &u, nil
}

// ListUsers fetches one page plus the total count. A failed count is not
// fatal; the total is reported as -1 instead.
func (p *ClerkProvider) ListUsers(ctx context.Context, q domain.DirectoryQuery) ([]domain.ProviderUser, int, error) {
	start := time.Now()
	params := url.Values{
		"limit":    {strconv.Itoa(q.Limit)},
		"offset":   {strconv.Itoa(q.Offset)},
		"order_by": {"-created_at"},
	}
	if q.Query != "" {
		params.Set("query", q.Query)
	}

	var users []clerkUser
	err := p.doJSON(ctx, http.MethodGet, "/users?"+params.Encode(), nil, &users)
	observe("list_users", start, err)
	if err != nil {
		return nil, 0, err
	}

	out := make([]domain.ProviderUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.toDomain())
	}

	countParams := url.Values{}
	if q.Query != "" {
		countParams.Set("query", q.Query)
	}
	start = time.Now()
	var count clerkTotalCount
	err = p.doJSON(ctx, http.MethodGet, "/users/count?"+countParams.Encode(), nil, &count)
	observe("count_users", start, err)
	if err != nil {
		p.log.Warn().Err(err).Str("op", "count_users").Int("returned", len(out)).
			Msg("user count unavailable, total falls back to page length")
		return out, -1, nil
	}
	return out, count.TotalCount, nil
}

// IssueSignInToken creates a sign-in token for userID.
func (p *ClerkProvider) IssueSignInToken(ctx context.Context, userID string, expiresInSeconds int) (*domain.SignInToken, error) {
	start := time.Now()
	body := signInTokenRequest{UserID: userID, ExpiresInSeconds: expiresInSeconds}

	var resp signInTokenResponse
	err := p.doJSON(ctx, http.MethodPost, "/sign_in_tokens", body, &resp)
	if err == nil && resp.Token == "" {
		err = fmt.Errorf("%w: sign-in token response has no token", domain.ErrProviderUnavailable)
	}
	observe("issue_sign_in_token", start, err)
	if err != nil {
		return nil, err
	}

	return &domain.SignInToken{Token: resp.Token, URL: resp.URL, Mode: domain.ModeTicket}, nil
}

func (p *ClerkProvider) doJSON(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s returned status %d%s",
			domain.ErrProviderUnavailable, method, strings.SplitN(path, "?", 2)[0], resp.StatusCode, apiErrorMessage(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: decode response: %w", domain.ErrProviderUnavailable, err)
	}
	return nil
}

func apiErrorMessage(r io.Reader) string {
	var payload clerkErrors
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&payload); err != nil || len(payload.Errors) == 0 {
		return ""
	}
	e := payload.Errors[0]
	if e.LongMessage != "" {
		return ": " + e.LongMessage
	}
	return ": " + e.Message
}

func observe(op string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	metrics.ProviderRequestDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
}
