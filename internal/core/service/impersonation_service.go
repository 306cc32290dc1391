package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"

	"github.com/bandq/devconsole/internal/core/domain"
	"github.com/bandq/devconsole/internal/core/ports"
	"github.com/bandq/devconsole/internal/pkg/metrics"
)

// ImpersonationService issues sign-in tokens for a target user.
type ImpersonationService struct {
	gate     Gate
	provider ports.IdentityProvider
	audit    ports.AuditSink
	log      zerolog.Logger
	now      func() time.Time
}

// NewImpersonationService wires the service. provider may be nil when the
// identity provider credentials are missing; requests then fail with
// domain.ErrMisconfiguredDependency. audit may be nil.
func NewImpersonationService(gate Gate, provider ports.IdentityProvider, audit ports.AuditSink, log zerolog.Logger) *ImpersonationService {
	return &ImpersonationService{
		gate:     gate,
		provider: provider,
		audit:    audit,
		log:      log,
		now:      time.Now,
	}
}

// RequestToken authorizes the caller, resolves the target and asks the
// provider for a sign-in token. Nothing is retried.
func (s *ImpersonationService) RequestToken(ctx context.Context, caller *domain.Caller, req domain.ImpersonationRequest) (*domain.SignInToken, error) {
	if err := s.gate.Admit(caller); err != nil {
		return nil, err
	}

	if !req.HasTarget() {
		return nil, fmt.Errorf("%w: targetUserId or email is required", domain.ErrInvalidRequest)
	}

	if s.provider == nil {
		return nil, domain.ErrMisconfiguredDependency
	}

	targetID := strings.TrimSpace(req.TargetUserID)
	email := strings.TrimSpace(req.Email)
	if targetID == "" && email != "" {
		user, err := s.provider.FindUserByEmail(ctx, email)
		switch {
		case errors.Is(err, domain.ErrUserNotFound), err == nil && user == nil:
			return nil, fmt.Errorf("%w: no user with email %s", domain.ErrUserNotFound, email)
		case err != nil:
			return nil, s.dependencyFailure(caller, "find user by email", err)
		}
		targetID = user.ID
	}

	// Unreachable while HasTarget and the lookup above hold, kept explicit.
	if targetID == "" {
		return nil, fmt.Errorf("%w: target user could not be resolved", domain.ErrInvalidRequest)
	}

	switch req.Mode {
	case domain.ModeImpersonation:
		return nil, domain.ErrUnsupportedMode
	case domain.ModeTicket, "":
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidRequest, req.Mode)
	}

	expiry := domain.EffectiveExpiry(req.ExpiresInSeconds)
	issued, err := s.provider.IssueSignInToken(ctx, targetID, expiry)
	if err != nil {
		return nil, s.dependencyFailure(caller, "issue sign-in token", err)
	}
	if issued == nil || issued.Token == "" {
		return nil, s.dependencyFailure(caller, "issue sign-in token", errors.New("provider returned an empty token"))
	}

	token := &domain.SignInToken{Token: issued.Token, URL: issued.URL, Mode: domain.ModeTicket}

	metrics.SignInTokensIssuedTotal.WithLabelValues(string(token.Mode)).Inc()
	s.log.Info().
		Str("caller_id", caller.ID).
		Str("target_user_id", targetID).
		Int("expires_in_seconds", expiry).
		Msg("sign-in token issued")

	if s.audit != nil {
		s.audit.Record(domain.ImpersonationAudit{
			CallerID:         caller.ID,
			CallerEmail:      caller.PrimaryEmail(),
			TargetUserID:     targetID,
			TargetEmail:      email,
			Mode:             token.Mode,
			ExpiresInSeconds: expiry,
			TokenFingerprint: fingerprint(token.Token),
			IssuedAt:         s.now().UTC(),
		})
	}

	return token, nil
}

func (s *ImpersonationService) dependencyFailure(caller *domain.Caller, op string, err error) error {
	s.log.Error().Err(err).Str("caller_id", caller.ID).Str("op", op).Msg("identity provider call failed")
	return &domain.DependencyError{Op: op, Err: err}
}

// fingerprint identifies a token in audit records without storing it.
func fingerprint(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
