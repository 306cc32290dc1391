package domain

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects how the target user is signed in.
type Mode string

const (
	// ModeTicket issues a sign-in token the operator redeems in a browser.
	ModeTicket Mode = "ticket"
	// ModeImpersonation is a true actor session. The provider does not
	// expose one, so it is always rejected.
	ModeImpersonation Mode = "impersonation"
)

// ParseMode maps the wire value to a Mode. Empty defaults to ModeTicket.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.TrimSpace(s)) {
	case "", ModeTicket:
		return ModeTicket, nil
	case ModeImpersonation:
		return ModeImpersonation, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, s)
	}
}

const (
	DefaultTokenExpirySeconds = 300
	MinTokenExpirySeconds     = 30
	MaxTokenExpirySeconds     = 300
)

// EffectiveExpiry clamps the requested lifetime to [30, 300] seconds,
// defaulting to 300 when nothing was requested.
func EffectiveExpiry(requested *int) int {
	secs := DefaultTokenExpirySeconds
	if requested != nil {
		secs = *requested
	}
	return max(MinTokenExpirySeconds, min(secs, MaxTokenExpirySeconds))
}

// ImpersonationRequest asks for a sign-in token for a target user.
// At least one of TargetUserID and Email must be set.
type ImpersonationRequest struct {
	TargetUserID     string
	Email            string
	Mode             Mode
	ExpiresInSeconds *int
}

// HasTarget reports whether the request names a target at all.
func (r ImpersonationRequest) HasTarget() bool {
	return strings.TrimSpace(r.TargetUserID) != "" || strings.TrimSpace(r.Email) != ""
}

// SignInToken is a provider-issued, short-lived credential for the target user.
type SignInToken struct {
	Token string
	URL   string
	Mode  Mode
}

// ImpersonationAudit records an issued token. Only a fingerprint of the
// token is kept.
type ImpersonationAudit struct {
	CallerID         string    `json:"caller_id" bson:"caller_id"`
	CallerEmail      string    `json:"caller_email" bson:"caller_email"`
	TargetUserID     string    `json:"target_user_id" bson:"target_user_id"`
	TargetEmail      string    `json:"target_email,omitempty" bson:"target_email,omitempty"`
	Mode             Mode      `json:"mode" bson:"mode"`
	ExpiresInSeconds int       `json:"expires_in_seconds" bson:"expires_in_seconds"`
	TokenFingerprint string    `json:"token_fingerprint" bson:"token_fingerprint"`
	IssuedAt         time.Time `json:"issued_at" bson:"issued_at"`
}
