package middleware

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/bandq/devconsole/internal/core/domain"
)

// CallerKey is the echo.Context key holding the *domain.Caller.
const CallerKey = "caller"

// sessionCookie carries the upstream session token for browser requests.
const sessionCookie = "__session"

// sessionClaims is the upstream session token. Emails lists verified
// addresses; Email is only trusted when EmailVerified is set.
type sessionClaims struct {
	Emails        []string `json:"emails,omitempty"`
	Email         string   `json:"email,omitempty"`
	EmailVerified bool     `json:"email_verified,omitempty"`
	jwt.RegisteredClaims
}

// Auth validates the upstream session token and injects the caller into
// context. The token comes from the Authorization header or, failing that,
// the session cookie.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := sessionToken(c)
			if err != nil {
				return err
			}
			if jwtSecret == "" {
				return fmt.Errorf("%w: session verification is not configured", domain.ErrUnauthenticated)
			}

			claims := &sessionClaims{}
			tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !tkn.Valid {
				return fmt.Errorf("%w: invalid session token", domain.ErrUnauthenticated)
			}
			if claims.Subject == "" {
				return fmt.Errorf("%w: session token has no subject", domain.ErrUnauthenticated)
			}

			c.Set(CallerKey, &domain.Caller{ID: claims.Subject, VerifiedEmails: claims.verifiedEmails()})
			return next(c)
		}
	}
}

func sessionToken(c echo.Context) (string, error) {
	if authHeader := c.Request().Header.Get(echo.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			return "", fmt.Errorf("%w: invalid authorization header", domain.ErrUnauthenticated)
		}
		return parts[1], nil
	}
	if cookie, err := c.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", domain.ErrUnauthenticated
}

func (s *sessionClaims) verifiedEmails() []string {
	out := make([]string, 0, len(s.Emails)+1)
	seen := make(map[string]struct{}, len(s.Emails)+1)
	add := func(e string) {
		if e == "" {
			return
		}
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	for _, e := range s.Emails {
		add(e)
	}
	if s.EmailVerified {
		add(s.Email)
	}
	return out
}

// CallerFrom returns the caller injected by Auth, or nil.
func CallerFrom(c echo.Context) *domain.Caller {
	caller, _ := c.Get(CallerKey).(*domain.Caller)
	return caller
}
