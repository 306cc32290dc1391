package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/bandq/devconsole/internal/core/domain"
)

func signSession(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	signed := signSession(t, "secret", jwt.MapClaims{
		"sub":            "user_1",
		"emails":         []string{"a@bandq.jp"},
		"email":          "alt@bandq.jp",
		"email_verified": true,
		"exp":            time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth("secret")(func(c echo.Context) error {
		called = true
		caller := CallerFrom(c)
		if caller == nil || caller.ID != "user_1" {
			t.Fatalf("caller not set: %+v", caller)
		}
		if len(caller.VerifiedEmails) != 2 || caller.VerifiedEmails[0] != "a@bandq.jp" || caller.VerifiedEmails[1] != "alt@bandq.jp" {
			t.Fatalf("unexpected emails: %v", caller.VerifiedEmails)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuthMiddleware_UnverifiedEmailIgnored(t *testing.T) {
	e := echo.New()
	signed := signSession(t, "secret", jwt.MapClaims{"sub": "user_1", "email": "a@bandq.jp"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Auth("secret")(func(c echo.Context) error {
		if got := CallerFrom(c).VerifiedEmails; len(got) != 0 {
			t.Fatalf("unverified email must be dropped, got %v", got)
		}
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestAuthMiddleware_SessionCookie(t *testing.T) {
	e := echo.New()
	signed := signSession(t, "secret", jwt.MapClaims{"sub": "user_2"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "__session", Value: signed})
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Auth("secret")(func(c echo.Context) error {
		if CallerFrom(c).ID != "user_2" {
			t.Fatalf("caller not taken from cookie")
		}
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		header string
		secret string
	}{
		{"missing header", "", "secret"},
		{"wrong scheme", "Token abc", "secret"},
		{"garbage token", "Bearer not-a-token", "secret"},
		{"wrong secret", "Bearer " + signSession(t, "other", jwt.MapClaims{"sub": "u"}), "secret"},
		{"no subject", "Bearer " + signSession(t, "secret", jwt.MapClaims{"emails": []string{"a@bandq.jp"}}), "secret"},
		{"expired", "Bearer " + signSession(t, "secret", jwt.MapClaims{"sub": "u", "exp": time.Now().Add(-time.Minute).Unix()}), "secret"},
		{"unconfigured secret", "Bearer " + signSession(t, "secret", jwt.MapClaims{"sub": "u"}), ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			handler := Auth(tc.secret)(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})

			if err := handler(c); !errors.Is(err, domain.ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}
