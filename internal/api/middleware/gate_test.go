package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bandq/devconsole/internal/core/domain"
)

func TestDevConsole_Disabled(t *testing.T) {
	for _, policy := range []domain.EnvironmentPolicy{
		{Env: "production", DevAuthEnabled: true},
		{Env: "development"},
	} {
		e := echo.New()
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/dev/impersonate", nil), httptest.NewRecorder())

		handler := DevConsole(policy)(func(c echo.Context) error {
			t.Fatalf("should not reach next")
			return nil
		})

		if err := handler(c); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("policy %+v: expected ErrForbidden, got %v", policy, err)
		}
	}
}

func TestDevConsole_Enabled(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	called := false
	handler := DevConsole(domain.EnvironmentPolicy{Env: "development", DevAuthEnabled: true})(func(c echo.Context) error {
		called = true
		return nil
	})

	if err := handler(c); err != nil || !called {
		t.Fatalf("expected next to be called, err=%v", err)
	}
}

func TestAllowlist_Allows(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(CallerKey, &domain.Caller{ID: "u1", VerifiedEmails: []string{"dev@bandq.jp"}})

	called := false
	handler := Allowlist(domain.NewAllowlist(nil, []string{"@bandq.jp"}))(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
}

func TestAllowlist_Forbids(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(CallerKey, &domain.Caller{ID: "u2", VerifiedEmails: []string{"guest@example.com"}})

	handler := Allowlist(domain.NewAllowlist(nil, []string{"@bandq.jp"}))(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAllowlist_NoCaller(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	handler := Allowlist(domain.NewAllowlist(nil, []string{"@bandq.jp"}))(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
