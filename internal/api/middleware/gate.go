package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/bandq/devconsole/internal/core/domain"
)

// DevConsole rejects every request when the environment policy disables the
// dev console. It must run before Auth so nothing about the caller is
// evaluated on a disabled deployment.
func DevConsole(policy domain.EnvironmentPolicy) echo.MiddlewareFunc {
	enabled := policy.Enabled()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !enabled {
				return fmt.Errorf("%w: dev console is disabled", domain.ErrForbidden)
			}
			return next(c)
		}
	}
}

// Allowlist admits only callers the allowlist authorizes. It expects Auth
// to have run.
func Allowlist(allow domain.Allowlist) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := CallerFrom(c)
			if caller == nil {
				return domain.ErrUnauthenticated
			}
			if !allow.Authorizes(caller) {
				return fmt.Errorf("%w: caller %s is not allowlisted", domain.ErrForbidden, caller.ID)
			}
			return next(c)
		}
	}
}
