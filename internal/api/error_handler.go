package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bandq/devconsole/internal/core/domain"
	"github.com/bandq/devconsole/internal/pkg/metrics"
)

// errorResponse is the canonical error envelope for all API errors.
// Details is only populated for server-side faults; the dev console never
// runs in production, so exposing the provider message is acceptable.
type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps the gateway error taxonomy to HTTP status codes.
//   - Logs server-side faults with full detail.
//   - Renders a consistent JSON envelope: {"error", "code", "details"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		metrics.RequestErrorsTotal.WithLabelValues(kindLabel(body.Code, code)).Inc()
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (404 from router, 405, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var de *domain.DependencyError
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "access forbidden", Code: "forbidden"}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, errorResponse{Error: "unauthenticated", Code: "unauthenticated"}
	case errors.Is(err, domain.ErrUnsupportedMode):
		return http.StatusBadRequest, errorResponse{Error: "mode \"impersonation\" is not supported; use \"ticket\"", Code: "unsupported_mode"}
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "invalid_request"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: "user not found", Code: "not_found"}
	case errors.Is(err, domain.ErrMisconfiguredDependency):
		log.Error().Err(err).Str("path", c.Path()).Msg("identity provider is not configured")
		return http.StatusInternalServerError, errorResponse{
			Error:   "internal server error",
			Code:    "misconfigured_dependency",
			Details: err.Error(),
		}
	case errors.As(err, &de):
		log.Error().Err(err).Str("op", de.Op).Str("path", c.Path()).Msg("identity provider request failed")
		return http.StatusInternalServerError, errorResponse{
			Error:   "internal server error",
			Code:    "dependency_error",
			Details: de.Detail(),
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

func kindLabel(code string, status int) string {
	if code != "" {
		return code
	}
	if status >= http.StatusInternalServerError {
		return "internal"
	}
	return "http_" + fmt.Sprint(status)
}
