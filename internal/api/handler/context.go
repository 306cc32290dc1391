package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/bandq/devconsole/internal/api/middleware"
	"github.com/bandq/devconsole/internal/core/domain"
)

// ctxCaller returns the caller set by the Auth middleware. A nil caller is
// passed through; the services answer it with domain.ErrUnauthenticated.
func ctxCaller(c echo.Context) *domain.Caller {
	return middleware.CallerFrom(c)
}
