package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bandq/devconsole/internal/api/middleware"
	"github.com/bandq/devconsole/internal/core/domain"
)

type stubImpersonationService struct {
	requestFn func(ctx context.Context, caller *domain.Caller, req domain.ImpersonationRequest) (*domain.SignInToken, error)
}

func (s *stubImpersonationService) RequestToken(ctx context.Context, caller *domain.Caller, req domain.ImpersonationRequest) (*domain.SignInToken, error) {
	return s.requestFn(ctx, caller, req)
}

type stubDirectoryService struct {
	searchFn func(ctx context.Context, caller *domain.Caller, q domain.DirectoryQuery) (*domain.DirectoryPage, error)
}

func (s *stubDirectoryService) SearchUsers(ctx context.Context, caller *domain.Caller, q domain.DirectoryQuery) (*domain.DirectoryPage, error) {
	return s.searchFn(ctx, caller, q)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func withCaller(c echo.Context) echo.Context {
	c.Set(middleware.CallerKey, &domain.Caller{ID: "user_op", VerifiedEmails: []string{"op@bandq.jp"}})
	return c
}

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return withCaller(e.NewContext(req, rec)), rec
}
