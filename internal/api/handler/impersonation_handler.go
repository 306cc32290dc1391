package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bandq/devconsole/internal/core/domain"
	"github.com/bandq/devconsole/internal/core/ports"
)

// ImpersonationHandler serves sign-in token requests.
type ImpersonationHandler struct {
	service ports.ImpersonationService
}

func NewImpersonationHandler(service ports.ImpersonationService) *ImpersonationHandler {
	return &ImpersonationHandler{service: service}
}

// Impersonate handles POST /dev/impersonate.
//
// @Summary      Issue a sign-in token for another user
// @Description  Development only. Resolves the target by id or email and returns a short-lived sign-in token (30-300s, default 300).
// @Tags         dev
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      impersonateRequest   true  "Target user and options"
// @Success      200   {object}  impersonateResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /dev/impersonate [post]
func (h *ImpersonationHandler) Impersonate(c echo.Context) error {
	var req impersonateRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrInvalidRequest)
	}
	// Email is only consulted when no target id is given.
	if strings.TrimSpace(req.TargetUserID) != "" {
		req.Email = ""
	}
	if err := c.Validate(&req); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidRequest, err.Error())
	}

	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		return err
	}

	token, err := h.service.RequestToken(c.Request().Context(), ctxCaller(c), domain.ImpersonationRequest{
		TargetUserID:     req.TargetUserID,
		Email:            req.Email,
		Mode:             mode,
		ExpiresInSeconds: req.expiresIn(),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, impersonateResponse{
		Token: token.Token,
		URL:   token.URL,
		Mode:  string(token.Mode),
	})
}
