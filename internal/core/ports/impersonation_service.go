package ports

import (
	"context"

	"github.com/bandq/devconsole/internal/core/domain"
)

// ImpersonationService mints sign-in tokens for allowlisted operators.
type ImpersonationService interface {
	RequestToken(ctx context.Context, caller *domain.Caller, req domain.ImpersonationRequest) (*domain.SignInToken, error)
}
