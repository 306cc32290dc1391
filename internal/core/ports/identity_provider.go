package ports

import (
	"context"

	"github.com/bandq/devconsole/internal/core/domain"
)

// IdentityProvider is the external user directory and token issuer.
//
// Implementations return domain.ErrUserNotFound from FindUserByEmail when no
// user matches. Any other error is treated as a provider failure.
type IdentityProvider interface {
	FindUserByEmail(ctx context.Context, email string) (*domain.ProviderUser, error)
	// ListUsers returns one page and the total match count, or -1 when the
	// provider does not report a total.
	ListUsers(ctx context.Context, query domain.DirectoryQuery) ([]domain.ProviderUser, int, error)
	IssueSignInToken(ctx context.Context, userID string, expiresInSeconds int) (*domain.SignInToken, error)
}
