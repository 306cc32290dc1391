package ports

import (
	"context"

	"github.com/bandq/devconsole/internal/core/domain"
)

// DirectoryService searches the identity provider's users.
type DirectoryService interface {
	SearchUsers(ctx context.Context, caller *domain.Caller, query domain.DirectoryQuery) (*domain.DirectoryPage, error)
}
