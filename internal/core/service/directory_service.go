package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bandq/devconsole/internal/core/domain"
	"github.com/bandq/devconsole/internal/core/ports"
)

// DirectoryService searches the identity provider's user directory.
type DirectoryService struct {
	gate     Gate
	provider ports.IdentityProvider
	log      zerolog.Logger
}

// NewDirectoryService wires the service. A nil provider yields
// domain.ErrMisconfiguredDependency on every search.
func NewDirectoryService(gate Gate, provider ports.IdentityProvider, log zerolog.Logger) *DirectoryService {
	return &DirectoryService{gate: gate, provider: provider, log: log}
}

// SearchUsers returns one page of directory summaries.
func (s *DirectoryService) SearchUsers(ctx context.Context, caller *domain.Caller, query domain.DirectoryQuery) (*domain.DirectoryPage, error) {
	if err := s.gate.Admit(caller); err != nil {
		return nil, err
	}
	if s.provider == nil {
		return nil, domain.ErrMisconfiguredDependency
	}

	q := query.Normalize()
	users, total, err := s.provider.ListUsers(ctx, q)
	if err != nil {
		s.log.Error().Err(err).Str("caller_id", caller.ID).Msg("directory search failed")
		return nil, &domain.DependencyError{Op: "list users", Err: err}
	}

	page := &domain.DirectoryPage{
		Users:      make([]domain.DirectoryUserSummary, 0, len(users)),
		TotalCount: total,
	}
	for _, u := range users {
		page.Users = append(page.Users, domain.Summarize(u))
	}
	if page.TotalCount < 0 {
		page.TotalCount = len(page.Users)
	}

	s.log.Debug().
		Str("caller_id", caller.ID).
		Str("query", q.Query).
		Int("limit", q.Limit).
		Int("offset", q.Offset).
		Int("returned", len(page.Users)).
		Msg("directory searched")

	return page, nil
}
