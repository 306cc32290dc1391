package domain

import (
	"strings"
	"time"
)

const (
	DefaultDirectoryLimit = 20
	MaxDirectoryLimit     = 100
)

// DirectoryQuery is a paginated free-text search over the user directory.
type DirectoryQuery struct {
	Query  string
	Limit  int
	Offset int
}

// Normalize applies the paging bounds: a non-positive limit becomes the
// default, limits above MaxDirectoryLimit are capped, and a negative offset
// becomes zero.
func (q DirectoryQuery) Normalize() DirectoryQuery {
	q.Query = strings.TrimSpace(q.Query)
	if q.Limit <= 0 {
		q.Limit = DefaultDirectoryLimit
	}
	q.Limit = min(q.Limit, MaxDirectoryLimit)
	q.Offset = max(q.Offset, 0)
	return q
}

// ProviderUser is the identity provider's user record. It carries fields
// that must not leave the gateway; see DirectoryUserSummary.
type ProviderUser struct {
	ID              string
	Username        string
	FirstName       string
	LastName        string
	ImageURL        string
	EmailAddresses  []string
	PrimaryEmail    string
	CreatedAt       *time.Time
	LastSignInAt    *time.Time
	PasswordEnabled bool
	TwoFactor       bool
	PublicMetadata  map[string]any
	PrivateMetadata map[string]any
	ExternalID      string
}

// DisplayName is the best human-readable label for the user.
func (u ProviderUser) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	if u.PrimaryEmail != "" {
		return u.PrimaryEmail
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0]
	}
	return u.ID
}

// DirectoryUserSummary is the read-only projection returned to operators.
type DirectoryUserSummary struct {
	ID          string
	DisplayName string
	AvatarURL   string
	Emails      []string
	CreatedAt   *time.Time
}

// Summarize projects a provider record, dropping everything else.
func Summarize(u ProviderUser) DirectoryUserSummary {
	emails := make([]string, len(u.EmailAddresses))
	copy(emails, u.EmailAddresses)
	return DirectoryUserSummary{
		ID:          u.ID,
		DisplayName: u.DisplayName(),
		AvatarURL:   u.ImageURL,
		Emails:      emails,
		CreatedAt:   u.CreatedAt,
	}
}

// DirectoryPage is one page of search results.
type DirectoryPage struct {
	Users      []DirectoryUserSummary
	TotalCount int
}
