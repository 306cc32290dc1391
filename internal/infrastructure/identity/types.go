package identity

import (
	"time"

	"github.com/bandq/devconsole/internal/core/domain"
)

type clerkEmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// clerkUser is the subset of the backend user object the gateway reads.
// Timestamps are unix milliseconds.
type clerkUser struct {
	ID                    string              `json:"id"`
	Username              string              `json:"username"`
	FirstName             string              `json:"first_name"`
	LastName              string              `json:"last_name"`
	ImageURL              string              `json:"image_url"`
	EmailAddresses        []clerkEmailAddress `json:"email_addresses"`
	PrimaryEmailAddressID string              `json:"primary_email_address_id"`
	CreatedAt             int64               `json:"created_at"`
	LastSignInAt          int64               `json:"last_sign_in_at"`
	PasswordEnabled       bool                `json:"password_enabled"`
	TwoFactorEnabled      bool                `json:"two_factor_enabled"`
	PublicMetadata        map[string]any      `json:"public_metadata"`
	PrivateMetadata       map[string]any      `json:"private_metadata"`
	ExternalID            string              `json:"external_id"`
}

func (u clerkUser) toDomain() domain.ProviderUser {
	out := domain.ProviderUser{
		ID:              u.ID,
		Username:        u.Username,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		ImageURL:        u.ImageURL,
		EmailAddresses:  make([]string, 0, len(u.EmailAddresses)),
		CreatedAt:       millisToTime(u.CreatedAt),
		LastSignInAt:    millisToTime(u.LastSignInAt),
		PasswordEnabled: u.PasswordEnabled,
		TwoFactor:       u.TwoFactorEnabled,
		PublicMetadata:  u.PublicMetadata,
		PrivateMetadata: u.PrivateMetadata,
		ExternalID:      u.ExternalID,
	}
	for _, e := range u.EmailAddresses {
		out.EmailAddresses = append(out.EmailAddresses, e.EmailAddress)
		if e.ID == u.PrimaryEmailAddressID {
			out.PrimaryEmail = e.EmailAddress
		}
	}
	return out
}

func millisToTime(ms int64) *time.Time {
	if ms == 0 {
		return nil
	}
	t := time.UnixMilli(ms).UTC()
	return &t
}

type clerkTotalCount struct {
	TotalCount int `json:"total_count"`
}

type signInTokenRequest struct {
	UserID           string `json:"user_id"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

type signInTokenResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	UserID string `json:"user_id"`
	Token  string `json:"token"`
	URL    string `json:"url"`
}

type clerkErrors struct {
	Errors []struct {
		Code        string `json:"code"`
		Message     string `json:"message"`
		LongMessage string `json:"long_message"`
	} `json:"errors"`
}
