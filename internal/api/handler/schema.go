package handler

import (
	"math"
	"time"
)

// --- Request / Response types ---

type impersonateRequest struct {
	TargetUserID     string   `json:"targetUserId"     validate:"omitempty,max=128"`
	Email            string   `json:"email"            validate:"omitempty,email"`
	Mode             string   `json:"mode"             validate:"omitempty,oneof=ticket impersonation"`
	ExpiresInSeconds *float64 `json:"expiresInSeconds"`
}

// expiresIn truncates the requested lifetime to whole seconds. Values
// outside the int32 range are pinned to it; the service clamps further.
func (r impersonateRequest) expiresIn() *int {
	if r.ExpiresInSeconds == nil {
		return nil
	}
	v := math.Trunc(*r.ExpiresInSeconds)
	v = math.Max(math.MinInt32, math.Min(math.MaxInt32, v))
	n := int(v)
	return &n
}

type impersonateResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
	Mode  string `json:"mode"`
}

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// directoryUserResponse carries only the summary projection; provider-internal
// fields never reach the client.
type directoryUserResponse struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"displayName"`
	AvatarURL   string     `json:"avatarUrl"`
	Emails      []string   `json:"emails"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

type searchUsersResponse struct {
	Users      []directoryUserResponse `json:"users"`
	TotalCount int                     `json:"totalCount"`
}
