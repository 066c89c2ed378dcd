package users

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/akarasev/go-bitly/api"
)

type Email struct {
	Email      string `json:"email"`
	IsPrimary  bool   `json:"is_primary"`
	IsVerified bool   `json:"is_verified"`
}

// User is the authenticated account. DefaultGroupGUID is the group new
// bitlinks land in when no group is given explicitly.
type User struct {
	Login            string
	Name             string
	IsActive         bool
	Is2FAEnabled     bool
	DefaultGroupGUID string
	Emails           []Email
	Created          time.Time
	Modified         time.Time
}

type userPayload struct {
	Login            string  `json:"login"`
	Name             string  `json:"name"`
	IsActive         bool    `json:"is_active"`
	Is2FAEnabled     bool    `json:"is_2fa_enabled"`
	DefaultGroupGUID string  `json:"default_group_guid"`
	Emails           []Email `json:"emails"`
	Created          string  `json:"created"`
	Modified         string  `json:"modified"`
}

// Fetch returns the user the access token belongs to via GET /user.
func Fetch(ctx context.Context, client api.Requester) (*User, error) {
	resp, err := client.Request(ctx, http.MethodGet, "/user", nil)
	if err != nil {
		return nil, err
	}
	var payload userPayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("unable to parse user payload due to %w", err)
	}
	return &User{
		Login:            payload.Login,
		Name:             payload.Name,
		IsActive:         payload.IsActive,
		Is2FAEnabled:     payload.Is2FAEnabled,
		DefaultGroupGUID: payload.DefaultGroupGUID,
		Emails:           payload.Emails,
		Created:          api.ParseTimestamp(payload.Created),
		Modified:         api.ParseTimestamp(payload.Modified),
	}, nil
}
