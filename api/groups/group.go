package groups

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/samber/lo"

	"github.com/akarasev/go-bitly/api"
)

// Group is the organizational container bitlinks belong to. Parsed with
// the same tolerance as bitlinks: absent fields default.
type Group struct {
	GUID             string
	Name             string
	Role             string
	IsActive         bool
	BSDs             []string
	OrganizationGUID string
	Created          time.Time
	Modified         time.Time
}

type groupPayload struct {
	GUID             string   `json:"guid"`
	Name             string   `json:"name"`
	Role             string   `json:"role"`
	IsActive         bool     `json:"is_active"`
	BSDs             []string `json:"bsds"`
	OrganizationGUID string   `json:"organization_guid"`
	Created          string   `json:"created"`
	Modified         string   `json:"modified"`
	References       struct {
		Organization string `json:"organization"`
	} `json:"references"`
}

func (p groupPayload) toGroup() *Group {
	organizationGUID := p.OrganizationGUID
	if organizationGUID == "" {
		organizationGUID = api.ReferenceGUID(p.References.Organization)
	}
	return &Group{
		GUID:             p.GUID,
		Name:             p.Name,
		Role:             p.Role,
		IsActive:         p.IsActive,
		BSDs:             p.BSDs,
		OrganizationGUID: organizationGUID,
		Created:          api.ParseTimestamp(p.Created),
		Modified:         api.ParseTimestamp(p.Modified),
	}
}

// Fetch retrieves one group by GUID via GET /groups/{group_guid}.
func Fetch(ctx context.Context, client api.Requester, groupGUID string) (*Group, error) {
	resp, err := client.Request(ctx, http.MethodGet, "/groups/"+groupGUID, nil)
	if err != nil {
		return nil, err
	}
	var payload groupPayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("unable to parse group payload due to %w", err)
	}
	return payload.toGroup(), nil
}

// List returns the groups visible to the authenticated user, optionally
// restricted to one organization.
func List(ctx context.Context, client api.Requester, organizationGUID string) ([]*Group, error) {
	var params map[string]any
	if organizationGUID != "" {
		params = map[string]any{"organization_guid": organizationGUID}
	}
	resp, err := client.Request(ctx, http.MethodGet, "/groups", params)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Groups []groupPayload `json:"groups"`
	}
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, fmt.Errorf("unable to parse groups payload due to %w", err)
	}
	return lo.Map(envelope.Groups, func(payload groupPayload, _ int) *Group {
		return payload.toGroup()
	}), nil
}
