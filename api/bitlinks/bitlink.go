package bitlinks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/akarasev/go-bitly/api"
)

// Deeplink carries the mobile deep-linking metadata attached to a bitlink.
// It is a plain value object: the same four keys are used both when parsing
// a bitlink payload and when submitting deeplinks with Create.
type Deeplink struct {
	AppID       string `json:"app_id"`
	AppURIPath  string `json:"app_uri_path"`
	InstallURL  string `json:"install_url"`
	InstallType string `json:"install_type"`
}

// Bitlink is one shortened-link record. Every field is optional on the
// wire: the public view returned by Expand only carries ID, Link, LongURL
// and CreatedAt, and the rest stay at their zero values.
type Bitlink struct {
	ID             string
	Link           string
	LongURL        string
	Title          string
	CreatedAt      time.Time
	Archived       bool
	Tags           []string
	CustomBitlinks []string
	Deeplinks      []Deeplink
	// GroupGUID is extracted from the trailing segment of the
	// references.group URL; empty when the payload has no references.
	GroupGUID string
}

type bitlinkPayload struct {
	ID             string     `json:"id"`
	Link           string     `json:"link"`
	LongURL        string     `json:"long_url"`
	Title          string     `json:"title"`
	CreatedAt      string     `json:"created_at"`
	Archived       bool       `json:"archived"`
	Tags           []string   `json:"tags"`
	CustomBitlinks []string   `json:"custom_bitlinks"`
	Deeplinks      []Deeplink `json:"deeplinks"`
	References     struct {
		Group string `json:"group"`
	} `json:"references"`
}

func (p bitlinkPayload) toBitlink() *Bitlink {
	return &Bitlink{
		ID:             p.ID,
		Link:           p.Link,
		LongURL:        p.LongURL,
		Title:          p.Title,
		CreatedAt:      api.ParseTimestamp(p.CreatedAt),
		Archived:       p.Archived,
		Tags:           p.Tags,
		CustomBitlinks: p.CustomBitlinks,
		Deeplinks:      p.Deeplinks,
		GroupGUID:      api.ReferenceGUID(p.References.Group),
	}
}

func newBitlinkFromResponse(resp *api.Response) (*Bitlink, error) {
	var payload bitlinkPayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("unable to parse bitlink payload due to %w", err)
	}
	return payload.toBitlink(), nil
}

// ShortenParams are the arguments to Shorten. Only LongURL is required;
// empty optional values are omitted from the request entirely.
type ShortenParams struct {
	LongURL   string
	GroupGUID string
	Domain    string
}

func (p ShortenParams) toMap() map[string]any {
	params := map[string]any{"long_url": p.LongURL}
	if p.GroupGUID != "" {
		params["group_guid"] = p.GroupGUID
	}
	if p.Domain != "" {
		params["domain"] = p.Domain
	}
	return params
}

// Shorten converts a long URL into a bitlink via POST /shorten.
func Shorten(ctx context.Context, client api.Requester, params ShortenParams) (*Bitlink, error) {
	resp, err := client.Request(ctx, http.MethodPost, "/shorten", params.toMap())
	if err != nil {
		return nil, err
	}
	return newBitlinkFromResponse(resp)
}

// CreateParams are the arguments to Create, a superset of ShortenParams.
// Deeplinks are submitted as raw objects, not flattened.
type CreateParams struct {
	LongURL   string
	GroupGUID string
	Domain    string
	Title     string
	Tags      []string
	Deeplinks []Deeplink
}

func (p CreateParams) toMap() map[string]any {
	params := ShortenParams{LongURL: p.LongURL, GroupGUID: p.GroupGUID, Domain: p.Domain}.toMap()
	if p.Title != "" {
		params["title"] = p.Title
	}
	if len(p.Tags) > 0 {
		params["tags"] = p.Tags
	}
	if len(p.Deeplinks) > 0 {
		params["deeplinks"] = p.Deeplinks
	}
	return params
}

// Create shortens a long URL with full control over title, tags and
// deeplinks via POST /bitlinks.
func Create(ctx context.Context, client api.Requester, params CreateParams) (*Bitlink, error) {
	resp, err := client.Request(ctx, http.MethodPost, "/bitlinks", params.toMap())
	if err != nil {
		return nil, err
	}
	return newBitlinkFromResponse(resp)
}

// Fetch retrieves a single bitlink by its ID, e.g. "bit.ly/2Qj2niP".
func Fetch(ctx context.Context, client api.Requester, bitlink string) (*Bitlink, error) {
	resp, err := client.Request(ctx, http.MethodGet, "/bitlinks/"+bitlink, nil)
	if err != nil {
		return nil, err
	}
	return newBitlinkFromResponse(resp)
}

// Expand resolves a bitlink ID into its public view via POST /expand.
// The result carries only the public fields (id, link, long_url,
// created_at); everything else stays at its zero value.
func Expand(ctx context.Context, client api.Requester, bitlinkID string) (*Bitlink, error) {
	resp, err := client.Request(ctx, http.MethodPost, "/expand", map[string]any{"bitlink_id": bitlinkID})
	if err != nil {
		return nil, err
	}
	return newBitlinkFromResponse(resp)
}

// UpdateParams are the mutable bitlink fields accepted by Update.
// Archived is a pointer so that "leave unchanged" and "set to false"
// remain distinguishable.
type UpdateParams struct {
	LongURL  string
	Title    string
	Tags     []string
	Archived *bool
}

func (p UpdateParams) toMap() map[string]any {
	params := make(map[string]any)
	if p.LongURL != "" {
		params["long_url"] = p.LongURL
	}
	if p.Title != "" {
		params["title"] = p.Title
	}
	if len(p.Tags) > 0 {
		params["tags"] = p.Tags
	}
	if p.Archived != nil {
		params["archived"] = *p.Archived
	}
	return params
}

// Update changes fields of an existing bitlink via PATCH /bitlinks/{id}.
func Update(ctx context.Context, client api.Requester, bitlink string, params UpdateParams) (*Bitlink, error) {
	resp, err := client.Request(ctx, http.MethodPatch, "/bitlinks/"+bitlink, params.toMap())
	if err != nil {
		return nil, err
	}
	return newBitlinkFromResponse(resp)
}

// ClicksSummary is the aggregated click count for one bitlink over the
// requested period.
type ClicksSummary struct {
	UnitReference string `json:"unit_reference"`
	Unit          string `json:"unit"`
	Units         int    `json:"units"`
	TotalClicks   int    `json:"total_clicks"`
}

// ClicksParams narrow the period a clicks summary covers. The zero value
// requests the API defaults.
type ClicksParams struct {
	Unit  string
	Units int
}

// GetClicksSummary returns the click totals for a bitlink via
// GET /bitlinks/{id}/clicks/summary.
func GetClicksSummary(ctx context.Context, client api.Requester, bitlink string, params ClicksParams) (*ClicksSummary, error) {
	queryParams := make(map[string]any)
	if params.Unit != "" {
		queryParams["unit"] = params.Unit
	}
	if params.Units != 0 {
		queryParams["units"] = params.Units
	}
	resp, err := client.Request(ctx, http.MethodGet, "/bitlinks/"+bitlink+"/clicks/summary", queryParams)
	if err != nil {
		return nil, err
	}
	var summary ClicksSummary
	if err := json.Unmarshal(resp.Body, &summary); err != nil {
		return nil, fmt.Errorf("unable to parse clicks summary due to %w", err)
	}
	return &summary, nil
}
