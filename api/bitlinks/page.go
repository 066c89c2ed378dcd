package bitlinks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/samber/lo"

	"github.com/akarasev/go-bitly/api"
)

// Pagination is the metadata block of a paginated response. Next and Prev
// are opaque URLs: they only signal whether an adjacent page exists and
// are never followed (see Page.fetchPage).
type Pagination struct {
	Next  string `json:"next"`
	Prev  string `json:"prev"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Size  int    `json:"size"`
}

// Page is one page of bitlinks together with the client and path needed
// to fetch its neighbours. The client is shared with the caller, never
// owned.
type Page struct {
	Links      []*Bitlink
	Pagination Pagination

	client api.Requester
	path   string
}

type pageEnvelope struct {
	Links      []bitlinkPayload `json:"links"`
	Pagination Pagination       `json:"pagination"`
}

func newPageFromResponse(client api.Requester, path string, resp *api.Response) (*Page, error) {
	var envelope pageEnvelope
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, fmt.Errorf("unable to parse paginated response due to %w", err)
	}
	links := lo.Map(envelope.Links, func(payload bitlinkPayload, _ int) *Bitlink {
		return payload.toBitlink()
	})
	return &Page{
		Links:      links,
		Pagination: envelope.Pagination,
		client:     client,
		path:       path,
	}, nil
}

// List returns the first page of a group's bitlinks via
// GET /groups/{group_guid}/bitlinks.
func List(ctx context.Context, client api.Requester, groupGUID string) (*Page, error) {
	path := fmt.Sprintf("/groups/%s/bitlinks", groupGUID)
	resp, err := client.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return newPageFromResponse(client, path, resp)
}

func (p *Page) HasNextPage() bool {
	return p.Pagination.Next != ""
}

func (p *Page) HasPrevPage() bool {
	return p.Pagination.Prev != ""
}

// NextPage fetches the following page. When the current page is the last
// one it returns (nil, nil) without issuing a request.
func (p *Page) NextPage(ctx context.Context) (*Page, error) {
	if !p.HasNextPage() {
		return nil, nil
	}
	return p.fetchPage(ctx, p.Pagination.Page+1)
}

// PrevPage fetches the preceding page. When the current page is the first
// one it returns (nil, nil) without issuing a request.
func (p *Page) PrevPage(ctx context.Context) (*Page, error) {
	if !p.HasPrevPage() {
		return nil, nil
	}
	return p.fetchPage(ctx, p.Pagination.Page-1)
}

// fetchPage re-issues the original request with an explicit page number.
// The number comes from the current page's own metadata; the query string
// of the next/prev URLs is deliberately ignored.
func (p *Page) fetchPage(ctx context.Context, number int) (*Page, error) {
	params := map[string]any{"page": strconv.Itoa(number)}
	resp, err := p.client.Request(ctx, http.MethodGet, p.path, params)
	if err != nil {
		return nil, err
	}
	return newPageFromResponse(p.client, p.path, resp)
}
