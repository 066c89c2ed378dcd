// Package testapi runs a fake Bitly API on top of httptest for the
// package tests. Responses are canned payloads mirroring the documented
// examples of the remote service; every request is captured so tests can
// assert on methods, paths, params and headers.
package testapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/akarasev/go-bitly/api"
)

const (
	// BitlinkJSON is the full bitlink payload as returned by /shorten,
	// /bitlinks and /bitlinks/{id}.
	BitlinkJSON = `{
		"created_at": "2020-01-02T23:51:47+0000",
		"id": "bit.ly/2Qj2niP",
		"link": "http://bit.ly/2Qj2niP",
		"custom_bitlinks": [],
		"long_url": "https://example.com/",
		"archived": false,
		"tags": [],
		"deeplinks": [],
		"references": {
			"group": "https://api-ssl.bitly.com/v4/groups/Bk1jH2kLmNo"
		}
	}`

	// PublicBitlinkJSON is the reduced view returned by /expand.
	PublicBitlinkJSON = `{
		"created_at": "2020-01-02T23:51:47+0000",
		"link": "http://bit.ly/2Qj2niP",
		"id": "bit.ly/2Qj2niP",
		"long_url": "https://example.com/"
	}`

	// FirstPageJSON is page 1 of a group's bitlinks. The page number in
	// the next URL does not match the metadata on purpose: the client is
	// expected to derive the next page number from the metadata and
	// ignore the URL.
	FirstPageJSON = `{
		"links": [` + BitlinkJSON + `],
		"pagination": {
			"next": "https://api-ssl.bitly.com/v4/groups/Bk1jH2kLmNo/bitlinks?page=17",
			"prev": "",
			"size": 50,
			"page": 1,
			"total": 100
		}
	}`

	// LastPageJSON is the final page: no next URL.
	LastPageJSON = `{
		"links": [` + BitlinkJSON + `],
		"pagination": {
			"next": "",
			"prev": "https://api-ssl.bitly.com/v4/groups/Bk1jH2kLmNo/bitlinks?page=1",
			"size": 50,
			"page": 2,
			"total": 100
		}
	}`

	ClicksSummaryJSON = `{
		"unit_reference": "2020-10-29T13:09:00+0000",
		"total_clicks": 42,
		"units": -1,
		"unit": "day"
	}`

	GroupJSON = `{
		"created": "2019-05-29T13:09:00+0000",
		"modified": "2020-01-02T23:51:47+0000",
		"bsds": [],
		"guid": "Bk1jH2kLmNo",
		"organization_guid": "Ok2fH3kPqRs",
		"name": "shared links",
		"is_active": true,
		"role": "org-admin",
		"references": {
			"organization": "https://api-ssl.bitly.com/v4/organizations/Ok2fH3kPqRs"
		}
	}`

	UserJSON = `{
		"login": "hank_scorpio",
		"name": "Hank Scorpio",
		"is_active": true,
		"is_2fa_enabled": false,
		"default_group_guid": "Bk1jH2kLmNo",
		"created": "2019-05-29T13:09:00+0000",
		"modified": "2020-01-02T23:51:47+0000",
		"emails": [{"email": "hank@globex.example", "is_primary": true, "is_verified": true}]
	}`
)

// AccessToken is the token the fake server expects in every request.
const AccessToken = "test-access-token"

// Request is one captured inbound request.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
}

// New starts the fake API and registers its shutdown with the test.
func New(t *testing.T) *Server {
	t.Helper()
	server := &Server{}
	server.Server = httptest.NewServer(server.router())
	t.Cleanup(server.Close)
	return server
}

// Client returns an api.Client pointed at the fake server.
func (s *Server) Client(t *testing.T) *api.Client {
	t.Helper()
	client, err := api.New(AccessToken, api.WithBaseURL(s.URL))
	if err != nil {
		t.Fatalf("failed to build test client due to %s", err)
	}
	return client
}

// Requests returns all captured requests in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent captured request, or nil when the
// server has not been hit.
func (s *Server) LastRequest() *Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	captured := s.requests[len(s.requests)-1]
	return &captured
}

func (s *Server) router() chi.Router {
	router := chi.NewRouter()
	router.Use(s.capture)

	router.Post("/shorten", serveJSON(BitlinkJSON))
	router.Post("/bitlinks", s.mergeIntoBitlink)
	router.Get("/bitlinks/{domain}/{hash}", serveJSON(BitlinkJSON))
	router.Patch("/bitlinks/{domain}/{hash}", s.mergeIntoBitlink)
	router.Get("/bitlinks/{domain}/{hash}/clicks/summary", serveJSON(ClicksSummaryJSON))
	router.Post("/expand", serveJSON(PublicBitlinkJSON))
	router.Get("/groups", serveJSON(`{"groups": [`+GroupJSON+`]}`))
	router.Get("/groups/{guid}", serveJSON(GroupJSON))
	router.Get("/groups/{guid}/bitlinks", s.serveBitlinkPage)
	router.Get("/user", serveJSON(UserJSON))

	return router
}

// capture records every request, body included, before routing it.
func (s *Server) capture(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

func serveJSON(payload string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}
}

// mergeIntoBitlink overlays the request body onto the canned bitlink
// payload, so created/updated bitlinks echo the submitted title, tags and
// deeplinks the way the real API does.
func (s *Server) mergeIntoBitlink(w http.ResponseWriter, r *http.Request) {
	var base map[string]any
	if err := json.Unmarshal([]byte(BitlinkJSON), &base); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var submitted map[string]any
	body, _ := io.ReadAll(r.Body)
	if len(body) > 0 {
		if err := json.Unmarshal(body, &submitted); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	for _, key := range []string{"long_url", "title", "tags", "deeplinks", "archived"} {
		if value, ok := submitted[key]; ok {
			base[key] = value
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(base)
}

// serveBitlinkPage serves page 1 by default and the last page when the
// request asks for any other page number.
func (s *Server) serveBitlinkPage(w http.ResponseWriter, r *http.Request) {
	payload := FirstPageJSON
	if page := r.URL.Query().Get("page"); page != "" && page != "1" {
		payload = LastPageJSON
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(payload))
}

// RequesterFunc adapts a function to api.Requester, letting tests feed
// resources arbitrary payloads without an HTTP server.
type RequesterFunc func(ctx context.Context, method, path string, params map[string]any) (*api.Response, error)

func (f RequesterFunc) Request(ctx context.Context, method, path string, params map[string]any) (*api.Response, error) {
	return f(ctx, method, path, params)
}

// StaticRequester always answers with the given body and a 200 status.
func StaticRequester(body string) RequesterFunc {
	return func(ctx context.Context, method, path string, params map[string]any) (*api.Response, error) {
		return &api.Response{
			StatusCode: http.StatusOK,
			Body:       []byte(body),
			Header:     http.Header{"Content-Type": []string{"application/json"}},
		}, nil
	}
}
