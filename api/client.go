package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the production endpoint of the Bitly v4 API.
const DefaultBaseURL = "https://api-ssl.bitly.com/v4"

const defaultTimeout = 10 * time.Second

// Requester performs a single authenticated API call. Resource packages
// consume this interface rather than the concrete Client, which lets tests
// substitute a stub without an HTTP server.
type Requester interface {
	Request(ctx context.Context, method, path string, params map[string]any) (*Response, error)
}

// Response is a successfully completed API call: a 2xx status, the raw
// response body and the response headers. Non-2xx statuses never produce
// a Response, they produce a *RequestError instead.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// Client issues requests against the remote API. It carries the access
// token and base URL and is safe to share between any number of resource
// objects: it is never mutated after construction.
type Client struct {
	token   string
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	log     zerolog.Logger
}

type Option func(*Client) error

func WithBaseURL(rawURL string) Option {
	return func(c *Client) error {
		u, err := url.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("unable to parse base URL due to %w", err)
		}
		c.baseURL = u
		return nil
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		c.http = httpClient
		return nil
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		c.timeout = timeout
		return nil
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = logger
		return nil
	}
}

func New(token string, opts ...Option) (*Client, error) {
	baseURL, err := url.Parse(DefaultBaseURL)
	if err != nil {
		return nil, err
	}
	client := &Client{
		token:   token,
		baseURL: baseURL,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		if err := opt(client); err != nil {
			return nil, err
		}
	}
	// The timeout is applied only after all options ran, so the result
	// does not depend on option order and a caller-supplied http.Client
	// is copied rather than mutated.
	if client.http == nil {
		client.http = &http.Client{Timeout: defaultTimeout}
	}
	if client.timeout > 0 {
		httpClient := *client.http
		httpClient.Timeout = client.timeout
		client.http = &httpClient
	}
	return client, nil
}

// Request performs one blocking round-trip against the API.
// For GET and DELETE the params are rendered into the query string;
// for POST and PATCH they are sent as a JSON body, so param values may be
// arbitrarily nested objects and are serialized structurally.
func (c *Client) Request(ctx context.Context, method, path string, params map[string]any) (*Response, error) {
	reqURL := *c.baseURL
	reqURL.Path = strings.TrimRight(reqURL.Path, "/") + path

	var body io.Reader
	switch method {
	case http.MethodGet, http.MethodDelete:
		if len(params) > 0 {
			query := reqURL.Query()
			for key, value := range params {
				query.Set(key, fmt.Sprint(value))
			}
			reqURL.RawQuery = query.Encode()
		}
	default:
		if len(params) > 0 {
			encoded, err := json.Marshal(params)
			if err != nil {
				return nil, fmt.Errorf("unable to encode request params due to %w", err)
			}
			body = bytes.NewReader(encoded)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform %s %s due to %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response for %s %s due to %w", method, path, err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(started)).
		Msg("api request")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &RequestError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		Header:     resp.Header,
	}, nil
}
