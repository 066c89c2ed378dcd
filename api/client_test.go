package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akarasev/go-bitly/api"
)

type capturedRequest struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   []byte
}

func prepareTestServer(t *testing.T) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	echo := func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*captured = capturedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			header: r.Header.Clone(),
			body:   body,
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": true}`))
	}

	router := chi.NewRouter()
	router.Get("/echo", echo)
	router.Post("/echo", echo)
	router.Patch("/echo", echo)
	router.Get("/v4/echo", echo)
	router.Get("/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		echo(w, r)
	})
	router.Get("/errors/{code}", func(w http.ResponseWriter, r *http.Request) {
		code, err := strconv.Atoi(chi.URLParam(r, "code"))
		require.NoError(t, err)
		http.Error(w, "MONTHLY_RATE_LIMIT_EXCEEDED", code)
	})

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, captured
}

func prepareTestClient(t *testing.T, baseURL string) *api.Client {
	t.Helper()
	client, err := api.New("sekr3t-token", api.WithBaseURL(baseURL))
	require.NoError(t, err)
	return client
}

func TestClientSetsRequestHeaders(t *testing.T) {
	ts, captured := prepareTestServer(t)
	client := prepareTestClient(t, ts.URL)

	_, err := client.Request(context.Background(), http.MethodPost, "/echo", map[string]any{"long_url": "https://example.com/"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sekr3t-token", captured.header.Get("Authorization"))
	assert.Equal(t, "application/json", captured.header.Get("Accept"))
	assert.Equal(t, "application/json", captured.header.Get("Content-Type"))
	// Every call carries a fresh correlation id
	_, err = uuid.Parse(captured.header.Get("X-Request-Id"))
	assert.NoError(t, err)
}

func TestClientEncodesGetParamsIntoQuery(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		want   url.Values
	}{
		{
			name:   "no params",
			params: nil,
			want:   url.Values{},
		},
		{
			name:   "string param",
			params: map[string]any{"page": "2"},
			want:   url.Values{"page": []string{"2"}},
		},
		{
			name:   "non-string params are stringified",
			params: map[string]any{"units": -1, "unit": "day"},
			want:   url.Values{"units": []string{"-1"}, "unit": []string{"day"}},
		},
	}

	ts, captured := prepareTestServer(t)
	client := prepareTestClient(t, ts.URL)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Request(context.Background(), http.MethodGet, "/echo", tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, captured.query)
			assert.Empty(t, captured.body)
		})
	}
}

func TestClientSendsPostParamsAsJSONBody(t *testing.T) {
	ts, captured := prepareTestServer(t)
	client := prepareTestClient(t, ts.URL)

	params := map[string]any{
		"long_url": "https://example.com/",
		"tags":     []string{"marketing", "launch"},
		"deeplinks": []map[string]string{
			{"app_id": "com.example.app", "app_uri_path": "/store?id=123"},
		},
	}
	_, err := client.Request(context.Background(), http.MethodPost, "/echo", params)
	require.NoError(t, err)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(captured.body, &sent))
	assert.Equal(t, "https://example.com/", sent["long_url"])
	assert.Equal(t, []any{"marketing", "launch"}, sent["tags"])
	// Nested objects survive structurally, they are not flattened
	deeplinks, ok := sent["deeplinks"].([]any)
	require.True(t, ok)
	assert.Equal(t, "/store?id=123", deeplinks[0].(map[string]any)["app_uri_path"])
	assert.Empty(t, captured.query)
}

func TestClientReturnsRequestErrorOnFailure(t *testing.T) {
	tests := []int{400, 403, 404, 429, 500, 503}

	ts, _ := prepareTestServer(t)
	client := prepareTestClient(t, ts.URL)
	for _, wantCode := range tests {
		t.Run(strconv.Itoa(wantCode), func(t *testing.T) {
			resp, err := client.Request(context.Background(), http.MethodGet, "/errors/"+strconv.Itoa(wantCode), nil)
			assert.Nil(t, resp)

			var reqErr *api.RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, wantCode, reqErr.StatusCode)
			assert.Contains(t, reqErr.Body, "MONTHLY_RATE_LIMIT_EXCEEDED")
		})
	}
}

func TestClientAppendsPathToBaseURL(t *testing.T) {
	ts, captured := prepareTestServer(t)
	client := prepareTestClient(t, ts.URL+"/v4/")

	_, err := client.Request(context.Background(), http.MethodGet, "/echo", nil)
	require.NoError(t, err)
	assert.Equal(t, "/v4/echo", captured.path)
}

func TestClientRequiresValidBaseURL(t *testing.T) {
	_, err := api.New("token", api.WithBaseURL("://not-a-url"))
	assert.Error(t, err)
}

func TestClientTimeoutAppliesRegardlessOfOptionOrder(t *testing.T) {
	ts, _ := prepareTestServer(t)
	shared := &http.Client{}

	tests := []struct {
		name string
		opts []api.Option
	}{
		{
			name: "timeout before http client",
			opts: []api.Option{api.WithTimeout(50 * time.Millisecond), api.WithHTTPClient(shared)},
		},
		{
			name: "timeout after http client",
			opts: []api.Option{api.WithHTTPClient(shared), api.WithTimeout(50 * time.Millisecond)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]api.Option{api.WithBaseURL(ts.URL)}, tt.opts...)
			client, err := api.New("token", opts...)
			require.NoError(t, err)

			resp, err := client.Request(context.Background(), http.MethodGet, "/slow", nil)
			assert.Nil(t, resp)
			assert.Error(t, err)
		})
	}
	// The caller's client is copied, never mutated
	assert.Zero(t, shared.Timeout)
}
