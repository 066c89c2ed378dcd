package testapi_test

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akarasev/go-bitly/internal/testapi"
)

func TestMergeHandlerEchoesSubmittedFields(t *testing.T) {
	ts := testapi.New(t)

	resp, err := http.Post(ts.URL+"/bitlinks", "application/json", strings.NewReader(`{"title": "Test link"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"title":"Test link"`)
}

func TestMergeHandlerFailsLoudlyOnMalformedBody(t *testing.T) {
	ts := testapi.New(t)

	resp, err := http.Post(ts.URL+"/bitlinks", "application/json", strings.NewReader("not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	// A broken request body must surface as an explicit server error,
	// not as a silently half-merged payload.
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
