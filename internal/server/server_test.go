package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ou-videos-mcp/internal/mcp"
	"ou-videos-mcp/internal/tools"
	"ou-videos-mcp/internal/video"
)

type stubSource struct {
	records []video.Record
}

func (s stubSource) Query(context.Context, video.Query) ([]video.Record, error) {
	return s.records, nil
}

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	catalog := tools.DefaultCatalog()
	inv, err := tools.NewInvoker(catalog, stubSource{records: []video.Record{{Title: "Red River Rivalry"}}})
	require.NoError(t, err)
	d := mcp.NewDispatcher(catalog, inv, mcp.Implementation{Name: "ou-videos-mcp", Version: "test"})
	return New(cfg, catalog, d)
}

func serve(s *Server, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Config{Token: "x"})

	rr := serve(s, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestRoot(t *testing.T) {
	s := newTestServer(t, Config{Token: "x"})

	rr := serve(s, http.MethodGet, "/", "", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "running")
}

func TestAuth(t *testing.T) {
	s := newTestServer(t, Config{Token: "x"})
	listBody := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`

	rr := serve(s, http.MethodPost, "/mcp", listBody, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rr.Body.String())

	rr = serve(s, http.MethodPost, "/mcp", listBody, "wrong")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = serve(s, http.MethodPost, "/mcp", listBody, "x")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = serve(s, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthDisabledWithoutToken(t *testing.T) {
	s := newTestServer(t, Config{})

	rr := serve(s, http.MethodPost, "/mcp", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestOpenPaths(t *testing.T) {
	s := newTestServer(t, Config{Token: "x", OpenPaths: []string{"/health", "/metrics"}})

	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/metrics", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(s, http.MethodGet, "/mcp/tools", "", "").Code)
}

func TestToolsManifest(t *testing.T) {
	s := newTestServer(t, Config{Token: "x"})

	rr := serve(s, http.MethodGet, "/mcp/tools", "", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Tools []tools.Definition `json:"tools"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Len(t, resp.Tools, 3)
	assert.Equal(t, tools.SearchOUVideosName, resp.Tools[0].Name)
}

func TestRPCCall(t *testing.T) {
	s := newTestServer(t, Config{Token: "x"})
	body := `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"search_ou_videos","arguments":{"query":"Red River"}}}`

	rr := serve(s, http.MethodPost, "/mcp", body, "x")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 2.0, resp["id"])
	content := resp["result"].(map[string]any)["content"].([]any)
	assert.Contains(t, content[0].(map[string]any)["text"], "Found 1 video")
}

func TestRPCNotificationHasNoBody(t *testing.T) {
	s := newTestServer(t, Config{Token: "x"})

	rr := serve(s, http.MethodPost, "/mcp", `{"jsonrpc":"2.0","method":"notifications/initialized"}`, "x")

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestRPCMalformedBody(t *testing.T) {
	s := newTestServer(t, Config{})

	rr := serve(s, http.MethodPost, "/mcp", `not json`, "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":null,"error":{"code":-32600,"message":"Invalid Request"}}`, rr.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, Config{Token: "x"})

	rr := serve(s, http.MethodOptions, "/mcp", "", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "POST")
}
