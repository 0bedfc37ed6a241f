package orchestrator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naruu-io/naruu/plugin"
)

func testPlugins() []plugin.Info {
	return []plugin.Info{
		{
			Name:         "content",
			Description:  "content production pipeline",
			Capabilities: []string{"content.create", "content.advance_pipeline"},
		},
		{
			Name:         "crm",
			Description:  "customer relationship commands",
			Capabilities: []string{"send message", "list customers"},
		},
	}
}

func TestKeywordRouter_NameVerbatim(t *testing.T) {
	r := keywordRouter{}

	res, err := r.Resolve(context.Background(), "use the CRM to reach out", testPlugins())

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "crm", res.Plugin)
	assert.Equal(t, "send message", res.Command)
}

func TestKeywordRouter_CapabilityFragmentScoring(t *testing.T) {
	r := keywordRouter{}

	// "send" and "message" both occur → score 2 beats every other pair.
	res, err := r.Resolve(context.Background(), "please send a welcome message", testPlugins())

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "crm", res.Plugin)
	assert.Equal(t, "send message", res.Command)
	assert.Equal(t, "please send a welcome message", res.Payload["text"])
}

func TestKeywordRouter_DottedCapabilityIsOneFragment(t *testing.T) {
	r := keywordRouter{}
	plugins := []plugin.Info{
		{Name: "cms", Capabilities: []string{"content.create"}},
	}

	// "create" alone must not match; "content.create" is a single fragment,
	// not two words.
	res, err := r.Resolve(context.Background(), "create a new entry", plugins)
	require.NoError(t, err)
	assert.Nil(t, res)

	// The literal fragment still matches.
	res, err = r.Resolve(context.Background(), "run content.create for me", plugins)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "content.create", res.Command)
}

func TestKeywordRouter_ZeroScoreNoMatch(t *testing.T) {
	r := keywordRouter{}

	res, err := r.Resolve(context.Background(), "what is the weather in Busan", testPlugins())

	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestKeywordRouter_FirstSeenWinsTies(t *testing.T) {
	r := keywordRouter{}
	plugins := []plugin.Info{
		{Name: "alpha", Capabilities: []string{"deploy service"}},
		{Name: "beta", Capabilities: []string{"deploy api"}},
	}

	res, err := r.Resolve(context.Background(), "deploy it now", plugins)

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "alpha", res.Plugin)
}

func TestKeywordRouter_NoPlugins(t *testing.T) {
	r := keywordRouter{}

	res, err := r.Resolve(context.Background(), "anything", nil)

	require.NoError(t, err)
	assert.Nil(t, res)
}

// aiAnswer builds a minimal Messages API response with one text block.
func aiAnswer(text string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-sonnet-4-5-20250929",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": "end_turn",
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 20},
	}
}

func serveAI(t *testing.T, status int, body map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestAnthropicRouter_ParsesJSONAnswer(t *testing.T) {
	server := serveAI(t, http.StatusOK,
		aiAnswer(`{"plugin": "content", "command": "content.create", "payload": {"title": "Daegu"}}`))

	r := newAnthropicRouter("sk-test", anthropicRouterOptions{BaseURL: server.URL})
	res, err := r.Resolve(context.Background(), "create content about Daegu", testPlugins())

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "content", res.Plugin)
	assert.Equal(t, "content.create", res.Command)
	assert.Equal(t, "Daegu", res.Payload["title"])
}

func TestAnthropicRouter_NullMeansNoMatch(t *testing.T) {
	server := serveAI(t, http.StatusOK, aiAnswer("null"))

	r := newAnthropicRouter("sk-test", anthropicRouterOptions{BaseURL: server.URL})
	res, err := r.Resolve(context.Background(), "nothing matches this", testPlugins())

	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestAnthropicRouter_UnparsableFallsBackToKeywords(t *testing.T) {
	server := serveAI(t, http.StatusOK, aiAnswer("sorry, I cannot help with that"))

	r := newAnthropicRouter("sk-test", anthropicRouterOptions{BaseURL: server.URL})
	res, err := r.Resolve(context.Background(), "send a message to the customer", testPlugins())

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "crm", res.Plugin)
	assert.Equal(t, "send message", res.Command)
}

func TestAnthropicRouter_TransportFailureFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	r := newAnthropicRouter("sk-test", anthropicRouterOptions{BaseURL: server.URL})
	res, err := r.Resolve(context.Background(), "send a message please", testPlugins())

	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "crm", res.Plugin)
}

func TestAnthropicRouter_NoPluginsShortCircuits(t *testing.T) {
	// No server at all: with zero plugins the router never issues a call.
	r := newAnthropicRouter("sk-test", anthropicRouterOptions{BaseURL: "http://127.0.0.1:0"})

	res, err := r.Resolve(context.Background(), "anything", nil)

	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestRoutingPrompt_EnumeratesPlugins(t *testing.T) {
	prompt := routingPrompt(testPlugins())

	assert.Contains(t, prompt, "content")
	assert.Contains(t, prompt, "content.advance_pipeline")
	assert.Contains(t, prompt, "crm")
	assert.Contains(t, prompt, "send message")
	assert.Contains(t, prompt, "null")
}
