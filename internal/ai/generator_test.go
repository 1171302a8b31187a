package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siteforge_server/internal/faults"
	"siteforge_server/internal/types"
)

// fakeCompletionServer returns a generator wired to an httptest server that
// answers every chat-completion call with the given handler.
func fakeCompletionServer(t *testing.T, handler http.HandlerFunc) *Generator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	client := openai.NewClientWithConfig(cfg)
	return NewGeneratorWithClient(client, openai.GPT4o, 2*time.Second)
}

func completionWith(t *testing.T, content string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   openai.GPT4o,
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": content,
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}
}

func TestGenerateHappyPath(t *testing.T) {
	content := `{"html":"<html><body>bakery</body></html>","css":"body{color:red}","js":"console.log('hi')","message":"A bakery landing page."}`
	g := fakeCompletionServer(t, completionWith(t, content))

	result := g.Generate(context.Background(), "A bakery landing page", nil)

	assert.False(t, result.Degraded)
	assert.Empty(t, result.DegradedFields)
	assert.NoError(t, result.Cause)
	assert.Equal(t, "<html><body>bakery</body></html>", result.Artifact.HTML)
	assert.Equal(t, "body{color:red}", result.Artifact.CSS)
	assert.Equal(t, "console.log('hi')", result.Artifact.JS)
	assert.Equal(t, "A bakery landing page.", result.Artifact.SummaryMessage)
}

func TestGenerateStripsCodeFences(t *testing.T) {
	content := "```json\n{\"html\":\"<p>x</p>\",\"css\":\"p{}\",\"js\":\"1;\",\"message\":\"ok\"}\n```"
	g := fakeCompletionServer(t, completionWith(t, content))

	result := g.Generate(context.Background(), "a tiny page", nil)

	assert.False(t, result.Degraded)
	assert.Equal(t, "<p>x</p>", result.Artifact.HTML)
}

func TestGeneratePartialResponseFallsBackPerField(t *testing.T) {
	// Only js present: js must be kept, html and css replaced individually.
	content := `{"js":"document.title='model';"}`
	g := fakeCompletionServer(t, completionWith(t, content))

	result := g.Generate(context.Background(), "A portfolio site for a painter", nil)

	assert.True(t, result.Degraded)
	assert.ElementsMatch(t, []string{"html", "css"}, result.DegradedFields)
	assert.ErrorIs(t, result.Cause, faults.ErrMalformedResponse)

	assert.Equal(t, "document.title='model';", result.Artifact.JS, "model-supplied field must be kept")
	assert.Contains(t, result.Artifact.HTML, "A portfolio site for a painter")
	assert.NotEmpty(t, result.Artifact.CSS)
}

func TestGenerateServerErrorFallsBackCompletely(t *testing.T) {
	g := fakeCompletionServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	})

	result := g.Generate(context.Background(), "A gym landing page", nil)

	assert.True(t, result.Degraded)
	assert.ElementsMatch(t, []string{"html", "css", "js"}, result.DegradedFields)
	assert.NotEmpty(t, result.Artifact.HTML)
	assert.NotEmpty(t, result.Artifact.CSS)
	assert.NotEmpty(t, result.Artifact.JS)
	assert.Contains(t, result.Artifact.HTML, "A gym landing page")
}

func TestGenerateTimeoutFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	g := NewGeneratorWithClient(openai.NewClientWithConfig(cfg), openai.GPT4o, 50*time.Millisecond)

	start := time.Now()
	result := g.Generate(context.Background(), "A slow remote scenario", nil)

	assert.Less(t, time.Since(start), 250*time.Millisecond, "generator must give up at its own timeout")
	assert.True(t, result.Degraded)
	assert.ErrorIs(t, result.Cause, faults.ErrRemoteUnavailable)
	assert.NotEmpty(t, result.Artifact.HTML)
}

func TestGenerateMalformedJSONFallsBack(t *testing.T) {
	g := fakeCompletionServer(t, completionWith(t, "here you go: <html>not json</html>"))

	result := g.Generate(context.Background(), "A travel blog homepage", nil)

	assert.True(t, result.Degraded)
	assert.ErrorIs(t, result.Cause, faults.ErrMalformedResponse)
	assert.Contains(t, result.Artifact.HTML, "A travel blog homepage")
}

func TestGenerateUnconfiguredUsesFallback(t *testing.T) {
	g := NewGenerator("", "")

	result := g.Generate(context.Background(), "A bookstore front page", nil)

	assert.True(t, result.Degraded)
	assert.ErrorIs(t, result.Cause, faults.ErrConfigurationMissing)
	assert.NotEmpty(t, result.Artifact.HTML)
	assert.NotEmpty(t, result.Artifact.CSS)
	assert.NotEmpty(t, result.Artifact.JS)
}

func TestGenerateSendsPriorArtifactExcerpts(t *testing.T) {
	longHTML := make([]byte, 2000)
	for i := range longHTML {
		longHTML[i] = 'a'
	}

	var captured struct {
		Messages []openai.ChatCompletionMessage `json:"messages"`
	}
	content := `{"html":"<p>v2</p>","css":"p{}","js":"1;","message":"updated"}`
	g := fakeCompletionServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		completionWith(t, content)(w, r)
	})

	prior := &types.Artifact{HTML: string(longHTML), CSS: "old-css", JS: "old-js"}
	result := g.Generate(context.Background(), "make the hero bigger", prior)

	require.False(t, result.Degraded)
	require.Len(t, captured.Messages, 3, "system prompt, refinement context, user message")

	refinement := captured.Messages[1].Content
	assert.Contains(t, refinement, "old-css")
	assert.Contains(t, refinement, "old-js")
	// The prior HTML must be truncated to the excerpt length.
	assert.NotContains(t, refinement, string(longHTML))
	assert.Contains(t, refinement, string(longHTML[:500]))
}

func TestChatReturnsAssistantMessage(t *testing.T) {
	content := `{"html":"<p>x</p>","css":"p{}","js":"1;","message":"Built you a page."}`
	g := fakeCompletionServer(t, completionWith(t, content))

	assistant, result := g.Chat(context.Background(), "build me a page", nil)

	assert.Equal(t, "Built you a page.", assistant)
	assert.Equal(t, "<p>x</p>", result.Artifact.HTML)
}

func TestFallbackArtifactIsCompleteAndFresh(t *testing.T) {
	a := FallbackArtifact("A <script> unsafe & description")

	assert.NotEmpty(t, a.HTML)
	assert.NotEmpty(t, a.CSS)
	assert.NotEmpty(t, a.JS)
	assert.NotEmpty(t, a.SummaryMessage)

	// Description is embedded escaped, never raw.
	assert.Contains(t, a.HTML, "&lt;script&gt;")
	assert.NotContains(t, a.HTML, "A <script> unsafe")

	// Fixed structure: nav, hero, feature grid, footer.
	assert.Contains(t, a.HTML, "navbar")
	assert.Contains(t, a.HTML, "hero")
	assert.Contains(t, a.HTML, "feature-grid")
	assert.Contains(t, a.HTML, "footer")
}
