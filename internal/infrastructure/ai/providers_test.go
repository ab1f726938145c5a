package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/generative-ai-go/genai"
	openaioption "github.com/openai/openai-go/v2/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/persona-go/internal/domain"
	"github.com/doeshing/persona-go/internal/ports"
)

func chatRequest() ports.ChatRequest {
	return ports.ChatRequest{
		System: "You are Ada.",
		Messages: []domain.ChatMessage{
			{Role: domain.RoleUser, Content: "hello"},
			{Role: domain.RoleAssistant, Content: "hi there"},
			{Role: domain.RoleUser, Content: "how are you?"},
		},
		Temperature: domain.Float(0.4),
		MaxTokens:   64,
	}
}

func TestOpenAIProviderChat(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  fine, thanks  "}}]}`)
	}))
	defer server.Close()

	model := domain.ModelDefinition{Name: "gpt", Provider: domain.ProviderKindOpenAI, ModelID: "gpt-4o-mini", Endpoint: server.URL}
	provider := newOpenAIProvider(model, "sk-test", openaioption.WithMaxRetries(0))

	resp, err := provider.Chat(context.Background(), chatRequest())
	require.NoError(t, err)
	assert.Equal(t, "fine, thanks", resp.Text)
	assert.Equal(t, "gpt-4o-mini", body["model"])
	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, messages, 4, "system prompt plus three turns")
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
}

func TestOpenAIProviderEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[]}`)
	}))
	defer server.Close()

	model := domain.ModelDefinition{Name: "llama", Provider: domain.ProviderKindOllama, Endpoint: server.URL}
	provider := newOllamaProvider(model, openaioption.WithMaxRetries(0))
	assert.Equal(t, "ollama", provider.Name())

	_, err := provider.Chat(context.Background(), chatRequest())
	assert.ErrorContains(t, err, "empty response")
}

func TestOpenAIProviderServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad key"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	model := domain.ModelDefinition{Name: "gpt", Provider: domain.ProviderKindOpenAI, Endpoint: server.URL}
	_, err := newOpenAIProvider(model, "sk-bad", openaioption.WithMaxRetries(0)).Chat(context.Background(), chatRequest())
	assert.ErrorContains(t, err, "openai")
}

func TestAnthropicProviderChat(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "ak-test", r.Header.Get("X-Api-Key"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"m1","type":"message","role":"assistant","model":"claude",
			"content":[{"type":"text","text":"Doing well."}],
			"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":2}}`)
	}))
	defer server.Close()

	model := domain.ModelDefinition{Name: "claude", Provider: domain.ProviderKindAnthropic, ModelID: "claude-x", Endpoint: server.URL}
	provider := newAnthropicProvider(model, "ak-test", anthropicoption.WithMaxRetries(0))

	resp, err := provider.Chat(context.Background(), chatRequest())
	require.NoError(t, err)
	assert.Equal(t, "Doing well.", resp.Text)
	assert.Equal(t, "claude-x", body["model"])
	assert.EqualValues(t, 64, body["max_tokens"])
	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, messages, 3, "system prompt travels separately")
	assert.NotNil(t, body["system"])
}

func TestAnthropicBaseURL(t *testing.T) {
	assert.Empty(t, anthropicBaseURL(""))
	assert.Empty(t, anthropicBaseURL("https://api.anthropic.com/v1/messages"))
	assert.Equal(t, "http://proxy.local", anthropicBaseURL("http://proxy.local/v1/messages"))
}

func TestGeminiConversion(t *testing.T) {
	contents := toGeminiContent(chatRequest().Messages)
	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, genai.Text("how are you?"), contents[2].Parts[0])

	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text("Hello "), genai.Text("world ")}},
	}}}
	assert.Equal(t, "Hello world", geminiText(resp))
	assert.Empty(t, geminiText(&genai.GenerateContentResponse{}))
}

func TestGeminiRejectsEmptyConversation(t *testing.T) {
	provider := newGeminiProvider(domain.ModelDefinition{Name: "gem"}, "key")
	_, err := provider.Chat(context.Background(), ports.ChatRequest{})
	assert.ErrorContains(t, err, "no messages")
}

func TestSettingsFallBackToModel(t *testing.T) {
	model := domain.ModelDefinition{Temperature: 0.9, MaxTokens: 200}
	temperature, maxTokens := settings(model, ports.ChatRequest{})
	assert.InDelta(t, 0.9, temperature, 1e-9)
	assert.Equal(t, 200, maxTokens)

	_, maxTokens = settings(domain.ModelDefinition{}, ports.ChatRequest{})
	assert.Equal(t, domain.DefaultMaxTokens, maxTokens)

	temperature, maxTokens = settings(model, ports.ChatRequest{Temperature: domain.Float(0.1), MaxTokens: 10})
	assert.InDelta(t, 0.1, temperature, 1e-9)
	assert.Equal(t, 10, maxTokens)

	temperature, _ = settings(model, ports.ChatRequest{Temperature: domain.Float(0)})
	assert.Zero(t, temperature, "an explicit zero overrides the model")
}
