package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-chatbot-be/pkg/llm"

	"github.com/stretchr/testify/assert"
)

func TestChatSendsExpectedPayload(t *testing.T) {
	var captured ollamaChatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:   captured.Model,
			Message: ollamaMessage{Role: "assistant", Content: "hello from the model"},
			Done:    true,
		})
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "llama3.2:3b")

	answer, err := provider.Chat(context.Background(),
		[]llm.Message{{Role: "user", Content: "hi"}},
		llm.WithMaxTokens(64),
	)

	assert.NoError(t, err)
	assert.Equal(t, "hello from the model", answer)
	assert.Equal(t, "llama3.2:3b", captured.Model)
	assert.False(t, captured.Stream)
	assert.Equal(t, 64, captured.Options.NumPredict)
	assert.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
}

func TestChatMapsBotRoleToAssistant(t *testing.T) {
	var captured ollamaChatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(ollamaChatResponse{Message: ollamaMessage{Content: "ok"}, Done: true})
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "llama3.2:3b")

	_, err := provider.Chat(context.Background(), []llm.Message{
		{Role: "user", Content: "hi"},
		{Role: "bot", Content: "hello"},
		{Role: "user", Content: "how are you"},
	})

	assert.NoError(t, err)
	assert.Equal(t, "assistant", captured.Messages[1].Role)
}

func TestChatSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "llama3.2:3b")

	_, err := provider.Generate(context.Background(), "hi")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestChatHonorsContextCancellation(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	provider := NewOllamaProvider(server.URL, "llama3.2:3b")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := provider.Generate(ctx, "hi")
	assert.Error(t, err)
}

func TestWithModelOverridesDefault(t *testing.T) {
	var captured ollamaChatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(ollamaChatResponse{Message: ollamaMessage{Content: "ok"}, Done: true})
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "llama3.2:3b")

	_, err := provider.Generate(context.Background(), "hi", llm.WithModel("qwen2.5"))

	assert.NoError(t, err)
	assert.Equal(t, "qwen2.5", captured.Model)
}
