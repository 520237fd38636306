package llm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menumaker/menumaker/internal/errors"
	"github.com/menumaker/menumaker/internal/httpclient"
)

const sampleMenuJSON = `{
  "name": "Luigi's Trattoria",
  "description": "Family recipes from Naples",
  "sections": [
    {"category": "Antipasti", "items": [
      {"name": "Bruschetta", "description": "Grilled bread, tomato, basil", "price": "$8.50", "category": "Antipasti"},
      {"name": "Arancini", "description": "Fried rice balls, mozzarella", "price": "$9.00", "category": "Starters"}
    ]},
    {"category": "Pizza", "items": [
      {"name": "Margherita", "description": "Tomato, mozzarella, basil", "price": "$14.00", "category": "Pizza"}
    ]}
  ]
}`

// fakeChatServer answers chat completions with content and records the last request.
func fakeChatServer(t *testing.T, status int, content string, got *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`))
			return
		}
		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-1",
			Object: "chat.completion",
			Model:  openai.GPT4,
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
				FinishReason: openai.FinishReasonStop,
			}},
			Usage: openai.Usage{TotalTokens: 321},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return server
}

func newGenerator(server *httptest.Server) *OpenAIGenerator {
	return NewOpenAIGenerator(Config{
		BaseURL:    server.URL + "/v1",
		HTTPClient: httpclient.New(nil).Doer(),
	}, nil)
}

func TestGenerateSendsFixedRequest(t *testing.T) {
	var got openai.ChatCompletionRequest
	server := fakeChatServer(t, http.StatusOK, sampleMenuJSON, &got)

	r, err := newGenerator(server).Generate(t.Context(), "sk-test", "Italian pizzeria")
	require.NoError(t, err)

	assert.Equal(t, "gpt-4", got.Model)
	assert.InDelta(t, 0.8, got.Temperature, 0.0001)
	assert.Equal(t, 2500, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, SystemPrompt, got.Messages[0].Content)
	assert.Equal(t, BuildMenuPrompt("Italian pizzeria"), got.Messages[1].Content)

	assert.Equal(t, "Luigi's Trattoria", r.Name)
	assert.Equal(t, 3, r.ItemCount())
}

func TestGenerateAssignsSequentialIDs(t *testing.T) {
	server := fakeChatServer(t, http.StatusOK, sampleMenuJSON, nil)

	r, err := newGenerator(server).Generate(t.Context(), "sk-test", "Italian")
	require.NoError(t, err)

	items := r.Items()
	require.Len(t, items, 3)
	for i, item := range items {
		assert.Equal(t, "item-"+string(rune('1'+i)), item.ID)
	}
	// category follows the section, not the model's label
	assert.Equal(t, "Antipasti", items[1].Category)
}

func TestGenerateUnauthorizedKeepsAPIMessage(t *testing.T) {
	server := fakeChatServer(t, http.StatusUnauthorized, "", nil)

	_, err := newGenerator(server).Generate(t.Context(), "sk-test", "Italian")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryMenuGeneration))
	assert.Contains(t, err.Error(), "Incorrect API key provided")
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
}

func TestGenerateRejectsNonJSONContent(t *testing.T) {
	server := fakeChatServer(t, http.StatusOK, "Sure! Here is your menu:", nil)

	_, err := newGenerator(server).Generate(t.Context(), "sk-test", "Italian")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryMenuGeneration))
}

func TestGenerateValidatesInputsBeforeCalling(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	t.Cleanup(server.Close)

	g := newGenerator(server)
	_, err := g.Generate(t.Context(), "  ", "Italian")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	_, err = g.Generate(t.Context(), "sk-test", "")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
	assert.False(t, called)
}

func TestParseMenu(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := ParseMenu("  \n ")
		require.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := ParseMenu("{\"name\": ")
		require.Error(t, err)
	})

	t.Run("degenerate documents are rejected", func(t *testing.T) {
		for _, content := range []string{
			`null`,
			`{}`,
			`{"name": "Bare"}`,
			`{"name": "Bare", "sections": null}`,
			`{"name": "Bare", "sections": "none"}`,
			`[{"name": "Bare"}]`,
			`"menu"`,
		} {
			_, err := ParseMenu(content)
			require.Error(t, err, content)
			assert.True(t, errors.IsCategory(err, errors.CategoryMenuGeneration), content)
		}
	})

	t.Run("code fences are not stripped", func(t *testing.T) {
		_, err := ParseMenu("```json\n" + sampleMenuJSON + "\n```")
		require.Error(t, err)
	})

	t.Run("empty sections array is an empty menu", func(t *testing.T) {
		r, err := ParseMenu(`{"name": "Bare", "sections": []}`)
		require.NoError(t, err)
		assert.Equal(t, "Bare", r.Name)
		assert.Zero(t, r.ItemCount())
	})

	t.Run("ids and categories", func(t *testing.T) {
		r, err := ParseMenu(sampleMenuJSON)
		require.NoError(t, err)
		assert.Equal(t, "item-3", r.Sections[1].Items[0].ID)
		assert.Equal(t, "Pizza", r.Sections[1].Items[0].Category)
	})
}

func TestBuildMenuPrompt(t *testing.T) {
	p := BuildMenuPrompt("Cozy Parisian bistro")
	assert.True(t, strings.HasPrefix(p, "Generate a complete restaurant menu for: Cozy Parisian bistro\n"))
	assert.Contains(t, p, `"sections": [`)
	assert.Contains(t, p, "3-5 menu categories")
}
