// Package llm turns a free-text restaurant concept into a structured menu
// using a chat completion model.
package llm

import (
	"context"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/menumaker/menumaker/internal/errors"
	"github.com/menumaker/menumaker/internal/logger"
	"github.com/menumaker/menumaker/internal/menu"
)

const (
	DefaultModel       = openai.GPT4
	DefaultTemperature = float32(0.8)
	DefaultMaxTokens   = 2500
)

// Generator produces a menu from a restaurant description.
type Generator interface {
	Generate(ctx context.Context, apiKey, prompt string) (*menu.Restaurant, error)
}

// Config configures an OpenAIGenerator. Zero values take the defaults.
type Config struct {
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	HTTPClient  openai.HTTPDoer
}

// OpenAIGenerator generates menus with the OpenAI chat completions API.
type OpenAIGenerator struct {
	cfg    Config
	logger logger.Logger
}

// NewOpenAIGenerator creates a generator.
func NewOpenAIGenerator(cfg Config, log logger.Logger) *OpenAIGenerator {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if log == nil {
		log = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}
	return &OpenAIGenerator{cfg: cfg, logger: log.Module("llm")}
}

// Generate requests a menu for prompt. There are no retries; failures carry
// the menu-generation category and the API's own message.
func (g *OpenAIGenerator) Generate(ctx context.Context, apiKey, prompt string) (*menu.Restaurant, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.ValidationError("an OpenAI API key is required")
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.ValidationError("a restaurant description is required")
	}

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	log := g.logger.WithContext(ctx)
	log.Info("requesting menu",
		logger.String("model", g.cfg.Model),
		logger.Int("prompt_length", len(prompt)))

	start := time.Now()
	client := NewClient(apiKey, g.cfg.BaseURL, g.cfg.HTTPClient)
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildMenuPrompt(prompt)},
		},
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	})
	if err != nil {
		log.Error("menu request failed",
			logger.Error(err),
			logger.Duration("duration", time.Since(start)))
		return nil, WrapAPIError(err, "llm", errors.CategoryMenuGeneration, "menu generation")
	}

	if len(resp.Choices) == 0 {
		return nil, errors.Newf("no choices received from the model").
			Component("llm").
			Category(errors.CategoryMenuGeneration).
			Build()
	}

	r, err := ParseMenu(resp.Choices[0].Message.Content)
	if err != nil {
		log.Warn("menu response could not be parsed", logger.Error(err))
		return nil, err
	}

	log.Info("menu generated",
		logger.String("restaurant", r.Name),
		logger.Int("sections", len(r.Sections)),
		logger.Int("items", r.ItemCount()),
		logger.Int("total_tokens", resp.Usage.TotalTokens),
		logger.Duration("duration", time.Since(start)))
	return r, nil
}
