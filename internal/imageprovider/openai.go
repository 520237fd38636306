package imageprovider

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/menumaker/menumaker/internal/errors"
	"github.com/menumaker/menumaker/internal/llm"
	"github.com/menumaker/menumaker/internal/logger"
	"github.com/menumaker/menumaker/internal/menu"
)

const (
	openAIProviderName = "openai"

	DefaultImageModel = openai.CreateImageModelDallE2
	DefaultImageSize  = openai.CreateImageSize256x256
)

// OpenAIProvider synthesizes an illustration for each item.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	size        string
	style       Style
	customStyle string
	background  string
	logger      logger.Logger
}

// NewOpenAIProvider creates an image synthesis provider.
func NewOpenAIProvider(opts Options) *OpenAIProvider {
	opts.applyDefaults()
	model := opts.ImageModel
	if model == "" {
		model = DefaultImageModel
	}
	size := opts.ImageSize
	if size == "" {
		size = DefaultImageSize
	}
	return &OpenAIProvider{
		client:      llm.NewClient(opts.APIKey, opts.BaseURL, opts.HTTPClient.Doer()),
		model:       model,
		size:        size,
		style:       opts.Style,
		customStyle: opts.CustomStyle,
		background:  opts.Background,
		logger:      opts.Logger.Module("imageprovider").Module(openAIProviderName),
	}
}

func (p *OpenAIProvider) Name() string { return openAIProviderName }

// Prompt builds the synthesis prompt for item.
func (p *OpenAIProvider) Prompt(item menu.MenuItem) string {
	return fmt.Sprintf("%s: %s. %s. Background: %s",
		item.Name, item.Description, StylePrompt(p.style, p.customStyle), p.background)
}

func (p *OpenAIProvider) Fetch(ctx context.Context, item menu.MenuItem) (string, error) {
	p.logger.Debug("generating image",
		logger.String("item", item.Name),
		logger.String("style", string(p.style)))

	resp, err := p.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         p.Prompt(item),
		Model:          p.model,
		N:              1,
		Size:           p.size,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return "", llm.WrapAPIError(err, "imageprovider", errors.CategoryImageProvider, "image generation")
	}

	if len(resp.Data) == 0 {
		return "", newFetchError(errors.NewStd("no image data received from OpenAI"), openAIProviderName, item.Name)
	}
	return resp.Data[0].URL, nil
}
