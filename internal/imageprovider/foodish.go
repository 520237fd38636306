package imageprovider

import (
	"context"
	"fmt"
	"net/http"

	"github.com/antonholmquist/jason"

	"github.com/menumaker/menumaker/internal/httpclient"
	"github.com/menumaker/menumaker/internal/logger"
	"github.com/menumaker/menumaker/internal/menu"
)

const (
	foodishProviderName = "foodish"
	foodishDefaultURL   = "https://foodish-api.com/api/"
)

// FoodishProvider returns a random food photo. It needs no key and ignores
// the item, so the photo is unrelated to the dish.
type FoodishProvider struct {
	baseURL string
	client  *httpclient.Client
	logger  logger.Logger
}

// NewFoodishProvider creates a Foodish provider.
func NewFoodishProvider(opts Options) *FoodishProvider {
	opts.applyDefaults()
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = foodishDefaultURL
	}
	return &FoodishProvider{
		baseURL: baseURL,
		client:  opts.HTTPClient,
		logger:  opts.Logger.Module("imageprovider").Module(foodishProviderName),
	}
}

func (p *FoodishProvider) Name() string { return foodishProviderName }

func (p *FoodishProvider) Fetch(ctx context.Context, item menu.MenuItem) (string, error) {
	resp, err := p.client.Get(ctx, p.baseURL)
	if err != nil {
		return "", newFetchError(fmt.Errorf("foodish request failed: %w", err), foodishProviderName, item.Name)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", newFetchError(fmt.Errorf("foodish request failed: %d", resp.StatusCode), foodishProviderName, item.Name)
	}

	body, err := jason.NewObjectFromReader(resp.Body)
	if err != nil {
		return "", newFetchError(fmt.Errorf("failed to parse foodish response: %w", err), foodishProviderName, item.Name)
	}

	image, err := body.GetString("image")
	if err != nil {
		return "", newFetchError(fmt.Errorf("foodish response has no image: %w", err), foodishProviderName, item.Name)
	}
	p.logger.Trace("random photo", logger.String("item", item.Name), logger.String("url", image))
	return image, nil
}
