package imageprovider

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"

	"github.com/antonholmquist/jason"

	"github.com/menumaker/menumaker/internal/httpclient"
	"github.com/menumaker/menumaker/internal/logger"
	"github.com/menumaker/menumaker/internal/menu"
)

const (
	pexelsProviderName = "pexels"
	pexelsDefaultURL   = "https://api.pexels.com/v1/search"
	pexelsPerPage      = 15
	pexelsTopResults   = 5
	pexelsFallback     = "food"
)

// PexelsProvider searches food photos on Pexels.
type PexelsProvider struct {
	apiKey  string
	baseURL string
	client  *httpclient.Client
	logger  logger.Logger

	// pick returns an index in [0, n)
	pick func(n int) int
}

// NewPexelsProvider creates a Pexels search provider.
func NewPexelsProvider(opts Options) *PexelsProvider {
	opts.applyDefaults()
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = pexelsDefaultURL
	}
	return &PexelsProvider{
		apiKey:  opts.APIKey,
		baseURL: baseURL,
		client:  opts.HTTPClient,
		logger:  opts.Logger.Module("imageprovider").Module(pexelsProviderName),
		pick:    rand.IntN,
	}
}

func (p *PexelsProvider) Name() string { return pexelsProviderName }

// Fetch picks a random photo among the top results for the item, or among a
// generic food search when the item finds nothing.
func (p *PexelsProvider) Fetch(ctx context.Context, item menu.MenuItem) (string, error) {
	photos, err := p.search(ctx, item.Name+" food dish meal")
	if err != nil {
		return "", newFetchError(err, pexelsProviderName, item.Name)
	}
	if len(photos) > 0 {
		return photos[p.pick(min(len(photos), pexelsTopResults))], nil
	}

	p.logger.Debug("no results, using generic search", logger.String("item", item.Name))
	photos, err = p.search(ctx, pexelsFallback)
	if err != nil {
		return "", newFetchError(err, pexelsProviderName, item.Name)
	}
	if len(photos) == 0 {
		return "", newFetchError(fmt.Errorf("no images found for %s", item.Name), pexelsProviderName, item.Name)
	}
	return photos[p.pick(len(photos))], nil
}

// search returns the medium-size URL of each result.
func (p *PexelsProvider) search(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", fmt.Sprint(pexelsPerPage))
	params.Set("orientation", "landscape")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create pexels request: %w", err)
	}
	req.Header.Set("Authorization", p.apiKey)

	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("pexels request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("pexels request failed: %d", resp.StatusCode)
	}

	body, err := jason.NewObjectFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pexels response: %w", err)
	}

	photos, err := body.GetObjectArray("photos")
	if err != nil {
		// a response without photos is an empty result
		return nil, nil
	}

	urls := make([]string, 0, len(photos))
	for _, photo := range photos {
		if u, err := photo.GetString("src", "medium"); err == nil && u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}
