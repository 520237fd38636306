package imageprovider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/antonholmquist/jason"
	"github.com/k3a/html2text"

	"github.com/menumaker/menumaker/internal/httpclient"
	"github.com/menumaker/menumaker/internal/logger"
	"github.com/menumaker/menumaker/internal/menu"
)

const (
	flickrProviderName = "flickr"
	flickrDefaultURL   = "https://api.flickr.com/services/rest/"
	flickrFallback     = "food dish"
	flickrPerPage      = 5

	// Creative Commons licence ids
	flickrLicenses = "4,5,6,7,8,9,10"
)

// FlickrProvider searches Creative Commons photos on Flickr.
type FlickrProvider struct {
	apiKey  string
	baseURL string
	client  *httpclient.Client
	logger  logger.Logger
}

// NewFlickrProvider creates a Flickr search provider.
func NewFlickrProvider(opts Options) *FlickrProvider {
	opts.applyDefaults()
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = flickrDefaultURL
	}
	return &FlickrProvider{
		apiKey:  opts.APIKey,
		baseURL: baseURL,
		client:  opts.HTTPClient,
		logger:  opts.Logger.Module("imageprovider").Module(flickrProviderName),
	}
}

func (p *FlickrProvider) Name() string { return flickrProviderName }

// flickrPhoto is the subset of a search result needed to build its URL.
type flickrPhoto struct {
	ID     string
	Server string
	Secret string
	Title  string
}

func (f flickrPhoto) url() string {
	return fmt.Sprintf("https://live.staticflickr.com/%s/%s_%s_c.jpg", f.Server, f.ID, f.Secret)
}

// Fetch returns the most relevant photo for "<name> food", falling back to a
// generic food search when nothing matches.
func (p *FlickrProvider) Fetch(ctx context.Context, item menu.MenuItem) (string, error) {
	photos, err := p.search(ctx, item.Name+" food")
	if err != nil {
		return "", newFetchError(err, flickrProviderName, item.Name)
	}

	if len(photos) == 0 {
		p.logger.Debug("no results, using generic search", logger.String("item", item.Name))
		photos, err = p.search(ctx, flickrFallback)
		if err != nil {
			return "", newFetchError(err, flickrProviderName, item.Name)
		}
		if len(photos) == 0 {
			return "", newFetchError(fmt.Errorf("no images found for %s", item.Name), flickrProviderName, item.Name)
		}
	}

	photo := photos[0]
	p.logger.Debug("photo selected",
		logger.String("item", item.Name),
		logger.String("photo_id", photo.ID),
		logger.String("title", html2text.HTML2Text(photo.Title)))
	return photo.url(), nil
}

func (p *FlickrProvider) search(ctx context.Context, text string) ([]flickrPhoto, error) {
	params := url.Values{}
	params.Set("method", "flickr.photos.search")
	params.Set("api_key", p.apiKey)
	params.Set("text", text)
	params.Set("license", flickrLicenses)
	params.Set("sort", "relevance")
	params.Set("per_page", fmt.Sprint(flickrPerPage))
	params.Set("format", "json")
	params.Set("nojsoncallback", "1")
	params.Set("safe_search", "1")
	params.Set("content_type", "1")

	resp, err := p.client.Get(ctx, p.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("flickr request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flickr request failed: %d", resp.StatusCode)
	}

	body, err := jason.NewObjectFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse flickr response: %w", err)
	}

	if stat, _ := body.GetString("stat"); stat != "ok" {
		msg, _ := body.GetString("message")
		return nil, fmt.Errorf("failed to fetch images from Flickr: %s", msg)
	}

	raw, err := body.GetObjectArray("photos", "photo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch images from Flickr: %w", err)
	}

	photos := make([]flickrPhoto, 0, len(raw))
	for _, obj := range raw {
		id, _ := obj.GetString("id")
		server, _ := obj.GetString("server")
		secret, _ := obj.GetString("secret")
		title, _ := obj.GetString("title")
		if id == "" || server == "" || secret == "" {
			continue
		}
		photos = append(photos, flickrPhoto{ID: id, Server: server, Secret: secret, Title: title})
	}
	return photos, nil
}
