// Package imageprovider fetches an image for each menu item from one of
// several sources: AI image synthesis or stock photo search.
//
// Every source implements Provider. NewProvider is the strategy factory, the
// Registry describes the sources and Run processes a batch of items strictly
// one after another with a fixed per-source pause between them.
package imageprovider

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/menumaker/menumaker/internal/errors"
	"github.com/menumaker/menumaker/internal/httpclient"
	"github.com/menumaker/menumaker/internal/logger"
	"github.com/menumaker/menumaker/internal/menu"
)

// Provider fetches an image reference for a menu item.
type Provider interface {
	// Name returns the source name used in logs and metrics.
	Name() string
	// Fetch returns an image URL for item. An empty URL counts as a failure.
	Fetch(ctx context.Context, item menu.MenuItem) (string, error)
}

// Source identifies an image source.
type Source string

const (
	SourceOpenAI  Source = "openai"
	SourceFlickr  Source = "flickr"
	SourcePexels  Source = "pexels"
	SourceFoodish Source = "foodish"
)

// Sources lists every supported source.
func Sources() []Source {
	return []Source{SourceOpenAI, SourceFlickr, SourcePexels, SourceFoodish}
}

// ParseSource validates a source name.
func ParseSource(name string) (Source, error) {
	s := Source(strings.ToLower(strings.TrimSpace(name)))
	if !slices.Contains(Sources(), s) {
		return "", errors.New(fmt.Errorf("unknown image source %q", name)).
			Component("imageprovider").
			Category(errors.CategoryValidation).
			Context("source", name).
			Build()
	}
	return s, nil
}

// Style is the visual style requested from image synthesis.
type Style string

const (
	StyleClipArt    Style = "clip-art"
	StyleRealistic  Style = "realistic"
	StyleCartoon    Style = "cartoon"
	StyleWatercolor Style = "watercolor"
	StyleSketch     Style = "sketch"
	StylePixelArt   Style = "pixel-art"
	StyleSilly      Style = "silly"
	StyleCustom     Style = "custom"

	DefaultStyle      = StyleClipArt
	DefaultBackground = "plain white background"
)

var stylePrompts = map[Style]string{
	StyleClipArt:    "Simple clean clip art style, vector graphics look, bold outlines, flat colors, minimalist illustration, friendly and approachable design",
	StyleRealistic:  "Professional food photography, restaurant quality, well-lit, appetizing presentation, shallow depth of field, high-end culinary photography style",
	StyleCartoon:    "Anime/manga style illustration, vibrant colors, cartoon food art, japanese animation style, cute and colorful",
	StylePixelArt:   "16-bit pixel art style, retro video game aesthetic, pixel graphics, nostalgic gaming look",
	StyleWatercolor: "Watercolor painting style, soft colors, artistic brush strokes, elegant and delicate, hand-painted look, artistic presentation",
	StyleSketch:     "Hand-drawn pencil sketch style, artistic line work, sketchy illustration, black and white or light coloring, artistic and rustic",
	StyleSilly:      "Whimsical and silly illustration, fun cartoon style, playful and humorous, exaggerated features, bright and cheerful",
}

const (
	fallbackStylePrompt = "Simple clean clip art style, vector graphics look, bold outlines, flat colors"
	defaultCustomPrompt = "Simple clean illustration"
)

// Styles lists every style.
func Styles() []Style {
	return []Style{StyleClipArt, StyleRealistic, StyleCartoon, StyleWatercolor, StyleSketch, StylePixelArt, StyleSilly, StyleCustom}
}

// StyleNames returns the accepted style names in display order.
func StyleNames() []string {
	styles := Styles()
	names := make([]string, len(styles))
	for i, s := range styles {
		names[i] = string(s)
	}
	return names
}

// SourceNames returns the accepted source names in display order.
func SourceNames() []string {
	sources := Sources()
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = string(s)
	}
	return names
}

// ParseStyle validates a style name. Empty selects the default.
func ParseStyle(name string) (Style, error) {
	if strings.TrimSpace(name) == "" {
		return DefaultStyle, nil
	}
	s := Style(strings.ToLower(strings.TrimSpace(name)))
	if !slices.Contains(Styles(), s) {
		return "", errors.New(fmt.Errorf("unknown image style %q", name)).
			Component("imageprovider").
			Category(errors.CategoryValidation).
			Context("style", name).
			Build()
	}
	return s, nil
}

// StylePrompt returns the descriptor text for style. Custom uses customText.
func StylePrompt(style Style, customText string) string {
	if style == StyleCustom {
		if strings.TrimSpace(customText) == "" {
			return defaultCustomPrompt
		}
		return customText
	}
	if p, ok := stylePrompts[style]; ok {
		return p
	}
	return fallbackStylePrompt
}

// Options configures a provider built by NewProvider.
type Options struct {
	APIKey      string
	Style       Style
	CustomStyle string
	Background  string

	// BaseURL overrides the source endpoint.
	BaseURL string
	// ImageModel and ImageSize apply to openai.
	ImageModel string
	ImageSize  string

	HTTPClient *httpclient.Client
	Logger     logger.Logger
}

func (o *Options) applyDefaults() {
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Background == "" {
		o.Background = DefaultBackground
	}
	if o.HTTPClient == nil {
		o.HTTPClient = httpclient.New(nil)
	}
	if o.Logger == nil {
		o.Logger = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}
}

// NewProvider builds the provider for source. Keyed sources need opts.APIKey.
func NewProvider(source Source, opts Options) (Provider, error) {
	opts.applyDefaults()

	if RequiresKey(source) && strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New(fmt.Errorf("an API key is required for %s images", source)).
			Component("imageprovider").
			Category(errors.CategoryValidation).
			Context("source", string(source)).
			Build()
	}

	switch source {
	case SourceOpenAI:
		return NewOpenAIProvider(opts), nil
	case SourceFlickr:
		return NewFlickrProvider(opts), nil
	case SourcePexels:
		return NewPexelsProvider(opts), nil
	case SourceFoodish:
		return NewFoodishProvider(opts), nil
	default:
		_, err := ParseSource(string(source))
		return nil, err
	}
}

// RequiresKey reports whether source needs an API key.
func RequiresKey(source Source) bool {
	return source != SourceFoodish
}

// newFetchError builds the error returned by a provider fetch.
func newFetchError(err error, provider, item string) error {
	return errors.New(err).
		Component("imageprovider").
		Category(errors.CategoryImageFetch).
		Context("provider", provider).
		Context("item", item).
		Build()
}
