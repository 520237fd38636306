package imageprovider

import (
	"fmt"
	"sync"
	"time"

	"github.com/menumaker/menumaker/internal/errors"
)

// Default pauses between consecutive items of a batch.
const (
	DefaultOpenAIDelay  = time.Second
	DefaultFlickrDelay  = 300 * time.Millisecond
	DefaultPexelsDelay  = 300 * time.Millisecond
	DefaultFoodishDelay = 200 * time.Millisecond
)

// SourceInfo describes a registered source.
type SourceInfo struct {
	Source      Source        `json:"source"`
	Label       string        `json:"label"`
	RequiresKey bool          `json:"requiresKey"`
	Delay       time.Duration `json:"-"`
	DelayMillis int64         `json:"delayMs"`
	Description string        `json:"description"`
	// Defaults are merged under the options passed to Build.
	Defaults Options `json:"-"`
}

// Registry holds the available image sources and their batch pacing.
type Registry struct {
	mu      sync.RWMutex
	sources map[Source]SourceInfo
	order   []Source
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[Source]SourceInfo)}
}

// DefaultRegistry returns a registry with every built-in source at its default delay.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, info := range []SourceInfo{
		{Source: SourceOpenAI, Label: "OpenAI DALL-E", RequiresKey: true, Delay: DefaultOpenAIDelay,
			Description: "AI generated illustrations in the chosen style"},
		{Source: SourceFlickr, Label: "Flickr", RequiresKey: true, Delay: DefaultFlickrDelay,
			Description: "Creative Commons photos matching the dish name"},
		{Source: SourcePexels, Label: "Pexels", RequiresKey: true, Delay: DefaultPexelsDelay,
			Description: "Stock food photos matching the dish name"},
		{Source: SourceFoodish, Label: "Foodish", RequiresKey: false, Delay: DefaultFoodishDelay,
			Description: "Random food photos, unrelated to the dish"},
	} {
		// built-in sources are unique
		_ = r.Register(info)
	}
	return r
}

// Register adds a source. Registering the same source twice is an error.
func (r *Registry) Register(info SourceInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[info.Source]; exists {
		return errors.New(fmt.Errorf("image source %s is already registered", info.Source)).
			Component("imageprovider").
			Category(errors.CategoryConflict).
			Build()
	}
	info.DelayMillis = info.Delay.Milliseconds()
	r.sources[info.Source] = info
	r.order = append(r.order, info.Source)
	return nil
}

// Configure replaces the delay and default options of a registered source.
func (r *Registry) Configure(source Source, delay time.Duration, defaults Options) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.sources[source]
	if !ok {
		return errors.NotFoundError("imageprovider", "image source", string(source))
	}
	info.Delay = delay
	info.DelayMillis = delay.Milliseconds()
	info.Defaults = defaults
	r.sources[source] = info
	return nil
}

// Get returns the registered source.
func (r *Registry) Get(source Source) (SourceInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.sources[source]
	return info, ok
}

// List returns the registered sources in registration order.
func (r *Registry) List() []SourceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SourceInfo, 0, len(r.order))
	for _, s := range r.order {
		out = append(out, r.sources[s])
	}
	return out
}

// Delay returns the pause between items for source, or 0 when unknown.
func (r *Registry) Delay(source Source) time.Duration {
	info, _ := r.Get(source)
	return info.Delay
}

// Build creates a provider for source. Empty fields of opts take the
// source's registered defaults.
func (r *Registry) Build(source Source, opts Options) (Provider, error) {
	info, ok := r.Get(source)
	if !ok {
		return nil, errors.NotFoundError("imageprovider", "image source", string(source))
	}

	d := info.Defaults
	if opts.BaseURL == "" {
		opts.BaseURL = d.BaseURL
	}
	if opts.ImageModel == "" {
		opts.ImageModel = d.ImageModel
	}
	if opts.ImageSize == "" {
		opts.ImageSize = d.ImageSize
	}
	if opts.Background == "" {
		opts.Background = d.Background
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = d.HTTPClient
	}
	if opts.Logger == nil {
		opts.Logger = d.Logger
	}
	return NewProvider(source, opts)
}
