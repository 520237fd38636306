// Package generation runs the menu pipeline: menu text, per-item images,
// image inlining, history and completion notifications.
package generation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/menumaker/menumaker/internal/credentials"
	"github.com/menumaker/menumaker/internal/errors"
	"github.com/menumaker/menumaker/internal/history"
	"github.com/menumaker/menumaker/internal/httpclient"
	"github.com/menumaker/menumaker/internal/imageprovider"
	"github.com/menumaker/menumaker/internal/inline"
	"github.com/menumaker/menumaker/internal/llm"
	"github.com/menumaker/menumaker/internal/logger"
	"github.com/menumaker/menumaker/internal/menu"
	"github.com/menumaker/menumaker/internal/notification"
)

// Metrics receives pipeline observations.
type Metrics interface {
	RecordGeneration(success bool, duration time.Duration)
	RecordImageFetch(source string, success bool, duration time.Duration)
	RecordInline(success bool)
}

type nopMetrics struct{}

func (nopMetrics) RecordGeneration(bool, time.Duration)         {}
func (nopMetrics) RecordImageFetch(string, bool, time.Duration) {}
func (nopMetrics) RecordInline(bool)                            {}

// Dependencies are the collaborators of a Service. Generator, Registry and
// History are required; Inliner, Credentials, Metrics and Notifier are optional.
type Dependencies struct {
	Generator   llm.Generator
	Registry    *imageprovider.Registry
	HTTPClient  *httpclient.Client
	Inliner     *inline.Inliner
	History     *history.Service
	Credentials *credentials.Store
	Metrics     Metrics
	Notifier    notification.Notifier
	Logger      logger.Logger
}

// Service orchestrates generation runs. At most one run is active at a time.
type Service struct {
	deps Dependencies
	log  logger.Logger

	defaultSource     imageprovider.Source
	defaultStyle      imageprovider.Style
	defaultBackground string
	successClear      time.Duration
	errorClear        time.Duration

	running atomic.Bool
	board   statusBoard

	mu         sync.RWMutex
	current    menu.Restaurant
	lastPrompt string
}

// Option configures a Service.
type Option func(*Service)

// WithDefaults sets the image source, style and background used when a
// request leaves them empty.
func WithDefaults(source imageprovider.Source, style imageprovider.Style, background string) Option {
	return func(s *Service) {
		if source != "" {
			s.defaultSource = source
		}
		if style != "" {
			s.defaultStyle = style
		}
		if background != "" {
			s.defaultBackground = background
		}
	}
}

// WithStatusClearDelays overrides how long final success and error messages stay visible.
func WithStatusClearDelays(success, failure time.Duration) Option {
	return func(s *Service) {
		s.successClear = success
		s.errorClear = failure
	}
}

// WithStatusListener registers fn to receive every status change.
func WithStatusListener(fn func(Status)) Option {
	return func(s *Service) { s.board.listener = fn }
}

// WithClock overrides the time source used for status timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.board.now = now }
}

// NewService creates a Service. The current menu starts as the built-in sample.
func NewService(deps Dependencies, opts ...Option) *Service {
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}
	if deps.Notifier == nil {
		deps.Notifier = notification.Nop{}
	}
	if deps.Registry == nil {
		deps.Registry = imageprovider.DefaultRegistry()
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}

	s := &Service{
		deps:              deps,
		log:               deps.Logger.Module("generation"),
		defaultSource:     imageprovider.SourceOpenAI,
		defaultStyle:      imageprovider.DefaultStyle,
		defaultBackground: imageprovider.DefaultBackground,
		successClear:      DefaultSuccessClearDelay,
		errorClear:        DefaultErrorClearDelay,
		current:           menu.Sample(),
		board:             statusBoard{now: time.Now},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close cancels pending status timers.
func (s *Service) Close() {
	s.board.stop()
}

// Status returns the latest status.
func (s *Service) Status() Status {
	return s.board.get()
}

// Running reports whether a run is in progress.
func (s *Service) Running() bool {
	return s.running.Load()
}

// Current returns a copy of the current menu.
func (s *Service) Current() menu.Restaurant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// LastPrompt returns the prompt of the last generated or loaded menu.
func (s *Service) LastPrompt() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPrompt
}

// SetCurrent replaces the current menu. Item ids are reassigned.
func (s *Service) SetCurrent(r menu.Restaurant) error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.ValidationError("restaurant name is required")
	}
	r = r.Clone()
	menu.AssignIDs(&r)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = r
	return nil
}

// LoadFromHistory makes the history entry id the current menu.
func (s *Service) LoadFromHistory(ctx context.Context, id string) (menu.Restaurant, error) {
	entry, err := s.deps.History.Get(ctx, id)
	if err != nil {
		return menu.Restaurant{}, err
	}

	s.mu.Lock()
	s.current = entry.Restaurant.Clone()
	s.lastPrompt = entry.Prompt
	s.mu.Unlock()

	s.log.Info("menu loaded from history", logger.String("id", id), logger.String("restaurant", entry.Restaurant.Name))
	return entry.Restaurant.Clone(), nil
}

// MenuRequest asks for a new menu, optionally followed by images.
type MenuRequest struct {
	Prompt string        `json:"prompt"`
	APIKey string        `json:"apiKey,omitempty"`
	Images *ImageRequest `json:"images,omitempty"`
}

// ImageRequest asks for an image for every item of the current menu.
type ImageRequest struct {
	Source      string `json:"source"`
	Style       string `json:"style,omitempty"`
	CustomStyle string `json:"customStyle,omitempty"`
	Background  string `json:"background,omitempty"`
	APIKey      string `json:"apiKey,omitempty"`
	NoInline    bool   `json:"noInline,omitempty"`
}

// ImageBatch summarizes an image run.
type ImageBatch struct {
	Source       imageprovider.Source   `json:"source"`
	Results      []imageprovider.Result `json:"results"`
	Succeeded    int                    `json:"succeeded"`
	Failed       int                    `json:"failed"`
	InlineFailed int                    `json:"inlineFailed"`
}

// MenuResult is the outcome of GenerateMenu.
type MenuResult struct {
	Restaurant menu.Restaurant `json:"restaurant"`
	Images     *ImageBatch     `json:"images,omitempty"`
	HistoryID  string          `json:"historyId,omitempty"`
	TraceID    string          `json:"traceId"`
}

// ImagesResult is the outcome of GenerateImages.
type ImagesResult struct {
	Restaurant menu.Restaurant `json:"restaurant"`
	ImageBatch
	HistoryID string `json:"historyId,omitempty"`
	TraceID   string `json:"traceId"`
}

// imagePlan is a validated ImageRequest.
type imagePlan struct {
	source   imageprovider.Source
	opts     imageprovider.Options
	noInline bool
}

// GenerateMenu generates a menu from req.Prompt, makes it current and, when
// req.Images is set, fetches and inlines images. The text step is fatal;
// image failures are reported per item.
func (s *Service) GenerateMenu(ctx context.Context, req MenuRequest) (*MenuResult, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.ValidationError("a restaurant description is required")
	}
	apiKey, err := s.resolveKey(ctx, credentials.OpenAI, req.APIKey)
	if err != nil {
		return nil, err
	}

	var plan *imagePlan
	if req.Images != nil {
		imgReq := *req.Images
		if imgReq.APIKey == "" && s.imageSource(imgReq.Source) == imageprovider.SourceOpenAI {
			imgReq.APIKey = apiKey
		}
		if plan, err = s.planImages(ctx, imgReq); err != nil {
			return nil, err
		}
	}

	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.running.Store(false)

	traceID := uuid.NewString()
	ctx = logger.WithTraceID(ctx, traceID)
	log := s.log.WithContext(ctx)

	s.board.set(Status{Message: "Generating menu structure and items...", Running: true, TraceID: traceID}, 0)
	log.Info("generating menu", logger.Int("prompt_length", len(prompt)))

	start := time.Now()
	restaurant, err := s.deps.Generator.Generate(ctx, apiKey, prompt)
	s.deps.Metrics.RecordGeneration(err == nil, time.Since(start))
	if err != nil {
		s.fail(traceID, err)
		log.Error("menu generation failed", logger.Error(err), logger.Duration("duration", time.Since(start)))
		return nil, err
	}

	s.mu.Lock()
	s.current = restaurant.Clone()
	s.lastPrompt = prompt
	s.mu.Unlock()

	log.Info("menu generated",
		logger.String("restaurant", restaurant.Name),
		logger.Int("items", restaurant.ItemCount()),
		logger.Duration("duration", time.Since(start)))

	result := &MenuResult{TraceID: traceID}
	if plan != nil {
		s.board.set(Status{Message: "Menu created! Now generating images...", Running: true, TraceID: traceID}, 0)
		batch, err := s.runImages(ctx, restaurant, *plan, traceID)
		if err != nil {
			// The menu text stands even when the image source cannot be built.
			log.Warn("image step failed", logger.Error(err))
		} else {
			result.Images = batch
		}
		s.mu.Lock()
		s.current = restaurant.Clone()
		s.mu.Unlock()
	}

	result.Restaurant = restaurant.Clone()
	result.HistoryID = s.saveHistory(ctx, restaurant, prompt)

	event := notification.Event{
		Kind:       notification.KindMenuGenerated,
		Restaurant: restaurant.Name,
		ItemCount:  restaurant.ItemCount(),
		TraceID:    traceID,
	}
	if result.Images != nil {
		event.ImagesSucceeded = result.Images.Succeeded
		event.ImagesFailed = result.Images.Failed
		event.Source = string(result.Images.Source)
	}
	s.notify(ctx, event)

	s.board.set(Status{Message: "All done! Your menu is ready.", TraceID: traceID}, s.successClear)
	return result, nil
}

// GenerateImages fetches an image for every item of the current menu, then
// inlines them and saves the result to history with the last prompt.
func (s *Service) GenerateImages(ctx context.Context, req ImageRequest) (*ImagesResult, error) {
	plan, err := s.planImages(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.running.Store(false)

	s.mu.RLock()
	working := s.current.Clone()
	prompt := s.lastPrompt
	s.mu.RUnlock()

	if working.ItemCount() == 0 {
		return nil, errors.ValidationError("the current menu has no items")
	}

	traceID := uuid.NewString()
	ctx = logger.WithTraceID(ctx, traceID)

	batch, err := s.runImages(ctx, &working, *plan, traceID)
	if err != nil {
		s.fail(traceID, err)
		return nil, err
	}

	s.mu.Lock()
	s.current = working.Clone()
	s.mu.Unlock()

	result := &ImagesResult{
		Restaurant: working.Clone(),
		ImageBatch: *batch,
		TraceID:    traceID,
	}
	result.HistoryID = s.saveHistory(ctx, &working, prompt)

	s.notify(ctx, notification.Event{
		Kind:            notification.KindImagesCompleted,
		Restaurant:      working.Name,
		ItemCount:       working.ItemCount(),
		ImagesSucceeded: batch.Succeeded,
		ImagesFailed:    batch.Failed,
		Source:          string(batch.Source),
		TraceID:         traceID,
	})

	s.board.set(Status{
		Message: fmt.Sprintf("All done! %d of %d images ready.", batch.Succeeded, len(batch.Results)),
		TraceID: traceID,
	}, s.successClear)
	return result, nil
}

// imageSource returns the source a request names, or the default.
func (s *Service) imageSource(name string) imageprovider.Source {
	if strings.TrimSpace(name) == "" {
		return s.defaultSource
	}
	return imageprovider.Source(strings.ToLower(strings.TrimSpace(name)))
}

// planImages validates req and resolves its API key.
func (s *Service) planImages(ctx context.Context, req ImageRequest) (*imagePlan, error) {
	source := s.defaultSource
	if strings.TrimSpace(req.Source) != "" {
		parsed, err := imageprovider.ParseSource(req.Source)
		if err != nil {
			return nil, err
		}
		source = parsed
	}
	if _, ok := s.deps.Registry.Get(source); !ok {
		return nil, errors.NotFoundError("generation", "image source", string(source))
	}

	style := s.defaultStyle
	if strings.TrimSpace(req.Style) != "" {
		parsed, err := imageprovider.ParseStyle(req.Style)
		if err != nil {
			return nil, err
		}
		style = parsed
	}
	if source == imageprovider.SourceOpenAI && style == imageprovider.StyleCustom && strings.TrimSpace(req.CustomStyle) == "" {
		return nil, errors.ValidationError("a custom style description is required")
	}

	background := req.Background
	if strings.TrimSpace(background) == "" {
		background = s.defaultBackground
	}

	var apiKey string
	if imageprovider.RequiresKey(source) {
		key, err := s.resolveKey(ctx, credentials.Provider(source), req.APIKey)
		if err != nil {
			return nil, err
		}
		apiKey = key
	}

	return &imagePlan{
		source: source,
		opts: imageprovider.Options{
			APIKey:      apiKey,
			Style:       style,
			CustomStyle: req.CustomStyle,
			Background:  background,
			HTTPClient:  s.deps.HTTPClient,
			Logger:      s.deps.Logger,
		},
		noInline: req.NoInline,
	}, nil
}

// runImages fetches and inlines images for r in place.
func (s *Service) runImages(ctx context.Context, r *menu.Restaurant, plan imagePlan, traceID string) (*ImageBatch, error) {
	provider, err := s.deps.Registry.Build(plan.source, plan.opts)
	if err != nil {
		return nil, err
	}

	items := r.Items()
	results := imageprovider.Run(ctx, provider, items, imageprovider.RunOptions{
		Delay:   s.deps.Registry.Delay(plan.source),
		Metrics: s.deps.Metrics,
		Logger:  s.deps.Logger,
		Progress: func(p imageprovider.Progress) {
			s.board.set(Status{
				Message:  fmt.Sprintf("Generating images: %d/%d - %s", p.Current, p.Total, p.ItemName),
				Current:  p.Current,
				Total:    p.Total,
				ItemName: p.ItemName,
				Running:  true,
				TraceID:  traceID,
			}, 0)
		},
	})

	batch := &ImageBatch{Source: plan.source, Results: results}
	batch.Succeeded, batch.Failed = imageprovider.Summary(results)

	if s.deps.Inliner != nil && !plan.noInline && batch.Succeeded > 0 {
		inlined := s.deps.Inliner.InlineItems(ctx, items, func(p inline.Progress) {
			s.board.set(Status{
				Message: fmt.Sprintf("Embedding images: %d/%d", p.Current, p.Total),
				Current: p.Current,
				Total:   p.Total,
				Running: true,
				TraceID: traceID,
			}, 0)
		})
		batch.InlineFailed = inline.Failed(inlined)
	}
	return batch, nil
}

func (s *Service) resolveKey(ctx context.Context, p credentials.Provider, explicit string) (string, error) {
	if s.deps.Credentials != nil {
		return s.deps.Credentials.RequireKey(ctx, p, explicit)
	}
	if key := strings.TrimSpace(explicit); key != "" {
		return key, nil
	}
	return "", errors.ValidationError(fmt.Sprintf("an API key for %s is required", p))
}

func (s *Service) acquire() error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.Newf("a generation is already in progress").
			Component("generation").
			Category(errors.CategoryConflict).
			Build()
	}
	return nil
}

func (s *Service) fail(traceID string, err error) {
	s.board.set(Status{Message: "Error: " + err.Error(), Error: true, TraceID: traceID}, s.errorClear)
}

// saveHistory stores a snapshot and returns its id. Failures are logged only.
func (s *Service) saveHistory(ctx context.Context, r *menu.Restaurant, prompt string) string {
	entry, err := s.deps.History.Save(ctx, r, prompt)
	if err != nil {
		s.log.WithContext(ctx).Warn("failed to save menu to history", logger.Error(err))
		return ""
	}
	return entry.ID
}

// notify delivers event. Failures are logged only.
func (s *Service) notify(ctx context.Context, event notification.Event) {
	event.Timestamp = time.Now()
	if err := s.deps.Notifier.Notify(ctx, event); err != nil {
		s.log.WithContext(ctx).Warn("notification failed", logger.String("kind", string(event.Kind)), logger.Error(err))
	}
}
