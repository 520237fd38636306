package generation

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menumaker/menumaker/internal/errors"
	"github.com/menumaker/menumaker/internal/history"
	"github.com/menumaker/menumaker/internal/httpclient"
	"github.com/menumaker/menumaker/internal/imageprovider"
	"github.com/menumaker/menumaker/internal/inline"
	"github.com/menumaker/menumaker/internal/kvstore"
	"github.com/menumaker/menumaker/internal/logger"
	"github.com/menumaker/menumaker/internal/menu"
	"github.com/menumaker/menumaker/internal/notification"
)

const foodishURL = "https://foodish-api.com/api/"

var regexpImage = regexp.MustCompile(`^https://images\.example\.com/`)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake-image-data")

type fakeGenerator struct {
	restaurant menu.Restaurant
	err        error
	block      chan struct{}
	gotKey     string
	gotPrompt  string
}

func (f *fakeGenerator) Generate(_ context.Context, apiKey, prompt string) (*menu.Restaurant, error) {
	f.gotKey, f.gotPrompt = apiKey, prompt
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	r := f.restaurant.Clone()
	menu.AssignIDs(&r)
	return &r, nil
}

type recordingMetrics struct {
	mu          sync.Mutex
	generations []bool
	fetches     []bool
	inlines     []bool
}

func (m *recordingMetrics) RecordGeneration(success bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations = append(m.generations, success)
}

func (m *recordingMetrics) RecordImageFetch(_ string, success bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches = append(m.fetches, success)
}

func (m *recordingMetrics) RecordInline(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inlines = append(m.inlines, success)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification.Event
}

func (n *recordingNotifier) Notify(_ context.Context, e notification.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return errors.NewStd("delivery failed") // never fails the run
}

type statusLog struct {
	mu       sync.Mutex
	statuses []Status
}

func (l *statusLog) record(s Status) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.statuses = append(l.statuses, s)
}

func (l *statusLog) progress() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []int
	for _, s := range l.statuses {
		if strings.HasPrefix(s.Message, "Generating images:") {
			out = append(out, s.Current)
		}
	}
	return out
}

func threeItemMenu() menu.Restaurant {
	return menu.Restaurant{
		Name: "Luigi's Trattoria",
		Sections: []menu.MenuSection{
			{Category: "Antipasti", Items: []menu.MenuItem{
				{Name: "Bruschetta", Description: "Tomato, basil", Price: "$8"},
				{Name: "Arancini", Description: "Fried rice balls", Price: "$9"},
			}},
			{Category: "Pasta", Items: []menu.MenuItem{
				{Name: "Carbonara", Description: "Egg, guanciale", Price: "$16"},
			}},
		},
	}
}

type fixture struct {
	svc       *Service
	gen       *fakeGenerator
	history   *history.Service
	metrics   *recordingMetrics
	notifier  *recordingNotifier
	statuses  *statusLog
	transport *httpmock.MockTransport
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	transport := httpmock.NewMockTransport()
	client := httpclient.New(&httpclient.Config{Transport: transport})
	t.Cleanup(client.Close)

	log := logger.NewSlogLogger(nil, logger.LogLevelError, nil)
	registry := imageprovider.DefaultRegistry()
	require.NoError(t, registry.Configure(imageprovider.SourceFoodish, 0, imageprovider.Options{}))

	f := &fixture{
		gen:       &fakeGenerator{restaurant: threeItemMenu()},
		history:   history.NewService(kvstore.NewMemoryStore()),
		metrics:   &recordingMetrics{},
		notifier:  &recordingNotifier{},
		statuses:  &statusLog{},
		transport: transport,
	}

	opts = append([]Option{
		WithStatusListener(f.statuses.record),
		WithStatusClearDelays(time.Hour, time.Hour),
	}, opts...)

	f.svc = NewService(Dependencies{
		Generator:  f.gen,
		Registry:   registry,
		HTTPClient: client,
		Inliner:    inline.New(client, inline.Config{}, f.metrics, log),
		History:    f.history,
		Metrics:    f.metrics,
		Notifier:   f.notifier,
		Logger:     log,
	}, opts...)
	t.Cleanup(f.svc.Close)
	return f
}

// registerFoodish serves a distinct photo per call, failing on the calls in failOn (1-based).
func (f *fixture) registerFoodish(failOn ...int) {
	var calls atomic.Int32
	f.transport.RegisterResponder(http.MethodGet, foodishURL, func(req *http.Request) (*http.Response, error) {
		n := int(calls.Add(1))
		for _, k := range failOn {
			if n == k {
				return httpmock.NewStringResponse(http.StatusInternalServerError, "down"), nil
			}
		}
		return httpmock.NewStringResponse(http.StatusOK,
			`{"image":"https://images.example.com/`+strconv.Itoa(n)+`.png"}`), nil
	})
	f.transport.RegisterRegexpResponder(http.MethodGet, regexpImage, func(req *http.Request) (*http.Response, error) {
		resp := httpmock.NewBytesResponse(http.StatusOK, pngBytes)
		resp.Header.Set("Content-Type", "image/png")
		return resp, nil
	})
}

func TestGenerateMenuValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GenerateMenu(ctx, MenuRequest{Prompt: "  ", APIKey: "sk-test"})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	_, err = f.svc.GenerateMenu(ctx, MenuRequest{Prompt: "a ramen bar"})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation), "missing key")

	_, err = f.svc.GenerateMenu(ctx, MenuRequest{
		Prompt: "a ramen bar",
		APIKey: "sk-test",
		Images: &ImageRequest{Source: "openai", Style: "custom"},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation), "custom style needs text")

	_, err = f.svc.GenerateMenu(ctx, MenuRequest{
		Prompt: "a ramen bar",
		APIKey: "sk-test",
		Images: &ImageRequest{Source: "pexels"},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation), "pexels needs its own key")

	assert.Empty(t, f.gen.gotPrompt, "no text request is made for invalid input")
	assert.Equal(t, "Sakura Sushi House", f.svc.Current().Name)
}

func TestGenerateMenuTextOnly(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	res, err := f.svc.GenerateMenu(context.Background(), MenuRequest{Prompt: "  Italian trattoria ", APIKey: "sk-test"})
	require.NoError(t, err)

	assert.Equal(t, "sk-test", f.gen.gotKey)
	assert.Equal(t, "Italian trattoria", f.gen.gotPrompt)
	assert.Nil(t, res.Images)
	assert.NotEmpty(t, res.TraceID)
	assert.Equal(t, "Luigi's Trattoria", res.Restaurant.Name)
	assert.Equal(t, "item-3", res.Restaurant.Sections[1].Items[0].ID)

	current := f.svc.Current()
	assert.Equal(t, res.Restaurant, current)
	assert.Equal(t, "Italian trattoria", f.svc.LastPrompt())

	entries := f.history.List(context.Background())
	require.Len(t, entries, 1)
	assert.Equal(t, res.HistoryID, entries[0].ID)
	assert.Equal(t, "Italian trattoria", entries[0].Prompt)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, notification.KindMenuGenerated, f.notifier.events[0].Kind)
	assert.Equal(t, 3, f.notifier.events[0].ItemCount)

	assert.Equal(t, []bool{true}, f.metrics.generations)

	status := f.svc.Status()
	assert.Equal(t, "All done! Your menu is ready.", status.Message)
	assert.False(t, status.Running)
	assert.False(t, f.svc.Running())
}

func TestGenerateMenuWithImagesToleratesItemFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.registerFoodish(2)

	res, err := f.svc.GenerateMenu(context.Background(), MenuRequest{
		Prompt: "Italian trattoria",
		APIKey: "sk-test",
		Images: &ImageRequest{Source: "foodish"},
	})
	require.NoError(t, err)
	require.NotNil(t, res.Images)

	assert.Equal(t, imageprovider.SourceFoodish, res.Images.Source)
	assert.Equal(t, 2, res.Images.Succeeded)
	assert.Equal(t, 1, res.Images.Failed)
	assert.Equal(t, 0, res.Images.InlineFailed)
	assert.Equal(t, []int{1, 2, 3}, f.statuses.progress())

	items := res.Restaurant.Items()
	assert.True(t, strings.HasPrefix(items[0].ImageURL, "data:image/png;base64,"))
	assert.Empty(t, items[1].ImageURL, "failed item has no image")
	assert.True(t, strings.HasPrefix(items[2].ImageURL, "data:image/png;base64,"))

	assert.Equal(t, res.Restaurant, f.svc.Current())

	entries := f.history.List(context.Background())
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].Restaurant.ImageCount())

	assert.Equal(t, []bool{true, false, true}, f.metrics.fetches)
	assert.Equal(t, []bool{true, true}, f.metrics.inlines)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, 2, f.notifier.events[0].ImagesSucceeded)
	assert.Equal(t, 1, f.notifier.events[0].ImagesFailed)
}

func TestGenerateMenuFailureSetsErrorStatus(t *testing.T) {
	t.Parallel()

	f := newFixture(t, WithStatusClearDelays(time.Hour, 30*time.Millisecond))
	f.gen.err = errors.Newf("model unavailable").Category(errors.CategoryMenuGeneration).Build()

	_, err := f.svc.GenerateMenu(context.Background(), MenuRequest{Prompt: "diner", APIKey: "sk-test"})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryMenuGeneration))

	status := f.svc.Status()
	assert.True(t, status.Error)
	assert.Contains(t, status.Message, "Error: model unavailable")
	assert.Equal(t, []bool{false}, f.metrics.generations)
	assert.Empty(t, f.history.List(context.Background()))
	assert.Equal(t, "Sakura Sushi House", f.svc.Current().Name, "current menu is kept")

	assert.Eventually(t, func() bool {
		return f.svc.Status().Message == ""
	}, 2*time.Second, 10*time.Millisecond, "error status clears itself")
}

func TestSuccessStatusClearsAfterDelay(t *testing.T) {
	t.Parallel()

	f := newFixture(t, WithStatusClearDelays(30*time.Millisecond, time.Hour))
	_, err := f.svc.GenerateMenu(context.Background(), MenuRequest{Prompt: "diner", APIKey: "sk-test"})
	require.NoError(t, err)

	assert.Equal(t, "All done! Your menu is ready.", f.svc.Status().Message)
	assert.Eventually(t, func() bool {
		return f.svc.Status().Message == ""
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConcurrentGenerationIsRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.gen.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.GenerateMenu(context.Background(), MenuRequest{Prompt: "diner", APIKey: "sk-test"})
		done <- err
	}()

	require.Eventually(t, f.svc.Running, 2*time.Second, 5*time.Millisecond)

	_, err := f.svc.GenerateMenu(context.Background(), MenuRequest{Prompt: "bistro", APIKey: "sk-test"})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConflict))

	_, err = f.svc.GenerateImages(context.Background(), ImageRequest{Source: "foodish"})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConflict))

	close(f.gen.block)
	require.NoError(t, <-done)
	assert.False(t, f.svc.Running())
}

func TestGenerateImagesOnLoadedHistoryEntry(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.registerFoodish()
	ctx := context.Background()

	r := threeItemMenu()
	menu.AssignIDs(&r)
	saved, err := f.history.Save(ctx, &r, "trattoria prompt")
	require.NoError(t, err)

	loaded, err := f.svc.LoadFromHistory(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Luigi's Trattoria", loaded.Name)
	assert.Equal(t, "trattoria prompt", f.svc.LastPrompt())

	res, err := f.svc.GenerateImages(ctx, ImageRequest{Source: "foodish", NoInline: true})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Succeeded)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, "https://images.example.com/1.png", res.Restaurant.Items()[0].ImageURL)
	assert.Empty(t, f.metrics.inlines, "inlining skipped")

	entries := f.history.List(ctx)
	require.Len(t, entries, 2)
	assert.Equal(t, res.HistoryID, entries[0].ID)
	assert.Equal(t, "trattoria prompt", entries[0].Prompt)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, notification.KindImagesCompleted, f.notifier.events[0].Kind)
	assert.Equal(t, "All done! 3 of 3 images ready.", f.svc.Status().Message)
}

func TestLoadFromHistoryUnknownID(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.LoadFromHistory(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestSetCurrentReassignsIDs(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	r := threeItemMenu()
	r.Sections[0].Items[0].ID = "custom"

	require.NoError(t, f.svc.SetCurrent(r))
	current := f.svc.Current()
	assert.Equal(t, "item-1", current.Sections[0].Items[0].ID)
	assert.Equal(t, "Pasta", current.Sections[1].Items[0].Category)

	require.Error(t, f.svc.SetCurrent(menu.Restaurant{}))
}

func TestCurrentStartsAsSample(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	assert.Equal(t, menu.Sample(), f.svc.Current())
}
