package imageprovider

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/menumaker/menumaker/internal/errors"
	"github.com/menumaker/menumaker/internal/logger"
	"github.com/menumaker/menumaker/internal/menu"
)

// Progress is reported once per item, including items skipped after
// cancellation, so Current always reaches Total.
type Progress struct {
	Current  int // 1-based
	Total    int
	ItemName string
}

// MetricsRecorder receives one observation per fetch.
type MetricsRecorder interface {
	RecordImageFetch(source string, success bool, duration time.Duration)
}

// RunOptions configures a batch.
type RunOptions struct {
	// Delay is the pause between consecutive items.
	Delay    time.Duration
	Progress func(Progress)
	Metrics  MetricsRecorder
	Logger   logger.Logger
}

// Result is the outcome for one item. Err is nil on success.
type Result struct {
	Index    int    `json:"index"`
	ItemID   string `json:"itemId"`
	ItemName string `json:"itemName"`
	ImageURL string `json:"imageUrl,omitempty"`
	Err      error  `json:"-"`
}

// OK reports whether the item received an image.
func (r Result) OK() bool { return r.Err == nil }

// Error returns the failure message, or "".
func (r Result) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// MarshalJSON adds the failure message as "error".
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	return json.Marshal(struct {
		plain
		Error string `json:"error,omitempty"`
	}{plain: plain(r), Error: r.Error()})
}

// Run fetches an image for each item in order, one at a time. A successful
// fetch sets item.ImageURL; a failure is recorded and the item keeps its
// previous image. Cancellation marks the remaining items failed. Run returns
// one Result per item and never fails as a whole.
func Run(ctx context.Context, provider Provider, items []*menu.MenuItem, opts RunOptions) []Result {
	log := opts.Logger
	if log == nil {
		log = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}
	log = log.Module("imageprovider").WithContext(ctx).With(logger.String("provider", provider.Name()))

	total := len(items)
	results := make([]Result, total)

	for i, item := range items {
		results[i] = Result{Index: i, ItemID: item.ID, ItemName: item.Name}

		if opts.Progress != nil {
			opts.Progress(Progress{Current: i + 1, Total: total, ItemName: item.Name})
		}

		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}

		start := time.Now()
		url, err := provider.Fetch(ctx, *item)
		if err == nil && strings.TrimSpace(url) == "" {
			err = newFetchError(errors.NewStd("provider returned no image"), provider.Name(), item.Name)
		}
		if opts.Metrics != nil {
			opts.Metrics.RecordImageFetch(provider.Name(), err == nil, time.Since(start))
		}

		if err != nil {
			log.Warn("image fetch failed, continuing",
				logger.String("item", item.Name),
				logger.Int("index", i+1),
				logger.Error(err))
			results[i].Err = err
		} else {
			item.ImageURL = url
			results[i].ImageURL = url
			log.Debug("image fetched",
				logger.String("item", item.Name),
				logger.Int("index", i+1),
				logger.Duration("duration", time.Since(start)))
		}

		if i < total-1 && opts.Delay > 0 {
			if !sleep(ctx, opts.Delay) {
				log.Info("image batch cancelled", logger.Int("completed", i+1), logger.Int("total", total))
			}
		}
	}

	succeeded, failed := Summary(results)
	log.Info("image batch finished",
		logger.Int("succeeded", succeeded),
		logger.Int("failed", failed))
	return results
}

// Summary counts successful and failed results.
func Summary(results []Result) (succeeded, failed int) {
	for _, r := range results {
		if r.OK() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// sleep waits for d or until ctx is done. It reports whether the full delay elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
