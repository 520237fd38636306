// Package inline converts remote image references into embedded data: URIs
// so that saved and printed menus do not depend on expiring provider URLs.
package inline

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/gommon/bytes"
	"github.com/patrickmn/go-cache"

	"github.com/menumaker/menumaker/internal/errors"
	"github.com/menumaker/menumaker/internal/httpclient"
	"github.com/menumaker/menumaker/internal/logger"
	"github.com/menumaker/menumaker/internal/menu"
)

const (
	DefaultMaxBytes = 10 * 1024 * 1024
	DefaultCacheTTL = time.Hour
)

// Config configures an Inliner. Zero values take the defaults.
type Config struct {
	MaxBytes int64
	CacheTTL time.Duration
}

// MetricsRecorder receives one observation per inlined reference.
type MetricsRecorder interface {
	RecordInline(success bool)
}

// Inliner fetches images and encodes them as data URIs. Results are cached
// by URL, so repeated references are fetched once.
type Inliner struct {
	client   *httpclient.Client
	maxBytes int64
	cache    *cache.Cache
	metrics  MetricsRecorder
	logger   logger.Logger
}

// New creates an Inliner.
func New(client *httpclient.Client, cfg Config, metrics MetricsRecorder, log logger.Logger) *Inliner {
	if client == nil {
		client = httpclient.New(nil)
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if log == nil {
		log = logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}
	return &Inliner{
		client:   client,
		maxBytes: cfg.MaxBytes,
		cache:    cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		metrics:  metrics,
		logger:   log.Module("inline"),
	}
}

// ToDataURI returns ref as a data URI. Empty and already embedded references
// are returned unchanged.
func (in *Inliner) ToDataURI(ctx context.Context, ref string) (string, error) {
	if ref == "" || menu.IsEmbeddedImage(ref) {
		return ref, nil
	}

	if cached, ok := in.cache.Get(ref); ok {
		return cached.(string), nil
	}

	resp, err := in.client.Get(ctx, ref)
	if err != nil {
		return "", inlineError(fmt.Errorf("failed to fetch image: %w", err), ref)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", inlineError(fmt.Errorf("failed to fetch image: %s", resp.Status), ref)
	}
	if resp.ContentLength > in.maxBytes {
		return "", inlineError(fmt.Errorf("image is %s, limit is %s",
			bytes.Format(resp.ContentLength), bytes.Format(in.maxBytes)), ref)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, in.maxBytes+1))
	if err != nil {
		return "", inlineError(fmt.Errorf("failed to read image: %w", err), ref)
	}
	if int64(len(data)) > in.maxBytes {
		return "", inlineError(fmt.Errorf("image exceeds the %s limit", bytes.Format(in.maxBytes)), ref)
	}

	uri := "data:" + mimeType(resp.Header.Get("Content-Type"), data) + ";base64," + base64.StdEncoding.EncodeToString(data)
	in.cache.SetDefault(ref, uri)

	in.logger.Debug("image inlined",
		logger.String("size", bytes.Format(int64(len(data)))),
		logger.Int("encoded_length", len(uri)))
	return uri, nil
}

// mimeType prefers the declared content type and sniffs the payload otherwise.
func mimeType(header string, data []byte) string {
	if header != "" {
		if mt, _, err := mime.ParseMediaType(header); err == nil && mt != "application/octet-stream" {
			return mt
		}
	}
	return strings.SplitN(http.DetectContentType(data), ";", 2)[0]
}

// Result is the outcome for one item.
type Result struct {
	ItemID  string
	Skipped bool // empty or already embedded
	Err     error
}

// Progress is reported before each item is inlined.
type Progress struct {
	Current int
	Total   int
}

// InlineItems replaces each item's remote image with a data URI. A failed
// item keeps its original reference.
func (in *Inliner) InlineItems(ctx context.Context, items []*menu.MenuItem, progress func(Progress)) []Result {
	results := make([]Result, len(items))
	converted := 0

	for i, item := range items {
		results[i].ItemID = item.ID
		if progress != nil {
			progress(Progress{Current: i + 1, Total: len(items)})
		}

		if item.ImageURL == "" || menu.IsEmbeddedImage(item.ImageURL) {
			results[i].Skipped = true
			continue
		}

		uri, err := in.ToDataURI(ctx, item.ImageURL)
		if in.metrics != nil {
			in.metrics.RecordInline(err == nil)
		}
		if err != nil {
			in.logger.Warn("keeping remote image reference",
				logger.String("item", item.Name),
				logger.Error(err))
			results[i].Err = err
			continue
		}
		item.ImageURL = uri
		converted++
	}

	in.logger.Info("images inlined",
		logger.Int("converted", converted),
		logger.Int("items", len(items)))
	return results
}

// Failed counts results with an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

func inlineError(err error, ref string) error {
	return errors.New(err).
		Component("inline").
		Category(errors.CategoryImageFetch).
		NetworkContext(ref, 0).
		Build()
}
