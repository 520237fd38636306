package llm

import (
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/menumaker/menumaker/internal/errors"
)

// NewClient creates an OpenAI API client. An empty baseURL uses the public
// endpoint; a nil doer uses http.DefaultClient.
func NewClient(apiKey, baseURL string, doer openai.HTTPDoer) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if doer != nil {
		cfg.HTTPClient = doer
	}
	return openai.NewClientWithConfig(cfg)
}

// WrapAPIError converts an SDK error into an EnhancedError of the given
// category, keeping the API's own message and status code.
func WrapAPIError(err error, component string, category errors.ErrorCategory, operation string) error {
	builder := errors.New(fmt.Errorf("%s failed: %w", operation, err)).
		Component(component).
		Category(category).
		Context("operation", operation)

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		builder = builder.Context("status_code", apiErr.HTTPStatusCode)
		if apiErr.HTTPStatusCode == http.StatusUnauthorized {
			builder = builder.Context("unauthorized", true)
		}
	case errors.As(err, &reqErr):
		builder = builder.Context("status_code", reqErr.HTTPStatusCode)
	}
	return builder.Build()
}

// StatusCode returns the HTTP status of an API failure wrapped by WrapAPIError, or 0.
func StatusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
