package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/menumaker/menumaker/internal/errors"
	"github.com/menumaker/menumaker/internal/menu"
)

// ParseMenu decodes a model response into a Restaurant and assigns item ids.
// The response must be a JSON object with a sections array.
func ParseMenu(content string) (*menu.Restaurant, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.Newf("no content received from the model").
			Component("llm").
			Category(errors.CategoryMenuGeneration).
			Build()
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, parseError(fmt.Errorf("model response is not valid menu JSON: %w", err), content)
	}
	if fields == nil {
		return nil, parseError(fmt.Errorf("model response is not a JSON object"), content)
	}
	sections, ok := fields["sections"]
	if !ok || bytes.Equal(bytes.TrimSpace(sections), []byte("null")) {
		return nil, parseError(fmt.Errorf("model response has no sections"), content)
	}

	var r menu.Restaurant
	if err := json.Unmarshal([]byte(content), &r); err != nil {
		return nil, parseError(fmt.Errorf("model response is not valid menu JSON: %w", err), content)
	}

	menu.AssignIDs(&r)
	return &r, nil
}

func parseError(err error, content string) error {
	return errors.New(err).
		Component("llm").
		Category(errors.CategoryMenuGeneration).
		Context("content_length", len(content)).
		Build()
}
