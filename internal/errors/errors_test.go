package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	reported []*EnhancedError
}

func (r *recordingReporter) ReportError(ee *EnhancedError) {
	r.reported = append(r.reported, ee)
	ee.MarkReported()
}

func (r *recordingReporter) IsEnabled() bool { return true }

func TestFastPathNoTelemetry(t *testing.T) {
	SetTelemetryReporter(nil)

	ee := New(fmt.Errorf("test error")).Build()

	assert.Equal(t, "test error", ee.Error())
	assert.Equal(t, ComponentUnknown, ee.GetComponent())
	assert.Equal(t, CategoryGeneric, ee.Category)
	assert.False(t, ee.IsReported())
}

func TestBuilderSetsFields(t *testing.T) {
	SetTelemetryReporter(nil)

	ee := Newf("menu %s failed", "x").
		Component("llm").
		Category(CategoryMenuGeneration).
		Context("model", "gpt-4").
		Build()

	assert.Equal(t, "menu x failed", ee.GetMessage())
	assert.Equal(t, "llm", ee.GetComponent())
	assert.Equal(t, "menu-generation", ee.GetCategory())
	assert.Equal(t, map[string]any{"model": "gpt-4"}, ee.GetContext())
}

func TestCategoryHelpers(t *testing.T) {
	SetTelemetryReporter(nil)

	base := NotFoundError("history", "history entry", "menu-1")
	wrapped := fmt.Errorf("load: %w", base)

	assert.True(t, IsNotFound(wrapped))
	assert.True(t, IsCategory(wrapped, CategoryNotFound))
	assert.False(t, IsCategory(wrapped, CategoryValidation))
	assert.Equal(t, CategoryNotFound, CategoryOf(wrapped))
	assert.Equal(t, CategoryGeneric, CategoryOf(fmt.Errorf("plain")))
	assert.True(t, IsCategory(ValidationError("bad"), CategoryValidation))
}

func TestCategoryInheritedFromWrappedEnhancedError(t *testing.T) {
	SetTelemetryReporter(nil)

	inner := New(NewStd("busy")).Category(CategoryConflict).Build()
	outer := New(inner).Build()

	assert.Equal(t, CategoryConflict, outer.Category)
	assert.True(t, Is(outer, inner))
}

func TestReporterReceivesErrors(t *testing.T) {
	rec := &recordingReporter{}
	SetTelemetryReporter(rec)
	t.Cleanup(func() { SetTelemetryReporter(nil) })

	ee := New(NewStd("boom")).Category(CategoryDatabase).Build()

	require.Len(t, rec.reported, 1)
	assert.Same(t, ee, rec.reported[0])
	assert.True(t, ee.IsReported())
}

func TestScrubMessageForPrivacy(t *testing.T) {
	t.Parallel()

	scrubbed := scrubMessageForPrivacy("Error at https://api.example.com?api_key=secret123&token=abc")
	assert.Equal(t, "Error at https://api.example.com?[REDACTED]", scrubbed)

	scrubbed = scrubMessageForPrivacy("Config error: api_key=secret123 is invalid")
	assert.Contains(t, scrubbed, "[API_KEY_REDACTED]")

	scrubbed = scrubMessageForPrivacy("openai rejected sk-abcdefghijklmnop")
	assert.NotContains(t, scrubbed, "sk-abcdefghijklmnop")
}
