package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/menumaker/menumaker/internal/history"
	"github.com/menumaker/menumaker/internal/style"
)

// HistorySummary is a list row. The full menu is fetched per entry.
type HistorySummary struct {
	ID         string      `json:"id"`
	Restaurant string      `json:"restaurant"`
	Style      style.Style `json:"style"`
	ItemCount  int         `json:"itemCount"`
	ImageCount int         `json:"imageCount"`
	Timestamp  int64       `json:"timestamp"`
	Prompt     string      `json:"prompt"`
}

func summarize(e history.Entry) HistorySummary {
	return HistorySummary{
		ID:         e.ID,
		Restaurant: e.Restaurant.Name,
		Style:      style.Detect(e.Restaurant),
		ItemCount:  e.Restaurant.ItemCount(),
		ImageCount: e.Restaurant.ImageCount(),
		Timestamp:  e.Timestamp,
		Prompt:     e.Prompt,
	}
}

// initHistoryRoutes registers saved menu endpoints
func (c *Controller) initHistoryRoutes() {
	g := c.Group.Group("/history")
	g.GET("", c.ListHistory)
	g.DELETE("", c.ClearHistory)
	g.GET("/:id", c.GetHistoryEntry)
	g.DELETE("/:id", c.DeleteHistoryEntry)
	g.POST("/:id/load", c.LoadHistoryEntry)
}

// ListHistory returns the saved menus, newest first
func (c *Controller) ListHistory(ctx echo.Context) error {
	entries := c.history.List(ctx.Request().Context())
	out := make([]HistorySummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, summarize(e))
	}
	return ctx.JSON(http.StatusOK, out)
}

// ClearHistory removes every saved menu
func (c *Controller) ClearHistory(ctx echo.Context) error {
	if err := c.history.Clear(ctx.Request().Context()); err != nil {
		return c.HandleError(ctx, err, "Failed to clear history")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// GetHistoryEntry returns one saved menu
func (c *Controller) GetHistoryEntry(ctx echo.Context) error {
	entry, err := c.history.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return c.HandleError(ctx, err, "History entry not found")
	}
	return ctx.JSON(http.StatusOK, entry)
}

// DeleteHistoryEntry removes one saved menu. Unknown ids are not an error.
func (c *Controller) DeleteHistoryEntry(ctx echo.Context) error {
	if err := c.history.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return c.HandleError(ctx, err, "Failed to delete history entry")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// LoadHistoryEntry makes a saved menu the current one
func (c *Controller) LoadHistoryEntry(ctx echo.Context) error {
	r, err := c.generation.LoadFromHistory(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load history entry")
	}
	return ctx.JSON(http.StatusOK, newMenuResponse(r))
}
