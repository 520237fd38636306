package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/menumaker/menumaker/internal/render"
)

// RenderMenu serves the printable menu sheet
func (c *Controller) RenderMenu(ctx echo.Context) error {
	return c.renderView(ctx, render.ViewMenu)
}

// RenderCards serves the printable item cards
func (c *Controller) RenderCards(ctx echo.Context) error {
	return c.renderView(ctx, render.ViewCards)
}

// renderView renders the current menu. ?dark= overrides the stored preference.
func (c *Controller) renderView(ctx echo.Context, view render.View) error {
	dark := c.prefs.DarkMode(ctx.Request().Context())
	if v := ctx.QueryParam("dark"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return c.HandleErrorWithCode(ctx, err, "dark must be true or false", http.StatusBadRequest)
		}
		dark = parsed
	}

	var buf bytes.Buffer
	if err := c.renderer.Render(&buf, view, c.generation.Current(), dark); err != nil {
		return c.HandleError(ctx, err, "Failed to render menu")
	}
	return ctx.HTMLBlob(http.StatusOK, buf.Bytes())
}
