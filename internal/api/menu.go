package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/menumaker/menumaker/internal/generation"
	"github.com/menumaker/menumaker/internal/menu"
	"github.com/menumaker/menumaker/internal/render"
	"github.com/menumaker/menumaker/internal/style"
)

// defaultRandomPrompts is how many prompts ?random=true returns.
const defaultRandomPrompts = 3

// MenuResponse is the current menu with its detected style.
type MenuResponse struct {
	Restaurant menu.Restaurant `json:"restaurant"`
	Style      style.Style     `json:"style"`
	ItemCount  int             `json:"itemCount"`
	ImageCount int             `json:"imageCount"`
}

func newMenuResponse(r menu.Restaurant) MenuResponse {
	return MenuResponse{
		Restaurant: r,
		Style:      style.Detect(r),
		ItemCount:  r.ItemCount(),
		ImageCount: r.ImageCount(),
	}
}

// initMenuRoutes registers menu, generation and export endpoints
func (c *Controller) initMenuRoutes() {
	c.Group.GET("/menu", c.GetMenu)
	c.Group.PUT("/menu", c.PutMenu)
	c.Group.POST("/menu/generate", c.GenerateMenu)
	c.Group.POST("/menu/images", c.GenerateImages)
	c.Group.GET("/menu/export", c.ExportMenu)
	c.Group.GET("/status", c.GetStatus)
	c.Group.GET("/image-sources", c.GetImageSources)
	c.Group.GET("/prompts", c.GetPrompts)
}

// GetMenu returns the current menu
func (c *Controller) GetMenu(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, newMenuResponse(c.generation.Current()))
}

// PutMenu replaces the current menu. Item ids are reassigned.
func (c *Controller) PutMenu(ctx echo.Context) error {
	var r menu.Restaurant
	if err := bind(ctx, &r); err != nil {
		return c.HandleError(ctx, err, "Invalid menu")
	}
	if err := c.generation.SetCurrent(r); err != nil {
		return c.HandleError(ctx, err, "Failed to replace menu")
	}
	return ctx.JSON(http.StatusOK, newMenuResponse(c.generation.Current()))
}

// GenerateMenu creates a new menu from a prompt and optionally fetches images.
// The request blocks until the run is done; progress is polled via /status.
func (c *Controller) GenerateMenu(ctx echo.Context) error {
	var req generation.MenuRequest
	if err := bind(ctx, &req); err != nil {
		return c.HandleError(ctx, err, "Invalid generation request")
	}

	// the run continues if the client disconnects
	runCtx := context.WithoutCancel(ctx.Request().Context())
	result, err := c.generation.GenerateMenu(runCtx, req)
	if err != nil {
		return c.HandleError(ctx, err, "Menu generation failed")
	}
	return ctx.JSON(http.StatusOK, result)
}

// GenerateImages fetches an image for every item of the current menu.
func (c *Controller) GenerateImages(ctx echo.Context) error {
	var req generation.ImageRequest
	if err := bind(ctx, &req); err != nil {
		return c.HandleError(ctx, err, "Invalid image request")
	}

	runCtx := context.WithoutCancel(ctx.Request().Context())
	result, err := c.generation.GenerateImages(runCtx, req)
	if err != nil {
		return c.HandleError(ctx, err, "Image generation failed")
	}
	return ctx.JSON(http.StatusOK, result)
}

// GetStatus returns the progress of the running generation
func (c *Controller) GetStatus(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.generation.Status())
}

// ExportMenu downloads the current menu in the requested format.
func (c *Controller) ExportMenu(ctx echo.Context) error {
	format, err := render.ParseFormat(ctx.QueryParam("format"))
	if err != nil {
		return c.HandleError(ctx, err, "Invalid export format")
	}

	r := c.generation.Current()
	var buf bytes.Buffer
	if err := c.renderer.Export(&buf, format, r); err != nil {
		return c.HandleError(ctx, err, "Export failed")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", exportFilename(r.Name, format)))
	return ctx.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}

var filenameUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// exportFilename derives a download name from the restaurant name.
func exportFilename(name string, format render.Format) string {
	base := strings.Trim(filenameUnsafe.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if base == "" {
		base = "menu"
	}
	return base + "." + format.Extension()
}

// GetImageSources lists the available image sources
func (c *Controller) GetImageSources(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.registry.List())
}

// GetPrompts returns the example prompts, or a random handful with ?random=true.
func (c *Controller) GetPrompts(ctx echo.Context) error {
	random, _ := strconv.ParseBool(ctx.QueryParam("random"))
	if !random {
		return ctx.JSON(http.StatusOK, menu.ExamplePrompts())
	}

	count := defaultRandomPrompts
	if v := ctx.QueryParam("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return c.HandleErrorWithCode(ctx, err, "count must be a positive integer", http.StatusBadRequest)
		}
		count = n
	}
	return ctx.JSON(http.StatusOK, menu.RandomPrompts(count))
}
