package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/menumaker/menumaker/internal/credentials"
	"github.com/menumaker/menumaker/internal/errors"
)

// KeyResponse describes a stored API key without revealing it.
type KeyResponse struct {
	Provider credentials.Provider `json:"provider"`
	Stored   bool                 `json:"stored"`
	Masked   string               `json:"masked,omitempty"`
}

// KeyRequest sets an API key.
type KeyRequest struct {
	Key string `json:"key"`
}

// DarkModeBody is the dark mode preference.
type DarkModeBody struct {
	Enabled *bool `json:"enabled"`
}

// initSettingsRoutes registers key and preference endpoints
func (c *Controller) initSettingsRoutes() {
	c.Group.GET("/keys/:provider", c.GetKey)
	c.Group.PUT("/keys/:provider", c.PutKey)
	c.Group.DELETE("/keys/:provider", c.DeleteKey)

	c.Group.GET("/preferences/dark-mode", c.GetDarkMode)
	c.Group.PUT("/preferences/dark-mode", c.PutDarkMode)
}

// GetKey reports whether a key is stored for the provider.
func (c *Controller) GetKey(ctx echo.Context) error {
	p, err := credentials.ParseProvider(ctx.Param("provider"))
	if err != nil {
		return c.HandleError(ctx, err, "Unknown provider")
	}
	key, ok, err := c.credentials.Get(ctx.Request().Context(), p)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to read API key")
	}
	resp := KeyResponse{Provider: p, Stored: ok && key != ""}
	if resp.Stored {
		resp.Masked = maskKey(key)
	}
	return ctx.JSON(http.StatusOK, resp)
}

// PutKey stores the key for the provider.
func (c *Controller) PutKey(ctx echo.Context) error {
	p, err := credentials.ParseProvider(ctx.Param("provider"))
	if err != nil {
		return c.HandleError(ctx, err, "Unknown provider")
	}
	var req KeyRequest
	if err := bind(ctx, &req); err != nil {
		return c.HandleError(ctx, err, "Invalid key request")
	}
	key := strings.TrimSpace(req.Key)
	if key == "" {
		return c.HandleError(ctx, errors.ValidationError("key must not be empty"), "Invalid key request")
	}
	if err := c.credentials.Save(ctx.Request().Context(), p, key); err != nil {
		return c.HandleError(ctx, err, "Failed to store API key")
	}
	return ctx.JSON(http.StatusOK, KeyResponse{Provider: p, Stored: true, Masked: maskKey(key)})
}

// DeleteKey removes the stored key for the provider.
func (c *Controller) DeleteKey(ctx echo.Context) error {
	p, err := credentials.ParseProvider(ctx.Param("provider"))
	if err != nil {
		return c.HandleError(ctx, err, "Unknown provider")
	}
	if err := c.credentials.Clear(ctx.Request().Context(), p); err != nil {
		return c.HandleError(ctx, err, "Failed to clear API key")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// maskKey keeps the last four characters of keys long enough to stay secret.
func maskKey(key string) string {
	const visible = 4
	if len(key) <= visible*2 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-visible) + key[len(key)-visible:]
}

// GetDarkMode returns the dark mode preference
func (c *Controller) GetDarkMode(ctx echo.Context) error {
	enabled := c.prefs.DarkMode(ctx.Request().Context())
	return ctx.JSON(http.StatusOK, DarkModeBody{Enabled: &enabled})
}

// PutDarkMode sets the dark mode preference
func (c *Controller) PutDarkMode(ctx echo.Context) error {
	var body DarkModeBody
	if err := bind(ctx, &body); err != nil {
		return c.HandleError(ctx, err, "Invalid preference")
	}
	if body.Enabled == nil {
		return c.HandleError(ctx, errors.ValidationError("enabled is required"), "Invalid preference")
	}
	if err := c.prefs.SetDarkMode(ctx.Request().Context(), *body.Enabled); err != nil {
		return c.HandleError(ctx, err, "Failed to store preference")
	}
	return ctx.JSON(http.StatusOK, body)
}
