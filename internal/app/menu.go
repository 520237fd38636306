package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/menumaker/menumaker/internal/errors"
	"github.com/menumaker/menumaker/internal/logger"
	"github.com/menumaker/menumaker/internal/menu"
	"github.com/menumaker/menumaker/internal/render"
)

// Open builds the App from the loaded settings.
func (c *Context) Open(ctx context.Context, opts ...Option) (*App, error) {
	if c.Settings == nil {
		return nil, errors.Newf("settings are not loaded").
			Component("app").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return New(ctx, c.Settings, c.Logger, opts...)
}

// LoadMenu returns the history entry with the given id, or the menu stored in
// file. With neither, the newest history entry is used.
func (a *App) LoadMenu(ctx context.Context, id, file string) (menu.Restaurant, error) {
	switch {
	case id != "" && file != "":
		return menu.Restaurant{}, errors.ValidationError("use either a history id or an input file, not both")
	case file != "":
		return ReadMenuFile(file)
	case id != "":
		entry, err := a.History.Get(ctx, id)
		if err != nil {
			return menu.Restaurant{}, err
		}
		return entry.Restaurant, nil
	}

	entries := a.History.List(ctx)
	if len(entries) == 0 {
		return menu.Restaurant{}, errors.NotFoundError("app", "history entry", "latest")
	}
	a.Logger.Debug("using newest history entry", logger.String("id", entries[0].ID))
	return entries[0].Restaurant, nil
}

// ReadMenuFile reads a menu from a json or yaml file.
func ReadMenuFile(path string) (menu.Restaurant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return menu.Restaurant{}, errors.New(err).
			Component("app").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	var r menu.Restaurant
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &r)
	default:
		err = json.Unmarshal(data, &r)
	}
	if err != nil {
		return menu.Restaurant{}, errors.New(err).
			Component("app").
			Category(errors.CategoryValidation).
			Context("path", path).
			Build()
	}
	menu.AssignIDs(&r)
	return r, nil
}

// WriteExport writes r in format to path. An empty format is taken from the
// path extension. An empty path or "-" writes to w.
func (a *App) WriteExport(w io.Writer, path, format string, r menu.Restaurant) error {
	toStdout := path == "" || path == "-"
	if format == "" && !toStdout {
		format = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	f, err := render.ParseFormat(format)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := a.Renderer.Export(&buf, f, r); err != nil {
		return err
	}
	if toStdout {
		_, err = buf.WriteTo(w)
		return err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.New(err).
			Component("app").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	a.Logger.Info("menu exported", logger.String("path", path), logger.String("format", string(f)))
	return nil
}
