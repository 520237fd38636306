// Package render produces the printable menu sheet and item cards, and
// exports menus to json, yaml, text and xlsx.
package render

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/menumaker/menumaker/internal/errors"
	"github.com/menumaker/menumaker/internal/menu"
	"github.com/menumaker/menumaker/internal/style"
)

//go:embed templates/*.gohtml
var templateFiles embed.FS

// View is a printable layout.
type View string

const (
	ViewMenu  View = "menu"
	ViewCards View = "cards"
)

// ParseView validates a view name.
func ParseView(name string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(name))); v {
	case ViewMenu, ViewCards:
		return v, nil
	case "":
		return ViewMenu, nil
	default:
		return "", errors.ValidationError(fmt.Sprintf("unknown view %q", name))
	}
}

const qrSize = 256

// Options configures a Renderer.
type Options struct {
	// QRURL is printed as a QR code on the menu sheet when set.
	QRURL string
}

// Renderer renders menus with the embedded templates.
type Renderer struct {
	tmpl   *template.Template
	qrData template.URL
}

// New parses the templates and pre-renders the QR code.
func New(opts Options) (*Renderer, error) {
	tmpl, err := template.New("render").Funcs(template.FuncMap{
		"imageSrc": imageSrc,
	}).ParseFS(templateFiles, "templates/*.gohtml")
	if err != nil {
		return nil, errors.New(err).Component("render").Category(errors.CategoryGeneric).Build()
	}

	r := &Renderer{tmpl: tmpl}
	if opts.QRURL != "" {
		png, err := qrcode.Encode(opts.QRURL, qrcode.Medium, qrSize)
		if err != nil {
			return nil, errors.New(err).
				Component("render").
				Category(errors.CategoryConfiguration).
				Context("qr_url", opts.QRURL).
				Build()
		}
		r.qrData = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
	}
	return r, nil
}

// pageData is the template input.
type pageData struct {
	Restaurant menu.Restaurant
	Style      style.Style
	Palette    style.Palette
	ThemeVars  template.CSS
	Dark       bool
	Printable  bool
	QRCode     template.URL
}

func (rd *Renderer) data(r menu.Restaurant, dark, printable bool) pageData {
	s := style.Detect(r)
	palette := style.ThemeFor(s).Palette(dark)
	return pageData{
		Restaurant: r,
		Style:      s,
		Palette:    palette,
		ThemeVars: template.CSS(fmt.Sprintf("--primary: %s; --accent: %s; --background: %s; --header: %s",
			palette.Primary, palette.Accent, palette.Background, palette.Header)),
		Dark:      dark,
		Printable: printable,
		QRCode:    rd.qrData,
	}
}

// Render writes view for r. The palette follows the detected style.
func (rd *Renderer) Render(w io.Writer, view View, r menu.Restaurant, dark bool) error {
	return rd.render(w, view, rd.data(r, dark, true))
}

func (rd *Renderer) render(w io.Writer, view View, data pageData) error {
	var buf bytes.Buffer
	if err := rd.tmpl.ExecuteTemplate(&buf, string(view), data); err != nil {
		return errors.New(err).
			Component("render").
			Category(errors.CategoryGeneric).
			Context("view", string(view)).
			Build()
	}
	_, err := buf.WriteTo(w)
	return err
}

// imageSrc allows remote http(s) images and embedded raster images only.
func imageSrc(ref string) template.URL {
	lower := strings.ToLower(strings.TrimSpace(ref))
	switch {
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"):
		return template.URL(ref)
	case strings.HasPrefix(lower, "data:image/") && !strings.HasPrefix(lower, "data:image/svg"):
		return template.URL(ref)
	default:
		return ""
	}
}
