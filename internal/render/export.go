package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/k3a/html2text"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/menumaker/menumaker/internal/errors"
	"github.com/menumaker/menumaker/internal/menu"
)

// Format is an export format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatText Format = "text"
	FormatXLSX Format = "xlsx"
)

// Formats lists every export format.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatText, FormatXLSX}
}

// ParseFormat validates a format name. "yml" and "txt" are accepted aliases.
func ParseFormat(name string) (Format, error) {
	switch f := strings.ToLower(strings.TrimSpace(name)); f {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "text", "txt":
		return FormatText, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", errors.ValidationError(fmt.Sprintf("unknown export format %q", name))
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatText:
		return "text/plain; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Extension returns the file extension of f, without the dot.
func (f Format) Extension() string {
	if f == FormatText {
		return "txt"
	}
	return string(f)
}

// Export writes r in format f.
func (rd *Renderer) Export(w io.Writer, f Format, r menu.Restaurant) error {
	var err error
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(r); err == nil {
			err = enc.Close()
		}
	case FormatText:
		err = rd.exportText(w, r)
	case FormatXLSX:
		err = exportXLSX(w, r)
	default:
		return errors.ValidationError(fmt.Sprintf("unknown export format %q", f))
	}
	if err != nil {
		return errors.New(err).
			Component("render").
			Category(errors.CategoryFileIO).
			Context("format", string(f)).
			Build()
	}
	return nil
}

// exportText converts the menu sheet to plain text.
func (rd *Renderer) exportText(w io.Writer, r menu.Restaurant) error {
	var buf bytes.Buffer
	data := rd.data(r, false, false)
	data.QRCode = ""
	if err := rd.render(&buf, ViewMenu, data); err != nil {
		return err
	}
	_, err := io.WriteString(w, strings.TrimSpace(html2text.HTML2Text(buf.String()))+"\n")
	return err
}

const maxSheetName = 31

var xlsxHeader = []any{"ID", "Name", "Description", "Price", "Image"}

// exportXLSX writes one sheet per section.
func exportXLSX(w io.Writer, r menu.Restaurant) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	used := map[string]bool{}
	first := true
	for i, section := range r.Sections {
		name := sheetName(section.Category, i, used)
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return err
			}
			first = false
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}

		if err := f.SetSheetRow(name, "A1", &xlsxHeader); err != nil {
			return err
		}
		if err := f.SetCellStyle(name, "A1", "E1", bold); err != nil {
			return err
		}
		for j, item := range section.Items {
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return err
			}
			row := []any{item.ID, item.Name, item.Description, item.Price, imageCell(item.ImageURL)}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return err
			}
		}
		if err := f.SetColWidth(name, "C", "C", 60); err != nil {
			return err
		}
	}
	if first {
		// no sections, keep an empty sheet named after the restaurant
		if err := f.SetSheetName("Sheet1", sheetName(r.Name, 0, used)); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// imageCell keeps embedded images out of the sheet.
func imageCell(ref string) string {
	if menu.IsEmbeddedImage(ref) {
		return "(embedded image)"
	}
	return ref
}

// sheetName returns a valid, unique worksheet name for a section.
func sheetName(category string, index int, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(category))
	name = strings.Trim(name, "'")
	if name == "" {
		name = fmt.Sprintf("Section %d", index+1)
	}
	if runes := []rune(name); len(runes) > maxSheetName {
		name = string(runes[:maxSheetName])
	}

	base := name
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		runes := []rune(base)
		if len(runes)+len(suffix) > maxSheetName {
			runes = runes[:maxSheetName-len(suffix)]
		}
		name = string(runes) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}
