package style

// Palette is one set of theme colors as CSS hex values.
type Palette struct {
	Primary    string
	Accent     string
	Background string
	Header     string
}

// Theme holds the light and dark palettes for a style.
type Theme struct {
	Style Style
	Light Palette
	Dark  Palette
}

// Palette returns the dark or light palette.
func (t Theme) Palette(dark bool) Palette {
	if dark {
		return t.Dark
	}
	return t.Light
}

var themes = map[Style]Theme{
	Italian: {
		Light: Palette{Primary: "#991b1b", Accent: "#16a34a", Background: "#fef2f2", Header: "#7f1d1d"},
		Dark:  Palette{Primary: "#f87171", Accent: "#16a34a", Background: "#450a0a", Header: "#fca5a5"},
	},
	French: {
		Light: Palette{Primary: "#1e40af", Accent: "#2563eb", Background: "#eff6ff", Header: "#1e3a8a"},
		Dark:  Palette{Primary: "#60a5fa", Accent: "#2563eb", Background: "#172554", Header: "#93c5fd"},
	},
	Japanese: {
		Light: Palette{Primary: "#9d174d", Accent: "#db2777", Background: "#fdf2f8", Header: "#831843"},
		Dark:  Palette{Primary: "#f472b6", Accent: "#db2777", Background: "#500724", Header: "#f9a8d4"},
	},
	Mexican: {
		Light: Palette{Primary: "#9a3412", Accent: "#ea580c", Background: "#fff7ed", Header: "#7c2d12"},
		Dark:  Palette{Primary: "#fb923c", Accent: "#ea580c", Background: "#431407", Header: "#fdba74"},
	},
	American: {
		Light: Palette{Primary: "#1e40af", Accent: "#dc2626", Background: "#f8fafc", Header: "#0f172a"},
		Dark:  Palette{Primary: "#60a5fa", Accent: "#dc2626", Background: "#020617", Header: "#cbd5e1"},
	},
	Indian: {
		Light: Palette{Primary: "#92400e", Accent: "#d97706", Background: "#fffbeb", Header: "#78350f"},
		Dark:  Palette{Primary: "#fbbf24", Accent: "#d97706", Background: "#451a03", Header: "#fcd34d"},
	},
	Chinese: {
		Light: Palette{Primary: "#991b1b", Accent: "#ca8a04", Background: "#fef2f2", Header: "#7f1d1d"},
		Dark:  Palette{Primary: "#f87171", Accent: "#ca8a04", Background: "#450a0a", Header: "#fca5a5"},
	},
	Thai: {
		Light: Palette{Primary: "#6b21a8", Accent: "#9333ea", Background: "#faf5ff", Header: "#581c87"},
		Dark:  Palette{Primary: "#c084fc", Accent: "#9333ea", Background: "#3b0764", Header: "#d8b4fe"},
	},
	Default: {
		Light: Palette{Primary: "#4f46e5", Accent: "#4f46e5", Background: "#ffffff", Header: "#111827"},
		Dark:  Palette{Primary: "#818cf8", Accent: "#4f46e5", Background: "#1f2937", Header: "#ffffff"},
	},
}

// ThemeFor returns the theme of a style; unknown styles get the default theme.
func ThemeFor(s Style) Theme {
	t, ok := themes[s]
	if !ok {
		s = Default
		t = themes[Default]
	}
	t.Style = s
	return t
}
