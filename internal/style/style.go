// Package style maps a restaurant to a cuisine style used to pick a color theme.
package style

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/menumaker/menumaker/internal/menu"
)

// Style is a cuisine style tag.
type Style string

const (
	Italian  Style = "italian"
	French   Style = "french"
	Japanese Style = "japanese"
	Mexican  Style = "mexican"
	American Style = "american"
	Indian   Style = "indian"
	Chinese  Style = "chinese"
	Thai     Style = "thai"
	Default  Style = "default"
)

type rule struct {
	style    Style
	keywords []string
}

// rules are checked in order; the first rule with a matching keyword wins.
var rules = []rule{
	{Italian, []string{"italian", "pizza", "pasta", "trattoria", "osteria"}},
	{French, []string{"french", "bistro", "brasserie", "café", "cafe", "croissant"}},
	{Japanese, []string{"japanese", "sushi", "ramen", "izakaya", "yakitori"}},
	{Mexican, []string{"mexican", "taco", "burrito", "cantina", "taqueria"}},
	{American, []string{"american", "diner", "burger", "bbq", "steakhouse"}},
	{Indian, []string{"indian", "curry", "tandoori", "masala"}},
	{Chinese, []string{"chinese", "dim sum", "wok", "noodle"}},
	{Thai, []string{"thai", "pad thai", "tom yum"}},
}

// Detect classifies a restaurant by keywords in its name, description and type.
// Matching is case-insensitive substring matching.
func Detect(r menu.Restaurant) Style {
	return DetectText(strings.Join([]string{r.Name, r.Description, r.Type}, " "))
}

// DetectText classifies free text the same way Detect does.
func DetectText(text string) Style {
	folder := cases.Fold()
	folded := folder.String(text)
	for _, rl := range rules {
		for _, kw := range rl.keywords {
			if strings.Contains(folded, folder.String(kw)) {
				return rl.style
			}
		}
	}
	return Default
}

// All returns every style in priority order, ending with Default.
func All() []Style {
	out := make([]Style, 0, len(rules)+1)
	for _, rl := range rules {
		out = append(out, rl.style)
	}
	return append(out, Default)
}
