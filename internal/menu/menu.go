// Package menu holds the restaurant menu data model shared by generation,
// image acquisition, history and rendering.
package menu

import (
	"fmt"
	"strings"
)

// ItemIDPrefix prefixes the sequential ids assigned to generated items.
const ItemIDPrefix = "item-"

// Restaurant is a complete menu: a named restaurant with ordered sections.
type Restaurant struct {
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Type        string        `json:"type,omitempty" yaml:"type,omitempty"`
	Sections    []MenuSection `json:"sections" yaml:"sections"`
}

// MenuSection is one category of the menu.
type MenuSection struct {
	Category string     `json:"category" yaml:"category"`
	Items    []MenuItem `json:"items" yaml:"items"`
}

// MenuItem is one dish. Price is display text and never parsed.
// ImageURL is empty, a remote URL or an embedded data: URI.
type MenuItem struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Price       string `json:"price" yaml:"price"`
	ImageURL    string `json:"imageUrl,omitempty" yaml:"image_url,omitempty"`
	Category    string `json:"category" yaml:"category"`
}

// AssignIDs gives every item a sequential id (item-1, item-2, ...) in section
// then item order, and sets each item's category to its section's category.
func AssignIDs(r *Restaurant) {
	if r == nil {
		return
	}
	n := 0
	for si := range r.Sections {
		section := &r.Sections[si]
		for ii := range section.Items {
			n++
			section.Items[ii].ID = fmt.Sprintf("%s%d", ItemIDPrefix, n)
			section.Items[ii].Category = section.Category
		}
	}
}

// Items returns pointers to every item in rendering order. Writes through the
// pointers update the restaurant in place.
func (r *Restaurant) Items() []*MenuItem {
	items := make([]*MenuItem, 0, r.ItemCount())
	for si := range r.Sections {
		for ii := range r.Sections[si].Items {
			items = append(items, &r.Sections[si].Items[ii])
		}
	}
	return items
}

// ItemCount returns the number of items across all sections.
func (r *Restaurant) ItemCount() int {
	n := 0
	for _, s := range r.Sections {
		n += len(s.Items)
	}
	return n
}

// FindItem returns the item with the given id.
func (r *Restaurant) FindItem(id string) (*MenuItem, bool) {
	for _, item := range r.Items() {
		if item.ID == id {
			return item, true
		}
	}
	return nil, false
}

// Clone returns a deep copy.
func (r *Restaurant) Clone() Restaurant {
	out := *r
	out.Sections = make([]MenuSection, len(r.Sections))
	for i, s := range r.Sections {
		out.Sections[i] = MenuSection{
			Category: s.Category,
			Items:    append([]MenuItem(nil), s.Items...),
		}
	}
	return out
}

// ImageCount returns how many items carry an image reference.
func (r *Restaurant) ImageCount() int {
	n := 0
	for _, s := range r.Sections {
		for _, item := range s.Items {
			if item.ImageURL != "" {
				n++
			}
		}
	}
	return n
}

// IsEmbeddedImage reports whether ref is already inline data.
func IsEmbeddedImage(ref string) bool {
	return strings.HasPrefix(ref, "data:")
}
