package menu

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignIDsSequentialAndCategorised(t *testing.T) {
	t.Parallel()

	r := &Restaurant{
		Name: "Luigi's Trattoria",
		Sections: []MenuSection{
			{Category: "Antipasti", Items: []MenuItem{{Name: "Bruschetta"}, {Name: "Arancini", Category: "Wrong"}}},
			{Category: "Empty"},
			{Category: "Pizza", Items: []MenuItem{{Name: "Margherita", ID: "keep-me?"}}},
		},
	}

	AssignIDs(r)

	items := r.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "item-1", items[0].ID)
	assert.Equal(t, "item-2", items[1].ID)
	assert.Equal(t, "item-3", items[2].ID)
	assert.Equal(t, "Antipasti", items[1].Category)
	assert.Equal(t, "Pizza", items[2].Category)

	seen := map[string]bool{}
	for _, item := range items {
		assert.False(t, seen[item.ID], "duplicate id %s", item.ID)
		seen[item.ID] = true
	}
}

func TestItemsAreWritableInPlace(t *testing.T) {
	t.Parallel()

	r := Sample()
	items := r.Items()
	items[3].ImageURL = "https://img.example/tuna.jpg"

	assert.Equal(t, "https://img.example/tuna.jpg", r.Sections[0].Items[3].ImageURL)
	assert.Equal(t, 1, r.ImageCount())
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	r := Sample()
	c := r.Clone()
	c.Sections[0].Items[0].Name = "Changed"
	c.Sections[0].Category = "Changed"

	assert.Equal(t, "Dragon Roll", r.Sections[0].Items[0].Name)
	assert.Equal(t, "Specialty Rolls", r.Sections[0].Category)
}

func TestSample(t *testing.T) {
	t.Parallel()

	r := Sample()
	assert.Equal(t, "Sakura Sushi House", r.Name)
	assert.Len(t, r.Sections, 5)
	assert.Equal(t, 24, r.ItemCount())

	item, ok := r.FindItem("nigiri-3")
	require.True(t, ok)
	assert.Equal(t, "Yellowtail Nigiri", item.Name)

	_, ok = r.FindItem("missing")
	assert.False(t, ok)
}

func TestJSONFieldNames(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(MenuItem{ID: "item-1", Name: "Gyoza", ImageURL: "data:image/png;base64,AA=="})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"imageUrl":"data:image/png;base64,AA=="`)

	data, err = json.Marshal(Restaurant{Name: "x"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "description")
	assert.NotContains(t, string(data), `"type"`)
}

func TestPrompts(t *testing.T) {
	t.Parallel()

	all := ExamplePrompts()
	require.Len(t, all, 100)
	assert.Equal(t, "Italian pizzeria", all[0])

	picked := RandomPrompts(6)
	assert.Len(t, picked, 6)
	assert.Subset(t, all, picked)
	assert.Len(t, RandomPrompts(500), 100)
	assert.Empty(t, RandomPrompts(-1))
}

func TestIsEmbeddedImage(t *testing.T) {
	t.Parallel()

	assert.True(t, IsEmbeddedImage("data:image/jpeg;base64,/9j/"))
	assert.False(t, IsEmbeddedImage("https://images.pexels.com/a.jpg"))
	assert.False(t, IsEmbeddedImage(""))
}
