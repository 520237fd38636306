package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menumaker/menumaker/internal/errors"
	"github.com/menumaker/menumaker/internal/kvstore"
	"github.com/menumaker/menumaker/internal/menu"
)

// fixedClock returns t on every call; tick advances it.
type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time       { return c.t }
func (c *fixedClock) tick(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(t *testing.T, opts ...Option) (*Service, *kvstore.MemoryStore, *fixedClock) {
	t.Helper()
	kv := kvstore.NewMemoryStore()
	clock := &fixedClock{t: time.UnixMilli(1_700_000_000_000)}
	opts = append([]Option{WithClock(clock.now)}, opts...)
	return NewService(kv, opts...), kv, clock
}

func restaurant(name string) *menu.Restaurant {
	r := &menu.Restaurant{
		Name: name,
		Sections: []menu.MenuSection{{
			Category: "Mains",
			Items:    []menu.MenuItem{{Name: "Dish", Price: "$1"}},
		}},
	}
	menu.AssignIDs(r)
	return r
}

func TestSaveNewestFirst(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	first, err := svc.Save(ctx, restaurant("First"), "first prompt")
	require.NoError(t, err)
	assert.Equal(t, "menu-1700000000000", first.ID)
	assert.Equal(t, int64(1_700_000_000_000), first.Timestamp)

	clock.tick(time.Second)
	second, err := svc.Save(ctx, restaurant("Second"), "second prompt")
	require.NoError(t, err)

	entries := svc.List(ctx)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)
	assert.Equal(t, "first prompt", entries[1].Prompt)
	assert.Equal(t, "Second", entries[0].Restaurant.Name)
}

func TestSaveSnapshotsRestaurant(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	r := restaurant("Snapshot")
	_, err := svc.Save(ctx, r, "p")
	require.NoError(t, err)

	r.Sections[0].Items[0].Name = "Changed later"

	entries := svc.List(ctx)
	require.Len(t, entries, 1)
	assert.Equal(t, "Dish", entries[0].Restaurant.Sections[0].Items[0].Name)
}

func TestCapEvictsOldest(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	var ids []string
	for i := range 11 {
		e, err := svc.Save(ctx, restaurant(fmt.Sprintf("R%d", i)), "")
		require.NoError(t, err)
		ids = append(ids, e.ID)
		clock.tick(time.Millisecond * 10)
	}

	entries := svc.List(ctx)
	require.Len(t, entries, DefaultMaxEntries)
	assert.Equal(t, "R10", entries[0].Restaurant.Name)
	assert.Equal(t, "R1", entries[len(entries)-1].Restaurant.Name)
	for _, e := range entries {
		assert.NotEqual(t, ids[0], e.ID, "oldest entry should have been evicted")
	}
}

func TestCustomCap(t *testing.T) {
	svc, _, clock := newTestService(t, WithMaxEntries(2))
	ctx := context.Background()
	for range 3 {
		_, err := svc.Save(ctx, restaurant("R"), "")
		require.NoError(t, err)
		clock.tick(time.Second)
	}
	assert.Len(t, svc.List(ctx), 2)
	assert.Equal(t, 2, svc.MaxEntries())
}

func TestSameMillisecondSavesGetDistinctIDs(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Save(ctx, restaurant("A"), "")
	require.NoError(t, err)
	b, err := svc.Save(ctx, restaurant("B"), "")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Timestamp+1, b.Timestamp)

	require.NoError(t, svc.Delete(ctx, a.ID))
	entries := svc.List(ctx)
	require.Len(t, entries, 1)
	assert.Equal(t, b.ID, entries[0].ID)
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	var saved []Entry
	for i := range 3 {
		e, err := svc.Save(ctx, restaurant(fmt.Sprintf("R%d", i)), "")
		require.NoError(t, err)
		saved = append(saved, e)
		clock.tick(time.Second)
	}

	require.NoError(t, svc.Delete(ctx, saved[1].ID))
	entries := svc.List(ctx)
	require.Len(t, entries, 2)
	assert.Equal(t, saved[2].ID, entries[0].ID)
	assert.Equal(t, saved[0].ID, entries[1].ID)

	require.NoError(t, svc.Delete(ctx, "menu-does-not-exist"))
	assert.Len(t, svc.List(ctx), 2)
}

func TestGet(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, restaurant("Found"), "p")
	require.NoError(t, err)

	got, err := svc.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Found", got.Restaurant.Name)
	assert.Equal(t, saved.Time(), got.Time())

	_, err = svc.Get(ctx, "menu-1")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestCorruptHistoryIsEmpty(t *testing.T) {
	svc, kv, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, StorageKey, "{this is not json"))
	entries := svc.List(ctx)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	// saving over corrupt data starts a fresh history
	_, err := svc.Save(ctx, restaurant("Fresh"), "")
	require.NoError(t, err)
	assert.Len(t, svc.List(ctx), 1)
}

func TestStoredFormat(t *testing.T) {
	svc, kv, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, restaurant("Format"), "a prompt")
	require.NoError(t, err)

	raw, err := kv.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"id": "menu-1700000000000",
		"timestamp": 1700000000000,
		"prompt": "a prompt",
		"restaurant": {
			"name": "Format",
			"sections": [{"category": "Mains", "items": [
				{"id": "item-1", "name": "Dish", "description": "", "price": "$1", "category": "Mains"}
			]}]
		}
	}]`, raw)
}

func TestClear(t *testing.T) {
	svc, kv, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, restaurant("Gone"), "")
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx))

	assert.Empty(t, svc.List(ctx))
	_, err = kv.Get(ctx, StorageKey)
	require.ErrorIs(t, err, kvstore.ErrNotFound)
}
