package board

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/errors"
)

func TestItemsInGroup(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.PostItem(ctx, "go post", "https://example.com/a", "alice", []string{"golang"})
	require.NoError(t, err)
	b, err := svc.PostItem(ctx, "both groups", "https://example.com/b", "bob", []string{"golang", "databases"})
	require.NoError(t, err)
	_, err = svc.PostItem(ctx, "db only", "https://example.com/c", "carol", []string{"databases"})
	require.NoError(t, err)

	// b outranks a inside golang after a vote.
	_, err = svc.Vote(ctx, b.ID, "u1")
	require.NoError(t, err)

	items, err := svc.ItemsInGroup(ctx, "golang", 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID, a.ID}, itemIDs(items))

	items, err = svc.ItemsInGroup(ctx, "databases", 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, b.ID, items[0].ID)
}

func TestItemsInGroup_EmptyAndUnknown(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	items, err := svc.ItemsInGroup(ctx, "nonexistent", 10)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = svc.ItemsInGroup(ctx, "  ", 10)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestChangeGroups(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	item, err := svc.PostItem(ctx, "movable", "https://example.com", "alice", []string{"old"})
	require.NoError(t, err)

	require.NoError(t, svc.ChangeGroups(ctx, item.ID, []string{"new"}, []string{"old"}))

	items, err := svc.ItemsInGroup(ctx, "old", 10)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = svc.ItemsInGroup(ctx, "new", 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, item.ID, items[0].ID)
}

func TestChangeGroups_OverlapRemoves(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	item, err := svc.PostItem(ctx, "contested", "https://example.com", "alice", nil)
	require.NoError(t, err)

	// A group in both change sets ends up removed.
	require.NoError(t, svc.ChangeGroups(ctx, item.ID, []string{"both"}, []string{"both"}))

	items, err := svc.ItemsInGroup(ctx, "both", 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestChangeGroups_UnknownItem(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.ChangeGroups(context.Background(), 99, []string{"g"}, nil)
	assert.ErrorIs(t, err, errs.ErrItemNotFound)
}

func TestGroupIndex_Idempotent(t *testing.T) {
	store := newFakeStore()
	gi := NewGroupIndex(store, time.Minute, false)
	ctx := context.Background()

	require.NoError(t, gi.Add(ctx, 1, []string{"g"}))
	require.NoError(t, gi.Add(ctx, 1, []string{"g"}))

	n, err := store.SCard(ctx, groupKey("g"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, gi.Remove(ctx, 1, []string{"g"}))
	require.NoError(t, gi.Remove(ctx, 1, []string{"g"}))

	n, err = store.SCard(ctx, groupKey("g"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestGroupIndex_SkipsEmptyNames(t *testing.T) {
	store := newFakeStore()
	gi := NewGroupIndex(store, time.Minute, false)
	ctx := context.Background()

	require.NoError(t, gi.Add(ctx, 1, []string{"", "g"}))

	n, err := store.SCard(ctx, groupKey("g"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, ok := store.sets[groupKey("")]
	assert.False(t, ok)
}

func TestGroupIndex_PruneEmpty(t *testing.T) {
	store := newFakeStore()
	gi := NewGroupIndex(store, time.Minute, true)
	ctx := context.Background()

	require.NoError(t, gi.Add(ctx, 1, []string{"g"}))
	require.NoError(t, gi.Remove(ctx, 1, []string{"g"}))

	_, ok := store.sets[groupKey("g")]
	assert.False(t, ok, "empty group should be pruned")
}

func TestGroupIndex_RetainEmptyByDefault(t *testing.T) {
	store := newFakeStore()
	gi := NewGroupIndex(store, time.Minute, false)
	ctx := context.Background()

	require.NoError(t, gi.Add(ctx, 1, []string{"g"}))
	require.NoError(t, gi.Remove(ctx, 1, []string{"g"}))

	_, ok := store.sets[groupKey("g")]
	assert.True(t, ok, "empty group should be retained")
}

func TestGroupIndex_CachedViewInvalidation(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.PostItem(ctx, "first", "https://example.com/a", "alice", []string{"g"})
	require.NoError(t, err)

	// First read builds and caches the ranked view.
	items, err := svc.ItemsInGroup(ctx, "g", 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	_, cached := store.zsets[groupTopKey("g")]
	assert.True(t, cached)

	// Membership change drops the view; the next read rebuilds it.
	b, err := svc.PostItem(ctx, "second", "https://example.com/b", "bob", []string{"g"})
	require.NoError(t, err)

	items, err = svc.ItemsInGroup(ctx, "g", 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID, a.ID}, itemIDs(items))
}
