package board

import (
	"context"
	"fmt"
	"time"
)

// GroupIndex maintains many-to-many item↔group membership and serves
// "top items in group" queries through a cached ordered view.
type GroupIndex struct {
	store      Store
	cacheTTL   time.Duration
	pruneEmpty bool
}

// NewGroupIndex creates a GroupIndex. When pruneEmpty is set, a group whose
// last member is removed is deleted; the default policy retains empty groups.
func NewGroupIndex(store Store, cacheTTL time.Duration, pruneEmpty bool) *GroupIndex {
	return &GroupIndex{store: store, cacheTTL: cacheTTL, pruneEmpty: pruneEmpty}
}

// Add places the item into each group. Adding an existing membership is a
// no-op; the call is idempotent.
func (gi *GroupIndex) Add(ctx context.Context, itemID int64, groups []string) error {
	member := memberID(itemID)
	for _, g := range groups {
		if g == "" {
			continue
		}
		if _, err := gi.store.SAdd(ctx, groupKey(g), member); err != nil {
			return fmt.Errorf("adding item %d to group %s: %w", itemID, g, err)
		}
		// A stale cached view would miss the new member.
		if err := gi.store.Del(ctx, groupTopKey(g)); err != nil {
			return fmt.Errorf("invalidating group view %s: %w", g, err)
		}
	}
	return nil
}

// Remove removes the item from each group. Removing an absent membership is
// a no-op; the call is idempotent.
func (gi *GroupIndex) Remove(ctx context.Context, itemID int64, groups []string) error {
	member := memberID(itemID)
	for _, g := range groups {
		if g == "" {
			continue
		}
		if err := gi.store.SRem(ctx, groupKey(g), member); err != nil {
			return fmt.Errorf("removing item %d from group %s: %w", itemID, g, err)
		}
		if err := gi.store.Del(ctx, groupTopKey(g)); err != nil {
			return fmt.Errorf("invalidating group view %s: %w", g, err)
		}
		if gi.pruneEmpty {
			n, err := gi.store.SCard(ctx, groupKey(g))
			if err != nil {
				return fmt.Errorf("checking group %s size: %w", g, err)
			}
			if n == 0 {
				if err := gi.store.Del(ctx, groupKey(g)); err != nil {
					return fmt.Errorf("pruning empty group %s: %w", g, err)
				}
			}
		}
	}
	return nil
}

// Change applies adds then removes, so a group named in both sets ends up
// removed. This keeps the net effect of overlapping change sets unambiguous.
func (gi *GroupIndex) Change(ctx context.Context, itemID int64, add, remove []string) error {
	if err := gi.Add(ctx, itemID, add); err != nil {
		return err
	}
	return gi.Remove(ctx, itemID, remove)
}

// TopMembers returns up to limit item members of the group ordered by score
// descending. The per-group ordered view is the intersection of the group
// set with the global score index, built once and cached with a TTL.
func (gi *GroupIndex) TopMembers(ctx context.Context, group string, limit int) ([]MemberScore, error) {
	viewKey := groupTopKey(group)
	n, err := gi.store.ZCard(ctx, viewKey)
	if err != nil {
		return nil, fmt.Errorf("checking group view %s: %w", group, err)
	}
	if n == 0 {
		n, err = gi.store.ZInterStoreMax(ctx, viewKey, groupKey(group), scoreIndexKey)
		if err != nil {
			return nil, fmt.Errorf("building group view %s: %w", group, err)
		}
		if n == 0 {
			return nil, nil
		}
		if err := gi.store.Expire(ctx, viewKey, gi.cacheTTL); err != nil {
			return nil, fmt.Errorf("expiring group view %s: %w", group, err)
		}
	}
	return gi.store.ZRevRangeWithScores(ctx, viewKey, 0, int64(limit)-1)
}

func secondsToDuration(s int64) time.Duration {
	return time.Duration(s) * time.Second
}
