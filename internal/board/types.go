// Package board implements the ranked item board: score bookkeeping, the
// voting window guard, and group membership over a shared ordered store.
package board

import (
	"fmt"
	"strconv"
)

// Key layout in the shared store.
const (
	scoreIndexKey = "items:score"
	sequenceKey   = "items:seq"
	itemKeyPrefix = "item:"
	votedPrefix   = "item:voted:"
	groupPrefix   = "group:"
	groupTopPref  = "group:top:"
)

// Item is a user-submitted entry on the board. Score is derived state:
// ts + votes*scorePerVote, maintained in the ordered index.
type Item struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Link   string `json:"link"`
	Author string `json:"author"`
	TS     int64  `json:"ts"`
	Votes  int64  `json:"votes"`
	Score  int64  `json:"score"`
}

// memberID formats an item id as its fixed-width ordered-index member.
// Zero-padding makes the index's lexicographic member order equal to
// numeric id order, so score ties break deterministically by id.
func memberID(id int64) string {
	return fmt.Sprintf("%012d", id)
}

func itemKey(id int64) string        { return itemKeyPrefix + strconv.FormatInt(id, 10) }
func votedKey(id int64) string       { return votedPrefix + strconv.FormatInt(id, 10) }
func groupKey(name string) string    { return groupPrefix + name }
func groupTopKey(name string) string { return groupTopPref + name }

// parseMemberID inverts memberID. ParseInt accepts the leading zeros.
func parseMemberID(member string) (int64, error) {
	id, err := strconv.ParseInt(member, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing item member %q: %w", member, err)
	}
	return id, nil
}

// decodeItem is the single boundary converting a raw store hash into a typed
// Item. Raw field maps never travel past this function.
func decodeItem(id int64, fields map[string]string) (Item, error) {
	if len(fields) == 0 {
		return Item{}, fmt.Errorf("item %d: empty record", id)
	}
	item := Item{
		ID:     id,
		Title:  fields["title"],
		Link:   fields["link"],
		Author: fields["author"],
	}
	ts, err := strconv.ParseInt(fields["ts"], 10, 64)
	if err != nil {
		return Item{}, fmt.Errorf("item %d: decoding ts %q: %w", id, fields["ts"], err)
	}
	item.TS = ts
	if raw, ok := fields["votes"]; ok && raw != "" {
		votes, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Item{}, fmt.Errorf("item %d: decoding votes %q: %w", id, raw, err)
		}
		item.Votes = votes
	}
	return item, nil
}
