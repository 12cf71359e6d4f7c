package board

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/internal/analytics"
	errs "github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/errors"
	"github.com/jonboulle/clockwork"
)

const maxTitleLength = 1024

// Tracker receives analytics events. Satisfied by analytics.Collector; a nil
// Tracker disables tracking.
type Tracker interface {
	Track(event any)
}

// Config holds the ranking constants for a Service.
type Config struct {
	ScorePerVote     int64
	VotingWindow     time.Duration
	GroupCacheTTL    time.Duration
	PruneEmptyGroups bool
}

// Service is the board facade: item posting, voting, ranking reads, and
// group membership. All state lives in the injected Store.
type Service struct {
	store   Store
	scores  *ScoreEngine
	guard   *VoteGuard
	groups  *GroupIndex
	clock   clockwork.Clock
	tracker Tracker
	logger  *slog.Logger
}

// NewService wires the board engines over one store handle.
func NewService(store Store, cfg Config, clock clockwork.Clock, tracker Tracker) *Service {
	return &Service{
		store:   store,
		scores:  NewScoreEngine(store, cfg.ScorePerVote),
		guard:   NewVoteGuard(store, int64(cfg.VotingWindow.Seconds()), clock),
		groups:  NewGroupIndex(store, cfg.GroupCacheTTL, cfg.PruneEmptyGroups),
		clock:   clock,
		tracker: tracker,
		logger:  slog.Default().With("component", "board-service"),
	}
}

// PostItem validates and stores a new item, assigns it a monotonic id, sets
// its initial score, and places it into the given groups.
func (s *Service) PostItem(ctx context.Context, title, link, author string, groups []string) (Item, error) {
	title = strings.TrimSpace(title)
	link = strings.TrimSpace(link)
	if title == "" {
		return Item{}, errs.New(errs.ErrInvalidInput, http.StatusBadRequest, "title is required")
	}
	if len(title) > maxTitleLength {
		return Item{}, errs.Newf(errs.ErrInvalidInput, http.StatusBadRequest, "title must be at most %d characters", maxTitleLength)
	}
	if link == "" {
		return Item{}, errs.New(errs.ErrInvalidInput, http.StatusBadRequest, "link is required")
	}

	id, err := s.store.Incr(ctx, sequenceKey)
	if err != nil {
		return Item{}, fmt.Errorf("assigning item id: %w", err)
	}
	ts := s.clock.Now().Unix()
	item := Item{
		ID:     id,
		Title:  title,
		Link:   link,
		Author: author,
		TS:     ts,
		Score:  s.scores.InitialScore(ts),
	}

	if err := s.store.HSet(ctx, itemKey(id), map[string]any{
		"title":  item.Title,
		"link":   item.Link,
		"author": item.Author,
		"ts":     item.TS,
		"votes":  0,
	}); err != nil {
		return Item{}, fmt.Errorf("storing item %d: %w", id, err)
	}
	if err := s.scores.Register(ctx, id, ts); err != nil {
		return Item{}, err
	}
	if err := s.groups.Add(ctx, id, groups); err != nil {
		return Item{}, err
	}

	s.track(analytics.ItemPostedEvent{Type: analytics.EventItemPosted, ItemID: id, Author: author, Groups: groups, Timestamp: s.clock.Now().UTC()})
	s.logger.Info("item posted", "id", id, "author", author, "groups", groups)
	return item, nil
}

// GetItem loads and decodes a single item, reading its live score from the
// ordered index.
func (s *Service) GetItem(ctx context.Context, id int64) (Item, error) {
	fields, err := s.store.HGetAll(ctx, itemKey(id))
	if err != nil {
		return Item{}, fmt.Errorf("loading item %d: %w", id, err)
	}
	if len(fields) == 0 {
		return Item{}, errs.Newf(errs.ErrItemNotFound, http.StatusNotFound, "item %d", id)
	}
	item, err := decodeItem(id, fields)
	if err != nil {
		return Item{}, err
	}
	score, found, err := s.store.ZScore(ctx, scoreIndexKey, memberID(id))
	if err != nil {
		return Item{}, err
	}
	if found {
		item.Score = int64(score)
	}
	return item, nil
}

// Vote checks eligibility via the VoteGuard and, when accepted, applies the
// score delta. Rejections are returned as outcomes, not errors.
func (s *Service) Vote(ctx context.Context, id int64, voterID string) (VoteOutcome, error) {
	if strings.TrimSpace(voterID) == "" {
		return "", errs.New(errs.ErrInvalidInput, http.StatusBadRequest, "user_id is required")
	}
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return "", err
	}
	outcome, err := s.guard.TryRegisterVote(ctx, item, voterID)
	if err != nil {
		return "", err
	}
	if outcome == VoteAccepted {
		if _, err := s.scores.ApplyVote(ctx, id); err != nil {
			return "", err
		}
	}
	s.track(analytics.VoteDecidedEvent{Type: analytics.EventVoteDecided, ItemID: id, VoterID: voterID, Outcome: string(outcome), Timestamp: s.clock.Now().UTC()})
	return outcome, nil
}

// TopItems returns up to limit items ordered by score descending. Equal
// scores order by descending item id, newest first: members are fixed-width
// decimal ids and descending reads walk them in reverse lexicographic order.
func (s *Service) TopItems(ctx context.Context, limit int) ([]Item, error) {
	if limit <= 0 {
		return nil, nil
	}
	entries, err := s.store.ZRevRangeWithScores(ctx, scoreIndexKey, 0, int64(limit)-1)
	if err != nil {
		return nil, err
	}
	return s.resolveItems(ctx, entries)
}

// ItemsInGroup returns up to limit items of the group by score descending,
// with the same tie-break as TopItems.
func (s *Service) ItemsInGroup(ctx context.Context, group string, limit int) ([]Item, error) {
	if strings.TrimSpace(group) == "" {
		return nil, errs.New(errs.ErrInvalidInput, http.StatusBadRequest, "group is required")
	}
	entries, err := s.groups.TopMembers(ctx, group, limit)
	if err != nil {
		return nil, err
	}
	return s.resolveItems(ctx, entries)
}

// ChangeGroups applies group additions then removals for the item; a group
// present in both ends up removed.
func (s *Service) ChangeGroups(ctx context.Context, id int64, add, remove []string) error {
	if _, err := s.GetItem(ctx, id); err != nil {
		return err
	}
	if err := s.groups.Change(ctx, id, add, remove); err != nil {
		return err
	}
	s.logger.Info("groups changed", "id", id, "added", add, "removed", remove)
	return nil
}

// resolveItems loads the item record behind each index entry. Entries whose
// record has vanished are skipped rather than failing the whole page.
func (s *Service) resolveItems(ctx context.Context, entries []MemberScore) ([]Item, error) {
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		id, err := parseMemberID(e.Member)
		if err != nil {
			s.logger.Warn("skipping malformed index member", "member", e.Member, "error", err)
			continue
		}
		fields, err := s.store.HGetAll(ctx, itemKey(id))
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			continue
		}
		item, err := decodeItem(id, fields)
		if err != nil {
			return nil, err
		}
		item.Score = int64(e.Score)
		items = append(items, item)
	}
	return items, nil
}

func (s *Service) track(event any) {
	if s.tracker != nil {
		s.tracker.Track(event)
	}
}
