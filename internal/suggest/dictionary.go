package suggest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	errs "github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Ranked-Board-Platform/pkg/resilience"
)

// Entry is one dictionary word with its definition.
type Entry struct {
	Word       string
	Definition string
}

// Dictionary manages bulk load and flush of the word index and the
// word→definition side lookup.
type Dictionary struct {
	store     Store
	batchSize int
	logger    *slog.Logger
}

// NewDictionary creates a Dictionary writing in batches of batchSize.
func NewDictionary(store Store, batchSize int) *Dictionary {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Dictionary{
		store:     store,
		batchSize: batchSize,
		logger:    slog.Default().With("component", "dictionary"),
	}
}

// Load bulk-inserts entries: each word into the ordered index at score zero
// (ordering only) and its definition under a scalar key. Every word must be
// lowercase a-z; a word outside the alphabet would be unreachable by any
// valid prefix, and one containing the end-marker byte would be filtered as
// a sentinel forever, so the whole load is rejected before any write.
// Batches are retried with backoff so a transient store hiccup does not
// abort a large load.
func (d *Dictionary) Load(ctx context.Context, entries []Entry) (int, error) {
	for i, e := range entries {
		if err := validatePrefix(e.Word); err != nil {
			return 0, fmt.Errorf("entry %d: %w", i+1, err)
		}
	}
	loaded := 0
	for start := 0; start < len(entries); start += d.batchSize {
		end := start + d.batchSize
		if end > len(entries) {
			end = len(entries)
		}
		batch := entries[start:end]
		err := resilience.Retry(ctx, "dictionary-batch", resilience.RetryConfig{}, func() error {
			for _, e := range batch {
				if err := d.store.ZAddOrUpdate(ctx, wordIndexKey, e.Word, 0); err != nil {
					return err
				}
				if e.Definition != "" {
					if err := d.store.Set(ctx, defKeyPrefix+e.Word, e.Definition, 0); err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			return loaded, fmt.Errorf("loading dictionary batch %d-%d: %w", start, end, err)
		}
		loaded += len(batch)
	}
	d.logger.Info("dictionary loaded", "words", loaded)
	return loaded, nil
}

// Flush drops the whole dictionary: the ordered word index and every
// definition key.
func (d *Dictionary) Flush(ctx context.Context) error {
	if err := d.store.Del(ctx, wordIndexKey); err != nil {
		return fmt.Errorf("flushing word index: %w", err)
	}
	deleted, err := d.store.FlushByPattern(ctx, defKeyPrefix+"*")
	if err != nil {
		return fmt.Errorf("flushing definitions: %w", err)
	}
	d.logger.Info("dictionary flushed", "definitions_deleted", deleted)
	return nil
}

// Definition looks up a single word's definition.
func (d *Dictionary) Definition(ctx context.Context, word string) (string, error) {
	if err := validatePrefix(word); err != nil {
		return "", err
	}
	def, found, err := d.store.Get(ctx, defKeyPrefix+word)
	if err != nil {
		return "", err
	}
	if !found {
		return "", errs.Newf(errs.ErrWordNotFound, http.StatusNotFound, "word %q", word)
	}
	return def, nil
}

// ParseEntries reads "word<TAB>definition" lines (definition optional).
// Words are lowercased; lines with characters outside a-z are rejected.
func ParseEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		word, def, _ := strings.Cut(text, "\t")
		word = strings.ToLower(strings.TrimSpace(word))
		if err := validatePrefix(word); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, Entry{Word: word, Definition: strings.TrimSpace(def)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading dictionary input: %w", err)
	}
	return entries, nil
}
