// Package search provides incremental text search over the bounded
// clipboard history. The corpus is capped at the configured history limit,
// so matching is a linear scan over the store's display ordering; no
// persistent index is kept.
package search

import (
	"path/filepath"
	"strings"

	"github.com/clipd/clipd/internal/clip"
	"github.com/clipd/clipd/internal/store"
)

// Searcher matches items from a history store against text queries.
type Searcher struct {
	history store.HistoryStore
}

// New creates a searcher over the given history store.
func New(history store.HistoryStore) *Searcher {
	return &Searcher{history: history}
}

// Query returns items whose text payload, plain-text fallback, or file-name
// components contain q case-insensitively. Results keep the store's
// display order: pinned first, then LastUsedAt descending. An empty query
// returns the unfiltered list. A limit of 0 means no limit.
func (s *Searcher) Query(q string, limit int) ([]*clip.Item, error) {
	if strings.TrimSpace(q) == "" {
		return s.history.List(store.ListOptions{Limit: limit})
	}

	// Scan the full bounded corpus; the limit applies to matches.
	items, err := s.history.List(store.ListOptions{})
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(q)
	var results []*clip.Item
	for _, item := range items {
		if Matches(item, needle) {
			results = append(results, item)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

// Matches reports whether the item matches the lower-cased needle.
func Matches(item *clip.Item, needle string) bool {
	switch item.Kind {
	case clip.KindText, clip.KindRichText:
		return strings.Contains(strings.ToLower(item.Payload.Text), needle)
	case clip.KindFileList:
		for _, path := range item.Payload.Files {
			if strings.Contains(strings.ToLower(filepath.Base(path)), needle) {
				return true
			}
		}
	}
	return false
}
