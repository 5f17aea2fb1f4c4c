// Package store defines the storage interfaces for clipd's persistence
// layer: the history of classified clipboard items and the key-value
// settings record that lives alongside it.
package store

import (
	"github.com/clipd/clipd/internal/clip"
)

// ListOptions controls pagination for HistoryStore.List.
// A Limit of 0 means no limit.
type ListOptions struct {
	Limit  int
	Offset int
}

// HistoryStore manages clip item persistence.
//
// Display ordering is fixed: pinned items first, then unpinned, both by
// LastUsedAt descending. Implementations must serialize concurrent access;
// the capture loop and user-triggered operations share a single store.
type HistoryStore interface {
	// Insert stores a new item, assigning its ID. If the item's timestamps
	// are zero the current time is used for both CreatedAt and LastUsedAt.
	// Returns the stored item.
	Insert(item *clip.Item) (*clip.Item, error)

	// Get retrieves a single item by ID.
	Get(id int64) (*clip.Item, error)

	// List returns items in display order.
	List(opts ListOptions) ([]*clip.Item, error)

	// MostRecent returns the item with the newest LastUsedAt across pinned
	// and unpinned rows, or (nil, nil) when the store is empty.
	MostRecent() (*clip.Item, error)

	// FindByFingerprint returns the most recently used item with the given
	// fingerprint and pin state. Pinned and unpinned rows are distinct
	// identities and are looked up separately.
	FindByFingerprint(fingerprint string, pinned bool) (*clip.Item, error)

	// Touch updates an item's LastUsedAt to now.
	Touch(id int64) error

	// SetPinned updates an item's pin state.
	SetPinned(id int64, pinned bool) error

	// ReplacePayload overwrites an item's kind, payload, fingerprint, and
	// preview from the given item, keeping its ID, pin state, and timestamps.
	ReplacePayload(id int64, item *clip.Item) error

	// Delete removes an item by ID.
	Delete(id int64) error

	// EvictOldestUnpinned deletes up to n unpinned items, oldest LastUsedAt
	// first, and returns the deleted items. Pinned items are never touched.
	// A non-positive n is a no-op.
	EvictOldestUnpinned(n int) ([]*clip.Item, error)

	// Count returns the total number of items.
	Count() (int, error)

	// CountUnpinned returns the number of unpinned items.
	CountUnpinned() (int, error)

	// Clear removes items in bulk. When keepPinned is true, pinned items
	// survive.
	Clear(keepPinned bool) error

	// Close releases any resources.
	Close() error
}

// SettingsStore manages the persisted key-value settings record.
type SettingsStore interface {
	// Get retrieves a setting value by key.
	Get(key string) (string, error)

	// Set stores a setting value, updating the key if it exists.
	Set(key, value string) error

	// All returns every setting key-value pair.
	All() (map[string]string, error)

	// Delete removes a setting key.
	Delete(key string) error

	// Close releases any resources.
	Close() error
}

// Store combines history and settings persistence behind one lifecycle.
type Store interface {
	// History returns the history store.
	History() HistoryStore

	// Settings returns the settings store.
	Settings() SettingsStore

	// Close releases all resources for both stores.
	Close() error
}
