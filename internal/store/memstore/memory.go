// Package memstore provides an in-memory implementation of the store
// interfaces. It is designed for fast unit testing and does not persist.
package memstore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/clipd/clipd/internal/clip"
	"github.com/clipd/clipd/internal/store"
)

// MemoryStore is an in-memory implementation of store.Store. It is
// thread-safe via mutexes; data lives only for the process lifetime.
type MemoryStore struct {
	history  *memoryHistoryStore
	settings *memorySettingsStore
}

// NewMemoryStore creates a new in-memory store seeded with the default
// settings, matching what the SQLite store does on first open.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		history:  newMemoryHistoryStore(),
		settings: newMemorySettingsStore(),
	}
	for key, value := range store.DefaultSettings() {
		m.settings.values[key] = value
	}
	return m
}

// History returns the history store.
func (m *MemoryStore) History() store.HistoryStore {
	return m.history
}

// Settings returns the settings store.
func (m *MemoryStore) Settings() store.SettingsStore {
	return m.settings
}

// Close releases resources (no-op for memory store).
func (m *MemoryStore) Close() error {
	return nil
}

type memoryHistoryStore struct {
	mu     sync.RWMutex
	items  map[int64]*clip.Item
	nextID int64
}

func newMemoryHistoryStore() *memoryHistoryStore {
	return &memoryHistoryStore{
		items:  make(map[int64]*clip.Item),
		nextID: 1,
	}
}

func (m *memoryHistoryStore) Insert(item *clip.Item) (*clip.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := item.Clone()
	stored.ID = m.nextID
	m.nextID++ // IDs are never reused, even after delete

	now := time.Now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.LastUsedAt.IsZero() {
		stored.LastUsedAt = stored.CreatedAt
	}

	m.items[stored.ID] = stored
	return stored.Clone(), nil
}

func (m *memoryHistoryStore) Get(id int64) (*clip.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[id]
	if !ok {
		return nil, store.NotFoundError("get", id)
	}
	return item.Clone(), nil
}

func (m *memoryHistoryStore) List(opts store.ListOptions) ([]*clip.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sorted := m.sortedLocked()

	if opts.Offset > 0 {
		if opts.Offset >= len(sorted) {
			return []*clip.Item{}, nil
		}
		sorted = sorted[opts.Offset:]
	}
	if opts.Limit > 0 && len(sorted) > opts.Limit {
		sorted = sorted[:opts.Limit]
	}

	out := make([]*clip.Item, len(sorted))
	for i, item := range sorted {
		out[i] = item.Clone()
	}
	return out, nil
}

func (m *memoryHistoryStore) MostRecent() (*clip.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var recent *clip.Item
	for _, item := range m.items {
		if recent == nil || item.LastUsedAt.After(recent.LastUsedAt) {
			recent = item
		}
	}
	if recent == nil {
		return nil, nil
	}
	return recent.Clone(), nil
}

func (m *memoryHistoryStore) FindByFingerprint(fingerprint string, pinned bool) (*clip.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found *clip.Item
	for _, item := range m.items {
		if item.Fingerprint != fingerprint || item.Pinned != pinned {
			continue
		}
		if found == nil || item.LastUsedAt.After(found.LastUsedAt) {
			found = item
		}
	}
	if found == nil {
		return nil, store.NewError(store.CodeNotFound, "find_by_fingerprint",
			fmt.Errorf("no item with fingerprint %.12s (pinned=%t)", fingerprint, pinned))
	}
	return found.Clone(), nil
}

func (m *memoryHistoryStore) Touch(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return store.NotFoundError("touch", id)
	}
	item.LastUsedAt = time.Now()
	return nil
}

func (m *memoryHistoryStore) SetPinned(id int64, pinned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return store.NotFoundError("set_pinned", id)
	}
	item.Pinned = pinned
	return nil
}

func (m *memoryHistoryStore) ReplacePayload(id int64, updated *clip.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return store.NotFoundError("replace_payload", id)
	}
	cp := updated.Clone()
	item.Kind = cp.Kind
	item.Payload = cp.Payload
	item.Fingerprint = cp.Fingerprint
	item.Preview = cp.Preview
	return nil
}

func (m *memoryHistoryStore) Delete(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return store.NotFoundError("delete", id)
	}
	delete(m.items, id)
	return nil
}

func (m *memoryHistoryStore) EvictOldestUnpinned(n int) ([]*clip.Item, error) {
	if n <= 0 {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var unpinned []*clip.Item
	for _, item := range m.items {
		if !item.Pinned {
			unpinned = append(unpinned, item)
		}
	}
	sort.Slice(unpinned, func(i, j int) bool {
		if !unpinned[i].LastUsedAt.Equal(unpinned[j].LastUsedAt) {
			return unpinned[i].LastUsedAt.Before(unpinned[j].LastUsedAt)
		}
		return unpinned[i].ID < unpinned[j].ID
	})
	if len(unpinned) > n {
		unpinned = unpinned[:n]
	}

	evicted := make([]*clip.Item, len(unpinned))
	for i, item := range unpinned {
		evicted[i] = item.Clone()
		delete(m.items, item.ID)
	}
	return evicted, nil
}

func (m *memoryHistoryStore) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items), nil
}

func (m *memoryHistoryStore) CountUnpinned() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, item := range m.items {
		if !item.Pinned {
			count++
		}
	}
	return count, nil
}

func (m *memoryHistoryStore) Clear(keepPinned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, item := range m.items {
		if keepPinned && item.Pinned {
			continue
		}
		delete(m.items, id)
	}
	return nil
}

func (m *memoryHistoryStore) Close() error {
	return nil
}

// sortedLocked returns items in display order: pinned first, then by
// LastUsedAt descending. Caller holds at least a read lock.
func (m *memoryHistoryStore) sortedLocked() []*clip.Item {
	items := make([]*clip.Item, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Pinned != items[j].Pinned {
			return items[i].Pinned
		}
		if !items[i].LastUsedAt.Equal(items[j].LastUsedAt) {
			return items[i].LastUsedAt.After(items[j].LastUsedAt)
		}
		return items[i].ID > items[j].ID
	})
	return items
}

type memorySettingsStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func newMemorySettingsStore() *memorySettingsStore {
	return &memorySettingsStore{values: make(map[string]string)}
}

func (m *memorySettingsStore) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return "", store.NewError(store.CodeNotFound, "settings_get",
			fmt.Errorf("setting not found: %s", key))
	}
	return value, nil
}

func (m *memorySettingsStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memorySettingsStore) All() (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

func (m *memorySettingsStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.values[key]; !ok {
		return store.NewError(store.CodeNotFound, "settings_delete",
			fmt.Errorf("setting not found: %s", key))
	}
	delete(m.values, key)
	return nil
}

func (m *memorySettingsStore) Close() error {
	return nil
}
