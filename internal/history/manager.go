// Package history implements the service core around the store: the
// deduplication pipeline fed by the monitor loop, capacity eviction,
// pinning, paste and transform entry points, and the change-event stream
// consumed by external listeners.
package history

import (
	"fmt"
	"sync"

	"github.com/clipd/clipd/internal/clip"
	"github.com/clipd/clipd/internal/search"
	"github.com/clipd/clipd/internal/store"
	"github.com/clipd/clipd/internal/transform"
)

// DefaultMaxHistoryItems caps unpinned rows when no limit is configured.
const DefaultMaxHistoryItems = 1000

// Options configures a Manager.
type Options struct {
	// MaxHistoryItems bounds the number of unpinned rows; non-positive
	// values fall back to DefaultMaxHistoryItems.
	MaxHistoryItems int

	// AutoCleanup enables capacity eviction after each insert.
	AutoCleanup bool
}

// Manager serializes all access to the history store. The monitor loop is
// its only capture-path caller; pin, delete, paste, and transform arrive
// from other control flows and synchronize on the same mutex.
type Manager struct {
	mu       sync.Mutex
	st       store.Store
	searcher *search.Searcher
	maxItems int
	cleanup  bool
	events   broadcaster
}

// New creates a manager over the given store.
func New(st store.Store, opts Options) *Manager {
	maxItems := opts.MaxHistoryItems
	if maxItems <= 0 {
		maxItems = DefaultMaxHistoryItems
	}
	return &Manager{
		st:       st,
		searcher: search.New(st.History()),
		maxItems: maxItems,
		cleanup:  opts.AutoCleanup,
	}
}

// NewFromSettings creates a manager configured from the store's persisted
// settings record.
func NewFromSettings(st store.Store) *Manager {
	settings := st.Settings()
	return New(st, Options{
		MaxHistoryItems: store.GetInt(settings, store.SettingMaxHistoryItems, DefaultMaxHistoryItems),
		AutoCleanup:     store.GetBool(settings, store.SettingAutoCleanup, true),
	})
}

// Subscribe returns a channel of change events. Slow consumers drop
// events instead of blocking the capture path.
func (m *Manager) Subscribe() <-chan Event {
	return m.events.Subscribe()
}

// Capture runs the dedup decision for a classified, unsaved candidate and
// stores the outcome:
//
//   - fingerprint matches the most recent item: touch it, no new row
//     (covers the loop re-observing its own paste and identical re-copies)
//   - fingerprint matches an older unpinned item: promote it to the top
//     under a fresh ID, deleting the stale row
//   - fingerprint matches a pinned item: touch the pinned row, never
//     duplicate, never unpin
//   - otherwise: insert, then enforce the capacity limit
//
// The returned item reflects the stored row after the decision.
func (m *Manager) Capture(candidate *clip.Item) (*clip.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.captureLocked(candidate)
}

func (m *Manager) captureLocked(candidate *clip.Item) (*clip.Item, error) {
	hist := m.st.History()

	recent, err := hist.MostRecent()
	if err != nil {
		return nil, err
	}
	if recent != nil && recent.Fingerprint == candidate.Fingerprint {
		if err := hist.Touch(recent.ID); err != nil {
			return nil, err
		}
		touched, err := hist.Get(recent.ID)
		if err != nil {
			return nil, err
		}
		m.events.publish(Event{Type: EventUpdated, Item: touched})
		return touched, nil
	}

	if stale, err := hist.FindByFingerprint(candidate.Fingerprint, false); err == nil {
		// Promote: re-copy moves the item to the top under a fresh ID
		// instead of leaving a visual duplicate behind.
		if err := hist.Delete(stale.ID); err != nil && !store.IsNotFound(err) {
			return nil, err
		} else if err == nil {
			m.events.publish(Event{Type: EventDeleted, Item: stale})
		}
	} else if !store.IsNotFound(err) {
		return nil, err
	} else if pinned, err := hist.FindByFingerprint(candidate.Fingerprint, true); err == nil {
		if err := hist.Touch(pinned.ID); err != nil {
			return nil, err
		}
		touched, err := hist.Get(pinned.ID)
		if err != nil {
			return nil, err
		}
		m.events.publish(Event{Type: EventUpdated, Item: touched})
		return touched, nil
	} else if !store.IsNotFound(err) {
		return nil, err
	}

	inserted, err := hist.Insert(candidate)
	if err != nil {
		return nil, err
	}
	m.events.publish(Event{Type: EventInserted, Item: inserted})

	if err := m.enforceCapacityLocked(); err != nil {
		return nil, err
	}
	return inserted, nil
}

// enforceCapacityLocked evicts the oldest unpinned rows until the unpinned
// count is back within the limit. Pinned rows are never candidates.
func (m *Manager) enforceCapacityLocked() error {
	if !m.cleanup {
		return nil
	}

	count, err := m.st.History().CountUnpinned()
	if err != nil {
		return err
	}
	if count <= m.maxItems {
		return nil
	}

	evicted, err := m.st.History().EvictOldestUnpinned(count - m.maxItems)
	if err != nil {
		return err
	}
	for _, item := range evicted {
		m.events.publish(Event{Type: EventDeleted, Item: item})
	}
	return nil
}

// History lists items in display order, optionally filtered by a text
// query. A limit of 0 means no limit.
func (m *Manager) History(limit, offset int, query string) ([]*clip.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if query != "" {
		items, err := m.searcher.Query(query, 0)
		if err != nil {
			return nil, err
		}
		if offset > 0 {
			if offset >= len(items) {
				return []*clip.Item{}, nil
			}
			items = items[offset:]
		}
		if limit > 0 && len(items) > limit {
			items = items[:limit]
		}
		return items, nil
	}

	return m.st.History().List(store.ListOptions{Limit: limit, Offset: offset})
}

// Search matches items against a query, preserving display order.
func (m *Manager) Search(query string, limit int) ([]*clip.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searcher.Query(query, limit)
}

// Get retrieves a single item.
func (m *Manager) Get(id int64) (*clip.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.History().Get(id)
}

// Paste returns the payload bytes to write back to the OS clipboard and
// marks the item as used. Writing to the clipboard is the caller's
// responsibility; the monitor loop will observe its own write as a dedup
// no-op. With plainOnly, rich items yield their plain-text fallback.
func (m *Manager) Paste(id int64, plainOnly bool) ([]byte, clip.Kind, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hist := m.st.History()
	item, err := hist.Get(id)
	if err != nil {
		return nil, "", err
	}

	var data []byte
	kind := item.Kind
	switch item.Kind {
	case clip.KindText:
		data = []byte(item.Payload.Text)
	case clip.KindRichText:
		if plainOnly {
			data = []byte(item.Payload.Text)
			kind = clip.KindText
		} else {
			data = []byte(item.Payload.Rich)
		}
	case clip.KindImage:
		data = append([]byte(nil), item.Payload.Image...)
	case clip.KindFileList:
		data = []byte(item.PlainText())
		kind = clip.KindText
	default:
		return nil, "", fmt.Errorf("paste: unknown item kind %q", item.Kind)
	}

	if err := hist.Touch(id); err != nil {
		return nil, "", err
	}
	touched, err := hist.Get(id)
	if err != nil {
		return nil, "", err
	}
	m.events.publish(Event{Type: EventUpdated, Item: touched})

	return data, kind, nil
}

// Pin marks an item as pinned, exempting it from capacity eviction.
func (m *Manager) Pin(id int64) error {
	return m.setPinned(id, true)
}

// Unpin clears an item's pin state.
func (m *Manager) Unpin(id int64) error {
	return m.setPinned(id, false)
}

func (m *Manager) setPinned(id int64, pinned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	hist := m.st.History()
	if err := hist.SetPinned(id, pinned); err != nil {
		return err
	}
	item, err := hist.Get(id)
	if err != nil {
		return err
	}
	m.events.publish(Event{Type: EventUpdated, Item: item})
	return nil
}

// Delete removes an item.
func (m *Manager) Delete(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	hist := m.st.History()
	item, err := hist.Get(id)
	if err != nil {
		return err
	}
	if err := hist.Delete(id); err != nil {
		return err
	}
	m.events.publish(Event{Type: EventDeleted, Item: item})
	return nil
}

// Transform applies a text operation to the item and stores the result as
// a new capture. The original item is left untouched; the derived text
// goes through the normal dedup and capacity path.
func (m *Manager) Transform(id int64, op transform.Op) (*clip.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, err := m.st.History().Get(id)
	if err != nil {
		return nil, err
	}

	text, err := transform.Apply(op, item)
	if err != nil {
		return nil, err
	}

	return m.captureLocked(clip.TextItem(text))
}

// Merge joins the texts of the given items with newlines, in argument
// order, and stores the result as a new capture.
func (m *Manager) Merge(ids []int64) (*clip.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hist := m.st.History()
	texts := make([]string, 0, len(ids))
	for _, id := range ids {
		item, err := hist.Get(id)
		if err != nil {
			return nil, err
		}
		text, err := transform.TextOf(item)
		if err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}

	return m.captureLocked(clip.TextItem(transform.Merge(texts)))
}

// Clear bulk-deletes history. When keepPinned is true, pinned items
// survive. One Deleted event is published per removed item.
func (m *Manager) Clear(keepPinned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	hist := m.st.History()
	items, err := hist.List(store.ListOptions{})
	if err != nil {
		return err
	}
	if err := hist.Clear(keepPinned); err != nil {
		return err
	}
	for _, item := range items {
		if keepPinned && item.Pinned {
			continue
		}
		m.events.publish(Event{Type: EventDeleted, Item: item})
	}
	return nil
}

// Count returns the total number of stored items.
func (m *Manager) Count() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.History().Count()
}

// MaxHistoryItems returns the configured unpinned capacity.
func (m *Manager) MaxHistoryItems() int {
	return m.maxItems
}

// Close shuts down the event stream and releases the store.
func (m *Manager) Close() error {
	m.events.close()
	return m.st.Close()
}
