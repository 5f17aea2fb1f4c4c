package history

import (
	"testing"

	"github.com/clipd/clipd/internal/clip"
	"github.com/clipd/clipd/internal/store"
	"github.com/clipd/clipd/internal/store/memstore"
	"github.com/clipd/clipd/internal/transform"
)

func newTestManager(t *testing.T, opts Options) *Manager {
	t.Helper()

	m := New(memstore.NewMemoryStore(), opts)
	t.Cleanup(func() { m.Close() })
	return m
}

// drainEvents collects every event currently buffered on the channel.
func drainEvents(ch <-chan Event) []Event {
	var events []Event
	for {
		select {
		case ev := <-ch:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func TestCaptureInsertsNewItem(t *testing.T) {
	m := newTestManager(t, Options{})
	events := m.Subscribe()

	item, err := m.Capture(clip.TextItem("hello"))
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if item.ID == 0 {
		t.Error("expected an assigned ID")
	}

	got := drainEvents(events)
	if len(got) != 1 || got[0].Type != EventInserted {
		t.Errorf("expected one Inserted event, got %v", got)
	}
}

// TestCaptureTopRecopyIsNoOp re-captures the most recent fingerprint and
// verifies no new row appears. This also covers the loop observing its
// own paste write-back.
func TestCaptureTopRecopyIsNoOp(t *testing.T) {
	m := newTestManager(t, Options{})

	first, err := m.Capture(clip.TextItem("hello"))
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}

	events := m.Subscribe()
	second, err := m.Capture(clip.TextItem("hello"))
	if err != nil {
		t.Fatalf("recapture failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("expected the existing row %d, got %d", first.ID, second.ID)
	}
	count, _ := m.Count()
	if count != 1 {
		t.Errorf("expected 1 item, got %d", count)
	}

	got := drainEvents(events)
	if len(got) != 1 || got[0].Type != EventUpdated {
		t.Errorf("expected one Updated event, got %v", got)
	}
}

// TestCapturePromotesOlderDuplicate re-captures a fingerprint that is no
// longer on top and verifies the stale row is replaced by a fresh one at
// the front, with no net count change.
func TestCapturePromotesOlderDuplicate(t *testing.T) {
	m := newTestManager(t, Options{})

	stale, err := m.Capture(clip.TextItem("first"))
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if _, err := m.Capture(clip.TextItem("second")); err != nil {
		t.Fatalf("capture failed: %v", err)
	}

	events := m.Subscribe()
	promoted, err := m.Capture(clip.TextItem("first"))
	if err != nil {
		t.Fatalf("recapture failed: %v", err)
	}

	if promoted.ID == stale.ID {
		t.Error("promotion must assign a fresh ID")
	}
	count, _ := m.Count()
	if count != 2 {
		t.Errorf("promotion must not change the count, got %d", count)
	}

	items, _ := m.History(0, 0, "")
	if items[0].Payload.Text != "first" {
		t.Errorf("promoted item must be on top, got %q", items[0].Payload.Text)
	}
	if _, err := m.Get(stale.ID); !store.IsNotFound(err) {
		t.Errorf("stale row must be gone, got %v", err)
	}

	got := drainEvents(events)
	if len(got) != 2 || got[0].Type != EventDeleted || got[1].Type != EventInserted {
		t.Errorf("expected Deleted then Inserted, got %v", got)
	}
}

// TestCapturePinnedDuplicateTouchesPinned re-captures a pinned item's
// fingerprint and verifies the pinned row absorbs the copy without a
// duplicate appearing or the pin being lost.
func TestCapturePinnedDuplicateTouchesPinned(t *testing.T) {
	m := newTestManager(t, Options{})

	pinned, _ := m.Capture(clip.TextItem("keep"))
	if err := m.Pin(pinned.ID); err != nil {
		t.Fatalf("pin failed: %v", err)
	}
	m.Capture(clip.TextItem("other"))

	events := m.Subscribe()
	got, err := m.Capture(clip.TextItem("keep"))
	if err != nil {
		t.Fatalf("recapture failed: %v", err)
	}

	evs := drainEvents(events)
	if len(evs) != 1 || evs[0].Type != EventUpdated {
		t.Errorf("expected one Updated event, got %v", evs)
	}
	if got.ID != pinned.ID {
		t.Errorf("expected the pinned row %d, got %d", pinned.ID, got.ID)
	}
	if !got.Pinned {
		t.Error("recapture must not unpin")
	}
	count, _ := m.Count()
	if count != 2 {
		t.Errorf("expected no duplicate row, got %d items", count)
	}
}

// TestNoDuplicateUnpinnedFingerprints captures the same payload through
// every path and verifies at most one unpinned row per fingerprint.
func TestNoDuplicateUnpinnedFingerprints(t *testing.T) {
	m := newTestManager(t, Options{})

	m.Capture(clip.TextItem("dup"))
	m.Capture(clip.TextItem("spacer"))
	m.Capture(clip.TextItem("dup"))
	m.Capture(clip.TextItem("dup"))

	items, _ := m.History(0, 0, "")
	seen := map[string]int{}
	for _, item := range items {
		if !item.Pinned {
			seen[item.Fingerprint]++
		}
	}
	for fp, n := range seen {
		if n > 1 {
			t.Errorf("fingerprint %s appears %d times unpinned", fp, n)
		}
	}
}

func TestCapacityEvictsOldestUnpinned(t *testing.T) {
	m := newTestManager(t, Options{MaxHistoryItems: 3, AutoCleanup: true})

	first, _ := m.Capture(clip.TextItem("a"))
	pinned, _ := m.Capture(clip.TextItem("pin me"))
	m.Pin(pinned.ID)
	m.Capture(clip.TextItem("b"))
	m.Capture(clip.TextItem("c"))

	events := m.Subscribe()
	m.Capture(clip.TextItem("d"))

	// "a" is the oldest unpinned row and must be the one evicted.
	if _, err := m.Get(first.ID); !store.IsNotFound(err) {
		t.Errorf("expected oldest unpinned row to be evicted, got %v", err)
	}
	if _, err := m.Get(pinned.ID); err != nil {
		t.Errorf("pinned row must survive eviction: %v", err)
	}

	var deleted int
	for _, ev := range drainEvents(events) {
		if ev.Type == EventDeleted {
			deleted++
		}
	}
	if deleted != 1 {
		t.Errorf("expected one Deleted event from eviction, got %d", deleted)
	}
}

func TestCapacityDisabledWithoutAutoCleanup(t *testing.T) {
	m := newTestManager(t, Options{MaxHistoryItems: 2, AutoCleanup: false})

	for _, text := range []string{"a", "b", "c", "d"} {
		m.Capture(clip.TextItem(text))
	}

	count, _ := m.Count()
	if count != 4 {
		t.Errorf("expected no eviction with cleanup disabled, got %d items", count)
	}
}

func TestHistoryQueryFilterAndLimit(t *testing.T) {
	m := newTestManager(t, Options{})

	m.Capture(clip.TextItem("apple pie"))
	m.Capture(clip.TextItem("banana"))
	m.Capture(clip.TextItem("apple juice"))

	items, err := m.History(0, 0, "apple")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(items))
	}
	if items[0].Payload.Text != "apple juice" {
		t.Errorf("expected most recent match first, got %q", items[0].Payload.Text)
	}

	limited, _ := m.History(1, 0, "apple")
	if len(limited) != 1 {
		t.Errorf("expected 1 item with limit, got %d", len(limited))
	}

	offset, _ := m.History(0, 1, "apple")
	if len(offset) != 1 || offset[0].Payload.Text != "apple pie" {
		t.Errorf("expected offset to skip the first match, got %v", offset)
	}

	past, _ := m.History(0, 10, "apple")
	if len(past) != 0 {
		t.Errorf("expected empty page past the end, got %d", len(past))
	}
}

func TestPasteReturnsPayloadAndTouches(t *testing.T) {
	m := newTestManager(t, Options{})

	item, _ := m.Capture(clip.TextItem("paste me"))
	m.Capture(clip.TextItem("newer"))

	events := m.Subscribe()
	data, kind, err := m.Paste(item.ID, false)
	if err != nil {
		t.Fatalf("paste failed: %v", err)
	}
	if string(data) != "paste me" || kind != clip.KindText {
		t.Errorf("expected text payload, got %q (%s)", data, kind)
	}

	// The pasted item becomes the most recent one.
	items, _ := m.History(1, 0, "")
	if items[0].ID != item.ID {
		t.Errorf("expected pasted item on top, got %d", items[0].ID)
	}

	got := drainEvents(events)
	if len(got) != 1 || got[0].Type != EventUpdated {
		t.Errorf("expected one Updated event, got %v", got)
	}
}

func TestPastePlainOnlyFallback(t *testing.T) {
	m := newTestManager(t, Options{})

	rich := &clip.Item{
		Kind:        clip.KindRichText,
		Payload:     clip.Payload{Rich: "<b>bold</b>", Text: "bold"},
		Fingerprint: "fp-rich",
	}
	item, err := m.Capture(rich)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}

	data, kind, err := m.Paste(item.ID, true)
	if err != nil {
		t.Fatalf("paste failed: %v", err)
	}
	if string(data) != "bold" || kind != clip.KindText {
		t.Errorf("expected plain fallback, got %q (%s)", data, kind)
	}

	data, kind, err = m.Paste(item.ID, false)
	if err != nil {
		t.Fatalf("paste failed: %v", err)
	}
	if string(data) != "<b>bold</b>" || kind != clip.KindRichText {
		t.Errorf("expected rich payload, got %q (%s)", data, kind)
	}
}

func TestPasteFileListYieldsJoinedPaths(t *testing.T) {
	m := newTestManager(t, Options{})

	files := &clip.Item{
		Kind:        clip.KindFileList,
		Payload:     clip.Payload{Files: []string{"/a", "/b"}},
		Fingerprint: "fp-files",
	}
	item, _ := m.Capture(files)

	data, kind, err := m.Paste(item.ID, false)
	if err != nil {
		t.Fatalf("paste failed: %v", err)
	}
	if string(data) != "/a\n/b" || kind != clip.KindText {
		t.Errorf("expected newline-joined paths as text, got %q (%s)", data, kind)
	}
}

func TestPasteNotFound(t *testing.T) {
	m := newTestManager(t, Options{})
	if _, _, err := m.Paste(9999, false); !store.IsNotFound(err) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestTransformStoresDerivedItem(t *testing.T) {
	m := newTestManager(t, Options{})

	original, _ := m.Capture(clip.TextItem("abc"))

	derived, err := m.Transform(original.ID, transform.OpUpper)
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if derived.Payload.Text != "ABC" {
		t.Errorf("expected %q, got %q", "ABC", derived.Payload.Text)
	}
	if derived.ID == original.ID {
		t.Error("transform must produce a new item")
	}

	// The original is untouched.
	got, err := m.Get(original.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Payload.Text != "abc" {
		t.Errorf("original must keep its text, got %q", got.Payload.Text)
	}
}

func TestTransformUnsupportedKind(t *testing.T) {
	m := newTestManager(t, Options{})

	image := &clip.Item{
		Kind:        clip.KindImage,
		Payload:     clip.Payload{Image: []byte{1, 2}},
		Fingerprint: "fp-image",
	}
	item, _ := m.Capture(image)

	if _, err := m.Transform(item.ID, transform.OpUpper); err == nil {
		t.Error("expected transform on an image to fail")
	}
}

// TestTransformDedupsAgainstHistory transforms twice and verifies the
// derived text goes through the normal dedup path instead of stacking
// duplicates.
func TestTransformDedupsAgainstHistory(t *testing.T) {
	m := newTestManager(t, Options{})

	original, _ := m.Capture(clip.TextItem("abc"))
	m.Transform(original.ID, transform.OpUpper)
	m.Transform(original.ID, transform.OpUpper)

	count, _ := m.Count()
	if count != 2 {
		t.Errorf("expected original plus one derived item, got %d", count)
	}
}

func TestMergeJoinsInArgumentOrder(t *testing.T) {
	m := newTestManager(t, Options{})

	a, _ := m.Capture(clip.TextItem("a"))
	b, _ := m.Capture(clip.TextItem("b"))

	merged, err := m.Merge([]int64{a.ID, b.ID})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if merged.Payload.Text != "a\nb" {
		t.Errorf("expected %q, got %q", "a\nb", merged.Payload.Text)
	}

	// Argument order wins over display order.
	merged, err = m.Merge([]int64{b.ID, a.ID})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if merged.Payload.Text != "b\na" {
		t.Errorf("expected %q, got %q", "b\na", merged.Payload.Text)
	}
}

func TestMergeUnknownIDFails(t *testing.T) {
	m := newTestManager(t, Options{})
	a, _ := m.Capture(clip.TextItem("a"))

	if _, err := m.Merge([]int64{a.ID, 9999}); !store.IsNotFound(err) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestDeleteEmitsEvent(t *testing.T) {
	m := newTestManager(t, Options{})

	item, _ := m.Capture(clip.TextItem("x"))
	events := m.Subscribe()

	if err := m.Delete(item.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := m.Delete(item.ID); !store.IsNotFound(err) {
		t.Errorf("expected NotFound on second delete, got %v", err)
	}

	got := drainEvents(events)
	if len(got) != 1 || got[0].Type != EventDeleted {
		t.Errorf("expected one Deleted event, got %v", got)
	}
}

func TestClearKeepPinned(t *testing.T) {
	m := newTestManager(t, Options{})

	pinned, _ := m.Capture(clip.TextItem("pinned"))
	m.Pin(pinned.ID)
	m.Capture(clip.TextItem("gone"))
	m.Capture(clip.TextItem("also gone"))

	events := m.Subscribe()
	if err := m.Clear(true); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	count, _ := m.Count()
	if count != 1 {
		t.Errorf("expected only the pinned item, got %d", count)
	}

	var deleted int
	for _, ev := range drainEvents(events) {
		if ev.Type == EventDeleted {
			deleted++
		}
	}
	if deleted != 2 {
		t.Errorf("expected 2 Deleted events, got %d", deleted)
	}

	if err := m.Clear(false); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	count, _ = m.Count()
	if count != 0 {
		t.Errorf("expected empty history, got %d", count)
	}
}

func TestNewFromSettings(t *testing.T) {
	st := memstore.NewMemoryStore()
	if err := st.Settings().Set(store.SettingMaxHistoryItems, "5"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	m := NewFromSettings(st)
	defer m.Close()

	if m.MaxHistoryItems() != 5 {
		t.Errorf("expected limit from settings, got %d", m.MaxHistoryItems())
	}
}
