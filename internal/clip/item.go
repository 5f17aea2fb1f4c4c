// Package clip defines the clipboard content model: the item kinds, the
// classified history item, and the raw snapshot read from the OS clipboard.
package clip

import (
	"time"
)

// Kind identifies the content variant of a history item.
type Kind string

const (
	KindText     Kind = "text"
	KindRichText Kind = "rich_text"
	KindImage    Kind = "image"
	KindFileList Kind = "file_list"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindRichText, KindImage, KindFileList:
		return true
	}
	return false
}

// Payload carries the kind-dependent content of an item. Only the fields
// relevant to the item's kind are populated:
//
//   - Text: Text
//   - RichText: Rich (markup) and Text (plain fallback)
//   - Image: Image (encoded bytes)
//   - FileList: Files (ordered, normalized paths)
type Payload struct {
	Text  string
	Rich  string
	Image []byte
	Files []string
}

// Item is the atomic unit of clipboard history.
type Item struct {
	// ID is assigned by the store on insert and never reused after delete.
	ID int64

	Kind    Kind
	Payload Payload

	// Fingerprint is the hex SHA-256 of the canonical payload bytes.
	// Identical visible content produces identical fingerprints regardless
	// of capture time; for RichText it hashes the plain fallback so a rich
	// and a plain copy of the same text deduplicate against each other.
	Fingerprint string

	// Preview is a short display string derived from the payload. It is
	// cached in the store but never authoritative; RefreshPreview recomputes it.
	Preview string

	Pinned     bool
	CreatedAt  time.Time
	LastUsedAt time.Time
}

// PlainText returns the textual representation of the item's payload:
// the text itself, the plain fallback for rich text, or the newline-joined
// path list. Image items have no textual representation and return "".
func (it *Item) PlainText() string {
	switch it.Kind {
	case KindText, KindRichText:
		return it.Payload.Text
	case KindFileList:
		return joinPaths(it.Payload.Files)
	}
	return ""
}

// Clone returns a deep copy of the item. Stores hand out clones so callers
// cannot alias internal state.
func (it *Item) Clone() *Item {
	cp := *it
	if it.Payload.Image != nil {
		cp.Payload.Image = append([]byte(nil), it.Payload.Image...)
	}
	if it.Payload.Files != nil {
		cp.Payload.Files = append([]string(nil), it.Payload.Files...)
	}
	return &cp
}

// RefreshPreview recomputes the cached preview from the current payload.
func (it *Item) RefreshPreview() {
	it.Preview = PreviewFor(it.Kind, it.Payload)
}

// Snapshot is one read of the OS clipboard: the small ordered set of
// representations the platform exposes simultaneously. Any subset of the
// fields may be populated.
type Snapshot struct {
	Text  string
	HTML  string
	Image []byte
	Files []string
}

// Empty reports whether the snapshot carries no usable representation.
// Whitespace-only text counts as empty, matching how captures of stray
// whitespace are dropped rather than stored.
func (s Snapshot) Empty() bool {
	return !hasText(s.Text) && s.HTML == "" && len(s.Image) == 0 && len(s.Files) == 0
}
