package clip

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// Classify inspects a clipboard snapshot and produces an unsaved history
// item with kind, payload, fingerprint, and preview populated. When several
// representations are present at once the richer one wins:
// FileList > Image > RichText > Text.
//
// Returns false when the snapshot is empty or holds no supported
// representation; the caller skips the capture.
func Classify(snap Snapshot) (*Item, bool) {
	if files := normalizePaths(snap.Files); len(files) > 0 {
		return newItem(KindFileList, Payload{Files: files}, fileListFingerprint(files)), true
	}

	if len(snap.Image) > 0 {
		img := append([]byte(nil), snap.Image...)
		return newItem(KindImage, Payload{Image: img}, bytesFingerprint(img)), true
	}

	if snap.HTML != "" {
		plain := snap.Text
		if !hasText(plain) {
			plain = StripMarkup(snap.HTML)
		}
		if !hasText(plain) && !hasText(snap.HTML) {
			return nil, false
		}
		// Fingerprint over the plain fallback so a rich copy and a plain
		// copy of the same visible text share an identity.
		return newItem(KindRichText, Payload{Rich: snap.HTML, Text: plain}, textFingerprint(plain)), true
	}

	if hasText(snap.Text) {
		if looksLikeMarkup(snap.Text) {
			plain := StripMarkup(snap.Text)
			return newItem(KindRichText, Payload{Rich: snap.Text, Text: plain}, textFingerprint(plain)), true
		}
		return newItem(KindText, Payload{Text: snap.Text}, textFingerprint(snap.Text)), true
	}

	return nil, false
}

// Marker returns a cheap change marker over the raw snapshot. The monitor
// loop compares it against the previous tick's marker before doing any
// classification work. Each representation is length-prefixed so adjacent
// fields cannot collide.
func Marker(snap Snapshot) string {
	h := sha256.New()
	writeField := func(b []byte) {
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(b)))
		h.Write(n[:])
		h.Write(b)
	}
	writeField([]byte(snap.Text))
	writeField([]byte(snap.HTML))
	writeField(snap.Image)
	for _, f := range snap.Files {
		writeField([]byte(f))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func newItem(kind Kind, payload Payload, fingerprint string) *Item {
	return &Item{
		Kind:        kind,
		Payload:     payload,
		Fingerprint: fingerprint,
		Preview:     PreviewFor(kind, payload),
	}
}

// TextItem builds an unsaved plain-text item. The transform path uses it to
// hand derived text back into the normal capture pipeline.
func TextItem(text string) *Item {
	return newItem(KindText, Payload{Text: text}, textFingerprint(text))
}

func textFingerprint(text string) string {
	return bytesFingerprint([]byte(text))
}

func bytesFingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// fileListFingerprint hashes the ordered, normalized path list with length
// prefixes, so ["ab", "c"] and ["a", "bc"] differ.
func fileListFingerprint(files []string) string {
	h := sha256.New()
	for _, f := range files {
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(f)))
		h.Write(n[:])
		h.Write([]byte(f))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// normalizePaths cleans each path and drops blanks, preserving order.
func normalizePaths(paths []string) []string {
	var out []string
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, filepath.Clean(p))
	}
	return out
}

func joinPaths(paths []string) string {
	return strings.Join(paths, "\n")
}

func hasText(s string) bool {
	return strings.TrimSpace(s) != ""
}

// looksLikeMarkup reports whether plain clipboard text is actually markup.
// Some sources publish HTML only through the text representation, so a
// matching open/close tag pair is treated as rich content.
func looksLikeMarkup(text string) bool {
	open := strings.IndexByte(text, '<')
	if open < 0 {
		return false
	}
	end := strings.IndexByte(text[open:], '>')
	if end < 1 {
		return false
	}
	inner := text[open+1 : open+end]
	if inner == "" || strings.ContainsAny(inner, "<\n") {
		return false
	}
	// Require a letter or slash right after '<' so "1 < 2 > 0" stays text.
	c := inner[0]
	return c == '/' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
