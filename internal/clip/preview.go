package clip

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// PreviewMaxLen is the maximum preview length in runes before truncation.
const PreviewMaxLen = 100

var markupTag = regexp.MustCompile(`<[^>]+>`)

// PreviewFor derives the short display string for a payload of the given
// kind. Previews are a cache, never a source of truth; they can always be
// recomputed from the payload.
func PreviewFor(kind Kind, payload Payload) string {
	switch kind {
	case KindText:
		return textPreview(payload.Text)
	case KindRichText:
		return textPreview(payload.Text)
	case KindImage:
		return imagePreview(payload.Image)
	case KindFileList:
		return fileListPreview(payload.Files)
	}
	return ""
}

// StripMarkup removes tags from marked-up text, leaving the visible text.
func StripMarkup(s string) string {
	return markupTag.ReplaceAllString(s, "")
}

// textPreview strips markup, collapses whitespace, and truncates.
func textPreview(text string) string {
	clean := StripMarkup(text)
	clean = SanitizePreview(clean)
	if clean == "" {
		return "[empty]"
	}
	return TruncatePreview(clean, PreviewMaxLen)
}

func imagePreview(data []byte) string {
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		return fmt.Sprintf("Image %dx%d (%d bytes)", cfg.Width, cfg.Height, len(data))
	}
	return fmt.Sprintf("Image (%d bytes)", len(data))
}

func fileListPreview(files []string) string {
	switch len(files) {
	case 0:
		return "[empty]"
	case 1:
		base := filepath.Base(files[0])
		if info, err := os.Stat(files[0]); err == nil && info.IsDir() {
			return TruncatePreview("Folder: "+base, PreviewMaxLen)
		}
		return TruncatePreview("File: "+base, PreviewMaxLen)
	}
	return fmt.Sprintf("%d files", len(files))
}

// SanitizePreview removes control characters and collapses whitespace so
// previews are safe for terminals and single-line list views.
func SanitizePreview(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)

	return strings.Join(strings.Fields(s), " ")
}

// TruncatePreview ensures s is at most maxLen runes, appending "..." when
// truncation happens.
func TruncatePreview(s string, maxLen int) string {
	s = strings.TrimSpace(s)

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return strings.Repeat(".", maxLen)
	}
	return string(runes[:maxLen-3]) + "..."
}
