// Package transform provides the pure text operations applied to history
// items: case conversion, trimming, and merging. Results are always handed
// back to the store as new items; originals are never mutated, so history
// stays an audit trail of distinct captures.
package transform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/clipd/clipd/internal/clip"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrUnsupportedKind is returned when a text operation is applied to an
// item without a textual payload (images, file lists).
var ErrUnsupportedKind = errors.New("transform: unsupported item kind")

// Op names a transformation.
type Op string

const (
	OpUpper Op = "upper"
	OpLower Op = "lower"
	OpTitle Op = "title"
	OpTrim  Op = "trim"
	OpMerge Op = "merge"
)

// ParseOp validates a user-supplied operation name.
func ParseOp(s string) (Op, error) {
	switch Op(strings.ToLower(strings.TrimSpace(s))) {
	case OpUpper:
		return OpUpper, nil
	case OpLower:
		return OpLower, nil
	case OpTitle:
		return OpTitle, nil
	case OpTrim:
		return OpTrim, nil
	case OpMerge:
		return OpMerge, nil
	}
	return "", fmt.Errorf("unknown transform operation: %q", s)
}

var titleCaser = cases.Title(language.Und)

// Upper returns text upper-cased.
func Upper(text string) string {
	return strings.ToUpper(text)
}

// Lower returns text lower-cased.
func Lower(text string) string {
	return strings.ToLower(text)
}

// TitleCase returns text with each word title-cased.
func TitleCase(text string) string {
	return titleCaser.String(text)
}

// Trim returns text with leading and trailing whitespace removed.
func Trim(text string) string {
	return strings.TrimSpace(text)
}

// Merge joins the texts with newlines, preserving input order.
func Merge(texts []string) string {
	return strings.Join(texts, "\n")
}

// Apply runs a single-item operation on the item's textual payload and
// returns the transformed text. Only Text and RichText items (via their
// plain fallback) are supported; OpMerge needs multiple inputs and is
// rejected here.
func Apply(op Op, item *clip.Item) (string, error) {
	if op == OpMerge {
		return "", fmt.Errorf("merge requires multiple items")
	}

	text, err := TextOf(item)
	if err != nil {
		return "", err
	}

	switch op {
	case OpUpper:
		return Upper(text), nil
	case OpLower:
		return Lower(text), nil
	case OpTitle:
		return TitleCase(text), nil
	case OpTrim:
		return Trim(text), nil
	}
	return "", fmt.Errorf("unknown transform operation: %q", op)
}

// TextOf extracts the transformable text of an item: the text payload or
// the rich item's plain fallback.
func TextOf(item *clip.Item) (string, error) {
	switch item.Kind {
	case clip.KindText, clip.KindRichText:
		return item.Payload.Text, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedKind, item.Kind)
}
