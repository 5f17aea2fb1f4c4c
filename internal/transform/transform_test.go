package transform

import (
	"errors"
	"testing"

	"github.com/clipd/clipd/internal/clip"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		op   Op
		in   string
		want string
	}{
		{"upper", OpUpper, "abc", "ABC"},
		{"lower", OpLower, "ABC", "abc"},
		{"title", OpTitle, "hello world", "Hello World"},
		{"trim", OpTrim, "  padded \n", "padded"},
		{"upper unicode", OpUpper, "héllo", "HÉLLO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(tt.op, clip.TextItem(tt.in))
			if err != nil {
				t.Fatalf("apply failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestApplyRichTextUsesFallback(t *testing.T) {
	item := &clip.Item{
		Kind:    clip.KindRichText,
		Payload: clip.Payload{Rich: "<b>abc</b>", Text: "abc"},
	}

	got, err := Apply(OpUpper, item)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if got != "ABC" {
		t.Errorf("expected plain fallback transform, got %q", got)
	}
}

func TestApplyUnsupportedKind(t *testing.T) {
	tests := []struct {
		name string
		item *clip.Item
	}{
		{"image", &clip.Item{Kind: clip.KindImage, Payload: clip.Payload{Image: []byte{1}}}},
		{"file list", &clip.Item{Kind: clip.KindFileList, Payload: clip.Payload{Files: []string{"/a"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Apply(OpUpper, tt.item); !errors.Is(err, ErrUnsupportedKind) {
				t.Errorf("expected ErrUnsupportedKind, got %v", err)
			}
		})
	}
}

func TestApplyRejectsMerge(t *testing.T) {
	if _, err := Apply(OpMerge, clip.TextItem("a")); err == nil {
		t.Error("merge on a single item must fail")
	}
}

func TestMerge(t *testing.T) {
	if got := Merge([]string{"a", "b"}); got != "a\nb" {
		t.Errorf("expected %q, got %q", "a\nb", got)
	}
	if got := Merge([]string{"b", "a"}); got != "b\na" {
		t.Errorf("merge must preserve input order, got %q", got)
	}
	if got := Merge(nil); got != "" {
		t.Errorf("expected empty merge, got %q", got)
	}
}

func TestParseOp(t *testing.T) {
	for _, valid := range []string{"upper", "LOWER", " title ", "trim", "merge"} {
		if _, err := ParseOp(valid); err != nil {
			t.Errorf("expected %q to parse, got %v", valid, err)
		}
	}
	if _, err := ParseOp("reverse"); err == nil {
		t.Error("expected unknown operation to fail")
	}
}
