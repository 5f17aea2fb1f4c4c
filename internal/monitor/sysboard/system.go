// Package sysboard implements clipboard access against the real OS
// clipboard via golang.design/x/clipboard. It exposes the text and image
// representations that library surfaces; file-list and HTML
// representations are platform formats the library does not expose, so
// snapshots from this source never populate them.
package sysboard

import (
	"context"
	"fmt"

	xclipboard "golang.design/x/clipboard"

	"github.com/clipd/clipd/internal/clip"
)

// Board reads and writes the system clipboard.
type Board struct{}

// New initializes the OS clipboard. Initialization fails on headless
// systems without a clipboard device.
func New() (*Board, error) {
	if err := xclipboard.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize system clipboard: %w", err)
	}
	return &Board{}, nil
}

// Read returns the current clipboard snapshot. The library reads are
// synchronous and block while another process owns the selection, so they
// run in a goroutine raced against ctx; a timed-out read fails the tick
// and the orphaned goroutine finishes in the background.
func (b *Board) Read(ctx context.Context) (clip.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return clip.Snapshot{}, err
	}

	done := make(chan clip.Snapshot, 1)
	go func() {
		var snap clip.Snapshot
		if text := xclipboard.Read(xclipboard.FmtText); len(text) > 0 {
			snap.Text = string(text)
		}
		if img := xclipboard.Read(xclipboard.FmtImage); len(img) > 0 {
			snap.Image = append([]byte(nil), img...)
		}
		done <- snap
	}()

	select {
	case <-ctx.Done():
		return clip.Snapshot{}, fmt.Errorf("clipboard read: %w", ctx.Err())
	case snap := <-done:
		return snap, nil
	}
}

// Write places payload bytes on the system clipboard under the format
// matching the item kind. The monitor loop observes this write on a later
// tick and drops it as a dedup no-op.
func (b *Board) Write(ctx context.Context, kind clip.Kind, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch kind {
	case clip.KindImage:
		xclipboard.Write(xclipboard.FmtImage, data)
	default:
		// Rich text and file lists are written through their textual
		// representation; the library has no richer formats.
		xclipboard.Write(xclipboard.FmtText, data)
	}
	return nil
}
