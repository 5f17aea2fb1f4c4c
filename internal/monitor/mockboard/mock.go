// Package mockboard provides a scriptable clipboard source for testing
// the monitor loop without OS clipboard access.
package mockboard

import (
	"context"
	"sync"

	"github.com/clipd/clipd/internal/clip"
)

// Board implements monitor.Source with settable contents and failures.
type Board struct {
	mu      sync.Mutex
	snap    clip.Snapshot
	err     error
	reads   int
	written []Write
}

// Write records one write call for assertions.
type Write struct {
	Kind clip.Kind
	Data []byte
}

// New creates an empty mock clipboard.
func New() *Board {
	return &Board{}
}

// Set replaces the clipboard contents returned by Read.
func (b *Board) Set(snap clip.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snap = snap
}

// SetText is shorthand for a plain-text clipboard state.
func (b *Board) SetText(text string) {
	b.Set(clip.Snapshot{Text: text})
}

// Fail makes subsequent Reads return err; pass nil to recover.
func (b *Board) Fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

// Read implements monitor.Source.
func (b *Board) Read(ctx context.Context) (clip.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return clip.Snapshot{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.reads++
	if b.err != nil {
		return clip.Snapshot{}, b.err
	}
	return b.snap, nil
}

// Write records the payload and mirrors it into the readable state, like a
// real clipboard.
func (b *Board) Write(ctx context.Context, kind clip.Kind, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.written = append(b.written, Write{Kind: kind, Data: append([]byte(nil), data...)})
	if kind == clip.KindImage {
		b.snap = clip.Snapshot{Image: append([]byte(nil), data...)}
	} else {
		b.snap = clip.Snapshot{Text: string(data)}
	}
	return nil
}

// Reads returns how many Read calls have been made.
func (b *Board) Reads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reads
}

// Written returns the recorded write calls.
func (b *Board) Written() []Write {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Write(nil), b.written...)
}
