package cli

import (
	"fmt"
)

// Args represents the top-level command structure
type Args struct {
	Watch     *WatchCmd     `arg:"subcommand:watch" help:"Run the clipboard monitor daemon"`
	List      *ListCmd      `arg:"subcommand:list" help:"List clipboard history"`
	Search    *SearchCmd    `arg:"subcommand:search" help:"Search clipboard history"`
	Get       *GetCmd       `arg:"subcommand:get" help:"Print one item's content"`
	Pin       *PinCmd       `arg:"subcommand:pin" help:"Pin an item so it is never auto-evicted"`
	Unpin     *UnpinCmd     `arg:"subcommand:unpin" help:"Unpin an item"`
	Delete    *DeleteCmd    `arg:"subcommand:delete" help:"Delete an item"`
	Paste     *PasteCmd     `arg:"subcommand:paste" help:"Copy an item back to the clipboard"`
	Transform *TransformCmd `arg:"subcommand:transform" help:"Store a transformed copy of an item"`
	Clear     *ClearCmd     `arg:"subcommand:clear" help:"Clear history"`
	Config    *ConfigCmd    `arg:"subcommand:config" help:"Read or change persisted settings"`

	DBPath *string `arg:"--db,env:CLIPD_DB" help:"Override database path"`
}

// WatchCmd runs the monitor daemon until interrupted.
type WatchCmd struct {
	Verbose bool `arg:"-v,--verbose" help:"Enable debug logging"`
	JSONLog bool `arg:"--json-log" help:"Log in JSON format"`
}

// ListCmd prints history in display order.
type ListCmd struct {
	Limit  int    `arg:"-n,--limit" default:"20" help:"Maximum items to show (0 = all)"`
	Offset int    `arg:"--offset" help:"Items to skip"`
	Query  string `arg:"-q,--query" help:"Filter items by text"`
}

// SearchCmd searches history for a pattern.
type SearchCmd struct {
	Query string `arg:"positional,required" help:"Text to search for (case-insensitive)"`
	Limit int    `arg:"-n,--limit" help:"Maximum matches (0 = all)"`
}

// GetCmd prints one item's content to stdout.
type GetCmd struct {
	ID    int64 `arg:"positional,required" help:"Item ID"`
	Plain bool  `arg:"-p,--plain" help:"Prefer the plain-text fallback for rich items"`
}

// PinCmd pins an item.
type PinCmd struct {
	ID int64 `arg:"positional,required" help:"Item ID"`
}

// UnpinCmd unpins an item.
type UnpinCmd struct {
	ID int64 `arg:"positional,required" help:"Item ID"`
}

// DeleteCmd removes an item.
type DeleteCmd struct {
	ID int64 `arg:"positional,required" help:"Item ID"`
}

// PasteCmd writes an item back to the OS clipboard.
type PasteCmd struct {
	ID    int64 `arg:"positional,required" help:"Item ID"`
	Plain bool  `arg:"-p,--plain" help:"Paste the plain-text fallback for rich items"`
}

// TransformCmd stores a transformed copy of one or more items.
type TransformCmd struct {
	Op  string  `arg:"positional,required" help:"Operation: upper, lower, title, trim, merge"`
	IDs []int64 `arg:"positional,required" help:"Item ID(s); merge takes several"`
}

// ClearCmd bulk-deletes history.
type ClearCmd struct {
	All   bool `arg:"--all" help:"Also delete pinned items"`
	Force bool `arg:"-f,--force" help:"Skip confirmation prompt"`
}

// ConfigCmd reads or changes the persisted settings record.
type ConfigCmd struct {
	Key   string  `arg:"positional" help:"Setting key (omit to list all)"`
	Value *string `arg:"positional" help:"New value (omit to read)"`
}

// Description returns the program description
func (Args) Description() string {
	return "clipd - background clipboard history service with pinning, search, and text transforms"
}

// Version returns the program version
func (Args) Version() string {
	return "clipd 0.1.0"
}

// Epilogue returns additional help text
func (Args) Epilogue() string {
	return `Examples:
  clipd watch                      # Run the monitor daemon
  clipd list -n 10                 # Show the ten most recent items
  clipd search "invoice"           # Find items containing "invoice"
  clipd pin 42                     # Protect item 42 from eviction
  clipd paste 42                   # Put item 42 back on the clipboard
  clipd transform upper 42         # Store an upper-cased copy of item 42
  clipd transform merge 3 7 9      # Store items 3, 7, 9 joined by newlines
  clipd clear                      # Delete unpinned history
  clipd config max_history_items 500

For more information, visit: https://github.com/clipd/clipd`
}

// Validate performs validation on the parsed arguments
func (args *Args) Validate() error {
	switch {
	case args.List != nil:
		if args.List.Limit < 0 {
			return fmt.Errorf("limit must be non-negative")
		}
	case args.Transform != nil:
		return args.Transform.Validate()
	}
	return nil
}

// Validate checks transform operand counts.
func (t *TransformCmd) Validate() error {
	if t.Op == "merge" {
		if len(t.IDs) < 2 {
			return fmt.Errorf("merge requires at least two item IDs")
		}
		return nil
	}
	if len(t.IDs) != 1 {
		return fmt.Errorf("%s takes exactly one item ID", t.Op)
	}
	return nil
}
