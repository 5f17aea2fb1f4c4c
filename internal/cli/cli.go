package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/clipd/clipd/internal/clip"
	"github.com/clipd/clipd/internal/config"
	"github.com/clipd/clipd/internal/history"
	"github.com/clipd/clipd/internal/monitor"
	"github.com/clipd/clipd/internal/monitor/sysboard"
	"github.com/clipd/clipd/internal/store"
	"github.com/clipd/clipd/internal/store/dbstore"
	"github.com/clipd/clipd/internal/transform"
)

// CLI handles the command-line interface
type CLI struct {
	manager *history.Manager
	st      store.Store
}

// New creates a CLI instance with the default database path.
func New() (*CLI, error) {
	return NewWithArgs(nil)
}

// NewWithArgs creates a CLI instance. The database path resolves in
// order: --db flag, CLIPD_DB environment variable, database_location in
// the YAML config, then ~/.config/clipd/clipd.db. On first run the YAML
// values seed the settings record; after that the database is
// authoritative.
func NewWithArgs(args *Args) (*CLI, error) {
	cfgManager, err := config.NewManager()
	if err != nil {
		return nil, err
	}
	cfg, err := cfgManager.Load()
	if err != nil {
		return nil, err
	}

	var dbPath string
	switch {
	case args != nil && args.DBPath != nil:
		dbPath = *args.DBPath
	case cfg.DatabaseLocation != "":
		dbPath = cfg.DatabaseLocation
	default:
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		dbPath = filepath.Join(homeDir, ".config", "clipd", "clipd.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	_, statErr := os.Stat(dbPath)
	firstRun := os.IsNotExist(statErr)

	sqliteStore, err := dbstore.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database store: %w", err)
	}

	if firstRun {
		if err := seedFromConfig(sqliteStore.Settings(), cfg); err != nil {
			sqliteStore.Close()
			return nil, fmt.Errorf("failed to seed settings: %w", err)
		}
	}

	return &CLI{
		manager: history.NewFromSettings(sqliteStore),
		st:      sqliteStore,
	}, nil
}

// seedFromConfig copies the YAML bootstrap values into a freshly created
// settings record.
func seedFromConfig(settings store.SettingsStore, cfg *config.Config) error {
	values := map[string]string{
		store.SettingPollIntervalMS:  strconv.Itoa(cfg.PollIntervalMS),
		store.SettingMaxHistoryItems: strconv.Itoa(cfg.MaxHistoryItems),
		store.SettingAutoCleanup:     strconv.FormatBool(cfg.AutoCleanup),
		store.SettingClearOnExit:     strconv.FormatBool(cfg.ClearOnExit),
	}
	for key, value := range values {
		if err := settings.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the store.
func (c *CLI) Close() error {
	return c.manager.Close()
}

// Execute runs the CLI command based on parsed arguments
func (c *CLI) Execute(args *Args) error {
	if err := args.Validate(); err != nil {
		return err
	}

	switch {
	case args.Watch != nil:
		return c.executeWatch(args.Watch)
	case args.List != nil:
		return c.executeList(args.List)
	case args.Search != nil:
		return c.executeSearch(args.Search)
	case args.Get != nil:
		return c.executeGet(args.Get)
	case args.Pin != nil:
		return c.executePin(args.Pin.ID, true)
	case args.Unpin != nil:
		return c.executePin(args.Unpin.ID, false)
	case args.Delete != nil:
		return c.executeDelete(args.Delete)
	case args.Paste != nil:
		return c.executePaste(args.Paste)
	case args.Transform != nil:
		return c.executeTransform(args.Transform)
	case args.Clear != nil:
		return c.executeClear(args.Clear)
	case args.Config != nil:
		return c.executeConfig(args.Config)
	default:
		return c.executeList(&ListCmd{Limit: 20})
	}
}

// executeWatch runs the monitor daemon until interrupted.
func (c *CLI) executeWatch(cmd *WatchCmd) error {
	logger := newLogger(cmd)

	board, err := sysboard.New()
	if err != nil {
		return fmt.Errorf("failed to access system clipboard: %w", err)
	}

	settings := c.st.Settings()
	interval := time.Duration(store.GetInt(settings, store.SettingPollIntervalMS, 500)) * time.Millisecond

	mon := monitor.New(c.manager, board, monitor.Options{
		Interval: interval,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mon.Run(ctx); err != nil {
		return err
	}

	if store.GetBool(settings, store.SettingClearOnExit, false) {
		logger.Info("clearing unpinned history on exit")
		if err := c.manager.Clear(true); err != nil {
			return fmt.Errorf("failed to clear history on exit: %w", err)
		}
	}
	return nil
}

func newLogger(cmd *WatchCmd) *slog.Logger {
	level := slog.LevelInfo
	if cmd.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cmd.JSONLog {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// executeList prints history in display order.
func (c *CLI) executeList(cmd *ListCmd) error {
	items, err := c.manager.History(cmd.Limit, cmd.Offset, cmd.Query)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(items) == 0 {
		fmt.Println("History is empty.")
		return nil
	}

	printItems(items)
	return nil
}

// executeSearch prints matching items.
func (c *CLI) executeSearch(cmd *SearchCmd) error {
	items, err := c.manager.Search(cmd.Query, cmd.Limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(items) == 0 {
		return fmt.Errorf("no matches found for: %s", cmd.Query)
	}

	printItems(items)
	return nil
}

// executeGet writes one item's content to stdout.
func (c *CLI) executeGet(cmd *GetCmd) error {
	item, err := c.manager.Get(cmd.ID)
	if err != nil {
		return err
	}

	switch item.Kind {
	case clip.KindImage:
		if _, err := os.Stdout.Write(item.Payload.Image); err != nil {
			return fmt.Errorf("failed to write content: %w", err)
		}
	case clip.KindRichText:
		if cmd.Plain {
			fmt.Println(item.Payload.Text)
		} else {
			fmt.Println(item.Payload.Rich)
		}
	default:
		fmt.Println(item.PlainText())
	}
	return nil
}

func (c *CLI) executePin(id int64, pinned bool) error {
	var err error
	if pinned {
		err = c.manager.Pin(id)
	} else {
		err = c.manager.Unpin(id)
	}
	if err != nil {
		return err
	}

	if pinned {
		fmt.Printf("Pinned item %d.\n", id)
	} else {
		fmt.Printf("Unpinned item %d.\n", id)
	}
	return nil
}

func (c *CLI) executeDelete(cmd *DeleteCmd) error {
	if err := c.manager.Delete(cmd.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted item %d.\n", cmd.ID)
	return nil
}

// executePaste writes an item's payload back to the OS clipboard.
func (c *CLI) executePaste(cmd *PasteCmd) error {
	data, kind, err := c.manager.Paste(cmd.ID, cmd.Plain)
	if err != nil {
		return err
	}

	board, err := sysboard.New()
	if err != nil {
		return fmt.Errorf("failed to access system clipboard: %w", err)
	}
	if err := board.Write(context.Background(), kind, data); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}

	fmt.Printf("Copied item %d to clipboard.\n", cmd.ID)
	return nil
}

// executeTransform stores a transformed copy of the item(s).
func (c *CLI) executeTransform(cmd *TransformCmd) error {
	op, err := transform.ParseOp(cmd.Op)
	if err != nil {
		return err
	}

	var item *clip.Item
	if op == transform.OpMerge {
		item, err = c.manager.Merge(cmd.IDs)
	} else {
		item, err = c.manager.Transform(cmd.IDs[0], op)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Stored item %d: %s\n", item.ID, item.Preview)
	return nil
}

// executeClear bulk-deletes history with a confirmation prompt.
func (c *CLI) executeClear(cmd *ClearCmd) error {
	count, err := c.manager.Count()
	if err != nil {
		return fmt.Errorf("failed to count items: %w", err)
	}
	if count == 0 {
		fmt.Println("History is already empty.")
		return nil
	}

	scope := "unpinned"
	if cmd.All {
		scope = "all"
	}

	if !cmd.Force {
		fmt.Printf("This will delete %s item(s) from history. Continue? [y/N]: ", scope)
		var response string
		fmt.Scanln(&response)
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := c.manager.Clear(!cmd.All); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	fmt.Printf("Cleared %s item(s) from history.\n", scope)
	return nil
}

// executeConfig reads or writes the persisted settings record.
func (c *CLI) executeConfig(cmd *ConfigCmd) error {
	settings := c.st.Settings()

	if cmd.Key == "" {
		all, err := settings.All()
		if err != nil {
			return fmt.Errorf("failed to list settings: %w", err)
		}
		keys := make([]string, 0, len(all))
		for key := range all {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Printf("%s = %s\n", key, all[key])
		}
		return nil
	}

	if cmd.Value == nil {
		value, err := settings.Get(cmd.Key)
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	}

	if err := settings.Set(cmd.Key, *cmd.Value); err != nil {
		return err
	}
	fmt.Printf("Set %s = %s\n", cmd.Key, *cmd.Value)
	return nil
}

// printItems renders items one per line: id, pin marker, kind, preview.
func printItems(items []*clip.Item) {
	for _, item := range items {
		pin := " "
		if item.Pinned {
			pin = "*"
		}
		fmt.Printf("%4d %s %-9s  %s\n", item.ID, pin, item.Kind, item.Preview)
	}
}
