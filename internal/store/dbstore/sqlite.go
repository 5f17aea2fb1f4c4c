// Package dbstore provides the SQLite-backed implementation of the store
// interfaces. It owns the single local database file holding the clip item
// table and the settings record.
package dbstore

import (
	"errors"
	"fmt"
	"time"

	"github.com/clipd/clipd/internal/clip"
	"github.com/clipd/clipd/internal/store"
	sqlite3 "github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteStore is a SQLite-backed implementation of store.Store.
type SQLiteStore struct {
	db     *gorm.DB
	dbPath string
}

// NewSQLiteStore opens (or creates) the database at dbPath, applies the
// additive schema migration, and seeds default settings on first open.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, wrap("open", err)
	}

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, wrap("open", err)
	}

	// AutoMigrate only adds columns and indexes, keeping upgrades
	// non-destructive across schema versions.
	if err := db.AutoMigrate(&ClipItemModel{}, &SettingModel{}); err != nil {
		return nil, wrap("migrate", err)
	}

	s := &SQLiteStore{db: db, dbPath: dbPath}

	if err := s.seedDefaultSettings(); err != nil {
		return nil, err
	}

	return s, nil
}

// History returns the history store.
func (s *SQLiteStore) History() store.HistoryStore {
	return &sqliteHistoryStore{db: s.db}
}

// Settings returns the settings store.
func (s *SQLiteStore) Settings() store.SettingsStore {
	return &sqliteSettingsStore{db: s.db}
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return wrap("close", err)
	}
	return sqlDB.Close()
}

// seedDefaultSettings writes missing default settings. Existing keys are
// never overwritten.
func (s *SQLiteStore) seedDefaultSettings() error {
	settings := s.Settings()
	for key, value := range store.DefaultSettings() {
		if _, err := settings.Get(key); err == nil {
			continue
		} else if !store.IsNotFound(err) {
			return err
		}
		if err := settings.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

// wrap classifies a database error into the storage taxonomy.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.NewError(store.CodeNotFound, op, err)
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.Code {
		case sqlite3.ErrCorrupt, sqlite3.ErrNotADB, sqlite3.ErrFormat:
			return store.NewError(store.CodeCorrupt, op, err)
		case sqlite3.ErrConstraint:
			return store.NewError(store.CodeConstraintViolation, op, err)
		}
	}
	return store.NewError(store.CodeUnavailable, op, err)
}

// displayOrder is the fixed list ordering: pinned first, then most
// recently used.
const displayOrder = "pinned DESC, last_used_at DESC"

// sqliteHistoryStore implements store.HistoryStore.
type sqliteHistoryStore struct {
	db *gorm.DB
}

// Insert stores a new item and assigns its ID.
func (s *sqliteHistoryStore) Insert(item *clip.Item) (*clip.Item, error) {
	model, err := fromItem(item)
	if err != nil {
		return nil, store.NewError(store.CodeConstraintViolation, "insert", err)
	}
	model.ID = 0
	now := time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
	}
	if model.LastUsedAt.IsZero() {
		model.LastUsedAt = model.CreatedAt
	}

	if err := s.db.Create(model).Error; err != nil {
		return nil, wrap("insert", err)
	}
	return model.ToItem()
}

// Get retrieves a single item by ID.
func (s *sqliteHistoryStore) Get(id int64) (*clip.Item, error) {
	var model ClipItemModel
	if err := s.db.First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.NotFoundError("get", id)
		}
		return nil, wrap("get", err)
	}
	return model.ToItem()
}

// List returns items in display order.
func (s *sqliteHistoryStore) List(opts store.ListOptions) ([]*clip.Item, error) {
	var models []*ClipItemModel

	query := s.db.Order(displayOrder)
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, wrap("list", err)
	}

	items := make([]*clip.Item, 0, len(models))
	for _, model := range models {
		item, err := model.ToItem()
		if err != nil {
			return nil, store.NewError(store.CodeCorrupt, "list", err)
		}
		items = append(items, item)
	}
	return items, nil
}

// MostRecent returns the newest item by LastUsedAt, or (nil, nil) when empty.
func (s *sqliteHistoryStore) MostRecent() (*clip.Item, error) {
	var model ClipItemModel
	err := s.db.Order("last_used_at DESC").First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("most_recent", err)
	}
	return model.ToItem()
}

// FindByFingerprint returns the most recently used item with the given
// fingerprint and pin state.
func (s *sqliteHistoryStore) FindByFingerprint(fingerprint string, pinned bool) (*clip.Item, error) {
	var model ClipItemModel
	err := s.db.
		Where("fingerprint = ? AND pinned = ?", fingerprint, pinned).
		Order("last_used_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.NewError(store.CodeNotFound, "find_by_fingerprint",
			fmt.Errorf("no item with fingerprint %.12s (pinned=%t)", fingerprint, pinned))
	}
	if err != nil {
		return nil, wrap("find_by_fingerprint", err)
	}
	return model.ToItem()
}

// Touch updates an item's LastUsedAt to now.
func (s *sqliteHistoryStore) Touch(id int64) error {
	result := s.db.Model(&ClipItemModel{}).
		Where("id = ?", id).
		Update("last_used_at", time.Now())
	if result.Error != nil {
		return wrap("touch", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.NotFoundError("touch", id)
	}
	return nil
}

// SetPinned updates an item's pin state.
func (s *sqliteHistoryStore) SetPinned(id int64, pinned bool) error {
	result := s.db.Model(&ClipItemModel{}).
		Where("id = ?", id).
		Update("pinned", pinned)
	if result.Error != nil {
		return wrap("set_pinned", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.NotFoundError("set_pinned", id)
	}
	return nil
}

// ReplacePayload overwrites an item's content columns in place.
func (s *sqliteHistoryStore) ReplacePayload(id int64, item *clip.Item) error {
	model, err := fromItem(item)
	if err != nil {
		return store.NewError(store.CodeConstraintViolation, "replace_payload", err)
	}

	result := s.db.Model(&ClipItemModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"kind":        model.Kind,
			"content":     model.Content,
			"rich":        model.Rich,
			"blob":        model.Blob,
			"paths":       model.Paths,
			"fingerprint": model.Fingerprint,
			"preview":     model.Preview,
		})
	if result.Error != nil {
		return wrap("replace_payload", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.NotFoundError("replace_payload", id)
	}
	return nil
}

// Delete removes an item by ID.
func (s *sqliteHistoryStore) Delete(id int64) error {
	result := s.db.Delete(&ClipItemModel{}, id)
	if result.Error != nil {
		return wrap("delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.NotFoundError("delete", id)
	}
	return nil
}

// EvictOldestUnpinned deletes up to n unpinned items, oldest first.
func (s *sqliteHistoryStore) EvictOldestUnpinned(n int) ([]*clip.Item, error) {
	if n <= 0 {
		return nil, nil
	}

	var models []*ClipItemModel
	err := s.db.
		Where("pinned = ?", false).
		Order("last_used_at ASC, id ASC").
		Limit(n).
		Find(&models).Error
	if err != nil {
		return nil, wrap("evict", err)
	}
	if len(models) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(models))
	items := make([]*clip.Item, len(models))
	for i, model := range models {
		ids[i] = model.ID
		item, err := model.ToItem()
		if err != nil {
			return nil, store.NewError(store.CodeCorrupt, "evict", err)
		}
		items[i] = item
	}

	if err := s.db.Delete(&ClipItemModel{}, ids).Error; err != nil {
		return nil, wrap("evict", err)
	}
	return items, nil
}

// Count returns the total number of items.
func (s *sqliteHistoryStore) Count() (int, error) {
	var count int64
	if err := s.db.Model(&ClipItemModel{}).Count(&count).Error; err != nil {
		return 0, wrap("count", err)
	}
	return int(count), nil
}

// CountUnpinned returns the number of unpinned items.
func (s *sqliteHistoryStore) CountUnpinned() (int, error) {
	var count int64
	err := s.db.Model(&ClipItemModel{}).
		Where("pinned = ?", false).
		Count(&count).Error
	if err != nil {
		return 0, wrap("count_unpinned", err)
	}
	return int(count), nil
}

// Clear removes items in bulk, optionally sparing pinned ones.
func (s *sqliteHistoryStore) Clear(keepPinned bool) error {
	if keepPinned {
		err := s.db.Where("pinned = ?", false).Delete(&ClipItemModel{}).Error
		return wrap("clear", err)
	}
	err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&ClipItemModel{}).Error
	return wrap("clear", err)
}

// Close releases any resources. The parent store owns the connection.
func (s *sqliteHistoryStore) Close() error {
	return nil
}

// sqliteSettingsStore implements store.SettingsStore.
type sqliteSettingsStore struct {
	db *gorm.DB
}

// Get retrieves a setting value by key.
func (s *sqliteSettingsStore) Get(key string) (string, error) {
	var model SettingModel
	if err := s.db.First(&model, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", store.NewError(store.CodeNotFound, "settings_get",
				fmt.Errorf("setting not found: %s", key))
		}
		return "", wrap("settings_get", err)
	}
	return model.Value, nil
}

// Set stores a setting value (upsert).
func (s *sqliteSettingsStore) Set(key, value string) error {
	model := &SettingModel{Key: key, Value: value}
	result := s.db.Where("key = ?", key).
		Assign(map[string]interface{}{"value": value, "updated_at": s.db.NowFunc()}).
		FirstOrCreate(model)
	if result.Error != nil {
		return wrap("settings_set", result.Error)
	}
	return nil
}

// All returns every setting key-value pair.
func (s *sqliteSettingsStore) All() (map[string]string, error) {
	var models []SettingModel
	if err := s.db.Find(&models).Error; err != nil {
		return nil, wrap("settings_all", err)
	}
	result := make(map[string]string, len(models))
	for _, model := range models {
		result[model.Key] = model.Value
	}
	return result, nil
}

// Delete removes a setting key.
func (s *sqliteSettingsStore) Delete(key string) error {
	result := s.db.Delete(&SettingModel{}, "key = ?", key)
	if result.Error != nil {
		return wrap("settings_delete", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.NewError(store.CodeNotFound, "settings_delete",
			fmt.Errorf("setting not found: %s", key))
	}
	return nil
}

// Close releases any resources. The parent store owns the connection.
func (s *sqliteSettingsStore) Close() error {
	return nil
}
