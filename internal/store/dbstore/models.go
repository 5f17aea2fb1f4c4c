package dbstore

import (
	"encoding/json"
	"time"

	"github.com/clipd/clipd/internal/clip"
)

// ClipItemModel is the database row for a history item. All payload
// variants share one table; only the columns for the row's kind are
// populated, mirroring the tagged-union item model.
type ClipItemModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Kind        string    `gorm:"size:16;not null;index"`
	Content     string    `gorm:"type:text"`  // text payload / plain fallback
	Rich        string    `gorm:"type:text"`  // rich markup
	Blob        []byte    `gorm:"type:blob"`  // encoded image bytes
	Paths       string    `gorm:"type:text"`  // JSON array of file paths
	Fingerprint string    `gorm:"size:64;not null;index"`
	Preview     string    `gorm:"size:256;not null"`
	Pinned      bool      `gorm:"not null;default:false;index"`
	CreatedAt   time.Time `gorm:"not null"`
	LastUsedAt  time.Time `gorm:"not null;index"`
}

// TableName returns the table name for ClipItemModel.
func (ClipItemModel) TableName() string {
	return "clip_items"
}

// ToItem converts the row to a domain item.
func (m *ClipItemModel) ToItem() (*clip.Item, error) {
	item := &clip.Item{
		ID:   m.ID,
		Kind: clip.Kind(m.Kind),
		Payload: clip.Payload{
			Text: m.Content,
			Rich: m.Rich,
		},
		Fingerprint: m.Fingerprint,
		Preview:     m.Preview,
		Pinned:      m.Pinned,
		CreatedAt:   m.CreatedAt,
		LastUsedAt:  m.LastUsedAt,
	}
	if len(m.Blob) > 0 {
		item.Payload.Image = append([]byte(nil), m.Blob...)
	}
	if m.Paths != "" {
		if err := json.Unmarshal([]byte(m.Paths), &item.Payload.Files); err != nil {
			return nil, err
		}
	}
	return item, nil
}

// fromItem converts a domain item to a row. The ID is carried over so the
// same helper serves inserts (zero ID) and payload replacement.
func fromItem(item *clip.Item) (*ClipItemModel, error) {
	m := &ClipItemModel{
		ID:          item.ID,
		Kind:        string(item.Kind),
		Content:     item.Payload.Text,
		Rich:        item.Payload.Rich,
		Blob:        item.Payload.Image,
		Fingerprint: item.Fingerprint,
		Preview:     item.Preview,
		Pinned:      item.Pinned,
		CreatedAt:   item.CreatedAt,
		LastUsedAt:  item.LastUsedAt,
	}
	if len(item.Payload.Files) > 0 {
		data, err := json.Marshal(item.Payload.Files)
		if err != nil {
			return nil, err
		}
		m.Paths = string(data)
	}
	return m, nil
}

// SettingModel is a persisted settings key-value pair.
type SettingModel struct {
	Key       string    `gorm:"primaryKey;size:100"`
	Value     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for SettingModel.
func (SettingModel) TableName() string {
	return "settings"
}
