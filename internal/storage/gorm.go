package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"task-tracker/internal/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type kvEntry struct {
	Key       string `gorm:"column:entry_key;primaryKey;size:191"`
	Value     []byte `gorm:"column:value;not null"`
	UpdatedAt time.Time
}

func (kvEntry) TableName() string {
	return "kv_entries"
}

// GormStore keeps the value in one row of the kv_entries table. It works
// with any dialector the database pool supports (sqlite, postgres).
type GormStore struct {
	pool *database.DatabasePool
	key  string
}

func NewGormStore(pool *database.DatabasePool, key string) (*GormStore, error) {
	if pool == nil || pool.DB == nil {
		return nil, database.ErrNotConnected
	}
	if key == "" {
		return nil, fmt.Errorf("gorm store: empty key")
	}
	if err := pool.DB.AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_entries: %w", err)
	}
	return &GormStore{pool: pool, key: key}, nil
}

func (s *GormStore) Load(ctx context.Context) ([]byte, bool, error) {
	var entry kvEntry
	err := s.pool.DB.WithContext(ctx).Where("entry_key = ?", s.key).Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, storeError("gorm load", err)
	}
	return entry.Value, true, nil
}

func (s *GormStore) Save(ctx context.Context, data []byte) error {
	entry := kvEntry{Key: s.key, Value: data, UpdatedAt: time.Now()}
	err := s.pool.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return storeError("gorm save", err)
	}
	return nil
}

func (s *GormStore) Health(ctx context.Context) error {
	return s.pool.Health(ctx)
}

func (s *GormStore) Stats() map[string]interface{} {
	return s.pool.Stats()
}

func (s *GormStore) Close() error {
	return s.pool.Close()
}
