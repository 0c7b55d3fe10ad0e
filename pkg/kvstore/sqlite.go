package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is the single-table schema behind the sqlite driver.
type Entry struct {
	Key       string `gorm:"column:key;primaryKey"`
	Value     string `gorm:"column:value;not null"`
	UpdatedAt time.Time
}

func (Entry) TableName() string { return "kv_entries" }

type gormStore struct {
	db     *gorm.DB
	origin uuid.UUID
	bus    *Broadcaster
}

// OpenSQLite opens (and migrates) the local-device store at path. Handles
// sharing the same Broadcaster see each other's changes; the file itself
// carries no cross-process signal, so sqlite mode is single-process only.
func OpenSQLite(path string, bus *Broadcaster) (Store, error) {
	if bus == nil {
		bus = NewBroadcaster()
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate kv schema: %w", err)
	}
	return &gormStore{db: db, origin: uuid.New(), bus: bus}, nil
}

func (s *gormStore) Get(ctx context.Context, key string) (string, error) {
	var entry Entry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return entry.Value, nil
}

func (s *gormStore) Set(ctx context.Context, key, value string) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		return err
	}

	s.bus.Publish(Event{Key: key, NewValue: value, Origin: s.origin})
	return nil
}

func (s *gormStore) Delete(ctx context.Context, key string) error {
	res := s.db.WithContext(ctx).Delete(&Entry{}, "key = ?", key)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		s.bus.Publish(Event{Key: key, Deleted: true, Origin: s.origin})
	}
	return nil
}

func (s *gormStore) Watch(ctx context.Context) (<-chan Event, error) {
	return s.bus.Subscribe(ctx, s.origin), nil
}

func (s *gormStore) Origin() uuid.UUID {
	return s.origin
}

func (s *gormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
