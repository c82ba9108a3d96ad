package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVStore is a durable key/value store over the cache_entries table. Values
// are compressed on write and decompressed on read.
type KVStore struct {
	db         *gorm.DB
	compressor *Compressor
}

func NewKVStore(db *gorm.DB) (*KVStore, error) {
	compressor, err := NewCompressor()
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(db, compressor); err != nil {
		return nil, err
	}
	return &KVStore{db: db, compressor: compressor}, nil
}

// OpenKVStore opens the SQLite file and wraps it.
func OpenKVStore(dbPath string) (*KVStore, error) {
	db, err := Open(dbPath, false)
	if err != nil {
		return nil, err
	}
	return NewKVStore(db)
}

// Get returns the value for key; ok is false when the key is absent.
func (s *KVStore) Get(key string) ([]byte, bool, error) {
	var entry Entry
	err := s.db.Where(`"key" = ?`, key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	value, err := s.compressor.Decompress(entry.Value)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decompress %s: %w", key, err)
	}
	return value, true, nil
}

// Set overwrites the whole value stored under key.
func (s *KVStore) Set(key string, value []byte) error {
	entry := Entry{Key: key, Value: s.compressor.Compress(value)}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(key string) error {
	if err := s.db.Where(`"key" = ?`, key).Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Keys lists every stored key.
func (s *KVStore) Keys() ([]string, error) {
	var keys []string
	if err := s.db.Model(&Entry{}).Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).Pluck("key", &keys).Error; err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

// Close releases the underlying connection pool.
func (s *KVStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
