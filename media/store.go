package media

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store is the persistent media index, backed by SQLite.
type Store struct {
	db *gorm.DB
}

func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create media index directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open media index: %w", err)
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate media index: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Add(entry Entry) error {
	if err := s.db.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record %s: %w", entry.Path, err)
	}
	return nil
}

// List returns up to limit entries, newest first. A limit of zero or less returns all.
func (s *Store) List(limit int) ([]Entry, error) {
	var entries []Entry

	query := s.db.Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list media index: %w", err)
	}
	return entries, nil
}

// Prune removes entries whose files no longer exist and returns how many were removed.
func (s *Store) Prune() (int, error) {
	entries, err := s.List(0)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if _, err := os.Stat(entry.Path); !os.IsNotExist(err) {
			continue
		}
		if err := s.db.Delete(&Entry{}, "id = ?", entry.ID).Error; err != nil {
			return removed, fmt.Errorf("failed to prune %s: %w", entry.Path, err)
		}
		removed++
	}

	return removed, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
