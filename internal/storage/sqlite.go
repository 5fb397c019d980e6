package storage

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/blake2b"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Document is one stored collection.
type Document struct {
	Name      string         `gorm:"primaryKey"`
	Body      datatypes.JSON `gorm:"not null"`
	Digest    string         `gorm:"size:64"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SQLiteStorage keeps collections as rows of a documents table.
type SQLiteStorage struct {
	*gorm.DB
}

func NewSQLiteStorage(dataDir string) (*SQLiteStorage, error) {
	dbPath := filepath.Join(dataDir, "db", "catalog.db")

	// Ensure the db directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteStorage{DB: db}, nil
}

func (s *SQLiteStorage) Load(ctx context.Context, name string) ([]byte, error) {
	var doc Document
	err := s.WithContext(ctx).First(&doc, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	return []byte(doc.Body), nil
}

// Save upserts the document. Writes whose content digest matches the stored
// one are skipped.
func (s *SQLiteStorage) Save(ctx context.Context, name string, data []byte) error {
	digest := Digest(data)

	return s.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc Document
		err := tx.First(&doc, "name = ?", name).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			doc = Document{Name: name, Body: datatypes.JSON(data), Digest: digest}
			return tx.Create(&doc).Error
		case err != nil:
			return fmt.Errorf("failed to load %s: %w", name, err)
		case doc.Digest == digest:
			return nil
		}

		doc.Body = datatypes.JSON(data)
		doc.Digest = digest
		return tx.Save(&doc).Error
	})
}

func (s *SQLiteStorage) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Digest returns the hex BLAKE2b-256 sum of a document body.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
