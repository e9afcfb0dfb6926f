// Package storage provides the SQLite persistence layer for the application.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/niharm/paisatrail/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage implements the service.Storage interface using SQLite.
type SQLiteStorage struct {
	db          *sql.DB
	memoryCache map[string]*model.MerchantMemory
	dbPath      string
	cacheMutex  sync.RWMutex
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:          db,
		dbPath:      dbPath,
		memoryCache: make(map[string]*model.MerchantMemory),
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) getCachedMemory(normalizedName string) *model.MerchantMemory {
	s.cacheMutex.RLock()
	defer s.cacheMutex.RUnlock()

	if mem, ok := s.memoryCache[normalizedName]; ok {
		copied := *mem
		return &copied
	}
	return nil
}

func (s *SQLiteStorage) cacheMemory(mem *model.MerchantMemory) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	copied := *mem
	s.memoryCache[mem.NormalizedName] = &copied
}
