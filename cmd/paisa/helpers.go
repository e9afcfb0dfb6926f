package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/niharm/paisatrail/internal/config"
	"github.com/niharm/paisatrail/internal/storage"
	"github.com/spf13/viper"
)

// openStorage opens the configured database and runs migrations.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/paisa/paisa.db"
	}
	dbPath = config.ExpandPath(dbPath)

	db, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		closeStorage(db)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func closeStorage(db *storage.SQLiteStorage) {
	if err := db.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}
}

// formatPaisa renders a paisa amount as rupees for display.
func formatPaisa(paisa int64) string {
	sign := ""
	if paisa < 0 {
		sign = "-"
		paisa = -paisa
	}
	return fmt.Sprintf("%s₹%d.%02d", sign, paisa/100, paisa%100)
}
