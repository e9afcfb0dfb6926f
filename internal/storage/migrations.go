package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the
// application expects. If the database cannot be migrated to this
// version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT UNIQUE NOT NULL,
					description TEXT,
					type TEXT NOT NULL,
					is_active BOOLEAN DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					hash TEXT UNIQUE NOT NULL,
					date DATETIME NOT NULL,
					amount_paisa INTEGER NOT NULL CHECK (amount_paisa > 0),
					reference_no TEXT,
					merchant_name TEXT,
					upi_id TEXT,
					account_last4 TEXT,
					category_id INTEGER,
					type TEXT NOT NULL,
					status TEXT NOT NULL DEFAULT 'COMPLETED',
					manual_classification TEXT,
					confidence INTEGER DEFAULT 0,
					notes TEXT,
					deleted_at DATETIME,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (category_id) REFERENCES categories(id)
				)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,
				`CREATE INDEX idx_transactions_amount ON transactions(amount_paisa)`,
				`CREATE INDEX idx_transactions_reference ON transactions(reference_no)`,
				`CREATE INDEX idx_transactions_merchant ON transactions(merchant_name)`,

				`CREATE TABLE IF NOT EXISTS merchant_memory (
					normalized_name TEXT PRIMARY KEY,
					category_id INTEGER NOT NULL,
					transaction_type TEXT,
					occurrence_count INTEGER NOT NULL DEFAULT 1,
					first_seen DATETIME NOT NULL,
					last_seen DATETIME NOT NULL,
					locked BOOLEAN NOT NULL DEFAULT 0,
					user_confirmed BOOLEAN NOT NULL DEFAULT 0,
					FOREIGN KEY (category_id) REFERENCES categories(id)
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add classification history for auditing",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS classification_history (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					transaction_id INTEGER NOT NULL,
					category_id INTEGER NOT NULL,
					type TEXT NOT NULL,
					source TEXT NOT NULL,
					confidence INTEGER DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (transaction_id) REFERENCES transactions(id)
				)`,
				`CREATE INDEX IF NOT EXISTS idx_classification_history_transaction_id
					ON classification_history(transaction_id)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Seed default categories",
		Up: func(tx *sql.Tx) error {
			defaults := []struct {
				name         string
				description  string
				categoryType string
			}{
				{"Food & Dining", "Restaurants and food delivery", "VARIABLE_EXPENSE"},
				{"Groceries", "Supermarkets and daily essentials", "VARIABLE_EXPENSE"},
				{"Fuel", "Petrol and diesel", "VEHICLE"},
				{"Shopping", "Online and retail purchases", "VARIABLE_EXPENSE"},
				{"Transport", "Cabs, metro, and travel fares", "VARIABLE_EXPENSE"},
				{"Recharge", "Mobile and broadband recharges", "FIXED_EXPENSE"},
				{"Bills & Utilities", "Electricity, water, and utility bills", "FIXED_EXPENSE"},
				{"Insurance", "Insurance premiums", "FIXED_EXPENSE"},
				{"Health & Fitness", "Pharmacies, clinics, and gyms", "VARIABLE_EXPENSE"},
				{"Investment", "Mutual funds, stocks, and deposits", "INVESTMENT"},
				{"Salary", "Salary and payroll credits", "INCOME"},
				{"Cashback", "Promotional credits and rewards", "INCOME"},
				{"Credit Card Payment", "Credit card bill payments", "LIABILITY"},
				{"Transfer", "Money moved between people or accounts", "TRANSFER"},
				{"Statement", "Balance and statement notifications", "STATEMENT"},
				{"Cash", "ATM withdrawals", "VARIABLE_EXPENSE"},
				{"Other", "Everything else", "VARIABLE_EXPENSE"},
				{"Uncategorized", "Awaiting classification", "VARIABLE_EXPENSE"},
			}

			stmt, err := tx.Prepare(`
				INSERT OR IGNORE INTO categories (name, description, type)
				VALUES (?, ?, ?)
			`)
			if err != nil {
				return fmt.Errorf("failed to prepare seed statement: %w", err)
			}
			defer func() { _ = stmt.Close() }()

			for _, cat := range defaults {
				if _, err := stmt.Exec(cat.name, cat.description, cat.categoryType); err != nil {
					return fmt.Errorf("failed to seed category %q: %w", cat.name, err)
				}
			}
			return nil
		},
	},
}

// Migrate runs all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		slog.Info("Applying migration",
			"version", migration.Version,
			"description", migration.Description)

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration transaction: %w", err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to set schema version: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	var finalVersion int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion); err != nil {
		return fmt.Errorf("failed to verify schema version: %w", err)
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("schema version mismatch: have %d, want %d", finalVersion, ExpectedSchemaVersion)
	}

	return nil
}
