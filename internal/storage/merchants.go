package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/niharm/paisatrail/internal/model"
)

// GetMerchantMemory retrieves a learned merchant mapping by its
// normalized name. Unseen merchants return nil, nil; that is the
// expected cold-start case, not an error.
func (s *SQLiteStorage) GetMerchantMemory(ctx context.Context, normalizedName string) (*model.MerchantMemory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(normalizedName, "normalizedName"); err != nil {
		return nil, err
	}

	if mem := s.getCachedMemory(normalizedName); mem != nil {
		return mem, nil
	}

	var mem model.MerchantMemory
	var typeStr sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT normalized_name, category_id, transaction_type,
		       occurrence_count, first_seen, last_seen, locked, user_confirmed
		FROM merchant_memory
		WHERE normalized_name = ?
	`, normalizedName).Scan(
		&mem.NormalizedName,
		&mem.CategoryID,
		&typeStr,
		&mem.OccurrenceCount,
		&mem.FirstSeen,
		&mem.LastSeen,
		&mem.Locked,
		&mem.UserConfirmed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get merchant memory: %w", err)
	}
	mem.Type = model.TransactionType(typeStr.String)

	s.cacheMemory(&mem)
	return &mem, nil
}

// UpsertMerchantMemory creates or replaces a merchant memory row. The
// count, lock, and confirmation flags are written together so the
// increment-and-maybe-lock step lands atomically.
func (s *SQLiteStorage) UpsertMerchantMemory(ctx context.Context, mem *model.MerchantMemory) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateMemory(mem); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO merchant_memory (
			normalized_name, category_id, transaction_type,
			occurrence_count, first_seen, last_seen, locked, user_confirmed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(normalized_name) DO UPDATE SET
			category_id = excluded.category_id,
			transaction_type = excluded.transaction_type,
			occurrence_count = excluded.occurrence_count,
			last_seen = excluded.last_seen,
			locked = excluded.locked,
			user_confirmed = excluded.user_confirmed
	`,
		mem.NormalizedName,
		mem.CategoryID,
		string(mem.Type),
		mem.OccurrenceCount,
		mem.FirstSeen,
		mem.LastSeen,
		mem.Locked,
		mem.UserConfirmed,
	); err != nil {
		return fmt.Errorf("failed to upsert merchant memory: %w", err)
	}

	s.cacheMemory(mem)
	return nil
}

// GetAllMerchantMemories retrieves every learned mapping, locked first.
func (s *SQLiteStorage) GetAllMerchantMemories(ctx context.Context) ([]model.MerchantMemory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT normalized_name, category_id, transaction_type,
		       occurrence_count, first_seen, last_seen, locked, user_confirmed
		FROM merchant_memory
		ORDER BY locked DESC, occurrence_count DESC, normalized_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query merchant memories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var memories []model.MerchantMemory
	for rows.Next() {
		var mem model.MerchantMemory
		var typeStr sql.NullString
		if err := rows.Scan(
			&mem.NormalizedName,
			&mem.CategoryID,
			&typeStr,
			&mem.OccurrenceCount,
			&mem.FirstSeen,
			&mem.LastSeen,
			&mem.Locked,
			&mem.UserConfirmed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan merchant memory: %w", err)
		}
		mem.Type = model.TransactionType(typeStr.String)
		memories = append(memories, mem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating merchant memories: %w", err)
	}

	return memories, nil
}
