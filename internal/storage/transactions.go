package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/niharm/paisatrail/internal/common"
	"github.com/niharm/paisatrail/internal/model"
)

// InsertTransactionIgnoringConflict inserts a transaction, relying on
// the UNIQUE constraint on the hash column as the final duplicate
// authority. It returns the new row id, or -1 when the insert was
// ignored because an identical hash already exists. Callers treat -1
// as a benign no-op, not a failure.
func (s *SQLiteStorage) InsertTransactionIgnoringConflict(ctx context.Context, txn *model.Transaction) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransaction(txn); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			hash, date, amount_paisa, reference_no, merchant_name,
			upi_id, account_last4, category_id, type, status,
			manual_classification, confidence, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		txn.Hash,
		txn.Date,
		txn.AmountPaisa,
		txn.ReferenceNo,
		txn.MerchantName,
		txn.UPIID,
		txn.AccountLast4,
		txn.CategoryID,
		string(txn.Type),
		string(txn.Status),
		txn.ManualClassification,
		txn.Confidence,
		txn.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		slog.Debug("Insert ignored, hash already stored", "hash", txn.Hash)
		return -1, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read insert id: %w", err)
	}
	txn.ID = id
	return id, nil
}

// GetTransactionByID retrieves a single transaction, including
// soft-deleted rows.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var txn model.Transaction
	var deletedAt sql.NullTime
	var typeStr, statusStr string
	var referenceNo, merchantName, upiID, accountLast4, manual, notes sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, hash, date, amount_paisa, reference_no, merchant_name,
		       upi_id, account_last4, category_id, type, status,
		       manual_classification, confidence, notes, deleted_at
		FROM transactions
		WHERE id = ?
	`, id).Scan(
		&txn.ID, &txn.Hash, &txn.Date, &txn.AmountPaisa,
		&referenceNo, &merchantName, &upiID, &accountLast4,
		&txn.CategoryID, &typeStr, &statusStr,
		&manual, &txn.Confidence, &notes, &deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	txn.ReferenceNo = referenceNo.String
	txn.MerchantName = merchantName.String
	txn.UPIID = upiID.String
	txn.AccountLast4 = accountLast4.String
	txn.ManualClassification = manual.String
	txn.Notes = notes.String
	txn.Type = model.TransactionType(typeStr)
	txn.Status = model.TransactionStatus(statusStr)
	if deletedAt.Valid {
		txn.DeletedAt = &deletedAt.Time
	}

	return &txn, nil
}

// ExistsByHash reports whether a non-deleted transaction with the
// given hash is stored.
func (s *SQLiteStorage) ExistsByHash(ctx context.Context, hash string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(hash, "hash"); err != nil {
		return false, err
	}

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM transactions
			WHERE hash = ? AND deleted_at IS NULL
		)
	`, hash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check hash: %w", err)
	}
	return exists, nil
}

// ExistsByReferenceAndAmount reports whether a non-deleted transaction
// with the same bank reference and amount is stored.
func (s *SQLiteStorage) ExistsByReferenceAndAmount(ctx context.Context, referenceNo string, amountPaisa int64) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(referenceNo, "referenceNo"); err != nil {
		return false, err
	}

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM transactions
			WHERE reference_no = ? AND amount_paisa = ? AND deleted_at IS NULL
		)
	`, referenceNo, amountPaisa).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check reference: %w", err)
	}
	return exists, nil
}

// FindCandidatesByAmountAndTimeWindow returns snapshots of non-deleted
// transactions with the exact amount inside the [start, end] window,
// ordered by date. Query order matters to the fuzzy matcher.
func (s *SQLiteStorage) FindCandidatesByAmountAndTimeWindow(ctx context.Context, amountPaisa int64, start, end time.Time) ([]model.TransactionSnapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, merchant_name, account_last4
		FROM transactions
		WHERE amount_paisa = ? AND date BETWEEN ? AND ? AND deleted_at IS NULL
		ORDER BY date ASC
	`, amountPaisa, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var candidates []model.TransactionSnapshot
	for rows.Next() {
		var snap model.TransactionSnapshot
		var merchantName, accountLast4 sql.NullString
		if err := rows.Scan(&snap.ID, &snap.Date, &merchantName, &accountLast4); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		snap.MerchantName = merchantName.String
		snap.AccountLast4 = accountLast4.String
		candidates = append(candidates, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidates: %w", err)
	}

	return candidates, nil
}

// UpdateTransactionType applies a user edit of category and type.
func (s *SQLiteStorage) UpdateTransactionType(ctx context.Context, id int64, categoryID int, txType model.TransactionType) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET category_id = ?, type = ?
		WHERE id = ? AND deleted_at IS NULL
	`, categoryID, string(txType), id)
	if err != nil {
		return fmt.Errorf("failed to update transaction type: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: transaction %d", common.ErrNotFound, id)
	}
	return nil
}

// UpdateTransactionStatus moves a transaction through its lifecycle
// (INTENT, PENDING, COMPLETED, CANCELLED).
func (s *SQLiteStorage) UpdateTransactionStatus(ctx context.Context, id int64, status model.TransactionStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET status = ?
		WHERE id = ? AND deleted_at IS NULL
	`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: transaction %d", common.ErrNotFound, id)
	}
	return nil
}

// UpdateTransactionCategoriesByID moves every transaction from one
// category to another as a single atomic multi-row update. Partial
// application would leave the books inconsistent, so this never loops
// over individual rows.
func (s *SQLiteStorage) UpdateTransactionCategoriesByID(ctx context.Context, fromCategoryID, toCategoryID int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET category_id = ?
		WHERE category_id = ? AND deleted_at IS NULL
	`, toCategoryID, fromCategoryID); err != nil {
		return fmt.Errorf("failed to update transaction categories: %w", err)
	}

	return tx.Commit()
}

// SoftDeleteTransaction stamps a tombstone on a transaction. Rows are
// never hard-deleted by the ingestion path.
func (s *SQLiteStorage) SoftDeleteTransaction(ctx context.Context, id int64, at time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, at, id)
	if err != nil {
		return fmt.Errorf("failed to soft delete transaction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: transaction %d", common.ErrNotFound, id)
	}
	return nil
}

// SaveClassificationRecord appends an audit-trail entry.
func (s *SQLiteStorage) SaveClassificationRecord(ctx context.Context, rec *model.ClassificationRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}

	if rec.ClassifiedAt.IsZero() {
		rec.ClassifiedAt = time.Now()
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO classification_history (transaction_id, category_id, type, source, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.TransactionID, rec.CategoryID, string(rec.Type), string(rec.Source), rec.Confidence, rec.ClassifiedAt); err != nil {
		return fmt.Errorf("failed to save classification record: %w", err)
	}
	return nil
}

// GetCategorySummary sums COMPLETED, non-deleted spend per category
// name over a date range. Amounts are in paisa.
func (s *SQLiteStorage) GetCategorySummary(ctx context.Context, start, end time.Time) (map[string]int64, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, SUM(t.amount_paisa)
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.date BETWEEN ? AND ?
		  AND t.status = 'COMPLETED'
		  AND t.deleted_at IS NULL
		GROUP BY c.name
		ORDER BY c.name
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query category summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summary := make(map[string]int64)
	for rows.Next() {
		var name string
		var total int64
		if err := rows.Scan(&name, &total); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		summary[name] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary: %w", err)
	}

	return summary, nil
}

// GetMerchantSummary sums COMPLETED, non-deleted spend per merchant
// over a date range. Amounts are in paisa.
func (s *SQLiteStorage) GetMerchantSummary(ctx context.Context, start, end time.Time) (map[string]int64, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(NULLIF(merchant_name, ''), '(unknown)'), SUM(amount_paisa)
		FROM transactions
		WHERE date BETWEEN ? AND ?
		  AND status = 'COMPLETED'
		  AND deleted_at IS NULL
		GROUP BY 1
		ORDER BY 2 DESC
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query merchant summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summary := make(map[string]int64)
	for rows.Next() {
		var name string
		var total int64
		if err := rows.Scan(&name, &total); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		summary[name] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary: %w", err)
	}

	return summary, nil
}
