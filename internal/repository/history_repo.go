package repository

import (
	"database/sql"
	"fmt"

	"github.com/fotoforma/backoffice/internal/models"
	"go.uber.org/zap"
)

// HistoryRepository handles the append-only expense audit trail
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{db: db, logger: logger}
}

// Create appends a history entry. Always called inside the transaction that
// applies the matching status change.
func (r *HistoryRepository) Create(tx *sql.Tx, entry *models.HistoryEntry) error {
	query := `
		INSERT INTO expense_history (
			expense_id, action, actor_id, actor_name, justification,
			previous_status, new_status
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := tx.Exec(query,
		entry.ExpenseID,
		entry.Action,
		entry.ActorID,
		entry.ActorName,
		entry.Justification,
		entry.PreviousStatus,
		entry.NewStatus,
	)
	if err != nil {
		r.logger.Error("Failed to create history entry", zap.Error(err))
		return fmt.Errorf("failed to create history entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	entry.ID = id
	return nil
}

// ListByExpense retrieves the ordered audit trail for an expense.
func (r *HistoryRepository) ListByExpense(expenseID int64) ([]*models.HistoryEntry, error) {
	query := `
		SELECT id, expense_id, action, actor_id, actor_name, justification,
			previous_status, new_status, timestamp
		FROM expense_history
		WHERE expense_id = ?
		ORDER BY id ASC
	`
	rows, err := r.db.Query(query, expenseID)
	if err != nil {
		r.logger.Error("Failed to list history", zap.Int64("expense_id", expenseID), zap.Error(err))
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []*models.HistoryEntry
	for rows.Next() {
		var entry models.HistoryEntry
		err := rows.Scan(
			&entry.ID,
			&entry.ExpenseID,
			&entry.Action,
			&entry.ActorID,
			&entry.ActorName,
			&entry.Justification,
			&entry.PreviousStatus,
			&entry.NewStatus,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
