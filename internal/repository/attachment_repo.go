package repository

import (
	"database/sql"
	"fmt"

	"github.com/fotoforma/backoffice/internal/models"
	"go.uber.org/zap"
)

// AttachmentRepository handles attachment metadata
type AttachmentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAttachmentRepository creates a new attachment repository
func NewAttachmentRepository(db *sql.DB, logger *zap.Logger) *AttachmentRepository {
	return &AttachmentRepository{db: db, logger: logger}
}

// Create records attachment metadata. Settlement proofs are created inside
// the settle transaction so the status change and the proof rows commit as
// one unit.
func (r *AttachmentRepository) Create(tx *sql.Tx, attachment *models.Attachment) error {
	query := `
		INSERT INTO attachments (
			expense_id, purpose, file_name, content_type, storage_ref,
			file_path, size_bytes
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var result sql.Result
	var err error
	if tx != nil {
		result, err = tx.Exec(query,
			attachment.ExpenseID,
			attachment.Purpose,
			attachment.FileName,
			attachment.ContentType,
			attachment.StorageRef,
			attachment.FilePath,
			attachment.SizeBytes,
		)
	} else {
		result, err = r.db.Exec(query,
			attachment.ExpenseID,
			attachment.Purpose,
			attachment.FileName,
			attachment.ContentType,
			attachment.StorageRef,
			attachment.FilePath,
			attachment.SizeBytes,
		)
	}
	if err != nil {
		r.logger.Error("Failed to create attachment", zap.Error(err))
		return fmt.Errorf("failed to create attachment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	attachment.ID = id
	return nil
}

// ListByExpense retrieves all attachments of an expense, oldest first.
func (r *AttachmentRepository) ListByExpense(expenseID int64) ([]*models.Attachment, error) {
	query := `
		SELECT id, expense_id, purpose, file_name, content_type, storage_ref,
			file_path, size_bytes, created_at
		FROM attachments
		WHERE expense_id = ?
		ORDER BY id ASC
	`
	rows, err := r.db.Query(query, expenseID)
	if err != nil {
		r.logger.Error("Failed to list attachments", zap.Int64("expense_id", expenseID), zap.Error(err))
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	var attachments []*models.Attachment
	for rows.Next() {
		var a models.Attachment
		err := rows.Scan(
			&a.ID,
			&a.ExpenseID,
			&a.Purpose,
			&a.FileName,
			&a.ContentType,
			&a.StorageRef,
			&a.FilePath,
			&a.SizeBytes,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, &a)
	}
	return attachments, rows.Err()
}

// GetByStorageRef retrieves an attachment by its storage reference, or nil.
func (r *AttachmentRepository) GetByStorageRef(ref string) (*models.Attachment, error) {
	query := `
		SELECT id, expense_id, purpose, file_name, content_type, storage_ref,
			file_path, size_bytes, created_at
		FROM attachments
		WHERE storage_ref = ?
	`
	var a models.Attachment
	err := r.db.QueryRow(query, ref).Scan(
		&a.ID,
		&a.ExpenseID,
		&a.Purpose,
		&a.FileName,
		&a.ContentType,
		&a.StorageRef,
		&a.FilePath,
		&a.SizeBytes,
		&a.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}
	return &a, nil
}
