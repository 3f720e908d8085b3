package repository

import (
	"database/sql"
	"fmt"

	"github.com/fotoforma/backoffice/internal/models"
	"go.uber.org/zap"
)

// TurmaRepository handles turma (graduating class) database operations
type TurmaRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTurmaRepository creates a new turma repository
func NewTurmaRepository(db *sql.DB, logger *zap.Logger) *TurmaRepository {
	return &TurmaRepository{db: db, logger: logger}
}

// Create inserts a new turma
func (r *TurmaRepository) Create(turma *models.Turma) error {
	query := `
		INSERT INTO turmas (
			name, course, institution, graduation_year, contract_number,
			student_count, active
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		turma.Name,
		turma.Course,
		turma.Institution,
		turma.GraduationYear,
		turma.ContractNumber,
		turma.StudentCount,
		turma.Active,
	)
	if err != nil {
		r.logger.Error("Failed to create turma", zap.Error(err))
		return fmt.Errorf("failed to create turma: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	turma.ID = id
	return nil
}

// GetByID retrieves a turma by ID, or nil when it does not exist.
func (r *TurmaRepository) GetByID(id int64) (*models.Turma, error) {
	query := `
		SELECT id, name, course, institution, graduation_year, contract_number,
			student_count, active, excluded, created_at, updated_at
		FROM turmas
		WHERE id = ?
	`
	var t models.Turma
	err := r.db.QueryRow(query, id).Scan(
		&t.ID, &t.Name, &t.Course, &t.Institution, &t.GraduationYear,
		&t.ContractNumber, &t.StudentCount, &t.Active, &t.Excluded,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get turma: %w", err)
	}
	return &t, nil
}

// Update mutates a turma's fields
func (r *TurmaRepository) Update(turma *models.Turma) error {
	query := `
		UPDATE turmas SET
			name = ?, course = ?, institution = ?, graduation_year = ?,
			contract_number = ?, student_count = ?, active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	result, err := r.db.Exec(query,
		turma.Name,
		turma.Course,
		turma.Institution,
		turma.GraduationYear,
		turma.ContractNumber,
		turma.StudentCount,
		turma.Active,
		turma.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update turma", zap.Int64("id", turma.ID), zap.Error(err))
		return fmt.Errorf("failed to update turma: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetExcluded soft-deletes (or restores) a turma
func (r *TurmaRepository) SetExcluded(id int64, excluded bool) error {
	result, err := r.db.Exec(
		`UPDATE turmas SET excluded = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		excluded, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set excluded: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List retrieves turmas, optionally including soft-deleted ones.
func (r *TurmaRepository) List(includeExcluded bool) ([]*models.Turma, error) {
	query := `
		SELECT id, name, course, institution, graduation_year, contract_number,
			student_count, active, excluded, created_at, updated_at
		FROM turmas
	`
	if !includeExcluded {
		query += ` WHERE excluded = 0`
	}
	query += ` ORDER BY graduation_year DESC, name ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to list turmas", zap.Error(err))
		return nil, fmt.Errorf("failed to list turmas: %w", err)
	}
	defer rows.Close()

	var turmas []*models.Turma
	for rows.Next() {
		var t models.Turma
		err := rows.Scan(
			&t.ID, &t.Name, &t.Course, &t.Institution, &t.GraduationYear,
			&t.ContractNumber, &t.StudentCount, &t.Active, &t.Excluded,
			&t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan turma: %w", err)
		}
		turmas = append(turmas, &t)
	}
	return turmas, rows.Err()
}
