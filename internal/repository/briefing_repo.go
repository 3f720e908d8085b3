package repository

import (
	"database/sql"
	"fmt"

	"github.com/fotoforma/backoffice/internal/models"
	"go.uber.org/zap"
)

// BriefingRepository handles briefing group database operations
type BriefingRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBriefingRepository creates a new briefing repository
func NewBriefingRepository(db *sql.DB, logger *zap.Logger) *BriefingRepository {
	return &BriefingRepository{db: db, logger: logger}
}

// Create inserts a briefing group with its student list
func (r *BriefingRepository) Create(group *models.BriefingGroup) error {
	query := `
		INSERT INTO briefing_groups (turma_id, name, session_date, period)
		VALUES (?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		group.TurmaID, group.Name, group.SessionDate, group.Period,
	)
	if err != nil {
		r.logger.Error("Failed to create briefing group", zap.Error(err))
		return fmt.Errorf("failed to create briefing group: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	group.ID = id

	return r.replaceStudents(group.ID, group.Students)
}

// Update mutates a briefing group and rewrites its student list
func (r *BriefingRepository) Update(group *models.BriefingGroup) error {
	query := `
		UPDATE briefing_groups SET
			turma_id = ?, name = ?, session_date = ?, period = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	result, err := r.db.Exec(query,
		group.TurmaID, group.Name, group.SessionDate, group.Period, group.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update briefing group", zap.Int64("id", group.ID), zap.Error(err))
		return fmt.Errorf("failed to update briefing group: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return r.replaceStudents(group.ID, group.Students)
}

// Delete removes a briefing group
func (r *BriefingRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM briefing_groups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete briefing group: %w", err)
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

// ListByTurma retrieves the briefing groups of a turma
func (r *BriefingRepository) ListByTurma(turmaID int64) ([]*models.BriefingGroup, error) {
	query := `
		SELECT id, turma_id, name, session_date, period, created_at, updated_at
		FROM briefing_groups
		WHERE turma_id = ?
		ORDER BY session_date ASC, name ASC
	`
	rows, err := r.db.Query(query, turmaID)
	if err != nil {
		r.logger.Error("Failed to list briefing groups", zap.Error(err))
		return nil, fmt.Errorf("failed to list briefing groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.BriefingGroup
	for rows.Next() {
		var g models.BriefingGroup
		err := rows.Scan(
			&g.ID, &g.TurmaID, &g.Name, &g.SessionDate, &g.Period,
			&g.CreatedAt, &g.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan briefing group: %w", err)
		}
		groups = append(groups, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, g := range groups {
		students, err := r.students(g.ID)
		if err != nil {
			return nil, err
		}
		g.Students = students
	}
	return groups, nil
}

func (r *BriefingRepository) replaceStudents(groupID int64, students []string) error {
	if _, err := r.db.Exec(`DELETE FROM briefing_group_students WHERE group_id = ?`, groupID); err != nil {
		return fmt.Errorf("failed to clear students: %w", err)
	}
	for _, s := range students {
		_, err := r.db.Exec(
			`INSERT INTO briefing_group_students (group_id, student_name) VALUES (?, ?)`,
			groupID, s,
		)
		if err != nil {
			return fmt.Errorf("failed to insert student: %w", err)
		}
	}
	return nil
}

func (r *BriefingRepository) students(groupID int64) ([]string, error) {
	rows, err := r.db.Query(
		`SELECT student_name FROM briefing_group_students WHERE group_id = ? ORDER BY student_name`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load students: %w", err)
	}
	defer rows.Close()

	var students []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}
