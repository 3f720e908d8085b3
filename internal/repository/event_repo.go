package repository

import (
	"database/sql"
	"fmt"

	"github.com/fotoforma/backoffice/internal/models"
	"go.uber.org/zap"
)

// EventRepository handles photographic event database operations
type EventRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB, logger *zap.Logger) *EventRepository {
	return &EventRepository{db: db, logger: logger}
}

// Create inserts an event with its photographer list
func (r *EventRepository) Create(event *models.Event) error {
	query := `
		INSERT INTO events (turma_id, type, start_date, end_date, location, notes)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		event.TurmaID, event.Type, event.StartDate, event.EndDate,
		event.Location, event.Notes,
	)
	if err != nil {
		r.logger.Error("Failed to create event", zap.Error(err))
		return fmt.Errorf("failed to create event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	event.ID = id

	return r.replacePhotographers(event.ID, event.Photographers)
}

// GetByID retrieves an event by ID, or nil when it does not exist.
func (r *EventRepository) GetByID(id int64) (*models.Event, error) {
	query := `
		SELECT e.id, e.turma_id, e.type, e.start_date, e.end_date, e.location,
			e.notes, e.created_at, e.updated_at, COALESCE(t.name, '')
		FROM events e
		LEFT JOIN turmas t ON t.id = e.turma_id
		WHERE e.id = ?
	`
	var ev models.Event
	err := r.db.QueryRow(query, id).Scan(
		&ev.ID, &ev.TurmaID, &ev.Type, &ev.StartDate, &ev.EndDate,
		&ev.Location, &ev.Notes, &ev.CreatedAt, &ev.UpdatedAt, &ev.TurmaName,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	photographers, err := r.photographers(id)
	if err != nil {
		return nil, err
	}
	ev.Photographers = photographers
	return &ev, nil
}

// Update mutates an event and rewrites its photographer list
func (r *EventRepository) Update(event *models.Event) error {
	query := `
		UPDATE events SET
			turma_id = ?, type = ?, start_date = ?, end_date = ?,
			location = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	result, err := r.db.Exec(query,
		event.TurmaID, event.Type, event.StartDate, event.EndDate,
		event.Location, event.Notes, event.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update event", zap.Int64("id", event.ID), zap.Error(err))
		return fmt.Errorf("failed to update event: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return r.replacePhotographers(event.ID, event.Photographers)
}

// Delete removes an event
func (r *EventRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
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

// List retrieves events, optionally narrowed to a turma and/or a calendar
// date range (events overlapping [from, to]).
func (r *EventRepository) List(turmaID int64, from, to string) ([]*models.Event, error) {
	query := `
		SELECT e.id, e.turma_id, e.type, e.start_date, e.end_date, e.location,
			e.notes, e.created_at, e.updated_at, COALESCE(t.name, '')
		FROM events e
		LEFT JOIN turmas t ON t.id = e.turma_id
		WHERE 1=1
	`
	var args []interface{}
	if turmaID > 0 {
		query += ` AND e.turma_id = ?`
		args = append(args, turmaID)
	}
	if from != "" {
		query += ` AND e.end_date >= ?`
		args = append(args, from)
	}
	if to != "" {
		query += ` AND e.start_date <= ?`
		args = append(args, to)
	}
	query += ` ORDER BY e.start_date ASC, e.id ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to list events", zap.Error(err))
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		var ev models.Event
		err := rows.Scan(
			&ev.ID, &ev.TurmaID, &ev.Type, &ev.StartDate, &ev.EndDate,
			&ev.Location, &ev.Notes, &ev.CreatedAt, &ev.UpdatedAt, &ev.TurmaName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, ev := range events {
		photographers, err := r.photographers(ev.ID)
		if err != nil {
			return nil, err
		}
		ev.Photographers = photographers
	}
	return events, nil
}

func (r *EventRepository) replacePhotographers(eventID int64, names []string) error {
	if _, err := r.db.Exec(`DELETE FROM event_photographers WHERE event_id = ?`, eventID); err != nil {
		return fmt.Errorf("failed to clear photographers: %w", err)
	}
	for _, name := range names {
		_, err := r.db.Exec(
			`INSERT INTO event_photographers (event_id, name) VALUES (?, ?)`,
			eventID, name,
		)
		if err != nil {
			return fmt.Errorf("failed to insert photographer: %w", err)
		}
	}
	return nil
}

func (r *EventRepository) photographers(eventID int64) ([]string, error) {
	rows, err := r.db.Query(
		`SELECT name FROM event_photographers WHERE event_id = ? ORDER BY name`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load photographers: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
