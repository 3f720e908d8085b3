package models

import "time"

// BriefingGroup assigns a set of students from a turma to a photo session
// slot (date plus a free-text period such as "manhã" or "14h-16h").
type BriefingGroup struct {
	ID          int64     `json:"id"`
	TurmaID     int64     `json:"turma_id"`
	Name        string    `json:"name"`
	SessionDate string    `json:"session_date,omitempty"` // YYYY-MM-DD
	Period      string    `json:"period,omitempty"`
	Students    []string  `json:"students,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
