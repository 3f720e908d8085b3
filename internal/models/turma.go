package models

import "time"

// Turma represents a graduating class, the primary organizational unit that
// events, briefings and expenses attach to.
type Turma struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Course         string    `json:"course"`
	Institution    string    `json:"institution"`
	GraduationYear int       `json:"graduation_year"`
	ContractNumber string    `json:"contract_number,omitempty"`
	StudentCount   int       `json:"student_count"`
	Active         bool      `json:"active"`
	Excluded       bool      `json:"excluded"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
