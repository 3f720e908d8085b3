package models

import "time"

// Event type constants
const (
	EventColacao     = "COLACAO"
	EventBaile       = "BAILE"
	EventCulto       = "CULTO"
	EventFotoOficial = "FOTO_OFICIAL"
	EventMakingOf    = "MAKING_OF"
)

// Event represents a photographic event for a turma. Start and end are
// calendar dates (YYYY-MM-DD); multi-day events span every day in between.
type Event struct {
	ID            int64     `json:"id"`
	TurmaID       int64     `json:"turma_id"`
	Type          string    `json:"type"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	Location      string    `json:"location,omitempty"`
	Photographers []string  `json:"photographers,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	TurmaName string `json:"turma_name,omitempty"`
}

// ValidEventType returns true for a known event type.
func ValidEventType(t string) bool {
	switch t {
	case EventColacao, EventBaile, EventCulto, EventFotoOficial, EventMakingOf:
		return true
	}
	return false
}

// ExpandDates returns one calendar date per day from StartDate through
// EndDate inclusive, for calendar rendering. A malformed StartDate yields
// nil; a malformed or inverted EndDate falls back to the start date alone.
func (e *Event) ExpandDates() []string {
	const layout = "2006-01-02"

	start, err := time.Parse(layout, e.StartDate)
	if err != nil {
		return nil
	}
	end, err := time.Parse(layout, e.EndDate)
	if err != nil || end.Before(start) {
		return []string{e.StartDate}
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(layout))
	}
	return dates
}
