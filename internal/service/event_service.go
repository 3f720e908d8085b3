package service

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/fotoforma/backoffice/internal/models"
	"github.com/fotoforma/backoffice/internal/repository"
	"github.com/fotoforma/backoffice/internal/workflow"
	"github.com/fotoforma/backoffice/pkg/utils"
	"go.uber.org/zap"
)

// EventService manages photographic events and their calendar view.
type EventService struct {
	events *repository.EventRepository
	turmas *repository.TurmaRepository
	logger *zap.Logger
}

// NewEventService creates a new event service.
func NewEventService(events *repository.EventRepository, turmas *repository.TurmaRepository, logger *zap.Logger) *EventService {
	return &EventService{events: events, turmas: turmas, logger: logger}
}

// Create schedules a new event for a turma.
func (s *EventService) Create(event *models.Event) (*models.Event, error) {
	if err := s.validate(event); err != nil {
		return nil, err
	}
	if err := s.events.Create(event); err != nil {
		return nil, err
	}
	s.logger.Info("Event created",
		zap.Int64("id", event.ID),
		zap.String("type", event.Type),
		zap.Int64("turma_id", event.TurmaID))
	return event, nil
}

// Update edits an event.
func (s *EventService) Update(event *models.Event) (*models.Event, error) {
	if err := s.validate(event); err != nil {
		return nil, err
	}
	if err := s.events.Update(event); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: event %d", workflow.ErrNotFound, event.ID)
		}
		return nil, err
	}
	return s.events.GetByID(event.ID)
}

// Delete removes an event. Events are schedule entries, not financial
// records, so deletion is physical.
func (s *EventService) Delete(id int64) error {
	err := s.events.Delete(id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: event %d", workflow.ErrNotFound, id)
	}
	return err
}

// Get retrieves an event by ID.
func (s *EventService) Get(id int64) (*models.Event, error) {
	event, err := s.events.GetByID(id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, fmt.Errorf("%w: event %d", workflow.ErrNotFound, id)
	}
	return event, nil
}

// List retrieves events, optionally narrowed to a turma and/or date range.
func (s *EventService) List(turmaID int64, from, to string) ([]*models.Event, error) {
	if from != "" {
		if err := utils.ValidateCalendarDate(from); err != nil {
			return nil, fmt.Errorf("%w: %v", workflow.ErrValidation, err)
		}
	}
	if to != "" {
		if err := utils.ValidateCalendarDate(to); err != nil {
			return nil, fmt.Errorf("%w: %v", workflow.ErrValidation, err)
		}
	}
	return s.events.List(turmaID, from, to)
}

// CalendarDay is one day of the agenda with the events covering it.
type CalendarDay struct {
	Date   string          `json:"date"`
	Events []*models.Event `json:"events"`
}

// Calendar expands events in [from, to] into a per-day agenda. Multi-day
// events appear on every day they span.
func (s *EventService) Calendar(turmaID int64, from, to string) ([]*CalendarDay, error) {
	events, err := s.List(turmaID, from, to)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string][]*models.Event)
	var order []string
	for _, event := range events {
		for _, date := range event.ExpandDates() {
			if from != "" && date < from {
				continue
			}
			if to != "" && date > to {
				continue
			}
			if _, seen := byDate[date]; !seen {
				order = append(order, date)
			}
			byDate[date] = append(byDate[date], event)
		}
	}

	// Lexicographic order on YYYY-MM-DD is date order.
	sort.Strings(order)

	days := make([]*CalendarDay, 0, len(order))
	for _, date := range order {
		days = append(days, &CalendarDay{Date: date, Events: byDate[date]})
	}
	return days, nil
}

func (s *EventService) validate(event *models.Event) error {
	if !models.ValidEventType(event.Type) {
		return fmt.Errorf("%w: unknown event type %q", workflow.ErrValidation, event.Type)
	}
	if err := utils.ValidateCalendarDate(event.StartDate); err != nil {
		return fmt.Errorf("%w: %v", workflow.ErrValidation, err)
	}
	if event.EndDate == "" {
		event.EndDate = event.StartDate
	}
	if err := utils.ValidateCalendarDate(event.EndDate); err != nil {
		return fmt.Errorf("%w: %v", workflow.ErrValidation, err)
	}
	if event.EndDate < event.StartDate {
		return fmt.Errorf("%w: event ends before it starts", workflow.ErrValidation)
	}

	turma, err := s.turmas.GetByID(event.TurmaID)
	if err != nil {
		return err
	}
	if turma == nil || turma.Excluded {
		return fmt.Errorf("%w: turma %d does not exist", workflow.ErrValidation, event.TurmaID)
	}
	return nil
}
