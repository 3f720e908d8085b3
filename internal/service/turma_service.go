package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fotoforma/backoffice/internal/models"
	"github.com/fotoforma/backoffice/internal/repository"
	"github.com/fotoforma/backoffice/internal/workflow"
	"go.uber.org/zap"
)

// TurmaService manages graduating classes.
type TurmaService struct {
	turmas *repository.TurmaRepository
	logger *zap.Logger
}

// NewTurmaService creates a new turma service.
func NewTurmaService(turmas *repository.TurmaRepository, logger *zap.Logger) *TurmaService {
	return &TurmaService{turmas: turmas, logger: logger}
}

// Create registers a new turma.
func (s *TurmaService) Create(turma *models.Turma) (*models.Turma, error) {
	if err := s.validate(turma); err != nil {
		return nil, err
	}
	if err := s.turmas.Create(turma); err != nil {
		return nil, err
	}
	s.logger.Info("Turma created", zap.Int64("id", turma.ID), zap.String("name", turma.Name))
	return turma, nil
}

// Update edits a turma.
func (s *TurmaService) Update(turma *models.Turma) (*models.Turma, error) {
	if err := s.validate(turma); err != nil {
		return nil, err
	}
	if err := s.turmas.Update(turma); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: turma %d", workflow.ErrNotFound, turma.ID)
		}
		return nil, err
	}
	return s.turmas.GetByID(turma.ID)
}

// Delete soft-deletes a turma. Expenses that reference it keep their links.
func (s *TurmaService) Delete(id int64) error {
	err := s.turmas.SetExcluded(id, true)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: turma %d", workflow.ErrNotFound, id)
	}
	return err
}

// Get retrieves a turma by ID.
func (s *TurmaService) Get(id int64) (*models.Turma, error) {
	turma, err := s.turmas.GetByID(id)
	if err != nil {
		return nil, err
	}
	if turma == nil {
		return nil, fmt.Errorf("%w: turma %d", workflow.ErrNotFound, id)
	}
	return turma, nil
}

// List retrieves turmas, hiding soft-deleted ones unless asked.
func (s *TurmaService) List(includeExcluded bool) ([]*models.Turma, error) {
	return s.turmas.List(includeExcluded)
}

func (s *TurmaService) validate(turma *models.Turma) error {
	if strings.TrimSpace(turma.Name) == "" {
		return fmt.Errorf("%w: turma name is required", workflow.ErrValidation)
	}
	currentYear := time.Now().Year()
	if turma.GraduationYear < 2000 || turma.GraduationYear > currentYear+10 {
		return fmt.Errorf("%w: implausible graduation year %d", workflow.ErrValidation, turma.GraduationYear)
	}
	if turma.StudentCount < 0 {
		return fmt.Errorf("%w: student count must be non-negative", workflow.ErrValidation)
	}
	return nil
}
