package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fotoforma/backoffice/internal/models"
	"github.com/fotoforma/backoffice/internal/repository"
	"github.com/fotoforma/backoffice/internal/workflow"
	"github.com/fotoforma/backoffice/pkg/utils"
	"go.uber.org/zap"
)

// BriefingService manages briefing groups, the photo-session slots that
// students of a turma are divided into.
type BriefingService struct {
	briefings *repository.BriefingRepository
	turmas    *repository.TurmaRepository
	logger    *zap.Logger
}

// NewBriefingService creates a new briefing service.
func NewBriefingService(briefings *repository.BriefingRepository, turmas *repository.TurmaRepository, logger *zap.Logger) *BriefingService {
	return &BriefingService{briefings: briefings, turmas: turmas, logger: logger}
}

// Create registers a new briefing group.
func (s *BriefingService) Create(group *models.BriefingGroup) (*models.BriefingGroup, error) {
	if err := s.validate(group); err != nil {
		return nil, err
	}
	if err := s.briefings.Create(group); err != nil {
		return nil, err
	}
	s.logger.Info("Briefing group created",
		zap.Int64("id", group.ID),
		zap.Int64("turma_id", group.TurmaID),
		zap.Int("students", len(group.Students)))
	return group, nil
}

// Update edits a briefing group and its student list.
func (s *BriefingService) Update(group *models.BriefingGroup) (*models.BriefingGroup, error) {
	if err := s.validate(group); err != nil {
		return nil, err
	}
	if err := s.briefings.Update(group); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: briefing group %d", workflow.ErrNotFound, group.ID)
		}
		return nil, err
	}
	return group, nil
}

// Delete removes a briefing group.
func (s *BriefingService) Delete(id int64) error {
	err := s.briefings.Delete(id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: briefing group %d", workflow.ErrNotFound, id)
	}
	return err
}

// ListByTurma retrieves the briefing groups of a turma.
func (s *BriefingService) ListByTurma(turmaID int64) ([]*models.BriefingGroup, error) {
	return s.briefings.ListByTurma(turmaID)
}

func (s *BriefingService) validate(group *models.BriefingGroup) error {
	if strings.TrimSpace(group.Name) == "" {
		return fmt.Errorf("%w: briefing group name is required", workflow.ErrValidation)
	}
	if group.SessionDate != "" {
		if err := utils.ValidateCalendarDate(group.SessionDate); err != nil {
			return fmt.Errorf("%w: %v", workflow.ErrValidation, err)
		}
	}

	turma, err := s.turmas.GetByID(group.TurmaID)
	if err != nil {
		return err
	}
	if turma == nil || turma.Excluded {
		return fmt.Errorf("%w: turma %d does not exist", workflow.ErrValidation, group.TurmaID)
	}
	return nil
}
