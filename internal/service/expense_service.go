package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fotoforma/backoffice/internal/models"
	"github.com/fotoforma/backoffice/internal/repository"
	"github.com/fotoforma/backoffice/internal/storage"
	"github.com/fotoforma/backoffice/internal/workflow"
	"github.com/fotoforma/backoffice/pkg/database"
	"github.com/fotoforma/backoffice/pkg/utils"
	"go.uber.org/zap"
)

// ExpenseService manages expense records outside the approval workflow:
// creation with sequential document numbering, edits, soft deletion and
// queries. Status changes go through the workflow engine, never through here.
type ExpenseService struct {
	db          *database.DB
	expenses    *repository.ExpenseRepository
	history     *repository.HistoryRepository
	attachments *repository.AttachmentRepository
	turmas      *repository.TurmaRepository
	vendors     *repository.VendorRepository
	files       storage.FileStorage
	folders     *storage.FolderManager
	logger      *zap.Logger
}

// NewExpenseService creates a new expense service.
func NewExpenseService(
	db *database.DB,
	expenses *repository.ExpenseRepository,
	history *repository.HistoryRepository,
	attachments *repository.AttachmentRepository,
	turmas *repository.TurmaRepository,
	vendors *repository.VendorRepository,
	files storage.FileStorage,
	folders *storage.FolderManager,
	logger *zap.Logger,
) *ExpenseService {
	return &ExpenseService{
		db:          db,
		expenses:    expenses,
		history:     history,
		attachments: attachments,
		turmas:      turmas,
		vendors:     vendors,
		files:       files,
		folders:     folders,
		logger:      logger,
	}
}

// Create registers a new expense. The sequential document number, the expense
// row, its turma links and the creation audit entry commit as one transaction,
// so a crash can never leave a numbered expense without history or a gap
// caused by a half-created record.
func (s *ExpenseService) Create(expense *models.Expense, actor models.ActingUser) (*models.Expense, error) {
	if err := s.validate(expense); err != nil {
		return nil, err
	}
	if !models.ValidRole(actor.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", workflow.ErrValidation, actor.Role)
	}

	expense.Status = models.StatusAwaitingManagerApproval
	expense.Description = utils.SanitizeString(expense.Description)

	err := s.db.WithTransaction(func(tx *sql.Tx) error {
		numero, err := s.expenses.NextNumeroCI(tx)
		if err != nil {
			return err
		}
		expense.NumeroCI = numero

		if err := s.expenses.Insert(tx, expense); err != nil {
			return err
		}
		if err := s.expenses.ReplaceTurmaLinks(tx, expense.ID, expense.TurmaIDs); err != nil {
			return err
		}
		if err := s.expenses.ReplaceRealizationDates(tx, expense.ID, expense.RealizationDates); err != nil {
			return err
		}
		return s.history.Create(tx, &models.HistoryEntry{
			ExpenseID: expense.ID,
			Action:    models.ActionCreation,
			ActorID:   actor.ID,
			ActorName: actor.Name,
			NewStatus: models.StatusAwaitingManagerApproval,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Expense created",
		zap.Int64("id", expense.ID),
		zap.Int64("numero_ci", expense.NumeroCI),
		zap.Int64("amount_cents", expense.AmountCents),
		zap.String("actor", actor.ID))
	return expense, nil
}

// Update edits an expense's descriptive and financial fields and records an
// edit entry in the audit trail. The document number and workflow status are
// immutable through this path.
func (s *ExpenseService) Update(expense *models.Expense, actor models.ActingUser) (*models.Expense, error) {
	if err := s.validate(expense); err != nil {
		return nil, err
	}

	current, err := s.expenses.GetByID(expense.ID)
	if err != nil {
		return nil, err
	}
	if current == nil || current.Excluded {
		return nil, fmt.Errorf("%w: expense %d", workflow.ErrNotFound, expense.ID)
	}

	expense.Description = utils.SanitizeString(expense.Description)

	err = s.db.WithTransaction(func(tx *sql.Tx) error {
		if err := s.expenses.UpdateFields(tx, expense); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: expense %d", workflow.ErrNotFound, expense.ID)
			}
			return err
		}
		if err := s.expenses.ReplaceTurmaLinks(tx, expense.ID, expense.TurmaIDs); err != nil {
			return err
		}
		if err := s.expenses.ReplaceRealizationDates(tx, expense.ID, expense.RealizationDates); err != nil {
			return err
		}
		return s.history.Create(tx, &models.HistoryEntry{
			ExpenseID:      expense.ID,
			Action:         models.ActionEdit,
			ActorID:        actor.ID,
			ActorName:      actor.Name,
			PreviousStatus: current.Status,
			NewStatus:      current.Status,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(expense.ID)
}

// Delete soft-deletes an expense. The row, its history and its attachments
// stay in the database; the expense just stops appearing in listings.
func (s *ExpenseService) Delete(id int64) error {
	err := s.db.WithTransaction(func(tx *sql.Tx) error {
		return s.expenses.SetExcluded(tx, id, true)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: expense %d", workflow.ErrNotFound, id)
	}
	if err != nil {
		return err
	}
	s.logger.Info("Expense soft-deleted", zap.Int64("id", id))
	return nil
}

// Get retrieves an expense with its attachments and full history.
func (s *ExpenseService) Get(id int64) (*models.Expense, error) {
	expense, err := s.expenses.GetByID(id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, fmt.Errorf("%w: expense %d", workflow.ErrNotFound, id)
	}

	attachments, err := s.attachments.ListByExpense(id)
	if err != nil {
		return nil, err
	}
	history, err := s.history.ListByExpense(id)
	if err != nil {
		return nil, err
	}
	expense.Attachments = attachments
	expense.History = history
	return expense, nil
}

// List retrieves expenses matching the filter plus the total match count.
func (s *ExpenseService) List(filter models.ExpenseFilter) ([]*models.Expense, int, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.expenses.List(filter)
}

// ListForExport retrieves every expense matching the filter, without the
// interactive page-size clamp. Reports must carry the full result set.
func (s *ExpenseService) ListForExport(filter models.ExpenseFilter) ([]*models.Expense, error) {
	filter.Limit = 0
	filter.Offset = 0
	expenses, _, err := s.expenses.List(filter)
	return expenses, err
}

// AddAttachment stores a supporting document or fiscal proof for an expense.
// Settlement proofs go through the liquidation processor instead.
func (s *ExpenseService) AddAttachment(id int64, purpose string, file *models.ProofFile) (*models.Attachment, error) {
	if purpose == models.PurposeSettlementProof {
		return nil, fmt.Errorf("%w: settlement proofs are attached through liquidation", workflow.ErrValidation)
	}
	if !models.ValidPurpose(purpose) {
		return nil, fmt.Errorf("%w: unknown attachment purpose %q", workflow.ErrValidation, purpose)
	}
	if file.FileName == "" || len(file.Content) == 0 {
		return nil, fmt.Errorf("%w: empty attachment", workflow.ErrValidation)
	}

	expense, err := s.expenses.GetByID(id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, fmt.Errorf("%w: expense %d", workflow.ErrNotFound, id)
	}

	if _, err := s.folders.CreateExpenseFolder(expense.NumeroCI); err != nil {
		return nil, fmt.Errorf("%w: %v", workflow.ErrAttachment, err)
	}
	name := s.folders.SanitizeFileName(file.FileName)
	ref, path, err := s.files.Save(s.folders.ExpenseFolderName(expense.NumeroCI), name, file.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", workflow.ErrAttachment, err)
	}

	attachment := &models.Attachment{
		ExpenseID:   id,
		Purpose:     purpose,
		FileName:    name,
		ContentType: file.ContentType,
		StorageRef:  ref,
		FilePath:    path,
		SizeBytes:   int64(len(file.Content)),
	}
	if err := s.attachments.Create(nil, attachment); err != nil {
		if rmErr := s.files.Remove(path); rmErr != nil {
			s.logger.Warn("Failed to remove orphaned attachment file",
				zap.String("path", path), zap.Error(rmErr))
		}
		return nil, fmt.Errorf("%w: %v", workflow.ErrAttachment, err)
	}
	return attachment, nil
}

func (s *ExpenseService) validate(expense *models.Expense) error {
	if !models.ValidKind(expense.Kind) {
		return fmt.Errorf("%w: unknown expense kind %q", workflow.ErrValidation, expense.Kind)
	}
	if !models.ValidDepartment(expense.Department) {
		return fmt.Errorf("%w: unknown department %q", workflow.ErrValidation, expense.Department)
	}
	if err := utils.ValidateAmountCents(expense.AmountCents); err != nil {
		return fmt.Errorf("%w: %v", workflow.ErrValidation, err)
	}
	if strings.TrimSpace(expense.Description) == "" {
		return fmt.Errorf("%w: description is required", workflow.ErrValidation)
	}
	if strings.TrimSpace(expense.PaymentMethod) == "" {
		return fmt.Errorf("%w: payment method is required", workflow.ErrValidation)
	}
	if expense.DueDate != "" {
		if err := utils.ValidateCalendarDate(expense.DueDate); err != nil {
			return fmt.Errorf("%w: %v", workflow.ErrValidation, err)
		}
	}
	if expense.EventType != "" && !models.ValidEventType(expense.EventType) {
		return fmt.Errorf("%w: unknown event type %q", workflow.ErrValidation, expense.EventType)
	}
	for _, date := range expense.RealizationDates {
		if err := utils.ValidateCalendarDate(date); err != nil {
			return fmt.Errorf("%w: %v", workflow.ErrValidation, err)
		}
	}

	if expense.VendorID != nil {
		vendor, err := s.vendors.GetByID(*expense.VendorID)
		if err != nil {
			return err
		}
		if vendor == nil {
			return fmt.Errorf("%w: vendor %d does not exist", workflow.ErrValidation, *expense.VendorID)
		}
	}
	for _, turmaID := range expense.TurmaIDs {
		turma, err := s.turmas.GetByID(turmaID)
		if err != nil {
			return err
		}
		if turma == nil || turma.Excluded {
			return fmt.Errorf("%w: turma %d does not exist", workflow.ErrValidation, turmaID)
		}
	}
	return nil
}
