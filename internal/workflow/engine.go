package workflow

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fotoforma/backoffice/internal/models"
	"github.com/fotoforma/backoffice/internal/repository"
	"github.com/fotoforma/backoffice/pkg/database"
	"github.com/fotoforma/backoffice/pkg/utils"
	"go.uber.org/zap"
)

// Notifier receives workflow events after they commit. Implementations must
// not block: notification failure never fails the triggering operation.
type Notifier interface {
	NotifyTransition(expense *models.Expense, entry *models.HistoryEntry)
}

// Engine enforces the expense approval state graph. Every transition persists
// the new status and exactly one audit entry atomically; concurrent approvals
// of the same expense are serialized so only one wins.
type Engine struct {
	db          *database.DB
	expenses    *repository.ExpenseRepository
	history     *repository.HistoryRepository
	attachments *repository.AttachmentRepository
	notifier    Notifier
	logger      *zap.Logger
}

// NewEngine creates a new workflow engine. notifier may be nil.
func NewEngine(
	db *database.DB,
	expenses *repository.ExpenseRepository,
	history *repository.HistoryRepository,
	attachments *repository.AttachmentRepository,
	notifier Notifier,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		db:          db,
		expenses:    expenses,
		history:     history,
		attachments: attachments,
		notifier:    notifier,
		logger:      logger,
	}
}

// ApproveAsManager moves an expense from the initial state to awaiting
// general-manager approval.
func (e *Engine) ApproveAsManager(ctx context.Context, expenseID int64, actor models.ActingUser) (*models.Expense, error) {
	return e.transition(ctx, expenseID, actor, TriggerApproveManager, "", nil)
}

// ApproveAsGeneralManager approves an expense at the general-manager stage.
// It is also legal directly from the initial state, skipping the manager step.
func (e *Engine) ApproveAsGeneralManager(ctx context.Context, expenseID int64, actor models.ActingUser) (*models.Expense, error) {
	return e.transition(ctx, expenseID, actor, TriggerApproveGeneralManager, "", nil)
}

// Reject records a rejection at the current approval stage. The justification
// is mandatory; the expense returns to the initial state and remains
// actionable for re-approval.
func (e *Engine) Reject(ctx context.Context, expenseID int64, actor models.ActingUser, justification string) (*models.Expense, error) {
	if strings.TrimSpace(justification) == "" {
		return nil, fmt.Errorf("%w: rejection requires a justification", ErrValidation)
	}
	return e.transition(ctx, expenseID, actor, TriggerReject, justification, nil)
}

// Settle liquidates an approved expense: terminal status, settlement date,
// and the proof attachment rows commit as one unit.
func (e *Engine) Settle(ctx context.Context, expenseID int64, actor models.ActingUser, settlementDate string, proofs []*models.Attachment) (*models.Expense, error) {
	if err := utils.ValidateCalendarDate(settlementDate); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	return e.transition(ctx, expenseID, actor, TriggerSettle, "",
		func(tx *sql.Tx, expense *models.Expense) error {
			if err := e.expenses.SetSettlementDate(tx, expense.ID, settlementDate); err != nil {
				return err
			}
			for _, proof := range proofs {
				proof.ExpenseID = expense.ID
				proof.Purpose = models.PurposeSettlementProof
				if err := e.attachments.Create(tx, proof); err != nil {
					return fmt.Errorf("%w: %v", ErrAttachment, err)
				}
			}
			expense.SettlementDate = settlementDate
			return nil
		})
}

// AddSettlementProof appends settlement-proof attachments to an already
// settled expense. This is an amendment, not a transition: status is
// untouched and no workflow history entry is written.
func (e *Engine) AddSettlementProof(ctx context.Context, expenseID int64, proofs []*models.Attachment) (*models.Expense, error) {
	expense, err := e.expenses.GetByID(expenseID)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, fmt.Errorf("%w: expense %d", ErrNotFound, expenseID)
	}
	if expense.Status != models.StatusSettled {
		return nil, fmt.Errorf("%w: cannot add settlement proof in status %s", ErrInvalidTransition, expense.Status)
	}

	err = e.db.WithTransaction(func(tx *sql.Tx) error {
		for _, proof := range proofs {
			proof.ExpenseID = expense.ID
			proof.Purpose = models.PurposeSettlementProof
			if err := e.attachments.Create(tx, proof); err != nil {
				return fmt.Errorf("%w: %v", ErrAttachment, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Settlement proofs amended",
		zap.Int64("expense_id", expense.ID),
		zap.Int("count", len(proofs)))
	return expense, nil
}

// History returns the full audit trail of an expense.
func (e *Engine) History(expenseID int64) ([]*models.HistoryEntry, error) {
	return e.history.ListByExpense(expenseID)
}

func (e *Engine) transition(
	ctx context.Context,
	expenseID int64,
	actor models.ActingUser,
	trigger Trigger,
	justification string,
	extra func(tx *sql.Tx, expense *models.Expense) error,
) (*models.Expense, error) {
	if !models.ValidRole(actor.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, actor.Role)
	}

	expense, err := e.expenses.GetByID(expenseID)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, fmt.Errorf("%w: expense %d", ErrNotFound, expenseID)
	}

	previousStatus := expense.Status
	machine := newMachine(State(previousStatus))
	if err := machine.Fire(WithActingUser(ctx, actor), trigger); err != nil {
		return nil, err
	}
	newStatus := machine.State().String()

	entry := &models.HistoryEntry{
		ExpenseID:      expense.ID,
		Action:         actionFor(trigger, State(previousStatus)),
		ActorID:        actor.ID,
		ActorName:      actor.Name,
		Justification:  justification,
		PreviousStatus: previousStatus,
		NewStatus:      newStatus,
	}

	err = e.db.WithTransaction(func(tx *sql.Tx) error {
		ok, err := e.expenses.UpdateStatusGuarded(tx, expense.ID, previousStatus, newStatus)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: expense %d was modified concurrently", ErrConflict, expense.ID)
		}
		if err := e.history.Create(tx, entry); err != nil {
			return err
		}
		if extra != nil {
			return extra(tx, expense)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	expense.Status = newStatus
	e.logger.Info("Workflow transition applied",
		zap.Int64("expense_id", expense.ID),
		zap.String("trigger", trigger.String()),
		zap.String("from", previousStatus),
		zap.String("to", newStatus),
		zap.String("actor", actor.ID))

	if e.notifier != nil {
		e.notifier.NotifyTransition(expense, entry)
	}
	return expense, nil
}

func actionFor(trigger Trigger, previous State) string {
	switch trigger {
	case TriggerApproveManager:
		return models.ActionManagerApproval
	case TriggerApproveGeneralManager:
		return models.ActionGeneralManagerApproval
	case TriggerSettle:
		return models.ActionSettlement
	case TriggerReject:
		if previous == StateAwaitingGeneralManagerApproval {
			return models.ActionGeneralManagerRejection
		}
		return models.ActionManagerRejection
	}
	return ""
}
