package workflow

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fotoforma/backoffice/internal/models"
	"github.com/fotoforma/backoffice/internal/repository"
	"github.com/fotoforma/backoffice/pkg/database"
)

var (
	testManager = models.ActingUser{ID: "mgr-1", Name: "Ana", Role: models.RoleManager}
	testGM      = models.ActingUser{ID: "gm-1", Name: "Bruno", Role: models.RoleGeneralManager}
	testFinance = models.ActingUser{ID: "fin-1", Name: "Carla", Role: models.RoleFinance}
)

type engineFixture struct {
	db          *database.DB
	engine      *Engine
	expenses    *repository.ExpenseRepository
	history     *repository.HistoryRepository
	attachments *repository.AttachmentRepository
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.New(database.Config{
		Path:            filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	migrator := database.NewMigrator(db, logger)
	require.NoError(t, migrator.RunMigrations("../../migrations"))

	expenses := repository.NewExpenseRepository(db.DB, logger)
	history := repository.NewHistoryRepository(db.DB, logger)
	attachments := repository.NewAttachmentRepository(db.DB, logger)
	engine := NewEngine(db, expenses, history, attachments, nil, logger)

	return &engineFixture{
		db:          db,
		engine:      engine,
		expenses:    expenses,
		history:     history,
		attachments: attachments,
	}
}

// createExpense registers an expense the way the record store does: document
// number, row and creation history entry in one transaction.
func (f *engineFixture) createExpense(t *testing.T, amountCents int64) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		Kind:          models.KindOperational,
		Department:    models.DepartmentPhotography,
		AmountCents:   amountCents,
		PaymentMethod: "PIX",
		Description:   "lighting rig rental",
		Status:        models.StatusAwaitingManagerApproval,
	}
	err := f.db.WithTransaction(func(tx *sql.Tx) error {
		numero, err := f.expenses.NextNumeroCI(tx)
		if err != nil {
			return err
		}
		expense.NumeroCI = numero
		if err := f.expenses.Insert(tx, expense); err != nil {
			return err
		}
		return f.history.Create(tx, &models.HistoryEntry{
			ExpenseID: expense.ID,
			Action:    models.ActionCreation,
			ActorID:   testManager.ID,
			ActorName: testManager.Name,
			NewStatus: models.StatusAwaitingManagerApproval,
		})
	})
	require.NoError(t, err)
	return expense
}

func proofFixture(name string) *models.Attachment {
	return &models.Attachment{
		FileName:    name,
		ContentType: "application/pdf",
		StorageRef:  "ref-" + name,
		FilePath:    "/tmp/" + name,
		SizeBytes:   42,
	}
}

func TestEngine_HappyPath(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	expense := f.createExpense(t, 10000)
	entries, err := f.engine.History(expense.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionCreation, entries[0].Action)

	expense, err = f.engine.ApproveAsManager(ctx, expense.ID, testManager)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingGeneralManagerApproval, expense.Status)

	expense, err = f.engine.ApproveAsGeneralManager(ctx, expense.ID, testGM)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApprovedGeneralManager, expense.Status)

	expense, err = f.engine.Settle(ctx, expense.ID, testFinance, "2026-01-15",
		[]*models.Attachment{proofFixture("receipt.pdf")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSettled, expense.Status)

	stored, err := f.expenses.GetByID(expense.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSettled, stored.Status)
	assert.Equal(t, "2026-01-15", stored.SettlementDate)

	entries, err = f.engine.History(expense.ID)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, models.ActionCreation, entries[0].Action)
	assert.Equal(t, models.ActionManagerApproval, entries[1].Action)
	assert.Equal(t, models.ActionGeneralManagerApproval, entries[2].Action)
	assert.Equal(t, models.ActionSettlement, entries[3].Action)

	attachments, err := f.attachments.ListByExpense(expense.ID)
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	assert.Equal(t, models.PurposeSettlementProof, attachments[0].Purpose)
}

func TestEngine_DirectSettleFails(t *testing.T) {
	f := newEngineFixture(t)

	expense := f.createExpense(t, 5000)
	_, err := f.engine.Settle(context.Background(), expense.ID, testFinance, "2026-01-15",
		[]*models.Attachment{proofFixture("receipt.pdf")})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, err := f.expenses.GetByID(expense.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingManagerApproval, stored.Status)
	assert.Empty(t, stored.SettlementDate)

	entries, err := f.engine.History(expense.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionCreation, entries[0].Action)
}

func TestEngine_RejectRequiresJustification(t *testing.T) {
	f := newEngineFixture(t)
	expense := f.createExpense(t, 5000)

	for _, justification := range []string{"", "   "} {
		_, err := f.engine.Reject(context.Background(), expense.ID, testManager, justification)
		assert.ErrorIs(t, err, ErrValidation)
	}

	stored, err := f.expenses.GetByID(expense.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingManagerApproval, stored.Status)

	entries, err := f.engine.History(expense.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEngine_RejectReturnsExpenseToInitialState(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	expense := f.createExpense(t, 5000)

	_, err := f.engine.ApproveAsManager(ctx, expense.ID, testManager)
	require.NoError(t, err)

	expense, err = f.engine.Reject(ctx, expense.ID, testGM, "missing fiscal proof")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingManagerApproval, expense.Status)

	entries, err := f.engine.History(expense.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	last := entries[2]
	assert.Equal(t, models.ActionGeneralManagerRejection, last.Action)
	assert.Equal(t, "missing fiscal proof", last.Justification)
	assert.Equal(t, models.StatusAwaitingGeneralManagerApproval, last.PreviousStatus)
	assert.Equal(t, models.StatusAwaitingManagerApproval, last.NewStatus)

	// Still actionable after rejection.
	_, err = f.engine.ApproveAsManager(ctx, expense.ID, testManager)
	require.NoError(t, err)
}

func TestEngine_GeneralManagerMaySkipManagerStage(t *testing.T) {
	f := newEngineFixture(t)
	expense := f.createExpense(t, 5000)

	expense, err := f.engine.ApproveAsGeneralManager(context.Background(), expense.ID, testGM)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApprovedGeneralManager, expense.Status)

	entries, err := f.engine.History(expense.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.ActionGeneralManagerApproval, entries[1].Action)
	assert.Equal(t, models.StatusAwaitingManagerApproval, entries[1].PreviousStatus)
}

func TestEngine_RoleGuards(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	expense := f.createExpense(t, 5000)

	// Finance cannot approve.
	_, err := f.engine.ApproveAsManager(ctx, expense.ID, testFinance)
	assert.ErrorIs(t, err, ErrValidation)

	// Manager cannot perform the general-manager step.
	_, err = f.engine.ApproveAsGeneralManager(ctx, expense.ID, testManager)
	assert.ErrorIs(t, err, ErrValidation)

	// Unknown role is rejected before any state inspection.
	_, err = f.engine.ApproveAsManager(ctx, expense.ID, models.ActingUser{ID: "x", Role: "INTERN"})
	assert.ErrorIs(t, err, ErrValidation)

	entries, err := f.engine.History(expense.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEngine_NotFound(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.ApproveAsManager(context.Background(), 9999, testManager)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEngine_AddSettlementProof(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	expense := f.createExpense(t, 5000)

	// Not legal before settlement.
	_, err := f.engine.AddSettlementProof(ctx, expense.ID, []*models.Attachment{proofFixture("early.pdf")})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.engine.ApproveAsGeneralManager(ctx, expense.ID, testGM)
	require.NoError(t, err)
	_, err = f.engine.Settle(ctx, expense.ID, testFinance, "2026-01-15",
		[]*models.Attachment{proofFixture("receipt.pdf")})
	require.NoError(t, err)

	expense, err = f.engine.AddSettlementProof(ctx, expense.ID, []*models.Attachment{proofFixture("bank-slip.pdf")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSettled, expense.Status)

	// Prior proofs are retained and no history entry is added.
	attachments, err := f.attachments.ListByExpense(expense.ID)
	require.NoError(t, err)
	assert.Len(t, attachments, 2)

	entries, err := f.engine.History(expense.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestEngine_ConcurrentCreatesYieldDistinctNumeroCI(t *testing.T) {
	f := newEngineFixture(t)
	const n = 10

	var wg sync.WaitGroup
	results := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			expense := &models.Expense{
				Kind:          models.KindOperational,
				Department:    models.DepartmentStudio,
				AmountCents:   int64(100 * (i + 1)),
				PaymentMethod: "PIX",
				Description:   fmt.Sprintf("concurrent %d", i),
				Status:        models.StatusAwaitingManagerApproval,
			}
			err := f.db.WithTransaction(func(tx *sql.Tx) error {
				numero, err := f.expenses.NextNumeroCI(tx)
				if err != nil {
					return err
				}
				expense.NumeroCI = numero
				return f.expenses.Insert(tx, expense)
			})
			if err != nil {
				t.Errorf("concurrent create %d failed: %v", i, err)
				return
			}
			results <- expense.NumeroCI
		}(i)
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool)
	for numero := range results {
		assert.False(t, seen[numero], "numero CI %d allocated twice", numero)
		seen[numero] = true
	}
	assert.Len(t, seen, n)
}
