package repository

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fotoforma/backoffice/internal/models"
	"github.com/fotoforma/backoffice/pkg/database"
)

func newTestDB(t *testing.T) *database.DB {
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

	require.NoError(t, database.NewMigrator(db, logger).RunMigrations("../../migrations"))
	return db
}

func insertExpense(t *testing.T, db *database.DB, repo *ExpenseRepository, expense *models.Expense) {
	t.Helper()
	if expense.Status == "" {
		expense.Status = models.StatusAwaitingManagerApproval
	}
	err := db.WithTransaction(func(tx *sql.Tx) error {
		numero, err := repo.NextNumeroCI(tx)
		if err != nil {
			return err
		}
		expense.NumeroCI = numero
		if err := repo.Insert(tx, expense); err != nil {
			return err
		}
		return repo.ReplaceTurmaLinks(tx, expense.ID, expense.TurmaIDs)
	})
	require.NoError(t, err)
}

func TestExpenseRepository_NumeroCISequence(t *testing.T) {
	db := newTestDB(t)
	repo := NewExpenseRepository(db.DB, zap.NewNop())

	var first, second int64
	err := db.WithTransaction(func(tx *sql.Tx) error {
		var err error
		first, err = repo.NextNumeroCI(tx)
		return err
	})
	require.NoError(t, err)
	err = db.WithTransaction(func(tx *sql.Tx) error {
		var err error
		second, err = repo.NextNumeroCI(tx)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
}

func TestExpenseRepository_GetByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewExpenseRepository(db.DB, zap.NewNop())

	expense := &models.Expense{
		Kind:          models.KindAdministrative,
		Department:    models.DepartmentStudio,
		AmountCents:   12345,
		PaymentMethod: "TRANSFER",
		Description:   "studio rent",
	}
	insertExpense(t, db, repo, expense)

	got, err := repo.GetByID(expense.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, expense.NumeroCI, got.NumeroCI)
	assert.Equal(t, int64(12345), got.AmountCents)
	assert.Equal(t, models.StatusAwaitingManagerApproval, got.Status)

	missing, err := repo.GetByID(9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestExpenseRepository_UpdateStatusGuarded(t *testing.T) {
	db := newTestDB(t)
	repo := NewExpenseRepository(db.DB, zap.NewNop())

	expense := &models.Expense{
		Kind:          models.KindOperational,
		Department:    models.DepartmentPhotography,
		AmountCents:   100,
		PaymentMethod: "PIX",
		Description:   "memory cards",
	}
	insertExpense(t, db, repo, expense)

	// Guard passes when the expected status matches.
	err := db.WithTransaction(func(tx *sql.Tx) error {
		ok, err := repo.UpdateStatusGuarded(tx, expense.ID,
			models.StatusAwaitingManagerApproval, models.StatusAwaitingGeneralManagerApproval)
		require.NoError(t, err)
		assert.True(t, ok)
		return nil
	})
	require.NoError(t, err)

	// A stale expectation loses.
	err = db.WithTransaction(func(tx *sql.Tx) error {
		ok, err := repo.UpdateStatusGuarded(tx, expense.ID,
			models.StatusAwaitingManagerApproval, models.StatusApprovedGeneralManager)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)

	got, err := repo.GetByID(expense.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingGeneralManagerApproval, got.Status)
}

func TestExpenseRepository_SoftDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewExpenseRepository(db.DB, zap.NewNop())

	expense := &models.Expense{
		Kind:          models.KindOperational,
		Department:    models.DepartmentGowns,
		AmountCents:   200,
		PaymentMethod: "CASH",
		Description:   "gown cleaning",
	}
	insertExpense(t, db, repo, expense)

	err := db.WithTransaction(func(tx *sql.Tx) error {
		return repo.SetExcluded(tx, expense.ID, true)
	})
	require.NoError(t, err)

	// Hidden from default listings but still retrievable by ID.
	listed, total, err := repo.List(models.ExpenseFilter{})
	require.NoError(t, err)
	assert.Empty(t, listed)
	assert.Zero(t, total)

	listed, total, err = repo.List(models.ExpenseFilter{IncludeExcluded: true})
	require.NoError(t, err)
	assert.Len(t, listed, 1)
	assert.Equal(t, 1, total)

	got, err := repo.GetByID(expense.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Excluded)
}

func TestExpenseRepository_ListFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewExpenseRepository(db.DB, zap.NewNop())
	turmaRepo := NewTurmaRepository(db.DB, zap.NewNop())

	turma := &models.Turma{Name: "Medicina 2026", GraduationYear: 2026, Active: true}
	require.NoError(t, turmaRepo.Create(turma))

	a := &models.Expense{
		Kind:          models.KindOperational,
		Department:    models.DepartmentPhotography,
		AmountCents:   1000,
		PaymentMethod: "PIX",
		Description:   "drone batteries",
		DueDate:       "2026-02-01",
		TurmaIDs:      []int64{turma.ID},
	}
	b := &models.Expense{
		Kind:          models.KindAdministrative,
		Department:    models.DepartmentStudio,
		AmountCents:   2000,
		PaymentMethod: "TRANSFER",
		Description:   "accounting fees",
		DueDate:       "2026-03-01",
	}
	insertExpense(t, db, repo, a)
	insertExpense(t, db, repo, b)

	byDept, total, err := repo.List(models.ExpenseFilter{Department: models.DepartmentPhotography})
	require.NoError(t, err)
	require.Len(t, byDept, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, a.ID, byDept[0].ID)

	byTurma, _, err := repo.List(models.ExpenseFilter{TurmaID: turma.ID})
	require.NoError(t, err)
	require.Len(t, byTurma, 1)
	assert.Equal(t, a.ID, byTurma[0].ID)
	assert.Equal(t, []int64{turma.ID}, byTurma[0].TurmaIDs)

	byDue, _, err := repo.List(models.ExpenseFilter{DueFrom: "2026-02-15"})
	require.NoError(t, err)
	require.Len(t, byDue, 1)
	assert.Equal(t, b.ID, byDue[0].ID)

	// Search matches description, turma name and the document number.
	bySearch, _, err := repo.List(models.ExpenseFilter{Search: "drone"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, a.ID, bySearch[0].ID)

	byTurmaName, _, err := repo.List(models.ExpenseFilter{Search: "Medicina"})
	require.NoError(t, err)
	require.Len(t, byTurmaName, 1)
	assert.Equal(t, a.ID, byTurmaName[0].ID)
}

func TestHistoryRepository_OrderedTrail(t *testing.T) {
	db := newTestDB(t)
	expenseRepo := NewExpenseRepository(db.DB, zap.NewNop())
	historyRepo := NewHistoryRepository(db.DB, zap.NewNop())

	expense := &models.Expense{
		Kind:          models.KindOperational,
		Department:    models.DepartmentStudio,
		AmountCents:   100,
		PaymentMethod: "PIX",
		Description:   "props",
	}
	insertExpense(t, db, expenseRepo, expense)

	actions := []string{models.ActionCreation, models.ActionManagerApproval, models.ActionGeneralManagerApproval}
	for _, action := range actions {
		err := db.WithTransaction(func(tx *sql.Tx) error {
			return historyRepo.Create(tx, &models.HistoryEntry{
				ExpenseID: expense.ID,
				Action:    action,
				ActorID:   "u1",
				NewStatus: models.StatusAwaitingManagerApproval,
			})
		})
		require.NoError(t, err)
	}

	entries, err := historyRepo.ListByExpense(expense.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, action := range actions {
		assert.Equal(t, action, entries[i].Action)
	}
}
