package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fotoforma/backoffice/internal/models"
	"github.com/fotoforma/backoffice/internal/repository"
	"github.com/fotoforma/backoffice/internal/storage"
	"github.com/fotoforma/backoffice/internal/workflow"
	"github.com/fotoforma/backoffice/pkg/database"
)

var testActor = models.ActingUser{ID: "mgr-1", Name: "Ana", Role: models.RoleManager}

type serviceFixture struct {
	db       *database.DB
	service  *ExpenseService
	turmas   *TurmaService
	expenses *repository.ExpenseRepository
}

func newServiceFixture(t *testing.T) *serviceFixture {
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

	expenseRepo := repository.NewExpenseRepository(db.DB, logger)
	historyRepo := repository.NewHistoryRepository(db.DB, logger)
	attachmentRepo := repository.NewAttachmentRepository(db.DB, logger)
	turmaRepo := repository.NewTurmaRepository(db.DB, logger)
	vendorRepo := repository.NewVendorRepository(db.DB, logger)

	baseDir := t.TempDir()
	files := storage.NewLocalFileStorage(baseDir, logger)
	folders := storage.NewFolderManager(baseDir, logger)

	svc := NewExpenseService(db, expenseRepo, historyRepo, attachmentRepo,
		turmaRepo, vendorRepo, files, folders, logger)

	return &serviceFixture{
		db:       db,
		service:  svc,
		turmas:   NewTurmaService(turmaRepo, logger),
		expenses: expenseRepo,
	}
}

func validExpense() *models.Expense {
	return &models.Expense{
		Kind:          models.KindOperational,
		Department:    models.DepartmentPhotography,
		AmountCents:   10000,
		PaymentMethod: "PIX",
		Description:   "album printing",
	}
}

func TestExpenseService_CreateAllocatesNumeroAndLogsCreation(t *testing.T) {
	f := newServiceFixture(t)

	first, err := f.service.Create(validExpense(), testActor)
	require.NoError(t, err)
	second, err := f.service.Create(validExpense(), testActor)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.NumeroCI)
	assert.Equal(t, int64(2), second.NumeroCI)
	assert.Equal(t, models.StatusAwaitingManagerApproval, first.Status)

	got, err := f.service.Get(first.ID)
	require.NoError(t, err)
	require.Len(t, got.History, 1)
	assert.Equal(t, models.ActionCreation, got.History[0].Action)
	assert.Equal(t, testActor.ID, got.History[0].ActorID)
	assert.Equal(t, models.StatusAwaitingManagerApproval, got.History[0].NewStatus)
}

func TestExpenseService_CreateValidation(t *testing.T) {
	f := newServiceFixture(t)

	tests := []struct {
		name   string
		mutate func(*models.Expense)
	}{
		{"unknown kind", func(e *models.Expense) { e.Kind = "PERSONAL" }},
		{"unknown department", func(e *models.Expense) { e.Department = "CATERING" }},
		{"negative amount", func(e *models.Expense) { e.AmountCents = -1 }},
		{"blank description", func(e *models.Expense) { e.Description = "  " }},
		{"blank payment method", func(e *models.Expense) { e.PaymentMethod = "" }},
		{"malformed due date", func(e *models.Expense) { e.DueDate = "15/01/2026" }},
		{"unknown event type", func(e *models.Expense) { e.EventType = "FESTA" }},
		{"missing vendor", func(e *models.Expense) { id := int64(99); e.VendorID = &id }},
		{"missing turma", func(e *models.Expense) { e.TurmaIDs = []int64{99} }},
		{"malformed realization date", func(e *models.Expense) { e.RealizationDates = []string{"soon"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expense := validExpense()
			tt.mutate(expense)
			_, err := f.service.Create(expense, testActor)
			assert.ErrorIs(t, err, workflow.ErrValidation)
		})
	}
}

func TestExpenseService_UpdateLogsEdit(t *testing.T) {
	f := newServiceFixture(t)

	expense, err := f.service.Create(validExpense(), testActor)
	require.NoError(t, err)

	expense.Description = "album printing, second batch"
	expense.AmountCents = 15000
	updated, err := f.service.Update(expense, testActor)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), updated.AmountCents)
	assert.Equal(t, expense.NumeroCI, updated.NumeroCI)

	require.Len(t, updated.History, 2)
	assert.Equal(t, models.ActionEdit, updated.History[1].Action)
	assert.Equal(t, updated.History[1].PreviousStatus, updated.History[1].NewStatus)
}

func TestExpenseService_SoftDeleteHidesFromListing(t *testing.T) {
	f := newServiceFixture(t)

	expense, err := f.service.Create(validExpense(), testActor)
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(expense.ID))

	listed, total, err := f.service.List(models.ExpenseFilter{})
	require.NoError(t, err)
	assert.Empty(t, listed)
	assert.Zero(t, total)

	// The record itself survives.
	got, err := f.service.Get(expense.ID)
	require.NoError(t, err)
	assert.True(t, got.Excluded)

	assert.ErrorIs(t, f.service.Delete(9999), workflow.ErrNotFound)
}

func TestExpenseService_UpdateAfterDeleteFails(t *testing.T) {
	f := newServiceFixture(t)

	expense, err := f.service.Create(validExpense(), testActor)
	require.NoError(t, err)
	require.NoError(t, f.service.Delete(expense.ID))

	expense.Description = "edited"
	_, err = f.service.Update(expense, testActor)
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}

func TestExpenseService_AddAttachment(t *testing.T) {
	f := newServiceFixture(t)

	expense, err := f.service.Create(validExpense(), testActor)
	require.NoError(t, err)

	attachment, err := f.service.AddAttachment(expense.ID, models.PurposeFiscalProof, &models.ProofFile{
		FileName:    "nota-fiscal.xml",
		ContentType: "application/xml",
		Content:     []byte("<nfe/>"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.PurposeFiscalProof, attachment.Purpose)
	assert.NotEmpty(t, attachment.StorageRef)

	// Settlement proofs must go through liquidation.
	_, err = f.service.AddAttachment(expense.ID, models.PurposeSettlementProof, &models.ProofFile{
		FileName: "proof.pdf",
		Content:  []byte("x"),
	})
	assert.ErrorIs(t, err, workflow.ErrValidation)

	got, err := f.service.Get(expense.ID)
	require.NoError(t, err)
	assert.Len(t, got.Attachments, 1)
}

func TestExpenseService_CreateWithTurmaLinks(t *testing.T) {
	f := newServiceFixture(t)

	turma, err := f.turmas.Create(&models.Turma{Name: "Direito 2027", GraduationYear: 2027, Active: true})
	require.NoError(t, err)

	expense := validExpense()
	expense.TurmaIDs = []int64{turma.ID}
	created, err := f.service.Create(expense, testActor)
	require.NoError(t, err)

	got, err := f.service.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{turma.ID}, got.TurmaIDs)
}

func TestExpenseService_ListForExportReturnsFullResultSet(t *testing.T) {
	f := newServiceFixture(t)

	const n = 55
	for i := 0; i < n; i++ {
		_, err := f.service.Create(validExpense(), testActor)
		require.NoError(t, err)
	}

	// Interactive listing pages at 50.
	paged, total, err := f.service.List(models.ExpenseFilter{})
	require.NoError(t, err)
	assert.Equal(t, n, total)
	assert.Len(t, paged, 50)

	// The export path carries every matching expense.
	exported, err := f.service.ListForExport(models.ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, exported, n)

	numeros := make(map[int64]bool, n)
	for _, e := range exported {
		numeros[e.NumeroCI] = true
	}
	assert.Len(t, numeros, n)
}

func TestExpenseService_RealizationDates(t *testing.T) {
	f := newServiceFixture(t)

	expense := validExpense()
	expense.EventType = models.EventBaile
	expense.RealizationDates = []string{"2026-05-03", "2026-05-02"}
	created, err := f.service.Create(expense, testActor)
	require.NoError(t, err)

	got, err := f.service.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-05-02", "2026-05-03"}, got.RealizationDates)

	matched, total, err := f.service.List(models.ExpenseFilter{RealizationFrom: "2026-05-01", RealizationTo: "2026-05-31"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, matched, 1)

	_, total, err = f.service.List(models.ExpenseFilter{RealizationFrom: "2026-06-01"})
	require.NoError(t, err)
	assert.Zero(t, total)
}
