package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/fotoforma/backoffice/internal/models"
	"go.uber.org/zap"
)

// ExpenseRepository handles expense database operations
type ExpenseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *sql.DB, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{db: db, logger: logger}
}

// NextNumeroCI allocates the next sequential document number. It must run
// inside a write transaction: SQLite serializes write transactions, so two
// concurrent creates can never read the same counter value.
func (r *ExpenseRepository) NextNumeroCI(tx *sql.Tx) (int64, error) {
	if _, err := tx.Exec(`UPDATE ci_sequence SET value = value + 1 WHERE id = 1`); err != nil {
		return 0, fmt.Errorf("failed to advance CI sequence: %w", err)
	}

	var n int64
	if err := tx.QueryRow(`SELECT value FROM ci_sequence WHERE id = 1`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to read CI sequence: %w", err)
	}
	return n, nil
}

// Insert creates a new expense row. NumeroCI and Status must already be set.
func (r *ExpenseRepository) Insert(tx *sql.Tx, expense *models.Expense) error {
	query := `
		INSERT INTO expenses (
			numero_ci, kind, department, vendor_id, event_type, amount_cents,
			payment_method, payment_details, proof_type, due_date, status,
			description, reimbursement
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := tx.Exec(query,
		expense.NumeroCI,
		expense.Kind,
		expense.Department,
		expense.VendorID,
		expense.EventType,
		expense.AmountCents,
		expense.PaymentMethod,
		expense.PaymentDetails,
		expense.ProofType,
		expense.DueDate,
		expense.Status,
		expense.Description,
		expense.Reimbursement,
	)
	if err != nil {
		r.logger.Error("Failed to insert expense", zap.Error(err))
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	expense.ID = id
	return nil
}

// ReplaceTurmaLinks rewrites the expense->turma join rows.
func (r *ExpenseRepository) ReplaceTurmaLinks(tx *sql.Tx, expenseID int64, turmaIDs []int64) error {
	if _, err := tx.Exec(`DELETE FROM expense_turmas WHERE expense_id = ?`, expenseID); err != nil {
		return fmt.Errorf("failed to clear turma links: %w", err)
	}
	for _, turmaID := range turmaIDs {
		_, err := tx.Exec(
			`INSERT INTO expense_turmas (expense_id, turma_id) VALUES (?, ?)`,
			expenseID, turmaID,
		)
		if err != nil {
			return fmt.Errorf("failed to link turma %d: %w", turmaID, err)
		}
	}
	return nil
}

// ReplaceRealizationDates rewrites the event realization dates of an expense.
func (r *ExpenseRepository) ReplaceRealizationDates(tx *sql.Tx, expenseID int64, dates []string) error {
	if _, err := tx.Exec(`DELETE FROM expense_realization_dates WHERE expense_id = ?`, expenseID); err != nil {
		return fmt.Errorf("failed to clear realization dates: %w", err)
	}
	for _, date := range dates {
		_, err := tx.Exec(
			`INSERT OR IGNORE INTO expense_realization_dates (expense_id, date) VALUES (?, ?)`,
			expenseID, date,
		)
		if err != nil {
			return fmt.Errorf("failed to add realization date %s: %w", date, err)
		}
	}
	return nil
}

// GetByID retrieves an expense by ID, or nil when it does not exist.
func (r *ExpenseRepository) GetByID(id int64) (*models.Expense, error) {
	query := selectExpense + ` WHERE e.id = ? GROUP BY e.id`

	expense, err := r.scanOne(r.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, nil
	}

	if err := r.loadLinks(expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// UpdateStatusGuarded moves an expense to newStatus only if it still has the
// expected status. Returns false when another actor got there first.
func (r *ExpenseRepository) UpdateStatusGuarded(tx *sql.Tx, id int64, expected, newStatus string) (bool, error) {
	result, err := tx.Exec(
		`UPDATE expenses SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		newStatus, id, expected,
	)
	if err != nil {
		r.logger.Error("Failed to update status",
			zap.Int64("id", id),
			zap.String("status", newStatus),
			zap.Error(err))
		return false, fmt.Errorf("failed to update status: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}

// SetSettlementDate records the settlement date during the settle transition.
func (r *ExpenseRepository) SetSettlementDate(tx *sql.Tx, id int64, date string) error {
	_, err := tx.Exec(
		`UPDATE expenses SET settlement_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		date, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set settlement date: %w", err)
	}
	return nil
}

// UpdateFields mutates descriptive and financial fields only. Workflow status
// is not touchable through here.
func (r *ExpenseRepository) UpdateFields(tx *sql.Tx, expense *models.Expense) error {
	query := `
		UPDATE expenses SET
			kind = ?, department = ?, vendor_id = ?, event_type = ?,
			amount_cents = ?, payment_method = ?, payment_details = ?,
			proof_type = ?, due_date = ?, description = ?, reimbursement = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	result, err := tx.Exec(query,
		expense.Kind,
		expense.Department,
		expense.VendorID,
		expense.EventType,
		expense.AmountCents,
		expense.PaymentMethod,
		expense.PaymentDetails,
		expense.ProofType,
		expense.DueDate,
		expense.Description,
		expense.Reimbursement,
		expense.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update expense", zap.Int64("id", expense.ID), zap.Error(err))
		return fmt.Errorf("failed to update expense: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetExcluded soft-deletes (or restores) an expense. Financial records are
// never physically removed.
func (r *ExpenseRepository) SetExcluded(tx *sql.Tx, id int64, excluded bool) error {
	result, err := tx.Exec(
		`UPDATE expenses SET excluded = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		excluded, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set excluded: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List retrieves expenses matching the filter, newest first, plus the total
// match count for pagination.
func (r *ExpenseRepository) List(filter models.ExpenseFilter) ([]*models.Expense, int, error) {
	where, args := buildExpenseWhere(filter)

	var total int
	countQuery := `SELECT COUNT(DISTINCT e.id) FROM expenses e ` + expenseJoins + where
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count expenses", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := selectExpense + where + ` GROUP BY e.id ORDER BY e.id DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to list expenses", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, expense := range expenses {
		if err := r.loadLinks(expense); err != nil {
			return nil, 0, err
		}
	}
	return expenses, total, nil
}

func (r *ExpenseRepository) loadLinks(expense *models.Expense) error {
	turmaIDs, err := r.turmaLinks(expense.ID)
	if err != nil {
		return err
	}
	expense.TurmaIDs = turmaIDs

	dates, err := r.realizationDates(expense.ID)
	if err != nil {
		return err
	}
	expense.RealizationDates = dates
	return nil
}

const expenseJoins = `
	LEFT JOIN vendors v ON v.id = e.vendor_id
	LEFT JOIN expense_turmas et ON et.expense_id = e.id
	LEFT JOIN turmas t ON t.id = et.turma_id
`

const selectExpense = `
	SELECT e.id, e.numero_ci, e.kind, e.department, e.vendor_id, e.event_type,
		e.amount_cents, e.payment_method, e.payment_details, e.proof_type,
		e.due_date, e.settlement_date, e.status, e.description, e.reimbursement,
		e.excluded, e.created_at, e.updated_at, COALESCE(v.name, '')
	FROM expenses e
` + expenseJoins

func buildExpenseWhere(filter models.ExpenseFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if !filter.IncludeExcluded {
		conds = append(conds, "e.excluded = 0")
	}
	if filter.Status != "" {
		conds = append(conds, "e.status = ?")
		args = append(args, filter.Status)
	}
	if filter.Department != "" {
		conds = append(conds, "e.department = ?")
		args = append(args, filter.Department)
	}
	if filter.Kind != "" {
		conds = append(conds, "e.kind = ?")
		args = append(args, filter.Kind)
	}
	if filter.TurmaID > 0 {
		conds = append(conds, "et.turma_id = ?")
		args = append(args, filter.TurmaID)
	}
	if filter.CreatedFrom != "" {
		conds = append(conds, "date(e.created_at) >= ?")
		args = append(args, filter.CreatedFrom)
	}
	if filter.CreatedTo != "" {
		conds = append(conds, "date(e.created_at) <= ?")
		args = append(args, filter.CreatedTo)
	}
	if filter.DueFrom != "" {
		conds = append(conds, "e.due_date >= ?")
		args = append(args, filter.DueFrom)
	}
	if filter.DueTo != "" {
		conds = append(conds, "e.due_date <= ? AND e.due_date != ''")
		args = append(args, filter.DueTo)
	}
	if filter.RealizationFrom != "" {
		conds = append(conds, `EXISTS (
			SELECT 1 FROM expense_realization_dates rd
			WHERE rd.expense_id = e.id AND rd.date >= ?)`)
		args = append(args, filter.RealizationFrom)
	}
	if filter.RealizationTo != "" {
		conds = append(conds, `EXISTS (
			SELECT 1 FROM expense_realization_dates rd
			WHERE rd.expense_id = e.id AND rd.date <= ?)`)
		args = append(args, filter.RealizationTo)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		conds = append(conds, `(
			CAST(e.numero_ci AS TEXT) LIKE ? OR e.description LIKE ?
			OR v.name LIKE ? OR t.name LIKE ?)`)
		args = append(args, like, like, like, like)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *ExpenseRepository) scanOne(row *sql.Row) (*models.Expense, error) {
	expense, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to scan expense", zap.Error(err))
		return nil, fmt.Errorf("failed to scan expense: %w", err)
	}
	return expense, nil
}

func (r *ExpenseRepository) scanRow(rows *sql.Rows) (*models.Expense, error) {
	expense, err := scanExpense(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan expense: %w", err)
	}
	return expense, nil
}

func scanExpense(s rowScanner) (*models.Expense, error) {
	var expense models.Expense
	var vendorID sql.NullInt64

	err := s.Scan(
		&expense.ID,
		&expense.NumeroCI,
		&expense.Kind,
		&expense.Department,
		&vendorID,
		&expense.EventType,
		&expense.AmountCents,
		&expense.PaymentMethod,
		&expense.PaymentDetails,
		&expense.ProofType,
		&expense.DueDate,
		&expense.SettlementDate,
		&expense.Status,
		&expense.Description,
		&expense.Reimbursement,
		&expense.Excluded,
		&expense.CreatedAt,
		&expense.UpdatedAt,
		&expense.VendorName,
	)
	if err != nil {
		return nil, err
	}
	if vendorID.Valid {
		expense.VendorID = &vendorID.Int64
	}
	return &expense, nil
}

func (r *ExpenseRepository) turmaLinks(expenseID int64) ([]int64, error) {
	rows, err := r.db.Query(
		`SELECT turma_id FROM expense_turmas WHERE expense_id = ? ORDER BY turma_id`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load turma links: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ExpenseRepository) realizationDates(expenseID int64) ([]string, error) {
	rows, err := r.db.Query(
		`SELECT date FROM expense_realization_dates WHERE expense_id = ? ORDER BY date`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load realization dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, err
		}
		dates = append(dates, date)
	}
	return dates, rows.Err()
}
