package repository

import (
	"database/sql"
	"fmt"

	"github.com/fotoforma/backoffice/internal/models"
	"go.uber.org/zap"
)

// SaleRepository handles point-of-sale transaction persistence
type SaleRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *sql.DB, logger *zap.Logger) *SaleRepository {
	return &SaleRepository{db: db, logger: logger}
}

// Create inserts a sale and its items in one transaction. The stored total is
// recomputed from the items so it can never disagree with them.
func (r *SaleRepository) Create(tx *sql.Tx, sale *models.Sale) error {
	sale.ComputeTotal()

	result, err := tx.Exec(
		`INSERT INTO sales (turma_id, customer_name, payment_method, total_cents)
		 VALUES (?, ?, ?, ?)`,
		sale.TurmaID, sale.CustomerName, sale.PaymentMethod, sale.TotalCents,
	)
	if err != nil {
		r.logger.Error("Failed to create sale", zap.Error(err))
		return fmt.Errorf("failed to create sale: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	sale.ID = id

	for _, item := range sale.Items {
		res, err := tx.Exec(
			`INSERT INTO sale_items (sale_id, product, quantity, unit_price_cents)
			 VALUES (?, ?, ?, ?)`,
			sale.ID, item.Product, item.Quantity, item.UnitPriceCents,
		)
		if err != nil {
			return fmt.Errorf("failed to insert sale item: %w", err)
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		item.ID = itemID
		item.SaleID = sale.ID
	}
	return nil
}

// GetByID retrieves a sale with its items, or nil when it does not exist.
func (r *SaleRepository) GetByID(id int64) (*models.Sale, error) {
	var s models.Sale
	var turmaID sql.NullInt64
	err := r.db.QueryRow(
		`SELECT id, turma_id, customer_name, payment_method, total_cents, created_at
		 FROM sales WHERE id = ?`, id,
	).Scan(&s.ID, &turmaID, &s.CustomerName, &s.PaymentMethod, &s.TotalCents, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	if turmaID.Valid {
		s.TurmaID = &turmaID.Int64
	}

	items, err := r.items(s.ID)
	if err != nil {
		return nil, err
	}
	s.Items = items
	return &s, nil
}

// List retrieves sales, newest first, optionally narrowed to a turma.
func (r *SaleRepository) List(turmaID int64, limit, offset int) ([]*models.Sale, error) {
	query := `
		SELECT id, turma_id, customer_name, payment_method, total_cents, created_at
		FROM sales
	`
	var args []interface{}
	if turmaID > 0 {
		query += ` WHERE turma_id = ?`
		args = append(args, turmaID)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d OFFSET %d`, limit, offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to list sales", zap.Error(err))
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	var sales []*models.Sale
	for rows.Next() {
		var s models.Sale
		var tID sql.NullInt64
		err := rows.Scan(&s.ID, &tID, &s.CustomerName, &s.PaymentMethod, &s.TotalCents, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		if tID.Valid {
			s.TurmaID = &tID.Int64
		}
		sales = append(sales, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, s := range sales {
		items, err := r.items(s.ID)
		if err != nil {
			return nil, err
		}
		s.Items = items
	}
	return sales, nil
}

func (r *SaleRepository) items(saleID int64) ([]*models.SaleItem, error) {
	rows, err := r.db.Query(
		`SELECT id, sale_id, product, quantity, unit_price_cents
		 FROM sale_items WHERE sale_id = ? ORDER BY id`,
		saleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load sale items: %w", err)
	}
	defer rows.Close()

	var items []*models.SaleItem
	for rows.Next() {
		var it models.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.Product, &it.Quantity, &it.UnitPriceCents); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}
