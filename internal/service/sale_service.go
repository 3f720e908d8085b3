package service

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/fotoforma/backoffice/internal/models"
	"github.com/fotoforma/backoffice/internal/repository"
	"github.com/fotoforma/backoffice/internal/workflow"
	"github.com/fotoforma/backoffice/pkg/database"
	"go.uber.org/zap"
)

// SaleService records point-of-sale transactions.
type SaleService struct {
	db     *database.DB
	sales  *repository.SaleRepository
	turmas *repository.TurmaRepository
	logger *zap.Logger
}

// NewSaleService creates a new sale service.
func NewSaleService(db *database.DB, sales *repository.SaleRepository, turmas *repository.TurmaRepository, logger *zap.Logger) *SaleService {
	return &SaleService{db: db, sales: sales, turmas: turmas, logger: logger}
}

// Create records a sale. The total is computed from the items server-side;
// a client-supplied total is ignored.
func (s *SaleService) Create(sale *models.Sale) (*models.Sale, error) {
	if err := s.validate(sale); err != nil {
		return nil, err
	}

	err := s.db.WithTransaction(func(tx *sql.Tx) error {
		return s.sales.Create(tx, sale)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Sale recorded",
		zap.Int64("id", sale.ID),
		zap.Int64("total_cents", sale.TotalCents),
		zap.Int("items", len(sale.Items)))
	return sale, nil
}

// Get retrieves a sale with its items.
func (s *SaleService) Get(id int64) (*models.Sale, error) {
	sale, err := s.sales.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: sale %d", workflow.ErrNotFound, id)
	}
	return sale, nil
}

// List retrieves sales, newest first.
func (s *SaleService) List(turmaID int64, limit, offset int) ([]*models.Sale, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.sales.List(turmaID, limit, offset)
}

func (s *SaleService) validate(sale *models.Sale) error {
	if len(sale.Items) == 0 {
		return fmt.Errorf("%w: sale has no items", workflow.ErrValidation)
	}
	for _, item := range sale.Items {
		if strings.TrimSpace(item.Product) == "" {
			return fmt.Errorf("%w: sale item has no product", workflow.ErrValidation)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: sale item quantity must be positive", workflow.ErrValidation)
		}
		if item.UnitPriceCents < 0 {
			return fmt.Errorf("%w: sale item price must be non-negative", workflow.ErrValidation)
		}
	}

	if sale.TurmaID != nil {
		turma, err := s.turmas.GetByID(*sale.TurmaID)
		if err != nil {
			return err
		}
		if turma == nil || turma.Excluded {
			return fmt.Errorf("%w: turma %d does not exist", workflow.ErrValidation, *sale.TurmaID)
		}
	}
	return nil
}
