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

// VendorService manages the supplier registry.
type VendorService struct {
	vendors *repository.VendorRepository
	logger  *zap.Logger
}

// NewVendorService creates a new vendor service.
func NewVendorService(vendors *repository.VendorRepository, logger *zap.Logger) *VendorService {
	return &VendorService{vendors: vendors, logger: logger}
}

// Create registers a new vendor.
func (s *VendorService) Create(vendor *models.Vendor) (*models.Vendor, error) {
	if err := s.validate(vendor); err != nil {
		return nil, err
	}
	if err := s.vendors.Create(vendor); err != nil {
		return nil, err
	}
	s.logger.Info("Vendor created", zap.Int64("id", vendor.ID), zap.String("name", vendor.Name))
	return vendor, nil
}

// Update edits a vendor.
func (s *VendorService) Update(vendor *models.Vendor) (*models.Vendor, error) {
	if err := s.validate(vendor); err != nil {
		return nil, err
	}
	if err := s.vendors.Update(vendor); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: vendor %d", workflow.ErrNotFound, vendor.ID)
		}
		return nil, err
	}
	return s.vendors.GetByID(vendor.ID)
}

// Get retrieves a vendor by ID.
func (s *VendorService) Get(id int64) (*models.Vendor, error) {
	vendor, err := s.vendors.GetByID(id)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, fmt.Errorf("%w: vendor %d", workflow.ErrNotFound, id)
	}
	return vendor, nil
}

// List retrieves vendors, optionally only active ones.
func (s *VendorService) List(activeOnly bool) ([]*models.Vendor, error) {
	return s.vendors.List(activeOnly)
}

func (s *VendorService) validate(vendor *models.Vendor) error {
	if strings.TrimSpace(vendor.Name) == "" {
		return fmt.Errorf("%w: vendor name is required", workflow.ErrValidation)
	}
	if vendor.Document != "" {
		if err := utils.ValidateDocument(vendor.Document); err != nil {
			return fmt.Errorf("%w: %v", workflow.ErrValidation, err)
		}
	}
	return nil
}
