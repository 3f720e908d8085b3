package repository

import (
	"database/sql"
	"fmt"

	"github.com/fotoforma/backoffice/internal/models"
	"go.uber.org/zap"
)

// VendorRepository handles vendor database operations
type VendorRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewVendorRepository creates a new vendor repository
func NewVendorRepository(db *sql.DB, logger *zap.Logger) *VendorRepository {
	return &VendorRepository{db: db, logger: logger}
}

// Create inserts a vendor with its service types
func (r *VendorRepository) Create(vendor *models.Vendor) error {
	query := `
		INSERT INTO vendors (name, document, pix_key, phone, email, active)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		vendor.Name, vendor.Document, vendor.PixKey, vendor.Phone,
		vendor.Email, vendor.Active,
	)
	if err != nil {
		r.logger.Error("Failed to create vendor", zap.Error(err))
		return fmt.Errorf("failed to create vendor: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	vendor.ID = id

	return r.replaceServiceTypes(vendor.ID, vendor.ServiceTypes)
}

// GetByID retrieves a vendor by ID, or nil when it does not exist.
func (r *VendorRepository) GetByID(id int64) (*models.Vendor, error) {
	query := `
		SELECT id, name, document, pix_key, phone, email, active,
			created_at, updated_at
		FROM vendors
		WHERE id = ?
	`
	var v models.Vendor
	err := r.db.QueryRow(query, id).Scan(
		&v.ID, &v.Name, &v.Document, &v.PixKey, &v.Phone, &v.Email,
		&v.Active, &v.CreatedAt, &v.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}

	types, err := r.serviceTypes(id)
	if err != nil {
		return nil, err
	}
	v.ServiceTypes = types
	return &v, nil
}

// Update mutates a vendor and rewrites its service types
func (r *VendorRepository) Update(vendor *models.Vendor) error {
	query := `
		UPDATE vendors SET
			name = ?, document = ?, pix_key = ?, phone = ?, email = ?,
			active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	result, err := r.db.Exec(query,
		vendor.Name, vendor.Document, vendor.PixKey, vendor.Phone,
		vendor.Email, vendor.Active, vendor.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update vendor", zap.Int64("id", vendor.ID), zap.Error(err))
		return fmt.Errorf("failed to update vendor: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return r.replaceServiceTypes(vendor.ID, vendor.ServiceTypes)
}

// List retrieves all vendors with their service types
func (r *VendorRepository) List(activeOnly bool) ([]*models.Vendor, error) {
	query := `
		SELECT id, name, document, pix_key, phone, email, active,
			created_at, updated_at
		FROM vendors
	`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to list vendors", zap.Error(err))
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}
	defer rows.Close()

	var vendors []*models.Vendor
	for rows.Next() {
		var v models.Vendor
		err := rows.Scan(
			&v.ID, &v.Name, &v.Document, &v.PixKey, &v.Phone, &v.Email,
			&v.Active, &v.CreatedAt, &v.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vendor: %w", err)
		}
		vendors = append(vendors, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, v := range vendors {
		types, err := r.serviceTypes(v.ID)
		if err != nil {
			return nil, err
		}
		v.ServiceTypes = types
	}
	return vendors, nil
}

func (r *VendorRepository) replaceServiceTypes(vendorID int64, types []string) error {
	if _, err := r.db.Exec(`DELETE FROM vendor_service_types WHERE vendor_id = ?`, vendorID); err != nil {
		return fmt.Errorf("failed to clear service types: %w", err)
	}
	for _, st := range types {
		_, err := r.db.Exec(
			`INSERT INTO vendor_service_types (vendor_id, service_type) VALUES (?, ?)`,
			vendorID, st,
		)
		if err != nil {
			return fmt.Errorf("failed to insert service type: %w", err)
		}
	}
	return nil
}

func (r *VendorRepository) serviceTypes(vendorID int64) ([]string, error) {
	rows, err := r.db.Query(
		`SELECT service_type FROM vendor_service_types WHERE vendor_id = ? ORDER BY service_type`,
		vendorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load service types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var st string
		if err := rows.Scan(&st); err != nil {
			return nil, err
		}
		types = append(types, st)
	}
	return types, rows.Err()
}
