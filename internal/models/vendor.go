package models

import "time"

// Vendor represents a supplier of services or goods. Service types are a
// typed list persisted in a child table, not a JSON-encoded string.
type Vendor struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Document     string    `json:"document,omitempty"` // CNPJ or CPF
	ServiceTypes []string  `json:"service_types,omitempty"`
	PixKey       string    `json:"pix_key,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Email        string    `json:"email,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
