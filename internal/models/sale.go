package models

import "time"

// Sale represents a point-of-sale transaction for photo products.
type Sale struct {
	ID            int64       `json:"id"`
	TurmaID       *int64      `json:"turma_id,omitempty"`
	CustomerName  string      `json:"customer_name"`
	PaymentMethod string      `json:"payment_method"`
	Items         []*SaleItem `json:"items"`
	TotalCents    int64       `json:"total_cents"`
	CreatedAt     time.Time   `json:"created_at"`
}

// SaleItem is one cart line: a product at a unit price, in minor units.
type SaleItem struct {
	ID             int64  `json:"id"`
	SaleID         int64  `json:"sale_id"`
	Product        string `json:"product"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// ComputeTotal derives the cart total from its items. The stored TotalCents
// is always recomputed before persisting so the two cannot drift.
func (s *Sale) ComputeTotal() int64 {
	var total int64
	for _, it := range s.Items {
		total += int64(it.Quantity) * it.UnitPriceCents
	}
	s.TotalCents = total
	return total
}
