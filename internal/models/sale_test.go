package models

import "testing"

func TestSale_ComputeTotal(t *testing.T) {
	tests := []struct {
		name  string
		items []*SaleItem
		want  int64
	}{
		{"no items", nil, 0},
		{"single item", []*SaleItem{{Quantity: 1, UnitPriceCents: 9900}}, 9900},
		{
			"mixed cart",
			[]*SaleItem{
				{Quantity: 2, UnitPriceCents: 4500},
				{Quantity: 3, UnitPriceCents: 1000},
			},
			12000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sale := &Sale{Items: tt.items, TotalCents: 999}
			if got := sale.ComputeTotal(); got != tt.want {
				t.Errorf("ComputeTotal() = %d, want %d", got, tt.want)
			}
			if sale.TotalCents != tt.want {
				t.Errorf("TotalCents = %d, want %d", sale.TotalCents, tt.want)
			}
		})
	}
}
