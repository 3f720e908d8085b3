package models

import "time"

// Expense represents a purchase/payment request (despesa) moving through the
// approval workflow. Amounts are stored in minor currency units (centavos).
type Expense struct {
	ID         int64   `json:"id"`
	NumeroCI   int64   `json:"numero_ci"`
	Kind       string  `json:"kind"`       // OPERATIONAL, ADMINISTRATIVE
	Department string  `json:"department"` // STUDIO, PHOTOGRAPHY, GOWNS
	VendorID   *int64  `json:"vendor_id,omitempty"`
	TurmaIDs   []int64 `json:"turma_ids,omitempty"`
	EventType  string  `json:"event_type,omitempty"`
	// RealizationDates are the calendar dates the linked event takes place
	// on, for operational expenses.
	RealizationDates []string `json:"realization_dates,omitempty"`
	AmountCents      int64    `json:"amount_cents"`
	PaymentMethod    string   `json:"payment_method"`
	PaymentDetails   string   `json:"payment_details,omitempty"` // bank / PIX details, free text
	ProofType        string   `json:"proof_type,omitempty"`
	DueDate          string   `json:"due_date,omitempty"`        // calendar date, YYYY-MM-DD
	SettlementDate   string   `json:"settlement_date,omitempty"` // set when settled
	Status           string   `json:"status"`
	Description      string   `json:"description"`
	Reimbursement    bool     `json:"reimbursement"`
	Excluded         bool     `json:"excluded"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Populated on detail loads, not on listings.
	Attachments []*Attachment   `json:"attachments,omitempty"`
	History     []*HistoryEntry `json:"history,omitempty"`
	VendorName  string          `json:"vendor_name,omitempty"`
}

// Expense status constants
const (
	StatusAwaitingManagerApproval        = "AWAITING_MANAGER_APPROVAL"
	StatusAwaitingGeneralManagerApproval = "AWAITING_GENERAL_MANAGER_APPROVAL"
	StatusApprovedGeneralManager         = "APPROVED_GENERAL_MANAGER"
	StatusSettled                        = "SETTLED"
)

// Expense kind constants
const (
	KindOperational    = "OPERATIONAL"
	KindAdministrative = "ADMINISTRATIVE"
)

// Department constants
const (
	DepartmentStudio      = "STUDIO"
	DepartmentPhotography = "PHOTOGRAPHY"
	DepartmentGowns       = "GOWNS"
)

// ValidKind returns true for a known expense kind.
func ValidKind(kind string) bool {
	return kind == KindOperational || kind == KindAdministrative
}

// ValidDepartment returns true for a known requesting department.
func ValidDepartment(dept string) bool {
	switch dept {
	case DepartmentStudio, DepartmentPhotography, DepartmentGowns:
		return true
	}
	return false
}

// ExpenseFilter narrows List queries. Zero values mean "no filter".
type ExpenseFilter struct {
	Status          string
	Department      string
	Kind            string
	TurmaID         int64
	CreatedFrom     string // YYYY-MM-DD, inclusive
	CreatedTo       string // YYYY-MM-DD, inclusive
	DueFrom         string
	DueTo           string
	RealizationFrom string
	RealizationTo   string
	Search          string // matches numero CI, description, vendor name, turma name
	IncludeExcluded bool
	Limit           int
	Offset          int
}
