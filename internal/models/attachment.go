package models

import "time"

// Attachment purpose constants
const (
	PurposeSupportingDocument = "SUPPORTING_DOCUMENT"
	PurposeFiscalProof        = "FISCAL_PROOF"
	PurposeSettlementProof    = "SETTLEMENT_PROOF"
)

// Attachment represents a file attached to an expense, tagged by purpose.
type Attachment struct {
	ID          int64     `json:"id"`
	ExpenseID   int64     `json:"expense_id"`
	Purpose     string    `json:"purpose"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	StorageRef  string    `json:"storage_ref"`
	FilePath    string    `json:"file_path,omitempty"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// ValidPurpose returns true for a known attachment purpose.
func ValidPurpose(purpose string) bool {
	switch purpose {
	case PurposeSupportingDocument, PurposeFiscalProof, PurposeSettlementProof:
		return true
	}
	return false
}

// ProofFile is an uploaded file not yet persisted to storage.
type ProofFile struct {
	FileName    string
	ContentType string
	Content     []byte
}
