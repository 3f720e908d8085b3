package models

import "time"

// History action constants
const (
	ActionCreation                = "CREATION"
	ActionManagerApproval         = "MANAGER_APPROVAL"
	ActionManagerRejection        = "MANAGER_REJECTION"
	ActionGeneralManagerApproval  = "GENERAL_MANAGER_APPROVAL"
	ActionGeneralManagerRejection = "GENERAL_MANAGER_REJECTION"
	ActionEdit                    = "EDIT"
	ActionSettlement              = "SETTLEMENT"
)

// HistoryEntry is one record in an expense's append-only audit trail.
// Every status-changing operation appends exactly one entry.
type HistoryEntry struct {
	ID             int64     `json:"id"`
	ExpenseID      int64     `json:"expense_id"`
	Action         string    `json:"action"`
	ActorID        string    `json:"actor_id"`
	ActorName      string    `json:"actor_name,omitempty"`
	Justification  string    `json:"justification,omitempty"` // mandatory for rejections
	PreviousStatus string    `json:"previous_status,omitempty"`
	NewStatus      string    `json:"new_status"`
	Timestamp      time.Time `json:"timestamp"`
}
