package workflow

// Trigger represents an operation that can cause a state transition
type Trigger string

const (
	TriggerApproveManager        Trigger = "APPROVE_MANAGER"
	TriggerApproveGeneralManager Trigger = "APPROVE_GENERAL_MANAGER"
	TriggerReject                Trigger = "REJECT"
	TriggerSettle                Trigger = "SETTLE"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
