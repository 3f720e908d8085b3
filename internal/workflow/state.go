package workflow

// State represents a workflow state in the expense approval lifecycle
type State string

const (
	StateAwaitingManagerApproval        State = "AWAITING_MANAGER_APPROVAL"
	StateAwaitingGeneralManagerApproval State = "AWAITING_GENERAL_MANAGER_APPROVAL"
	StateApprovedGeneralManager         State = "APPROVED_GENERAL_MANAGER"
	StateSettled                        State = "SETTLED"
)

var validStates = map[State]bool{
	StateAwaitingManagerApproval:        true,
	StateAwaitingGeneralManagerApproval: true,
	StateApprovedGeneralManager:         true,
	StateSettled:                        true,
}

var terminalStates = map[State]bool{
	StateSettled: true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid workflow state
func (s State) IsValid() bool {
	return validStates[s]
}
