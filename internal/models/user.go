package models

// Role constants for workflow actors.
const (
	RoleManager        = "GESTOR"
	RoleGeneralManager = "GESTOR_GERAL"
	RoleFinance        = "FINANCEIRO"
)

// ActingUser identifies who is performing a workflow operation. Permission
// checks are guard conditions inside the workflow engine, not a UI concern.
type ActingUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// ValidRole returns true for a known actor role.
func ValidRole(role string) bool {
	switch role {
	case RoleManager, RoleGeneralManager, RoleFinance:
		return true
	}
	return false
}

// CanApproveAsManager reports whether the user may perform the manager
// approval step. A general manager outranks a manager.
func (u ActingUser) CanApproveAsManager() bool {
	return u.Role == RoleManager || u.Role == RoleGeneralManager
}

// CanApproveAsGeneralManager reports whether the user may perform the
// general-manager approval step.
func (u ActingUser) CanApproveAsGeneralManager() bool {
	return u.Role == RoleGeneralManager
}

// CanSettle reports whether the user may liquidate an approved expense.
func (u ActingUser) CanSettle() bool {
	return u.Role == RoleFinance || u.Role == RoleGeneralManager
}
