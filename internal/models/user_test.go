package models

import "testing"

func TestActingUser_Permissions(t *testing.T) {
	tests := []struct {
		role       string
		manager    bool
		genManager bool
		settle     bool
	}{
		{RoleManager, true, false, false},
		{RoleGeneralManager, true, true, true},
		{RoleFinance, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			u := ActingUser{ID: "u", Role: tt.role}
			if got := u.CanApproveAsManager(); got != tt.manager {
				t.Errorf("CanApproveAsManager() = %v, want %v", got, tt.manager)
			}
			if got := u.CanApproveAsGeneralManager(); got != tt.genManager {
				t.Errorf("CanApproveAsGeneralManager() = %v, want %v", got, tt.genManager)
			}
			if got := u.CanSettle(); got != tt.settle {
				t.Errorf("CanSettle() = %v, want %v", got, tt.settle)
			}
		})
	}
}

func TestValidRole(t *testing.T) {
	for _, valid := range []string{RoleManager, RoleGeneralManager, RoleFinance} {
		if !ValidRole(valid) {
			t.Errorf("ValidRole(%q) = false, want true", valid)
		}
	}
	for _, invalid := range []string{"", "ADMIN", "gestor"} {
		if ValidRole(invalid) {
			t.Errorf("ValidRole(%q) = true, want false", invalid)
		}
	}
}
