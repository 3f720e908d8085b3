package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/fotoforma/backoffice/internal/models"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateAwaitingManagerApproval, false},
		{StateAwaitingGeneralManagerApproval, false},
		{StateApprovedGeneralManager, false},
		{StateSettled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"valid state", StateAwaitingManagerApproval, true},
		{"valid state", StateSettled, true},
		{"invalid state", State("INVALID"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	builder.Configure(State("INVALID"))
}

func TestBuilder_BuildPanicsOnInvalidInitialState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on invalid initial state")
		}
	}()

	builder.Build(State("INVALID"))
}

func TestStateMachine_UnconfiguredTrigger(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateAwaitingManagerApproval).
		Permit(TriggerApproveManager, StateAwaitingGeneralManagerApproval)

	machine := builder.Build(StateAwaitingManagerApproval)

	if machine.CanFire(TriggerSettle) {
		t.Error("CanFire() should return false for unconfigured trigger")
	}
	err := machine.Fire(context.Background(), TriggerSettle)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want ErrInvalidTransition", err)
	}
	if machine.State() != StateAwaitingManagerApproval {
		t.Errorf("state changed after failed fire: %s", machine.State())
	}
}

func TestStateMachine_GuardRejectsActor(t *testing.T) {
	finance := models.ActingUser{ID: "u1", Role: models.RoleFinance}
	ctx := WithActingUser(context.Background(), finance)

	machine := newMachine(StateAwaitingManagerApproval)
	err := machine.Fire(ctx, TriggerApproveManager)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Fire() error = %v, want ErrValidation", err)
	}
	if machine.State() != StateAwaitingManagerApproval {
		t.Errorf("state changed after guarded fire: %s", machine.State())
	}
}

func TestApprovalGraph_ManagerPath(t *testing.T) {
	manager := models.ActingUser{ID: "u1", Role: models.RoleManager}
	gm := models.ActingUser{ID: "u2", Role: models.RoleGeneralManager}
	finance := models.ActingUser{ID: "u3", Role: models.RoleFinance}

	machine := newMachine(StateAwaitingManagerApproval)

	if err := machine.Fire(WithActingUser(context.Background(), manager), TriggerApproveManager); err != nil {
		t.Fatalf("manager approval failed: %v", err)
	}
	if machine.State() != StateAwaitingGeneralManagerApproval {
		t.Fatalf("state = %s, want %s", machine.State(), StateAwaitingGeneralManagerApproval)
	}

	if err := machine.Fire(WithActingUser(context.Background(), gm), TriggerApproveGeneralManager); err != nil {
		t.Fatalf("general manager approval failed: %v", err)
	}
	if machine.State() != StateApprovedGeneralManager {
		t.Fatalf("state = %s, want %s", machine.State(), StateApprovedGeneralManager)
	}

	if err := machine.Fire(WithActingUser(context.Background(), finance), TriggerSettle); err != nil {
		t.Fatalf("settlement failed: %v", err)
	}
	if machine.State() != StateSettled {
		t.Fatalf("state = %s, want %s", machine.State(), StateSettled)
	}

	// Settled is terminal.
	err := machine.Fire(WithActingUser(context.Background(), gm), TriggerApproveManager)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() from terminal state error = %v, want ErrInvalidTransition", err)
	}
}

func TestApprovalGraph_GeneralManagerSkipsManagerStage(t *testing.T) {
	gm := models.ActingUser{ID: "u2", Role: models.RoleGeneralManager}

	machine := newMachine(StateAwaitingManagerApproval)
	if err := machine.Fire(WithActingUser(context.Background(), gm), TriggerApproveGeneralManager); err != nil {
		t.Fatalf("direct general manager approval failed: %v", err)
	}
	if machine.State() != StateApprovedGeneralManager {
		t.Fatalf("state = %s, want %s", machine.State(), StateApprovedGeneralManager)
	}
}

func TestApprovalGraph_RejectReturnsToInitialState(t *testing.T) {
	gm := models.ActingUser{ID: "u2", Role: models.RoleGeneralManager}

	machine := newMachine(StateAwaitingGeneralManagerApproval)
	if err := machine.Fire(WithActingUser(context.Background(), gm), TriggerReject); err != nil {
		t.Fatalf("rejection failed: %v", err)
	}
	if machine.State() != StateAwaitingManagerApproval {
		t.Fatalf("state = %s, want %s", machine.State(), StateAwaitingManagerApproval)
	}

	// The expense stays actionable after rejection.
	manager := models.ActingUser{ID: "u1", Role: models.RoleManager}
	if err := machine.Fire(WithActingUser(context.Background(), manager), TriggerApproveManager); err != nil {
		t.Fatalf("re-approval after rejection failed: %v", err)
	}
}

func TestApprovalGraph_SettleRequiresApproval(t *testing.T) {
	finance := models.ActingUser{ID: "u3", Role: models.RoleFinance}

	for _, state := range []State{StateAwaitingManagerApproval, StateAwaitingGeneralManagerApproval} {
		machine := newMachine(state)
		err := machine.Fire(WithActingUser(context.Background(), finance), TriggerSettle)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Fire(settle) from %s error = %v, want ErrInvalidTransition", state, err)
		}
	}
}

func TestApprovalGraph_ManagerCannotApproveAsGeneralManager(t *testing.T) {
	manager := models.ActingUser{ID: "u1", Role: models.RoleManager}

	machine := newMachine(StateAwaitingGeneralManagerApproval)
	err := machine.Fire(WithActingUser(context.Background(), manager), TriggerApproveGeneralManager)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Fire() error = %v, want ErrValidation", err)
	}
}
