package workflow

import (
	"context"

	"github.com/fotoforma/backoffice/internal/models"
)

type actingUserKey struct{}

// WithActingUser attaches the workflow actor to the context so transition
// guards can evaluate role permissions.
func WithActingUser(ctx context.Context, user models.ActingUser) context.Context {
	return context.WithValue(ctx, actingUserKey{}, user)
}

// ActingUserFrom extracts the workflow actor from the context.
func ActingUserFrom(ctx context.Context) (models.ActingUser, bool) {
	user, ok := ctx.Value(actingUserKey{}).(models.ActingUser)
	return user, ok
}

func roleGuard(check func(models.ActingUser) bool) GuardFunc {
	return func(ctx context.Context) bool {
		user, ok := ActingUserFrom(ctx)
		return ok && check(user)
	}
}

// newMachine builds the expense approval graph positioned at the given
// status. A general manager may approve directly from the initial state,
// skipping the manager stage. Rejection returns the expense to the initial
// state; the rejection itself lives in the audit trail.
func newMachine(status State) StateMachine {
	builder := NewBuilder()

	builder.Configure(StateAwaitingManagerApproval).
		PermitIf(TriggerApproveManager, StateAwaitingGeneralManagerApproval,
			roleGuard(models.ActingUser.CanApproveAsManager)).
		PermitIf(TriggerApproveGeneralManager, StateApprovedGeneralManager,
			roleGuard(models.ActingUser.CanApproveAsGeneralManager)).
		PermitIf(TriggerReject, StateAwaitingManagerApproval,
			roleGuard(models.ActingUser.CanApproveAsManager))

	builder.Configure(StateAwaitingGeneralManagerApproval).
		PermitIf(TriggerApproveGeneralManager, StateApprovedGeneralManager,
			roleGuard(models.ActingUser.CanApproveAsGeneralManager)).
		PermitIf(TriggerReject, StateAwaitingManagerApproval,
			roleGuard(models.ActingUser.CanApproveAsGeneralManager))

	builder.Configure(StateApprovedGeneralManager).
		PermitIf(TriggerSettle, StateSettled,
			roleGuard(models.ActingUser.CanSettle))

	return builder.Build(status)
}
