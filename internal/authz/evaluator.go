package authz

import (
	"context"
	"log/slog"
)

// Principal describes the authenticated actor.
type Principal interface {
	GetID() int64
	IsSuperuser() bool
	IsStaff() bool
}

// SetSource loads the permission sets of a user.
type SetSource interface {
	SetsForUser(ctx context.Context, userID int64) ([]PermissionSet, error)
}

// Evaluator decides module-level allow/deny for a user, module, sub-module
// and action. It is a pure read: it never mutates permission data.
type Evaluator struct {
	sets   SetSource
	logger *slog.Logger
}

// NewEvaluator constructs an Evaluator backed by the given set source.
func NewEvaluator(sets SetSource, logger *slog.Logger) *Evaluator {
	return &Evaluator{sets: sets, logger: logger}
}

// Can reports whether the user may perform action on the sub-module.
//
// Superusers and staff are always allowed. An empty sub-module name or an
// unresolved action also allow: permission gating is opt-in per endpoint.
// Otherwise an explicit true is required in at least one of the user's
// permission sets.
func (e *Evaluator) Can(ctx context.Context, user Principal, module Module, submodule string, action Action) (bool, error) {
	if user == nil {
		return false, ErrUnauthenticated
	}
	if user.IsSuperuser() || user.IsStaff() {
		return true, nil
	}
	if submodule == "" || action == ActionNone {
		return true, nil
	}
	sets, err := e.sets.SetsForUser(ctx, user.GetID())
	if err != nil {
		return false, err
	}
	return grantsAny(sets, module, submodule, action), nil
}

// Require is Can with a loud failure: it returns a DeniedError carrying the
// sub-module and action when the permission is missing.
func (e *Evaluator) Require(ctx context.Context, user Principal, module Module, submodule string, action Action) error {
	allowed, err := e.Can(ctx, user, module, submodule, action)
	if err != nil {
		return err
	}
	if !allowed {
		if e.logger != nil {
			e.logger.Warn("permission denied",
				slog.Int64("user_id", user.GetID()),
				slog.String("module", string(module)),
				slog.String("submodule", submodule),
				slog.String("action", string(action)))
		}
		return &DeniedError{Module: submodule, Action: action}
	}
	return nil
}

func grantsAny(sets []PermissionSet, module Module, submodule string, action Action) bool {
	for _, set := range sets {
		if set.Grants(module, submodule, action) {
			return true
		}
	}
	return false
}
