package authz

import "strings"

// Action is one of the four canonical permission actions.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"

	// ActionNone marks an operation that maps to no permission action.
	// Callers treat it as "skip gating": some endpoints are deliberately
	// unchecked.
	ActionNone Action = ""
)

var operationActions = map[string]Action{
	// REST lifecycle names.
	"list":           ActionView,
	"retrieve":       ActionView,
	"create":         ActionCreate,
	"update":         ActionEdit,
	"partial_update": ActionEdit,
	"destroy":        ActionDelete,

	// Raw HTTP verbs.
	"get":    ActionView,
	"head":   ActionView,
	"post":   ActionCreate,
	"put":    ActionEdit,
	"patch":  ActionEdit,
	"delete": ActionDelete,
}

// ResolveOperation maps a REST lifecycle name or raw HTTP verb,
// case-insensitively, to its permission action. Unknown operations resolve
// to ActionNone.
func ResolveOperation(op string) Action {
	return operationActions[strings.ToLower(strings.TrimSpace(op))]
}
