package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveOperationViewSetVerbs(t *testing.T) {
	for _, op := range []string{"list", "retrieve", "LIST", "Retrieve", "GET", "get", "head"} {
		assert.Equal(t, ActionView, ResolveOperation(op), "operation %q", op)
	}
}

func TestResolveOperationWriteVerbs(t *testing.T) {
	cases := map[string]Action{
		"create":         ActionCreate,
		"POST":           ActionCreate,
		"update":         ActionEdit,
		"partial_update": ActionEdit,
		"PUT":            ActionEdit,
		"Patch":          ActionEdit,
		"destroy":        ActionDelete,
		"DELETE":         ActionDelete,
	}
	for op, want := range cases {
		assert.Equal(t, want, ResolveOperation(op), "operation %q", op)
	}
}

func TestResolveOperationUnknown(t *testing.T) {
	assert.Equal(t, ActionNone, ResolveOperation("options"))
	assert.Equal(t, ActionNone, ResolveOperation(""))
	assert.Equal(t, ActionNone, ResolveOperation("sync"))
}
