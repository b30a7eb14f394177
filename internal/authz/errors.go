package authz

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthenticated indicates there is no authenticated principal; it always
// denies before any module check runs.
var ErrUnauthenticated = errors.New("authz: unauthenticated")

// DeniedError reports that an authenticated user lacks a specific permission.
// The message carries both the sub-module and the action so it is suitable
// for direct display.
type DeniedError struct {
	Module string
	Action Action
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("you cannot perform %s on %s", e.Action, e.Module)
}

// HTTPStatus maps a denial to 403 for the transport layer.
func (e *DeniedError) HTTPStatus() int { return http.StatusForbidden }

// IsDenied reports whether err is a permission denial.
func IsDenied(err error) bool {
	var denied *DeniedError
	return errors.As(err, &denied)
}
