package claims

import (
	"errors"
	"fmt"
)

// ErrConflict is returned when the project was claimed by someone else first.
var ErrConflict = errors.New("project has already been claimed")

// AuthorizationError is returned when the caller could not be shown to own or administer
// the repository. A failing claim attempt has always been recorded before it is returned.
type AuthorizationError struct {
	// Attempted is the login of the caller.
	Attempted string
	// Owner is the login of the repository owner.
	Owner string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s is not permitted to claim a repository owned by %s", e.Attempted, e.Owner)
}
