package scm

import (
	"fmt"
	"strings"
)

// Identifier names a repository as owner/name.
type Identifier struct {
	Owner string
	Name  string
}

// ParseIdentifier splits s on its first slash. Both segments must be non-empty and the
// name may not contain a further slash.
func ParseIdentifier(s string) (Identifier, error) {
	owner, name, ok := strings.Cut(s, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Identifier{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
	}
	return Identifier{Owner: owner, Name: name}, nil
}

func (id Identifier) String() string {
	return id.Owner + "/" + id.Name
}
