// Package repositories implements the data access layer (repository pattern) for the project directory.
// Each repository type encapsulates all database queries for a domain entity.
// Handlers never issue SQL directly; all database access goes through this layer.
package repositories

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrProjectNotFound is returned when a write references a project that does not exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrAlreadyClaimed is returned when a second successful claim attempt is recorded
	// for the same project.
	ErrAlreadyClaimed = errors.New("project already has a successful claim")
)

// PostgreSQL error codes
const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
)

// translateError maps constraint violations onto repository sentinels.
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqForeignKeyViolation:
		return ErrProjectNotFound
	case pqUniqueViolation:
		return ErrAlreadyClaimed
	}
	return err
}
