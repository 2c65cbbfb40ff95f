package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/project-directory/directory/internal/db/models"
)

const projectColumns = `id, name, repository_url, owner_id, created_at, updated_at`

// ProjectRepository handles project database operations
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// GetByID retrieves a project by ID. Returns nil, nil when no project matches.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	var project models.Project
	err := r.db.GetContext(ctx, &project, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// AssignOwnerIfUnclaimed sets the project's owner only while it has none. Returns the
// updated project, or nil, nil when no row matched because the project is missing or
// already owned.
func (r *ProjectRepository) AssignOwnerIfUnclaimed(ctx context.Context, id, ownerID string) (*models.Project, error) {
	query := `
		UPDATE projects
		SET owner_id = $2, updated_at = NOW()
		WHERE id = $1 AND owner_id IS NULL
		RETURNING ` + projectColumns

	var project models.Project
	err := r.db.GetContext(ctx, &project, query, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}
