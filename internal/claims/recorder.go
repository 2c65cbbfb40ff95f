package claims

import (
	"context"
	"fmt"

	"github.com/project-directory/directory/internal/db/models"
	"github.com/project-directory/directory/internal/db/repositories"
)

// Recorder persists claim outcomes. AssignOwner must only set the owner of a project that
// has none; it returns a nil project (and no error) when no row matched.
type Recorder interface {
	RecordAttempt(ctx context.Context, attempt *models.ClaimAttempt) error
	AssignOwner(ctx context.Context, projectID, userID string) (*models.Project, error)
}

// DBRecorder implements Recorder over the project and claim attempt repositories.
type DBRecorder struct {
	projects *repositories.ProjectRepository
	attempts *repositories.ClaimAttemptRepository
}

// NewDBRecorder creates a DBRecorder
func NewDBRecorder(projects *repositories.ProjectRepository, attempts *repositories.ClaimAttemptRepository) *DBRecorder {
	return &DBRecorder{projects: projects, attempts: attempts}
}

// RecordAttempt appends a claim attempt.
func (r *DBRecorder) RecordAttempt(ctx context.Context, attempt *models.ClaimAttempt) error {
	if err := r.attempts.Create(ctx, attempt); err != nil {
		return fmt.Errorf("record claim attempt: %w", err)
	}
	return nil
}

// AssignOwner sets the project's owner if it is still unclaimed.
func (r *DBRecorder) AssignOwner(ctx context.Context, projectID, userID string) (*models.Project, error) {
	project, err := r.projects.AssignOwnerIfUnclaimed(ctx, projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("assign project owner: %w", err)
	}
	return project, nil
}

// ListAttempts returns the newest claim attempts for a project.
func (r *DBRecorder) ListAttempts(ctx context.Context, projectID string, limit int) ([]models.ClaimAttempt, error) {
	attempts, err := r.attempts.ListByProject(ctx, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("list claim attempts: %w", err)
	}
	return attempts, nil
}
