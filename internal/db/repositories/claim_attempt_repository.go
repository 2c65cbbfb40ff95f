package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/project-directory/directory/internal/db/models"
)

// DefaultAttemptListLimit caps attempt history queries when no limit is given
const DefaultAttemptListLimit = 50

// ClaimAttemptRepository handles claim attempt database operations.
// Attempts are append-only: there is no update or delete.
type ClaimAttemptRepository struct {
	db *sqlx.DB
}

// NewClaimAttemptRepository creates a new ClaimAttemptRepository
func NewClaimAttemptRepository(db *sqlx.DB) *ClaimAttemptRepository {
	return &ClaimAttemptRepository{db: db}
}

// Create inserts a claim attempt, assigning its ID and timestamp
func (r *ClaimAttemptRepository) Create(ctx context.Context, attempt *models.ClaimAttempt) error {
	attempt.ID = uuid.New()
	attempt.CreatedAt = time.Now().UTC()
	if len(attempt.VerificationDetails) == 0 {
		attempt.VerificationDetails = []byte("{}")
	}

	query := `
		INSERT INTO claim_attempts (id, project_id, user_id, success, verification_method,
			verification_details, error_reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		attempt.ID,
		attempt.ProjectID,
		attempt.UserID,
		attempt.Success,
		attempt.VerificationMethod,
		[]byte(attempt.VerificationDetails),
		attempt.ErrorReason,
		attempt.CreatedAt,
	)
	return translateError(err)
}

// ListByProject returns the most recent attempts for a project, newest first
func (r *ClaimAttemptRepository) ListByProject(ctx context.Context, projectID string, limit int) ([]models.ClaimAttempt, error) {
	if limit <= 0 {
		limit = DefaultAttemptListLimit
	}

	query := `
		SELECT id, project_id, user_id, success, verification_method, verification_details,
			error_reason, created_at
		FROM claim_attempts
		WHERE project_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	attempts := []models.ClaimAttempt{}
	if err := r.db.SelectContext(ctx, &attempts, query, projectID, limit); err != nil {
		return nil, err
	}
	return attempts, nil
}

// CountSuccessful returns how many successful attempts exist for a project
func (r *ClaimAttemptRepository) CountSuccessful(ctx context.Context, projectID string) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM claim_attempts WHERE project_id = $1 AND success`
	if err := r.db.GetContext(ctx, &n, query, projectID); err != nil {
		return 0, err
	}
	return n, nil
}
