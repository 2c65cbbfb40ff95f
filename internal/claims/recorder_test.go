package claims

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-directory/directory/internal/db/models"
	"github.com/project-directory/directory/internal/db/repositories"
	"github.com/project-directory/directory/internal/scm"
)

func newDBRecorder(t *testing.T) (*DBRecorder, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewDBRecorder(repositories.NewProjectRepository(sqlxDB), repositories.NewClaimAttemptRepository(sqlxDB)), mock
}

var projectCols = []string{"id", "name", "repository_url", "owner_id", "created_at", "updated_at"}

func TestDBRecorder_SuccessfulClaimUpdatesThenRecords(t *testing.T) {
	rec, mock := newDBRecorder(t)
	mock.ExpectQuery("UPDATE projects").
		WithArgs("proj-1", "user-1").
		WillReturnRows(sqlmock.NewRows(projectCols).AddRow("proj-1", "Hello", nil, "user-1", time.Now(), time.Now()))
	mock.ExpectExec("INSERT INTO claim_attempts").
		WillReturnResult(sqlmock.NewResult(0, 1))

	p := &fakeProvider{identity: &scm.Identity{ID: 1, Login: "octocat"}, repo: userRepo()}
	res, err := NewVerifier(p, rec).Verify(sessionCtx("user-1"), "octocat/Hello-World", "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", *res.Project.OwnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBRecorder_ConflictWritesNoRecord(t *testing.T) {
	rec, mock := newDBRecorder(t)
	mock.ExpectQuery("UPDATE projects").
		WithArgs("proj-1", "user-2").
		WillReturnRows(sqlmock.NewRows(projectCols))

	p := &fakeProvider{identity: &scm.Identity{ID: 1, Login: "octocat"}, repo: userRepo()}
	_, err := NewVerifier(p, rec).Verify(sessionCtx("user-2"), "octocat/Hello-World", "proj-1")
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet(), "no INSERT may follow a lost race")
}

func TestDBRecorder_ListAttempts(t *testing.T) {
	rec, mock := newDBRecorder(t)
	mock.ExpectQuery("SELECT .* FROM claim_attempts").
		WithArgs("proj-1", 5).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "project_id", "user_id", "success", "verification_method",
			"verification_details", "error_reason", "created_at",
		}).AddRow("9b2f3c1e-2f8e-4c36-9f0a-5c1d2e3f4a5b", "proj-1", "user-1", true,
			models.VerificationMethodProviderAPI, []byte(`{}`), nil, time.Now()))

	attempts, err := rec.ListAttempts(context.Background(), "proj-1", 5)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.True(t, attempts[0].Success)
}
