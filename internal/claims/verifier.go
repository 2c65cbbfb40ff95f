// Package claims decides whether the authenticated caller owns a repository and, if so,
// assigns them as owner of the corresponding project exactly once.
//
// Verification runs these steps in order, stopping at the first grant:
//
//  1. resolve the caller's identity
//  2. resolve the repository
//  3. the caller is the repository owner
//  4. for organization repositories: the caller has admin permission (confirmed against
//     organization membership when possible), or is an active organization admin
//
// Failures in steps 1 and 2 abort the attempt without recording it. A denial records a
// failing attempt. A grant assigns the owner with a conditional update and then records
// the successful attempt.
package claims

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/project-directory/directory/internal/db/models"
	"github.com/project-directory/directory/internal/scm"
	"github.com/project-directory/directory/internal/telemetry"
)

// OwnershipLookup is the subset of scm.Provider used to verify ownership.
type OwnershipLookup interface {
	CurrentIdentity(ctx context.Context) (*scm.Identity, error)
	GetRepository(ctx context.Context, identifier string) (*scm.RepositoryRecord, error)
	GetPermissionLevel(ctx context.Context, identifier, username string) (scm.PermissionLevel, error)
	GetOrgMembership(ctx context.Context, org, username string) (*scm.OrgMembership, error)
}

// Result describes a successful claim.
type Result struct {
	Project       *models.Project       `json:"project"`
	OwnershipType string                `json:"ownership_type"`
	Identity      *scm.Identity         `json:"identity"`
	Repository    *scm.RepositoryRecord `json:"repository"`
}

// Verifier verifies repository ownership and records claims.
type Verifier struct {
	provider OwnershipLookup
	recorder Recorder
}

// NewVerifier creates a Verifier. provider must act as the claiming caller.
func NewVerifier(provider OwnershipLookup, recorder Recorder) *Verifier {
	return &Verifier{provider: provider, recorder: recorder}
}

// Verify checks that the session user owns the repository named by identifier and, if so,
// makes them the owner of projectID.
//
// Errors: ErrMissingSession without a session user; scm errors from identity or repository
// resolution; *AuthorizationError on denial; ErrConflict when the project is already owned.
func (v *Verifier) Verify(ctx context.Context, identifier, projectID string) (*Result, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, ErrMissingSession
	}

	identity, err := v.provider.CurrentIdentity(ctx)
	if err != nil {
		telemetry.ClaimAttemptsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("resolve identity: %w", err)
	}

	repo, err := v.provider.GetRepository(ctx, identifier)
	if err != nil {
		telemetry.ClaimAttemptsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("resolve repository: %w", err)
	}

	logger := slog.With("project_id", projectID, "user_id", userID, "login", identity.Login, "repository", identifier)

	decision := decide(ctx, v.provider, identifier, identity, repo)
	if decision.Outcome != Granted {
		return nil, v.deny(ctx, logger, projectID, userID, identity, repo, decision)
	}

	project, err := v.recorder.AssignOwner(ctx, projectID, userID)
	if err != nil {
		telemetry.ClaimAttemptsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if project == nil {
		telemetry.ClaimAttemptsTotal.WithLabelValues("conflict").Inc()
		logger.Info("claim lost: project already owned")
		return nil, ErrConflict
	}

	details := evidence(identity, repo)
	details.OwnershipType = decision.OwnershipType
	details.RepositoryURL = repo.URL
	attempt := &models.ClaimAttempt{
		ProjectID:           projectID,
		UserID:              userID,
		Success:             true,
		VerificationMethod:  models.VerificationMethodProviderAPI,
		VerificationDetails: mustJSON(details),
	}
	if err := v.recorder.RecordAttempt(ctx, attempt); err != nil {
		// The owner is already assigned; only the audit row is missing.
		logger.Error("failed to record successful claim attempt", "error", err)
	}

	telemetry.ClaimAttemptsTotal.WithLabelValues("success").Inc()
	logger.Info("project claimed", "ownership_type", decision.OwnershipType)

	return &Result{
		Project:       project,
		OwnershipType: decision.OwnershipType,
		Identity:      identity,
		Repository:    repo,
	}, nil
}

func (v *Verifier) deny(ctx context.Context, logger *slog.Logger, projectID, userID string, identity *scm.Identity, repo *scm.RepositoryRecord, decision Decision) error {
	reason := models.ReasonInsufficientPermissions
	details := evidence(identity, repo)
	details.Reason = reason
	attempt := &models.ClaimAttempt{
		ProjectID:           projectID,
		UserID:              userID,
		Success:             false,
		VerificationMethod:  models.VerificationMethodProviderAPI,
		VerificationDetails: mustJSON(details),
		ErrorReason:         &reason,
	}
	if err := v.recorder.RecordAttempt(ctx, attempt); err != nil {
		telemetry.ClaimAttemptsTotal.WithLabelValues("error").Inc()
		return err
	}

	telemetry.ClaimAttemptsTotal.WithLabelValues("denied").Inc()
	if decision.Err != nil {
		logger.Info("claim denied", "owner", repo.Owner.Login, "lookup_error", decision.Err)
	} else {
		logger.Info("claim denied", "owner", repo.Owner.Login)
	}
	return &AuthorizationError{Attempted: identity.Login, Owner: repo.Owner.Login}
}

func evidence(identity *scm.Identity, repo *scm.RepositoryRecord) models.VerificationDetails {
	return models.VerificationDetails{
		VerifiedIdentity: identity.Login,
		RepositoryOwner:  repo.Owner.Login,
		OwnerType:        string(repo.Owner.Type),
	}
}

func mustJSON(v models.VerificationDetails) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		// VerificationDetails holds only strings.
		panic(err)
	}
	return raw
}
