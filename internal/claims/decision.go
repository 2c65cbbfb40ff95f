package claims

import (
	"context"
	"log/slog"
	"strings"

	"github.com/project-directory/directory/internal/scm"
)

// Outcome is the result of a single ownership check.
type Outcome int

const (
	// Inconclusive means the check could not decide and the next check should run.
	Inconclusive Outcome = iota
	// Granted means the caller owns or administers the repository.
	Granted
	// Denied means the caller does not, and no further checks run.
	Denied
)

func (o Outcome) String() string {
	switch o {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return "inconclusive"
	}
}

// Ownership types recorded on successful claims
const (
	OwnershipRepositoryOwner   = "repository owner"
	OwnershipOrganizationOwner = "organization owner"
	OwnershipRepositoryAdmin   = "repository admin"
)

// Decision is the outcome of an ownership check. OwnershipType is set only when Granted.
// Err holds a lookup failure that was absorbed into the outcome.
type Decision struct {
	Outcome       Outcome
	OwnershipType string
	Err           error
}

func granted(ownershipType string) Decision {
	return Decision{Outcome: Granted, OwnershipType: ownershipType}
}

// checkDirectOwnership grants ownership when the caller is the repository's owner account.
func checkDirectOwnership(identity *scm.Identity, repo *scm.RepositoryRecord) Decision {
	if strings.EqualFold(identity.Login, repo.Owner.Login) {
		return granted(OwnershipRepositoryOwner)
	}
	return Decision{Outcome: Inconclusive}
}

// checkAdminPermission inspects the caller's collaborator permission on an organization
// repository. Admins who are active organization admins are organization owners. When the
// membership lookup fails the admin permission is accepted on its own. Admins with a
// verified non-admin membership are denied. Any other result is inconclusive.
func checkAdminPermission(ctx context.Context, p OwnershipLookup, identifier string, identity *scm.Identity, repo *scm.RepositoryRecord) Decision {
	level, err := p.GetPermissionLevel(ctx, identifier, identity.Login)
	if err != nil {
		return Decision{Outcome: Inconclusive, Err: err}
	}
	if level != scm.PermissionAdmin {
		return Decision{Outcome: Inconclusive}
	}

	membership, err := p.GetOrgMembership(ctx, repo.Owner.Login, identity.Login)
	if err != nil {
		slog.WarnContext(ctx, "granting claim on admin permission alone, organization membership unverified",
			"login", identity.Login, "repository", identifier, "error", err)
		d := granted(OwnershipRepositoryAdmin)
		d.Err = err
		return d
	}
	if membership.IsActiveAdmin() {
		return granted(OwnershipOrganizationOwner)
	}
	return Decision{Outcome: Denied}
}

// checkOrgAdmin grants ownership to active administrators of the owning organization.
func checkOrgAdmin(ctx context.Context, p OwnershipLookup, org string, identity *scm.Identity) Decision {
	membership, err := p.GetOrgMembership(ctx, org, identity.Login)
	if err != nil {
		return Decision{Outcome: Denied, Err: err}
	}
	if membership.IsActiveAdmin() {
		return granted(OwnershipOrganizationOwner)
	}
	return Decision{Outcome: Denied}
}

// decide runs the ownership checks in order and returns the first conclusive decision.
func decide(ctx context.Context, p OwnershipLookup, identifier string, identity *scm.Identity, repo *scm.RepositoryRecord) Decision {
	if d := checkDirectOwnership(identity, repo); d.Outcome == Granted {
		return d
	}
	if repo.Owner.Type != scm.OwnerOrganization {
		return Decision{Outcome: Denied}
	}
	if d := checkAdminPermission(ctx, p, identifier, identity, repo); d.Outcome != Inconclusive {
		return d
	}
	return checkOrgAdmin(ctx, p, repo.Owner.Login, identity)
}
