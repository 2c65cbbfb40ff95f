// Package scm defines the provider-agnostic interface to source control hosting providers,
// the normalized records they return and the registry used to instantiate them. Providers
// are added by implementing Provider and registering a builder for their ProviderType.
package scm

import (
	"context"
	"fmt"
	"time"

	"github.com/project-directory/directory/internal/cache"
)

// Provider defines the operations available on a hosting provider.
//
// Repository, contributor, issue, pull request and user lookups are served through the
// provider's cache. Identity, permission and membership lookups always go upstream.
type Provider interface {
	// Kind returns the provider type
	Kind() ProviderType

	// WithToken returns a provider acting as the holder of token. The cache, rate limiter
	// and transport are shared with the receiver.
	WithToken(token string) Provider

	// CurrentIdentity resolves the authenticated caller
	CurrentIdentity(ctx context.Context) (*Identity, error)

	// GetRepository fetches repository metadata for an owner/name identifier
	GetRepository(ctx context.Context, identifier string) (*RepositoryRecord, error)

	// GetPermissionLevel fetches username's collaborator permission on a repository
	GetPermissionLevel(ctx context.Context, identifier, username string) (PermissionLevel, error)

	// GetOrgMembership fetches username's membership in org
	GetOrgMembership(ctx context.Context, org, username string) (*OrgMembership, error)

	// ListContributors lists all contributors of a repository, up to the page cap
	ListContributors(ctx context.Context, identifier string) ([]ContributorRecord, error)

	// ListIssues lists the first page of issues in any state
	ListIssues(ctx context.Context, identifier string) ([]IssueRecord, error)

	// ListPullRequests lists the first page of pull requests in any state
	ListPullRequests(ctx context.Context, identifier string) ([]PullRequestRecord, error)

	// GetUserDetails fetches a user profile
	GetUserDetails(ctx context.Context, username string) (*UserRecord, error)

	// ListUserPullRequests lists up to limit pull requests authored by username
	ListUserPullRequests(ctx context.Context, username string, filter StateFilter, limit int) ([]PullRequestRecord, error)

	// GetRepositoryOverview fetches the repository and its listings together
	GetRepositoryOverview(ctx context.Context, identifier string) (*RepositoryOverview, error)
}

// ProviderSettings holds configuration for creating a provider
type ProviderSettings struct {
	Kind       ProviderType
	APIURL     string // empty for the public cloud endpoint
	GraphQLURL string // empty for the public cloud endpoint
	Token      string // default token used when no caller token is supplied
	Timeout    time.Duration

	// Outbound rate limiting; zero disables it
	RequestsPerSecond float64
	Burst             int

	Cache cache.Cache
}

// Validate validates the provider settings
func (s *ProviderSettings) Validate() error {
	if !s.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidProviderType, s.Kind)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if s.RequestsPerSecond < 0 || s.Burst < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	return nil
}
