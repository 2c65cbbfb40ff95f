// types.go declares the normalized records returned by provider implementations. Records are
// validated at the provider boundary so callers never see half-populated upstream shapes.
package scm

import (
	"fmt"
	"strings"
	"time"
)

// ProviderType represents the type of SCM provider
type ProviderType string

const (
	ProviderGitHub ProviderType = "github"
)

// Valid returns true if the provider type is valid
func (p ProviderType) Valid() bool {
	switch p {
	case ProviderGitHub:
		return true
	default:
		return false
	}
}

// String returns the string representation of the provider type
func (p ProviderType) String() string {
	return string(p)
}

// OwnerType is the kind of account owning a repository.
type OwnerType string

const (
	OwnerUser         OwnerType = "User"
	OwnerOrganization OwnerType = "Organization"
)

// ParseOwnerType validates an upstream owner type.
func ParseOwnerType(s string) (OwnerType, error) {
	switch OwnerType(s) {
	case OwnerUser, OwnerOrganization:
		return OwnerType(s), nil
	default:
		return "", NewAPIError(0, "unexpected owner type", fmt.Errorf("%q", s))
	}
}

// Identity is the authenticated caller's provider account.
type Identity struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// RepositoryOwner names the account owning a repository.
type RepositoryOwner struct {
	Login string    `json:"login"`
	Type  OwnerType `json:"type"`
}

// RepositoryRecord is a snapshot of repository metadata.
type RepositoryRecord struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	FullName    string          `json:"full_name"`
	Description *string         `json:"description,omitempty"`
	URL         string          `json:"url"`
	Private     bool            `json:"private"`
	Owner       RepositoryOwner `json:"owner"`
}

// Validate checks the required fields of a repository record.
func (r *RepositoryRecord) Validate() error {
	var missing []string
	if r.ID == 0 {
		missing = append(missing, "id")
	}
	if r.Name == "" {
		missing = append(missing, "name")
	}
	if r.URL == "" {
		missing = append(missing, "url")
	}
	if r.Owner.Login == "" {
		missing = append(missing, "owner.login")
	}
	if len(missing) > 0 {
		return NewAPIError(0, "malformed repository response", fmt.Errorf("missing %s", strings.Join(missing, ", ")))
	}
	if _, err := ParseOwnerType(string(r.Owner.Type)); err != nil {
		return err
	}
	return nil
}

// PermissionLevel is a caller's collaborator access tier on a repository.
type PermissionLevel string

const (
	PermissionNone  PermissionLevel = "none"
	PermissionRead  PermissionLevel = "read"
	PermissionWrite PermissionLevel = "write"
	PermissionAdmin PermissionLevel = "admin"
)

// ParsePermissionLevel normalizes an upstream permission string. Intermediate tiers
// are folded into the nearest lower level: maintain is write, triage is read.
func ParsePermissionLevel(s string) (PermissionLevel, error) {
	switch strings.ToLower(s) {
	case "admin":
		return PermissionAdmin, nil
	case "write", "maintain":
		return PermissionWrite, nil
	case "read", "triage":
		return PermissionRead, nil
	case "none":
		return PermissionNone, nil
	default:
		return "", NewAPIError(0, "unexpected permission level", fmt.Errorf("%q", s))
	}
}

// MembershipRole is a caller's role within an organization.
type MembershipRole string

const (
	RoleMember MembershipRole = "member"
	RoleAdmin  MembershipRole = "admin"
)

// MembershipState reports whether an organization invitation has been accepted.
type MembershipState string

const (
	StateActive  MembershipState = "active"
	StatePending MembershipState = "pending"
)

// OrgMembership is a caller's role and state within an organization.
type OrgMembership struct {
	Role  MembershipRole  `json:"role"`
	State MembershipState `json:"state"`
}

// IsActiveAdmin reports whether the membership grants organization ownership.
func (m *OrgMembership) IsActiveAdmin() bool {
	return m != nil && m.Role == RoleAdmin && m.State == StateActive
}

// ContributorRecord is one entry of a repository's contributor list.
type ContributorRecord struct {
	ID            int64  `json:"id"`
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
	AvatarURL     string `json:"avatar_url"`
	URL           string `json:"url"`
	Type          string `json:"type"`
}

// IssueRecord is a repository issue. Pull requests are never represented as issues.
type IssueRecord struct {
	ID        int64      `json:"id"`
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	State     string     `json:"state"`
	URL       string     `json:"url"`
	Author    string     `json:"author"`
	Labels    []string   `json:"labels"`
	Comments  int        `json:"comments"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// PullRequestRepository is the repository a pull request belongs to.
type PullRequestRepository struct {
	NameWithOwner string `json:"name_with_owner"`
	URL           string `json:"url"`
	Private       bool   `json:"private"`
	OwnerLogin    string `json:"owner_login"`
}

// PullRequest states, normalized to lower case.
const (
	PullRequestOpen   = "open"
	PullRequestClosed = "closed"
	PullRequestMerged = "merged"
)

// PullRequestRecord is a pull request as reported by the provider.
type PullRequestRecord struct {
	ID         string                `json:"id"`
	Number     int                   `json:"number"`
	Title      string                `json:"title"`
	State      string                `json:"state"`
	Draft      bool                  `json:"draft"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
	ClosedAt   *time.Time            `json:"closed_at,omitempty"`
	MergedAt   *time.Time            `json:"merged_at,omitempty"`
	URL        string                `json:"url"`
	HeadRef    string                `json:"head_ref"`
	BaseRef    string                `json:"base_ref"`
	Repository PullRequestRepository `json:"repository"`
}

// StateFilter selects pull requests by state.
type StateFilter string

const (
	FilterOpen   StateFilter = "open"
	FilterClosed StateFilter = "closed"
	FilterMerged StateFilter = "merged"
	FilterAll    StateFilter = "all"
)

// ParseStateFilter validates a filter string. The empty string selects all.
func ParseStateFilter(s string) (StateFilter, error) {
	switch StateFilter(strings.ToLower(s)) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterOpen:
		return FilterOpen, nil
	case FilterClosed:
		return FilterClosed, nil
	case FilterMerged:
		return FilterMerged, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStateFilter, s)
	}
}

// Matches reports whether pr passes the filter. Closed excludes merged pull requests;
// merged is decided by the merge timestamp alone.
func (f StateFilter) Matches(pr *PullRequestRecord) bool {
	merged := pr.MergedAt != nil
	switch f {
	case FilterOpen:
		return pr.State == PullRequestOpen
	case FilterClosed:
		return pr.State == PullRequestClosed && !merged
	case FilterMerged:
		return merged
	default:
		return true
	}
}

// UserRecord is a provider account profile.
type UserRecord struct {
	ID          int64     `json:"id"`
	Login       string    `json:"login"`
	Name        string    `json:"name,omitempty"`
	Company     string    `json:"company,omitempty"`
	Blog        string    `json:"blog,omitempty"`
	Location    string    `json:"location,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	AvatarURL   string    `json:"avatar_url"`
	URL         string    `json:"url"`
	Type        string    `json:"type"`
	PublicRepos int       `json:"public_repos"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	CreatedAt   time.Time `json:"created_at"`
}

// RepositoryOverview bundles the listings shown on a repository page.
type RepositoryOverview struct {
	Repository   *RepositoryRecord   `json:"repository"`
	Contributors []ContributorRecord `json:"contributors"`
	Issues       []IssueRecord       `json:"issues"`
	PullRequests []PullRequestRecord `json:"pull_requests"`
}
