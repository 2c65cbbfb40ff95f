package github

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/project-directory/directory/internal/cache"
	"github.com/project-directory/directory/internal/scm"
)

type githubUser struct {
	githubUserRef
	Name        *string   `json:"name"`
	Company     *string   `json:"company"`
	Blog        *string   `json:"blog"`
	Location    *string   `json:"location"`
	Bio         *string   `json:"bio"`
	PublicRepos int       `json:"public_repos"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	CreatedAt   time.Time `json:"created_at"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// CurrentIdentity resolves the account owning the client's token. Never cached.
func (c *Client) CurrentIdentity(ctx context.Context) (*scm.Identity, error) {
	var gh githubUserRef
	if _, err := c.get(ctx, "current_identity", "/user", &gh); err != nil {
		return nil, err
	}
	if gh.ID == 0 || gh.Login == "" {
		return nil, scm.NewAPIError(0, "malformed current_identity response", errors.New("missing id or login"))
	}
	return &scm.Identity{ID: gh.ID, Login: gh.Login}, nil
}

// GetOrgMembership fetches the membership of username in org. Never cached.
func (c *Client) GetOrgMembership(ctx context.Context, org, username string) (*scm.OrgMembership, error) {
	var resp struct {
		Role  string `json:"role"`
		State string `json:"state"`
	}
	path := "/orgs/" + url.PathEscape(org) + "/memberships/" + url.PathEscape(username)
	if _, err := c.get(ctx, "get_org_membership", path, &resp); err != nil {
		return nil, err
	}
	if resp.Role == "" || resp.State == "" {
		return nil, scm.NewAPIError(0, "malformed get_org_membership response", errors.New("missing role or state"))
	}
	return &scm.OrgMembership{
		Role:  scm.MembershipRole(resp.Role),
		State: scm.MembershipState(resp.State),
	}, nil
}

// GetUserDetails fetches a user profile, cached for thirty minutes.
func (c *Client) GetUserDetails(ctx context.Context, username string) (*scm.UserRecord, error) {
	if username == "" {
		return nil, scm.ErrNotFound
	}

	return cache.GetOrCompute(ctx, c.cache, c.cacheKey("user", username), userTTL,
		func(ctx context.Context) (*scm.UserRecord, error) {
			var gh githubUser
			if _, err := c.get(ctx, "get_user_details", "/users/"+url.PathEscape(username), &gh); err != nil {
				return nil, err
			}
			if gh.ID == 0 || gh.Login == "" {
				return nil, scm.NewAPIError(0, "malformed get_user_details response", errors.New("missing id or login"))
			}
			return &scm.UserRecord{
				ID:          gh.ID,
				Login:       gh.Login,
				Name:        deref(gh.Name),
				Company:     deref(gh.Company),
				Blog:        deref(gh.Blog),
				Location:    deref(gh.Location),
				Bio:         deref(gh.Bio),
				AvatarURL:   gh.AvatarURL,
				URL:         gh.HTMLURL,
				Type:        gh.Type,
				PublicRepos: gh.PublicRepos,
				Followers:   gh.Followers,
				Following:   gh.Following,
				CreatedAt:   gh.CreatedAt,
			}, nil
		})
}
