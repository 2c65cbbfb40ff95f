package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/project-directory/directory/internal/cache"
	"github.com/project-directory/directory/internal/scm"
	"github.com/project-directory/directory/internal/telemetry"
)

const (
	perPage             = 100
	maxContributorPages = 50
)

type githubRepo struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	FullName    string  `json:"full_name"`
	Description *string `json:"description"`
	Private     bool    `json:"private"`
	HTMLURL     string  `json:"html_url"`
	Owner       struct {
		Login string `json:"login"`
		Type  string `json:"type"`
	} `json:"owner"`
}

type githubUserRef struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
	Type      string `json:"type"`
}

type githubContributor struct {
	githubUserRef
	Contributions int `json:"contributions"`
}

type githubIssue struct {
	ID        int64         `json:"id"`
	Number    int           `json:"number"`
	Title     string        `json:"title"`
	State     string        `json:"state"`
	HTMLURL   string        `json:"html_url"`
	User      githubUserRef `json:"user"`
	Comments  int           `json:"comments"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	ClosedAt  *time.Time    `json:"closed_at"`
	Labels    []struct {
		Name string `json:"name"`
	} `json:"labels"`
	PullRequest *struct{} `json:"pull_request"`
}

type githubPull struct {
	NodeID    string     `json:"node_id"`
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	State     string     `json:"state"`
	Draft     bool       `json:"draft"`
	HTMLURL   string     `json:"html_url"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at"`
	MergedAt  *time.Time `json:"merged_at"`
	Head      struct {
		Ref string `json:"ref"`
	} `json:"head"`
	Base struct {
		Ref  string `json:"ref"`
		Repo struct {
			FullName string `json:"full_name"`
			HTMLURL  string `json:"html_url"`
			Private  bool   `json:"private"`
			Owner    struct {
				Login string `json:"login"`
			} `json:"owner"`
		} `json:"repo"`
	} `json:"base"`
}

func repoPath(id scm.Identifier) string {
	return "/repos/" + url.PathEscape(id.Owner) + "/" + url.PathEscape(id.Name)
}

// GetRepository fetches repository metadata, cached for five minutes. Private repositories
// read with a caller's token are not cached.
func (c *Client) GetRepository(ctx context.Context, identifier string) (*scm.RepositoryRecord, error) {
	id, err := scm.ParseIdentifier(identifier)
	if err != nil {
		return nil, err
	}

	return cache.GetOrComputeIf(ctx, c.cache, c.cacheKey("repo", id.String()), repositoryTTL,
		func(ctx context.Context) (*scm.RepositoryRecord, error) {
			var gh githubRepo
			if _, err := c.get(ctx, "get_repository", repoPath(id), &gh); err != nil {
				return nil, err
			}
			rec := convertRepo(&gh)
			if err := rec.Validate(); err != nil {
				return nil, err
			}
			return rec, nil
		}, c.storeRepository)
}

func convertRepo(gh *githubRepo) *scm.RepositoryRecord {
	return &scm.RepositoryRecord{
		ID:          gh.ID,
		Name:        gh.Name,
		FullName:    gh.FullName,
		Description: gh.Description,
		URL:         gh.HTMLURL,
		Private:     gh.Private,
		Owner: scm.RepositoryOwner{
			Login: gh.Owner.Login,
			Type:  scm.OwnerType(gh.Owner.Type),
		},
	}
}

// GetPermissionLevel fetches the collaborator permission of username. Never cached.
func (c *Client) GetPermissionLevel(ctx context.Context, identifier, username string) (scm.PermissionLevel, error) {
	id, err := scm.ParseIdentifier(identifier)
	if err != nil {
		return "", err
	}

	var resp struct {
		Permission string `json:"permission"`
	}
	path := repoPath(id) + "/collaborators/" + url.PathEscape(username) + "/permission"
	if _, err := c.get(ctx, "get_permission_level", path, &resp); err != nil {
		return "", err
	}
	return scm.ParsePermissionLevel(resp.Permission)
}

// ListContributors pages through the contributor list, cached for one hour when read with
// the server's token. Listing stops after maxContributorPages pages even when more are available.
func (c *Client) ListContributors(ctx context.Context, identifier string) ([]scm.ContributorRecord, error) {
	id, err := scm.ParseIdentifier(identifier)
	if err != nil {
		return nil, err
	}

	return cache.GetOrComputeIf(ctx, c.cache, c.cacheKey("contributors", id.String()), contributorsTTL,
		func(ctx context.Context) ([]scm.ContributorRecord, error) {
			contributors := []scm.ContributorRecord{}
			for page := 1; page <= maxContributorPages; page++ {
				var batch []githubContributor
				path := fmt.Sprintf("%s/contributors?per_page=%d&page=%d", repoPath(id), perPage, page)
				header, err := c.get(ctx, "list_contributors", path, &batch)
				if err != nil {
					return nil, err
				}
				for _, gh := range batch {
					contributors = append(contributors, scm.ContributorRecord{
						ID:            gh.ID,
						Login:         gh.Login,
						Contributions: gh.Contributions,
						AvatarURL:     gh.AvatarURL,
						URL:           gh.HTMLURL,
						Type:          gh.Type,
					})
				}
				if len(batch) == 0 || !hasNextPage(header) {
					return contributors, nil
				}
				if page == maxContributorPages {
					slog.Warn("contributor listing truncated at page cap",
						"repository", id.String(), "pages", maxContributorPages, "records", len(contributors))
					telemetry.ProviderPaginationTruncatedTotal.WithLabelValues("list_contributors").Inc()
				}
			}
			return contributors, nil
		}, storeListing[[]scm.ContributorRecord](c))
}

// ListIssues fetches the first page of issues in any state, cached for ten minutes when
// read with the server's token.
// GitHub reports pull requests as issues too; those are dropped.
func (c *Client) ListIssues(ctx context.Context, identifier string) ([]scm.IssueRecord, error) {
	id, err := scm.ParseIdentifier(identifier)
	if err != nil {
		return nil, err
	}

	return cache.GetOrComputeIf(ctx, c.cache, c.cacheKey("issues", id.String()), issuesTTL,
		func(ctx context.Context) ([]scm.IssueRecord, error) {
			var batch []githubIssue
			path := fmt.Sprintf("%s/issues?state=all&per_page=%d", repoPath(id), perPage)
			if _, err := c.get(ctx, "list_issues", path, &batch); err != nil {
				return nil, err
			}

			issues := make([]scm.IssueRecord, 0, len(batch))
			for _, gh := range batch {
				if gh.PullRequest != nil {
					continue
				}
				labels := make([]string, 0, len(gh.Labels))
				for _, l := range gh.Labels {
					labels = append(labels, l.Name)
				}
				issues = append(issues, scm.IssueRecord{
					ID:        gh.ID,
					Number:    gh.Number,
					Title:     gh.Title,
					State:     gh.State,
					URL:       gh.HTMLURL,
					Author:    gh.User.Login,
					Labels:    labels,
					Comments:  gh.Comments,
					CreatedAt: gh.CreatedAt,
					UpdatedAt: gh.UpdatedAt,
					ClosedAt:  gh.ClosedAt,
				})
			}
			return issues, nil
		}, storeListing[[]scm.IssueRecord](c))
}

// ListPullRequests fetches the first page of pull requests in any state, cached for ten
// minutes when read with the server's token.
func (c *Client) ListPullRequests(ctx context.Context, identifier string) ([]scm.PullRequestRecord, error) {
	id, err := scm.ParseIdentifier(identifier)
	if err != nil {
		return nil, err
	}

	return cache.GetOrComputeIf(ctx, c.cache, c.cacheKey("pulls", id.String()), pullRequestsTTL,
		func(ctx context.Context) ([]scm.PullRequestRecord, error) {
			var batch []githubPull
			path := fmt.Sprintf("%s/pulls?state=all&per_page=%d", repoPath(id), perPage)
			if _, err := c.get(ctx, "list_pull_requests", path, &batch); err != nil {
				return nil, err
			}

			pulls := make([]scm.PullRequestRecord, 0, len(batch))
			for _, gh := range batch {
				state := gh.State
				if gh.MergedAt != nil {
					state = scm.PullRequestMerged
				}
				pulls = append(pulls, scm.PullRequestRecord{
					ID:        gh.NodeID,
					Number:    gh.Number,
					Title:     gh.Title,
					State:     state,
					Draft:     gh.Draft,
					CreatedAt: gh.CreatedAt,
					UpdatedAt: gh.UpdatedAt,
					ClosedAt:  gh.ClosedAt,
					MergedAt:  gh.MergedAt,
					URL:       gh.HTMLURL,
					HeadRef:   gh.Head.Ref,
					BaseRef:   gh.Base.Ref,
					Repository: scm.PullRequestRepository{
						NameWithOwner: gh.Base.Repo.FullName,
						URL:           gh.Base.Repo.HTMLURL,
						Private:       gh.Base.Repo.Private,
						OwnerLogin:    gh.Base.Repo.Owner.Login,
					},
				})
			}
			return pulls, nil
		}, storeListing[[]scm.PullRequestRecord](c))
}

// GetRepositoryOverview fetches the repository and its contributor, issue and pull request
// listings concurrently. The first failure cancels the remaining requests.
func (c *Client) GetRepositoryOverview(ctx context.Context, identifier string) (*scm.RepositoryOverview, error) {
	if _, err := scm.ParseIdentifier(identifier); err != nil {
		return nil, err
	}

	var overview scm.RepositoryOverview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		overview.Repository, err = c.GetRepository(gctx, identifier)
		return err
	})
	g.Go(func() (err error) {
		overview.Contributors, err = c.ListContributors(gctx, identifier)
		return err
	})
	g.Go(func() (err error) {
		overview.Issues, err = c.ListIssues(gctx, identifier)
		return err
	})
	g.Go(func() (err error) {
		overview.PullRequests, err = c.ListPullRequests(gctx, identifier)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &overview, nil
}
