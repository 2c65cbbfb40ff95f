package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/project-directory/directory/internal/scm"
)

const defaultUserPullRequestLimit = 100

const userPullRequestsQuery = `query($username: String!, $first: Int!, $after: String) {
  user(login: $username) {
    pullRequests(first: $first, after: $after, orderBy: {field: CREATED_AT, direction: DESC}) {
      pageInfo { hasNextPage endCursor }
      nodes {
        id number title state isDraft
        createdAt updatedAt closedAt mergedAt
        url headRefName baseRefName
        repository { nameWithOwner url isPrivate owner { login } }
      }
    }
  }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type graphqlPullRequest struct {
	ID          string     `json:"id"`
	Number      int        `json:"number"`
	Title       string     `json:"title"`
	State       string     `json:"state"`
	IsDraft     bool       `json:"isDraft"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	ClosedAt    *time.Time `json:"closedAt"`
	MergedAt    *time.Time `json:"mergedAt"`
	URL         string     `json:"url"`
	HeadRefName string     `json:"headRefName"`
	BaseRefName string     `json:"baseRefName"`
	Repository  struct {
		NameWithOwner string `json:"nameWithOwner"`
		URL           string `json:"url"`
		IsPrivate     bool   `json:"isPrivate"`
		Owner         struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"repository"`
}

type userPullRequestsResponse struct {
	Data struct {
		User *struct {
			PullRequests struct {
				PageInfo struct {
					HasNextPage bool    `json:"hasNextPage"`
					EndCursor   *string `json:"endCursor"`
				} `json:"pageInfo"`
				Nodes []graphqlPullRequest `json:"nodes"`
			} `json:"pullRequests"`
		} `json:"user"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

// ListUserPullRequests walks the user's pull requests newest first until limit records
// have been read or no pages remain, then keeps those matching filter. A non-positive
// limit reads up to defaultUserPullRequestLimit records. Never cached.
func (c *Client) ListUserPullRequests(ctx context.Context, username string, filter scm.StateFilter, limit int) ([]scm.PullRequestRecord, error) {
	filter, err := scm.ParseStateFilter(string(filter))
	if err != nil {
		return nil, err
	}
	if username == "" {
		return nil, fmt.Errorf("github: list_user_pull_requests: %w", scm.ErrNotFound)
	}
	if limit <= 0 {
		limit = defaultUserPullRequestLimit
	}

	var fetched []graphqlPullRequest
	var after *string
	for len(fetched) < limit {
		req := graphqlRequest{
			Query: userPullRequestsQuery,
			Variables: map[string]any{
				"username": username,
				"first":    min(perPage, limit-len(fetched)),
				"after":    after,
			},
		}

		var resp userPullRequestsResponse
		if _, err := c.do(ctx, "list_user_pull_requests", "POST", c.graphqlURL, req, &resp); err != nil {
			return nil, err
		}
		if resp.Data.User == nil {
			if len(resp.Errors) > 0 && resp.Errors[0].Type != "NOT_FOUND" {
				return nil, scm.NewAPIError(0, "list_user_pull_requests failed", errors.New(joinGraphQLErrors(resp.Errors)))
			}
			return nil, fmt.Errorf("github: list_user_pull_requests %q: %w", username, scm.ErrNotFound)
		}
		if len(resp.Errors) > 0 {
			slog.WarnContext(ctx, "github: partial graphql response",
				"operation", "list_user_pull_requests", "username", username, "errors", joinGraphQLErrors(resp.Errors))
		}

		conn := resp.Data.User.PullRequests
		fetched = append(fetched, conn.Nodes...)
		if !conn.PageInfo.HasNextPage || conn.PageInfo.EndCursor == nil || len(conn.Nodes) == 0 {
			break
		}
		after = conn.PageInfo.EndCursor
	}
	if len(fetched) > limit {
		fetched = fetched[:limit]
	}

	pulls := make([]scm.PullRequestRecord, 0, len(fetched))
	for i := range fetched {
		pr := convertGraphQLPull(&fetched[i])
		if filter.Matches(&pr) {
			pulls = append(pulls, pr)
		}
	}
	return pulls, nil
}

func convertGraphQLPull(gh *graphqlPullRequest) scm.PullRequestRecord {
	return scm.PullRequestRecord{
		ID:        gh.ID,
		Number:    gh.Number,
		Title:     gh.Title,
		State:     strings.ToLower(gh.State),
		Draft:     gh.IsDraft,
		CreatedAt: gh.CreatedAt,
		UpdatedAt: gh.UpdatedAt,
		ClosedAt:  gh.ClosedAt,
		MergedAt:  gh.MergedAt,
		URL:       gh.URL,
		HeadRef:   gh.HeadRefName,
		BaseRef:   gh.BaseRefName,
		Repository: scm.PullRequestRepository{
			NameWithOwner: gh.Repository.NameWithOwner,
			URL:           gh.Repository.URL,
			Private:       gh.Repository.IsPrivate,
			OwnerLogin:    gh.Repository.Owner.Login,
		},
	}
}

func joinGraphQLErrors(errs []graphqlError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}
