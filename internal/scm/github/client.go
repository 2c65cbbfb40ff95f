// Package github implements scm.Provider for GitHub (github.com and GitHub Enterprise Server).
// Repository data comes from the REST API v3; a user's pull requests come from the GraphQL API v4.
// Requests are authenticated with an OAuth2 bearer token and cacheable lookups are served
// through the injected cache.Cache.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/project-directory/directory/internal/cache"
	"github.com/project-directory/directory/internal/cache/noop"
	"github.com/project-directory/directory/internal/scm"
	"github.com/project-directory/directory/internal/telemetry"
)

const (
	defaultAPIURL  = "https://api.github.com"
	defaultTimeout = 15 * time.Second
	apiVersion     = "2022-11-28"

	cacheNamespace = "github"
)

// Cache freshness windows per entity kind.
const (
	repositoryTTL   = 5 * time.Minute
	contributorsTTL = time.Hour
	issuesTTL       = 10 * time.Minute
	pullRequestsTTL = 10 * time.Minute
	userTTL         = 30 * time.Minute
)

// Client implements scm.Provider for GitHub.
type Client struct {
	apiURL     string
	graphqlURL string
	token      string
	// serverToken is the configured token; clients holding any other token act for a caller.
	serverToken string

	// base carries the timeout and transport; http adds authentication on top of it.
	base *http.Client
	http *http.Client

	cache   cache.Cache
	limiter *rate.Limiter
}

var _ scm.Provider = (*Client)(nil)

// NewClient creates a GitHub client from provider settings. A nil settings.Cache disables caching.
func NewClient(settings *scm.ProviderSettings) (*Client, error) {
	apiURL := defaultAPIURL
	if settings.APIURL != "" {
		apiURL = strings.TrimRight(settings.APIURL, "/")
	}

	graphqlURL := settings.GraphQLURL
	if graphqlURL == "" {
		// GitHub Enterprise serves REST under /api/v3 and GraphQL under /api/graphql.
		graphqlURL = strings.TrimSuffix(apiURL, "/v3") + "/graphql"
	}

	timeout := settings.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	c := settings.Cache
	if c == nil {
		c = noop.New()
	}

	var limiter *rate.Limiter
	if settings.RequestsPerSecond > 0 {
		burst := settings.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(settings.RequestsPerSecond), burst)
	}

	client := &Client{
		apiURL:      apiURL,
		graphqlURL:  graphqlURL,
		serverToken: settings.Token,
		base:        &http.Client{Timeout: timeout},
		cache:       c,
		limiter:     limiter,
	}
	return client.withToken(settings.Token), nil
}

// Kind returns the provider type
func (c *Client) Kind() scm.ProviderType {
	return scm.ProviderGitHub
}

// WithToken returns a client authenticated as the holder of token. The returned client
// shares the cache, rate limiter and transport with c.
func (c *Client) WithToken(token string) scm.Provider {
	return c.withToken(token)
}

func (c *Client) withToken(token string) *Client {
	cp := *c
	cp.token = token
	if token == "" {
		cp.http = c.base
		return &cp
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.base)
	cp.http = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	cp.http.Timeout = c.base.Timeout
	return &cp
}

func (c *Client) cacheKey(kind, id string) cache.Key {
	return cache.Key{Namespace: cacheNamespace, Kind: kind, ID: id}
}

// actsForCaller reports whether c authenticates with a token other than the server's.
// Cache keys carry no credentials, so what such a client may see is not necessarily
// visible to every reader of the shared cache.
func (c *Client) actsForCaller() bool {
	return c.token != c.serverToken
}

// storeRepository keeps private repositories fetched with a caller token out of the cache.
func (c *Client) storeRepository(rec *scm.RepositoryRecord) bool {
	return !c.actsForCaller() || !rec.Private
}

// storeListing caches repository listings only for the server's own token; a listing
// does not say whether its repository is private.
func storeListing[T any](c *Client) func(T) bool {
	return func(T) bool { return !c.actsForCaller() }
}

// Helper methods

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
}

// get issues a GET against the REST API and decodes the response into out.
func (c *Client) get(ctx context.Context, operation, path string, out any) (http.Header, error) {
	return c.do(ctx, operation, http.MethodGet, c.apiURL+path, nil, out)
}

// do sends a request and decodes a JSON response into out. A 404 maps to scm.ErrNotFound;
// any other non-2xx status, transport failure or undecodable body is an *scm.APIError.
func (c *Client) do(ctx context.Context, operation, method, endpoint string, body any, out any) (http.Header, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, scm.WrapRemoteError(0, "rate limit wait cancelled", err)
		}
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, scm.WrapRemoteError(0, "encode "+operation+" request", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, scm.WrapRemoteError(0, "create "+operation+" request", err)
	}
	c.setHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	telemetry.ProviderRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		telemetry.ProviderRequestsTotal.WithLabelValues(operation, "error").Inc()
		return nil, scm.WrapRemoteError(0, operation+" failed", err)
	}
	defer resp.Body.Close()
	telemetry.ProviderRequestsTotal.WithLabelValues(operation, strconv.Itoa(resp.StatusCode)).Inc()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return resp.Header, fmt.Errorf("github: %s: %w", operation, scm.ErrNotFound)
	case resp.StatusCode == http.StatusNoContent:
		return resp.Header, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.Header, scm.WrapRemoteError(resp.StatusCode, operation+" failed", errors.New(strings.TrimSpace(string(msg))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.Header, scm.WrapRemoteError(resp.StatusCode, "malformed "+operation+" response", err)
	}
	return resp.Header, nil
}

// hasNextPage reports whether a Link header advertises a further page.
func hasNextPage(h http.Header) bool {
	for _, link := range strings.Split(h.Get("Link"), ",") {
		if strings.Contains(link, `rel="next"`) {
			return true
		}
	}
	return false
}

func init() {
	scm.RegisterProvider(scm.ProviderGitHub, func(settings *scm.ProviderSettings) (scm.Provider, error) {
		return NewClient(settings)
	})
}
