// Package users implements the provider user lookup endpoints.
package users

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/project-directory/directory/internal/api/apierr"
	"github.com/project-directory/directory/internal/middleware"
	"github.com/project-directory/directory/internal/scm"
)

// MaxPullRequestLimit bounds the limit query parameter of ListPullRequests.
const MaxPullRequestLimit = 1000

// Handlers serves /api/v1/users/:username
type Handlers struct{}

// NewHandlers creates user handlers
func NewHandlers() *Handlers {
	return &Handlers{}
}

// RegisterRoutes mounts the handlers on group.
func (h *Handlers) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/:username", h.GetUser)
	group.GET("/:username/pulls", h.ListPullRequests)
}

// GetUser returns a user profile
func (h *Handlers) GetUser(c *gin.Context) {
	user, err := middleware.Provider(c).GetUserDetails(c.Request.Context(), c.Param("username"))
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary      List a user's pull requests
// @Tags         Users
// @Produce      json
// @Param        username  path   string  true   "Login"
// @Param        state     query  string  false  "open, closed, merged or all (default all)"
// @Param        limit     query  int     false  "Maximum pull requests fetched (default 100)"
// @Success      200  {object}  map[string]interface{}  "pull_requests: [], total"
// @Failure      400  {object}  map[string]interface{}  "Invalid state or limit"
// @Failure      404  {object}  map[string]interface{}  "User not found"
// @Router       /api/v1/users/{username}/pulls [get]
// ListPullRequests returns pull requests authored by the user.
// Implements: GET /api/v1/users/:username/pulls?state=<state>&limit=<limit>
func (h *Handlers) ListPullRequests(c *gin.Context) {
	filter, err := scm.ParseStateFilter(c.Query("state"))
	if err != nil {
		apierr.Write(c, err)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > MaxPullRequestLimit {
			apierr.BadRequest(c, "limit must be an integer between 1 and "+strconv.Itoa(MaxPullRequestLimit))
			return
		}
	}

	pulls, err := middleware.Provider(c).ListUserPullRequests(c.Request.Context(), c.Param("username"), filter, limit)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pull_requests": pulls,
		"total":         len(pulls),
		"state":         filter,
	})
}
