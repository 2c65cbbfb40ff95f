// Package repos implements the read-only repository lookup endpoints.
package repos

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/project-directory/directory/internal/api/apierr"
	"github.com/project-directory/directory/internal/middleware"
	"github.com/project-directory/directory/internal/scm"
)

// Handlers serves /api/v1/repositories/:owner/:name and its listings. The provider is
// taken per request from middleware.ProviderMiddleware.
type Handlers struct{}

// NewHandlers creates repository handlers
func NewHandlers() *Handlers {
	return &Handlers{}
}

// RegisterRoutes mounts the handlers on group.
func (h *Handlers) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/:owner/:name", h.GetRepository)
	group.GET("/:owner/:name/overview", h.GetOverview)
	group.GET("/:owner/:name/contributors", h.ListContributors)
	group.GET("/:owner/:name/issues", h.ListIssues)
	group.GET("/:owner/:name/pulls", h.ListPullRequests)
}

func identifier(c *gin.Context) string {
	return scm.Identifier{Owner: c.Param("owner"), Name: c.Param("name")}.String()
}

// @Summary      Get repository
// @Tags         Repositories
// @Produce      json
// @Param        owner  path  string  true  "Repository owner"
// @Param        name   path  string  true  "Repository name"
// @Success      200  {object}  scm.RepositoryRecord
// @Failure      404  {object}  map[string]interface{}  "Repository not found"
// @Failure      502  {object}  map[string]interface{}  "Provider request failed"
// @Router       /api/v1/repositories/{owner}/{name} [get]
// GetRepository returns repository metadata
func (h *Handlers) GetRepository(c *gin.Context) {
	repo, err := middleware.Provider(c).GetRepository(c.Request.Context(), identifier(c))
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, repo)
}

// GetOverview returns the repository together with its contributors, issues and pull requests
func (h *Handlers) GetOverview(c *gin.Context) {
	overview, err := middleware.Provider(c).GetRepositoryOverview(c.Request.Context(), identifier(c))
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// ListContributors returns all contributors, most active first
func (h *Handlers) ListContributors(c *gin.Context) {
	contributors, err := middleware.Provider(c).ListContributors(c.Request.Context(), identifier(c))
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contributors": contributors, "total": len(contributors)})
}

// ListIssues returns the first page of issues in any state
func (h *Handlers) ListIssues(c *gin.Context) {
	issues, err := middleware.Provider(c).ListIssues(c.Request.Context(), identifier(c))
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"issues": issues, "total": len(issues)})
}

// ListPullRequests returns the first page of pull requests in any state
func (h *Handlers) ListPullRequests(c *gin.Context) {
	pulls, err := middleware.Provider(c).ListPullRequests(c.Request.Context(), identifier(c))
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pull_requests": pulls, "total": len(pulls)})
}
