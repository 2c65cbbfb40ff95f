// Package projects implements the project claim endpoints.
package projects

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/project-directory/directory/internal/api/apierr"
	"github.com/project-directory/directory/internal/claims"
	"github.com/project-directory/directory/internal/db/models"
	"github.com/project-directory/directory/internal/db/repositories"
	"github.com/project-directory/directory/internal/middleware"
)

// MaxAttemptLimit bounds the limit query parameter of ListClaims.
const MaxAttemptLimit = 200

// ProjectFinder loads projects by id; a missing project is (nil, nil).
type ProjectFinder interface {
	GetByID(ctx context.Context, id string) (*models.Project, error)
}

// AttemptRecorder is the claim recorder plus the attempt history query.
type AttemptRecorder interface {
	claims.Recorder
	ListAttempts(ctx context.Context, projectID string, limit int) ([]models.ClaimAttempt, error)
}

// Handlers serves /api/v1/projects/:id/claim and /claims
type Handlers struct {
	projects ProjectFinder
	recorder AttemptRecorder
}

// NewHandlers creates project handlers
func NewHandlers(projects ProjectFinder, recorder AttemptRecorder) *Handlers {
	return &Handlers{projects: projects, recorder: recorder}
}

// RegisterRoutes mounts the handlers on group. The group must already require a session.
// claimLimit, when non-nil, rate limits claim submissions only.
func (h *Handlers) RegisterRoutes(group *gin.RouterGroup, claimLimit gin.HandlerFunc) {
	claim := []gin.HandlerFunc{h.Claim}
	if claimLimit != nil {
		claim = append([]gin.HandlerFunc{claimLimit}, claim...)
	}
	group.POST("/:id/claim", claim...)
	group.GET("/:id/claims", h.ListClaims)
}

// ClaimRequest is the body of a claim submission
type ClaimRequest struct {
	Repository string `json:"repository" binding:"required"`
}

// loadProject validates the :id parameter and loads the project, writing the error
// response itself when it returns nil.
func (h *Handlers) loadProject(c *gin.Context) *models.Project {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		apierr.BadRequest(c, "invalid project id")
		return nil
	}

	project, err := h.projects.GetByID(c.Request.Context(), id)
	if err != nil {
		apierr.Write(c, err)
		return nil
	}
	if project == nil {
		apierr.Write(c, repositories.ErrProjectNotFound)
		return nil
	}
	return project
}

// @Summary      Claim a project
// @Description  Verifies that the caller owns or administers the repository and assigns them
// @Description  as the project's owner. The caller's provider token is read from X-Provider-Token.
// @Tags         Projects
// @Accept       json
// @Produce      json
// @Param        id                path    string                 true  "Project ID"
// @Param        X-Provider-Token  header  string                 true  "Caller's own provider access token"
// @Param        body              body    projects.ClaimRequest  true  "Repository to verify"
// @Success      200  {object}  claims.Result
// @Failure      400  {object}  map[string]interface{}  "Invalid project id or repository identifier"
// @Failure      401  {object}  map[string]interface{}  "Missing session or provider token"
// @Failure      403  {object}  map[string]interface{}  "error, attempted, owner"
// @Failure      404  {object}  map[string]interface{}  "Project or repository not found"
// @Failure      409  {object}  map[string]interface{}  "Project already claimed"
// @Failure      502  {object}  map[string]interface{}  "Provider request failed"
// @Security     Bearer
// @Router       /api/v1/projects/{id}/claim [post]
// Claim verifies repository ownership and claims the project
func (h *Handlers) Claim(c *gin.Context) {
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.BadRequest(c, "request body must be {\"repository\": \"owner/name\"}")
		return
	}

	// Ownership is checked against the identity behind the request's provider token. The
	// server's own token would verify the server's account instead of the caller's.
	if !middleware.HasCallerToken(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": middleware.ProviderTokenHeader + " header is required to verify repository ownership",
		})
		return
	}

	project := h.loadProject(c)
	if project == nil {
		return
	}

	// Already-owned projects still go through verification: a denial is recorded, and
	// a grant ends in ErrConflict from the conditional owner update.
	verifier := claims.NewVerifier(middleware.Provider(c), h.recorder)
	result, err := verifier.Verify(c.Request.Context(), req.Repository, project.ID)
	if err != nil {
		apierr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListClaims returns the project's claim attempts, newest first
func (h *Handlers) ListClaims(c *gin.Context) {
	limit := repositories.DefaultAttemptListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxAttemptLimit {
			apierr.BadRequest(c, "limit must be an integer between 1 and "+strconv.Itoa(MaxAttemptLimit))
			return
		}
		limit = n
	}

	project := h.loadProject(c)
	if project == nil {
		return
	}

	attempts, err := h.recorder.ListAttempts(c.Request.Context(), project.ID, limit)
	if err != nil {
		apierr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"project":  project,
		"attempts": attempts,
		"total":    len(attempts),
	})
}
