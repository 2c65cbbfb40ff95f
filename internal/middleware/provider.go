package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/project-directory/directory/internal/scm"
)

const (
	// ProviderTokenHeader carries the caller's own provider access token.
	ProviderTokenHeader = "X-Provider-Token"

	// ProviderKey is the gin.Context key holding the request's scm.Provider.
	ProviderKey = "scm_provider"
)

// ProviderMiddleware stores the provider handlers should use for this request. A caller
// token in X-Provider-Token yields a provider acting as the caller; otherwise base is
// used as is, with the server's configured token.
func ProviderMiddleware(base scm.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := base
		if token := strings.TrimSpace(c.GetHeader(ProviderTokenHeader)); token != "" {
			provider = base.WithToken(token)
		}
		c.Set(ProviderKey, provider)
		c.Next()
	}
}

// Provider returns the provider stored by ProviderMiddleware, or nil.
func Provider(c *gin.Context) scm.Provider {
	p, _ := c.Get(ProviderKey)
	provider, _ := p.(scm.Provider)
	return provider
}

// HasCallerToken reports whether the request supplied its own provider token.
func HasCallerToken(c *gin.Context) bool {
	return strings.TrimSpace(c.GetHeader(ProviderTokenHeader)) != ""
}
