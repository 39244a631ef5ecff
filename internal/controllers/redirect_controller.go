package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"linkgate/internal/analytics"
	"linkgate/internal/gate"
	"linkgate/internal/repository"
	"linkgate/internal/service"
	"linkgate/internal/token"
)

type RedirectController struct {
	redirectService service.RedirectService
	grants          *token.GrantService
}

func NewRedirectController(redirectService service.RedirectService, grants *token.GrantService) *RedirectController {
	return &RedirectController{
		redirectService: redirectService,
		grants:          grants,
	}
}

// Redirect handles GET /:slug - resolves the slug and redirects to its target
func (rc *RedirectController) Redirect(c *gin.Context) {
	slug := c.Param("slug")

	meta := analytics.ExtractMetadata(c.Request)
	grant := rc.grantFromCookie(c, slug)

	// A client disconnect is not license to skip hit accounting:
	// in-flight lookups run to completion regardless
	ctx := context.WithoutCancel(c.Request.Context())

	targetURL, err := rc.redirectService.Resolve(ctx, slug, grant, meta)
	if err != nil {
		rc.respondBlocked(c, slug, err)
		return
	}

	c.Redirect(http.StatusFound, targetURL)
}

// grantFromCookie parses the verification cookie for a slug.
// A missing, malformed, or expired cookie simply yields no grant.
func (rc *RedirectController) grantFromCookie(c *gin.Context, slug string) *gate.Grant {
	value, err := c.Cookie(token.CookieName(slug))
	if err != nil || value == "" {
		return nil
	}

	grant, err := rc.grants.Parse(value)
	if err != nil {
		return nil
	}
	return grant
}

// respondBlocked maps a resolution error to its terminal response.
// Blocked states are expected business outcomes; only unknown errors
// are logged and surfaced as 500.
func (rc *RedirectController) respondBlocked(c *gin.Context, slug string, err error) {
	switch {
	case errors.Is(err, repository.ErrLinkNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Link not found",
		})
	case errors.Is(err, service.ErrLinkInactive):
		c.JSON(http.StatusGone, gin.H{
			"error": "Link is inactive",
		})
	case errors.Is(err, service.ErrLinkExpired):
		c.JSON(http.StatusGone, gin.H{
			"error": "This link has expired",
		})
	case errors.Is(err, service.ErrLinkExhausted):
		c.JSON(http.StatusGone, gin.H{
			"error": "This link has reached its maximum click limit",
		})
	case errors.Is(err, service.ErrPasswordRequired):
		// The visitor re-enters through the verification flow and
		// retries the original slug afterwards
		c.Redirect(http.StatusFound, fmt.Sprintf("/%s/verify?redirect=true", slug))
	default:
		log.Printf("ERROR: redirect failed for %s: %v", slug, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
