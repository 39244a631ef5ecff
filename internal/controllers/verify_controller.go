package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"linkgate/internal/models"
	"linkgate/internal/repository"
	"linkgate/internal/service"
	"linkgate/internal/token"
)

type VerifyController struct {
	verifyService service.VerifyService
	grants        *token.GrantService
	secureCookies bool
}

func NewVerifyController(verifyService service.VerifyService, grants *token.GrantService, secureCookies bool) *VerifyController {
	return &VerifyController{
		verifyService: verifyService,
		grants:        grants,
		secureCookies: secureCookies,
	}
}

// VerifyPassword handles POST /:slug/verify - checks the link password
// and sets the verification-grant cookie on success
func (vc *VerifyController) VerifyPassword(c *gin.Context) {
	slug := c.Param("slug")

	var req models.VerifyPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	grantToken, err := vc.verifyService.Verify(c.Request.Context(), slug, req.Password)
	if err != nil {
		vc.respondError(c, slug, err)
		return
	}

	maxAge := int(vc.grants.TTL().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(token.CookieName(slug), grantToken, maxAge, "/", "", vc.secureCookies, true)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password verified",
	})
}

func (vc *VerifyController) respondError(c *gin.Context, slug string, err error) {
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
	case errors.Is(err, service.ErrInvalidPassword):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid password",
		})
	default:
		log.Printf("ERROR: password verification failed for %s: %v", slug, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
