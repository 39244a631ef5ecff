package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"linkgate/internal/service"
)

// AdminController exposes the cache hooks the external management API
// calls when links are updated or deleted.
type AdminController struct {
	redirectService service.RedirectService
}

func NewAdminController(redirectService service.RedirectService) *AdminController {
	return &AdminController{
		redirectService: redirectService,
	}
}

// InvalidateCache handles DELETE /internal/cache/:slug - drops the
// cached target and shadow hit counter for a slug
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	slug := c.Param("slug")

	if err := ac.redirectService.Invalidate(c.Request.Context(), slug); err != nil {
		log.Printf("ERROR: cache invalidation failed for %s: %v", slug, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to invalidate cache",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cache invalidated",
	})
}
