package main

import (
	"context"
	"log"

	"linkgate/internal/analytics"
	"linkgate/internal/cache"
	"linkgate/internal/config"
	"linkgate/internal/controllers"
	"linkgate/internal/database"
	"linkgate/internal/middleware"
	"linkgate/internal/ratelimit"
	"linkgate/internal/repository"
	"linkgate/internal/service"
	"linkgate/internal/token"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.GrantSecret == "" {
		log.Fatal("GRANT_SECRET must be set")
	}

	// Connect to database
	ctx := context.Background()
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close() // Close connection when program exits

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Connect the shared cache store. If Redis is unreachable the
	// service degrades to a process-local cache: still correct within
	// TTL bounds, but counters are per-instance until Redis returns.
	cacheClient, err := cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis (%v). Falling back to in-process cache.", err)
		mc := cache.NewMemoryCache()
		defer mc.Close()
		cacheClient = mc
	} else {
		log.Println("Connected to Redis cache")
	}

	// Initialize repositories and cache layers
	linkRepo := repository.NewLinkRepository(db)
	targetCache := cache.NewTargetCache(cacheClient, cfg.CacheTTL)

	// GeoIP enrichment is optional; without a database path visits
	// simply carry null geo fields
	var geoResolver analytics.GeoResolver = analytics.NoopGeoResolver{}
	if cfg.GeoIPDBPath != "" {
		geoResolver, err = analytics.NewMaxMindResolver(cfg.GeoIPDBPath)
		if err != nil {
			log.Printf("Warning: Failed to open GeoIP database (%v). Geo fields will be empty.", err)
			geoResolver = analytics.NoopGeoResolver{}
		}
	}

	// Initialize visit logger
	visitLogger := analytics.NewVisitLogger(linkRepo, geoResolver, cfg.VisitWorkers, cfg.VisitQueueSize)
	defer visitLogger.Close()

	// Initialize grant signing and services
	grantService := token.NewGrantService(cfg.GrantSecret, token.GrantTTL)
	redirectService := service.NewRedirectService(linkRepo, targetCache, visitLogger)
	verifyService := service.NewVerifyService(linkRepo, grantService)

	// Initialize controllers
	redirectController := controllers.NewRedirectController(redirectService, grantService)
	verifyController := controllers.NewVerifyController(verifyService, grantService, cfg.Production())
	adminController := controllers.NewAdminController(redirectService)

	// Initialize rate limiters
	redirectRateLimiter := ratelimit.NewLimiter(cacheClient, cfg.RedirectRateWindow, cfg.RedirectRateLimit)
	verifyRateLimiter := middleware.NewLocalRateLimiter(rate.Limit(cfg.VerifyRateRPS), cfg.VerifyRateBurst)
	defer verifyRateLimiter.Close()

	// Start the hit reconciliation job
	syncCtx, cancelSync := context.WithCancel(ctx)
	defer cancelSync()
	hitSyncer := service.NewHitSyncer(linkRepo, targetCache, cfg.HitSyncInterval)
	go hitSyncer.Run(syncCtx)

	// Create a Gin router
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Health check endpoint (no rate limiting)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Cache invalidation hook for the external management API
	router.DELETE("/internal/cache/:slug", adminController.InvalidateCache)

	// Password verification with a strict in-process brute-force guard
	router.POST("/:slug/verify", verifyRateLimiter.LimitMiddleware(), verifyController.VerifyPassword)

	// Redirect endpoint with the lenient shared-window rate limit
	router.GET("/:slug", middleware.RateLimitMiddleware(redirectRateLimiter), redirectController.Redirect)

	log.Printf("Server starting on %s", cfg.ListenAddr)
	router.Run(cfg.ListenAddr)
}
