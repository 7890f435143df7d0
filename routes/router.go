package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cppla/cracker/config"
	"github.com/cppla/cracker/controllers"
	"github.com/cppla/cracker/middleware"
	"github.com/cppla/cracker/store"
	"github.com/cppla/cracker/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(s *store.Store) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// access log goes to its own rolling file
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}
	r.Use(middleware.Metrics())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	board := controllers.NewLeaderboardCache(s, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	healthController := controllers.NewHealthController(s)
	userController := controllers.NewUserController(s)
	progressController := controllers.NewProgressController(s, board)
	leaderboardController := controllers.NewLeaderboardController(board)
	settingsController := controllers.NewSettingsController(s)
	shareController := controllers.NewShareController(s)

	limit := middleware.RateLimitMiddleware()

	r.GET("/health", healthController.GetHealth)
	api := r.Group("/api/v1")
	api.GET("/health", healthController.GetHealth)

	users := api.Group("/users")
	users.GET("", userController.GetUser)
	users.POST("", limit, userController.CreateUser)
	users.POST("/login", limit, userController.Login)
	users.POST("/logout", middleware.AuthRequired(), userController.Logout)

	api.GET("/progress", progressController.GetProgress)
	api.POST("/progress", limit, middleware.OptionalAuth(), progressController.SaveProgress)

	api.GET("/leaderboard", leaderboardController.GetLeaderboard)
	api.POST("/leaderboard", limit, middleware.OptionalAuth(), leaderboardController.RecomputeLeaderboard)

	api.GET("/settings", settingsController.GetSettings)
	api.PUT("/settings", limit, middleware.AuthRequired(), settingsController.UpdateSettings)

	api.GET("/share", shareController.RecentShares)
	api.POST("/share", limit, middleware.OptionalAuth(), shareController.ShareProgress)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
