package server

import (
	"net/http"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/apperrors"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/auth"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/config"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/interactions"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/logging"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/metrics"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/partners"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/posts"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/profile"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/rooms"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/tags"
	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options holds everything the HTTP server is assembled from
type Options struct {
	DB       *gorm.DB
	Logger   *zap.Logger
	Config   *config.Config
	Notifier auth.ResetNotifier // nil logs reset links
	Metrics  *metrics.HTTPMetrics
}

// New builds the gin engine with every route registered under /api and
// wraps it in the CORS handler
func New(opts Options) http.Handler {
	engine := Engine(opts)
	return CORS(opts.Config.Server.AllowedOrigins)(engine)
}

// Engine builds the gin engine without the CORS wrapper
func Engine(opts Options) *gin.Engine {
	if opts.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	apperrors.RegisterValidators()

	m := opts.Metrics
	if m == nil {
		m = metrics.NewHTTPMetrics()
	}

	r := gin.New()
	r.Use(logging.Recovery(opts.Logger))
	r.Use(logging.Middleware(opts.Logger))
	r.Use(m.Middleware())

	health := healthHandler(opts.DB)
	r.GET("/health", health)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	db := opts.DB
	logger := opts.Logger

	api := r.Group("/api")
	{
		api.GET("/health", health)

		// Auth routes (public except /me)
		authSvc := auth.NewService(db, logger, opts.Notifier, opts.Config.Server.BaseURL)
		authHandler := auth.NewHandler(authSvc, logger, opts.Config.IsProduction())
		authHandler.RegisterRoutes(api.Group("/auth"))

		// Feed, comments, search and categories (reads allow anonymous viewers)
		postsHandler := posts.NewHandler(posts.NewService(db, logger), logger)
		postsHandler.RegisterRoutes(api)

		// Likes and bookmarks
		interactionsHandler := interactions.NewHandler(interactions.NewService(db, logger), logger)
		interactionsHandler.RegisterRoutes(api)

		// Tags
		tagsHandler := tags.NewHandler(tags.NewService(db, logger), logger)
		tagsHandler.RegisterRoutes(api)

		// Rooms (protected)
		roomsHandler := rooms.NewHandler(rooms.NewService(db, logger), logger)
		roomsHandler.RegisterRoutes(api.Group("/rooms"))

		// Partner directory (protected)
		partnersHandler := partners.NewHandler(partners.NewService(db, logger), logger)
		partnersHandler.RegisterRoutes(api.Group("/partners"))

		// Profile (protected)
		profileHandler := profile.NewHandler(profile.NewService(db, logger), logger)
		profileHandler.RegisterRoutes(api.Group("/profile"))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return r
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "service": "apoconnect"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "apoconnect"})
	}
}

// CORS allows browser requests from the configured origins with cookies.
// A single "*" origin disables credentials.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			logging.RequestIDHeader,
		},
		ExposedHeaders:   []string{logging.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
		opts.AllowCredentials = false
	}
	return cors.Handler(opts)
}
