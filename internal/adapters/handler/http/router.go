package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/comitanigiacomo/habit-league/docs"
	"github.com/comitanigiacomo/habit-league/internal/adapters/cache"
	"github.com/comitanigiacomo/habit-league/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/habit-league/internal/core/services"
)

type RouterDependencies struct {
	CalendarHandler *CalendarHandler
	StatsHandler    *StatsHandler
	ICSHandler      *ICSHandler
	Registry        *services.SessionRegistry

	// DB and Redis are optional; when set they are reported by /health.
	DB    *sqlx.DB
	Redis *redis.Client

	SourceKind string
	RateLimits middleware.RateLimits
	StartTime  time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())

	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "X-User-ID", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Scope", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{
			"status":   "ok",
			"source":   deps.SourceKind,
			"sessions": deps.Registry.Len(),
			"uptime":   time.Since(deps.StartTime).String(),
		}

		if deps.DB != nil {
			body["database"] = "connected"
			if err := deps.DB.PingContext(c.Request.Context()); err != nil {
				body["database"] = "unreachable"
				status = http.StatusServiceUnavailable
			}
		}
		if deps.Redis != nil {
			body["redis"] = "connected"
			if err := cache.Ping(c.Request.Context(), deps.Redis); err != nil {
				body["redis"] = "unreachable"
				status = http.StatusServiceUnavailable
			}
		}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}

		c.JSON(status, body)
	})

	docs.SwaggerInfo.BasePath = "/api/v1"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := router.Group("/api/v1")
	apiV1.Use(middleware.SessionMiddleware())
	if deps.Redis != nil {
		apiV1.Use(middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimits))
	}

	deps.CalendarHandler.RegisterRoutes(apiV1)
	deps.ICSHandler.RegisterRoutes(apiV1)
	deps.StatsHandler.RegisterRoutes(apiV1)

	return router
}
