package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"custody-tracker/config"
	"custody-tracker/internal/api/handler"
	"custody-tracker/internal/api/middleware"
	"custody-tracker/pkg/jwt"
)

const (
	maxBodyBytes    = 1 << 20
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// Deps infrastructure the routes need besides handlers.
// Checker and Limiter may be nil when Redis is unavailable.
type Deps struct {
	JWT      *jwt.Manager
	Checker  middleware.TokenChecker
	Limiter  middleware.RateLimiter
	Registry *prometheus.Registry
}

// Setup builds the Gin engine
func Setup(cfg *config.Config, h *handler.Handler, deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(maxBodyBytes))
	if deps.Registry != nil {
		r.Use(middleware.NewHTTPMetrics(deps.Registry).Handler())
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	r.GET("/health", h.Health.Health)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		v1.POST("/auth/login", middleware.RateLimit(deps.Limiter, loginRateLimit, loginRateWindow), h.Auth.Login)

		// trigger secret, no user session
		v1.POST("/alerts/trigger", middleware.TriggerAuth(cfg.Alerts.TriggerToken), h.Alert.Trigger)

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(deps.JWT, deps.Checker, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			users := authorized.Group("/users")
			{
				users.PUT("/me", h.User.UpdateMe)
				users.PUT("/me/password", h.User.ChangePassword)
				users.GET("/me/notifications", h.User.GetNotifications)
				users.PUT("/me/notifications", h.User.UpdateNotifications)

				admin := users.Group("", middleware.RoleAuth("admin"))
				admin.GET("", h.User.List)
				admin.POST("", h.User.Create)
				admin.PUT("/:id", h.User.Update)
				admin.POST("/:id/reset-password", h.User.ResetPassword)
			}

			persons := authorized.Group("/persons")
			{
				persons.POST("/full", h.Person.CreateFull)
				persons.POST("", h.Person.Create)
				persons.GET("/search", h.Person.Search)
				persons.GET("/:id", h.Person.Get)
				persons.PUT("/:id", h.Person.Update)
				persons.DELETE("/:id", h.Person.Delete)
				persons.POST("/:id/processes", h.Person.AddProcess)
			}

			processes := authorized.Group("/processes")
			{
				processes.PUT("/:id", h.Person.UpdateProcess)
				processes.POST("/:id/events", h.Event.Create)
			}

			events := authorized.Group("/events")
			{
				events.PUT("/:id", h.Event.Update)
				events.DELETE("/:id", h.Event.Delete)
				events.PATCH("/:id/status", h.Event.UpdateStatus)
			}

			alerts := authorized.Group("/alerts")
			{
				alerts.GET("/upcoming", h.Alert.Upcoming)
				alerts.GET("/active", h.Alert.Active)
				alerts.GET("/active/export", h.Alert.ExportActive)
				alerts.GET("/calendar.ics", h.Alert.Calendar)
			}

			lookups := authorized.Group("/lookups")
			{
				lookups.POST("/processes", h.Lookup.Process)
				lookups.POST("/cpf", h.Lookup.CPF)
			}
		}
	}

	return r
}
