package routes

import (
	"github.com/gin-gonic/gin"

	"roadside-rescue/internal/handlers"
	"roadside-rescue/internal/middleware"
	"roadside-rescue/internal/models"
	"roadside-rescue/internal/services"
	"roadside-rescue/pkg/cache"
	"roadside-rescue/pkg/logger"
	"roadside-rescue/pkg/websocket"
)

// Dependencies is everything the route table needs.
type Dependencies struct {
	AuthService      services.AuthService
	AuthHandler      *handlers.AuthHandler
	RequestHandler   *handlers.RequestHandler
	MechanicHandler  *handlers.MechanicHandler
	HealthHandler    *handlers.HealthHandler
	WebSocketHandler *websocket.Handler
	RegisterLimiter  cache.Limiter
	Logger           *logger.Logger
}

// Setup registers every endpoint on the engine.
func Setup(r *gin.Engine, deps *Dependencies) {
	r.GET("/", deps.HealthHandler.Root)
	r.GET("/health", deps.HealthHandler.Health)
	r.GET("/metrics", deps.HealthHandler.Metrics)

	// Public auth routes
	register := []gin.HandlerFunc{deps.AuthHandler.Register}
	if deps.RegisterLimiter != nil {
		register = append([]gin.HandlerFunc{middleware.RateLimitMiddleware(deps.RegisterLimiter, deps.Logger)}, register...)
	}
	r.POST("/register", register...)
	r.POST("/login", deps.AuthHandler.Login)

	authed := r.Group("/")
	authed.Use(middleware.AuthRequired(deps.AuthService, deps.Logger))
	{
		if deps.WebSocketHandler != nil {
			authed.GET("/ws", deps.WebSocketHandler.HandleWebSocket)
		}

		authed.POST("/requests", middleware.RoleRequired(models.UserRoleDriver), deps.RequestHandler.Create)
		authed.GET("/my-requests", deps.RequestHandler.ListMine)
		authed.GET("/requests/:id", deps.RequestHandler.Get)
		authed.POST("/requests/:id/cancel", deps.RequestHandler.Cancel())

		jobs := authed.Group("/requests/:id")
		jobs.Use(middleware.RoleRequired(models.UserRoleMechanic))
		{
			jobs.POST("/accept", deps.RequestHandler.Accept())
			jobs.POST("/reject", deps.RequestHandler.Reject())
			jobs.POST("/start", deps.RequestHandler.Start())
			jobs.POST("/complete", deps.RequestHandler.Complete())
		}

		mechanic := authed.Group("/mechanic")
		mechanic.Use(middleware.RoleRequired(models.UserRoleMechanic))
		{
			mechanic.POST("/availability", deps.MechanicHandler.ToggleAvailability)
			mechanic.POST("/update-location", deps.MechanicHandler.UpdateLocation)
			mechanic.GET("/requests", deps.MechanicHandler.Nearby)
			mechanic.GET("/active-job", deps.MechanicHandler.ActiveJob)
		}
	}
}
