package http

import (
	"task_manager/internal/config"
	"task_manager/internal/http/handlers"
	"task_manager/internal/http/middleware"
	"task_manager/internal/ws"

	"github.com/gin-gonic/gin"
)

// Deps are the collaborators the router needs beyond the handler set.
type Deps struct {
	Handler *handlers.Handler
	Health  *handlers.HealthHandler
	Hub     *ws.Hub
}

// RegisterRoutes mounts every endpoint on r.
func RegisterRoutes(r *gin.Engine, d Deps, cfg *config.Config) {
	h := d.Handler

	// Health checks (no rate limiting)
	r.GET("/health", d.Health.Health)
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)

	r.GET("/ws", ws.HandleWS(d.Hub, h.Auth, cfg.AllowedOrigins))
	r.Static("/uploads", cfg.UploadDir)

	api := r.Group("/")
	api.Use(middleware.RateLimit("api", cfg.APIRateLimit, cfg.APIRateWindow))
	registerAPIRoutes(api, h, cfg)
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, cfg *config.Config) {
	jwt := middleware.JWT(h.Auth)
	admin := middleware.RequireAdmin(h.Auth)
	authRL := middleware.RateLimit("auth", cfg.AuthRateLimit, cfg.AuthRateWindow)
	writeRL := middleware.UserRateLimit(cfg.UserWriteLimit, cfg.UserWriteWindow)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authRL, h.Register)
		if cfg.AllowAdminSignup {
			auth.POST("/register-admin", authRL, h.RegisterAdmin)
		}
		auth.POST("/login", authRL, h.Login)
		auth.POST("/verify-token", h.VerifyToken)
		auth.GET("/me", jwt, h.Me)
		auth.POST("/changePassword", jwt, authRL, h.ChangePassword)
	}

	users := api.Group("/users", jwt)
	{
		users.GET("", admin, h.ListUsers)
		users.POST("", admin, h.CreateUser)
		users.GET("/:id", admin, h.GetUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}

	tasks := api.Group("/tasks", jwt)
	{
		tasks.GET("", admin, h.ListAllTasks)
		tasks.GET("/my", h.ListMyTasks)
		tasks.GET("/:id", h.GetTask)
		tasks.POST("", writeRL, h.CreateTask)
		tasks.PUT("/:id", writeRL, h.UpdateTask)
		tasks.DELETE("/:id", h.DeleteTask)
		tasks.POST("/:id/subtasks", writeRL, h.AddSubtask)
	}

	categories := api.Group("/categories", jwt)
	{
		categories.GET("", h.ListCategories)
		categories.GET("/tasks/:id", h.TasksByCategory)
		categories.GET("/:id", h.GetCategory)
		categories.POST("", admin, h.CreateCategory)
		categories.PUT("/:id", admin, h.UpdateCategory)
		categories.DELETE("/:id", admin, h.DeleteCategory)
	}

	comments := api.Group("/comments", jwt)
	{
		comments.GET("", h.ListComments)
		comments.GET("/byTaskId/:id", h.CommentsByTask)
		comments.GET("/:id", h.GetComment)
		comments.POST("", writeRL, h.CreateComment)
		comments.PUT("/:id", h.UpdateComment)
		comments.DELETE("/:id", h.DeleteComment)
	}

	businesses := api.Group("/businesses")
	{
		businesses.GET("", h.ListBusinesses)
		businesses.GET("/all", jwt, admin, h.ListAllBusinesses)
		businesses.GET("/my", jwt, h.ListMyBusinesses)
		businesses.GET("/:id", h.GetBusiness)
		businesses.POST("", jwt, writeRL, h.CreateBusiness)
		businesses.PUT("/change-status/:id/:status", jwt, admin, h.ChangeBusinessStatus)
		businesses.PUT("/:id", jwt, h.UpdateBusiness)
		businesses.DELETE("/:id", jwt, h.DeleteBusiness)
	}

	api.GET("/audit", jwt, admin, h.ListAudit)
}
