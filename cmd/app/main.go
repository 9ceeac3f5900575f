package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"task_manager/internal/config"
	"task_manager/internal/db"
	httpServer "task_manager/internal/http"
	"task_manager/internal/http/handlers"
	"task_manager/internal/http/middleware"
	"task_manager/internal/logger"
	"task_manager/internal/notify"
	"task_manager/internal/repository"
	"task_manager/internal/service"
	"task_manager/internal/storage"
	"task_manager/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	service.InitJWT(cfg.JWTSecret, cfg.JWTTTL)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	applied, err := db.Migrate(context.Background(), dbPool)
	if err != nil {
		logger.Fatal("migrations failed", "error", err)
	}
	if len(applied) > 0 {
		logger.Info("migrations applied", "versions", applied)
	}

	images, err := storage.NewImages(filepath.Join(cfg.UploadDir, "businesses"))
	if err != nil {
		logger.Fatal("upload dir unavailable", "error", err)
	}

	hub := ws.NewHub()

	users := repository.NewUserRepository(dbPool)
	tasks := repository.NewTaskRepository(dbPool)
	categories := repository.NewCategoryRepository(dbPool)
	comments := repository.NewCommentRepository(dbPool)

	audit := service.NewAuditService(repository.NewAuditRepository(dbPool))
	auth := service.NewAuthService(users, repository.NewRoleRepository(dbPool), audit)
	taskService := service.NewTaskService(tasks, categories, comments,
		service.WithTaskEvents(hub),
		service.WithTaskAudit(audit),
		service.WithMaxDepth(cfg.MaxTaskDepth),
	)

	h := handlers.NewHandler(handlers.Handler{
		Auth:       auth,
		Users:      service.NewUserService(users, tasks, auth, audit),
		Tasks:      taskService,
		Categories: service.NewCategoryService(categories, tasks, audit),
		Comments:   service.NewCommentService(comments, tasks),
		Businesses: service.NewBusinessService(repository.NewBusinessRepository(dbPool), auth, images, audit),
		Audit:      audit,
		Images:     images,
	}, handlers.HandlerConfig{
		StrictConflictStatus: cfg.StrictConflictStatus,
		AllowAdminSignup:     cfg.AllowAdminSignup,
	})

	checks := []handlers.Check{{Name: "database", Pinger: dbPool, Critical: true}}
	if rdb := middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); rdb != nil {
		defer rdb.Close()
		checks = append(checks, handlers.Check{
			Name:   "redis",
			Pinger: handlers.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		})
	}
	health := handlers.NewHealthHandler(cfg.AppVersion, checks...)

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	if cfg.DeadlineWatcherEnabled {
		watcher := notify.NewWatcher(taskService, auth, notify.NewMailer(cfg.SMTP), cfg.DeadlineScanInterval)
		go watcher.Run(bgCtx)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())

	// CORS for production (frontend on different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (len(cfg.AllowedOrigins) == 0 || slices.Contains(cfg.AllowedOrigins, origin)) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, httpServer.Deps{Handler: h, Health: health, Hub: hub}, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", cfg.AppVersion)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	hub.Close()

	logger.Info("server exited")
}
