package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/deepthiduddupudi31/community-serve/config"
	"github.com/deepthiduddupudi31/community-serve/controllers"
	"github.com/deepthiduddupudi31/community-serve/middleware"
)

func main() {
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET not set in env")
		os.Exit(1)
	}

	config.ConnectDB(cfg)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Server is running!"})
	})

	authRequired := middleware.Auth(cfg.JWTSecret)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", controllers.Register)
			auth.POST("/login", controllers.Login)
			auth.POST("/forgot-password", controllers.ForgotPassword)
			auth.POST("/reset-password", controllers.ResetPassword)
			auth.GET("/me", authRequired, controllers.Me)
			auth.PUT("/profile", authRequired, controllers.UpdateProfile)
		}

		events := api.Group("/events")
		{
			events.GET("", controllers.ListEvents)
			events.POST("", authRequired, controllers.CreateEvent)
			events.GET("/user/organized", authRequired, controllers.OrganizedEvents)
			events.GET("/user/joined", authRequired, controllers.JoinedEvents)
			events.GET("/:id", controllers.GetEvent)
			events.PUT("/:id", authRequired, controllers.UpdateEvent)
			events.DELETE("/:id", authRequired, controllers.DeleteEvent)
			events.POST("/:id/join", authRequired, controllers.JoinEvent)
			events.POST("/:id/leave", authRequired, controllers.LeaveEvent)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		slog.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	if err := config.Client.Disconnect(ctx); err != nil {
		slog.Error("mongo disconnect failed", "error", err)
	}

	slog.Info("server exited")
}
