package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"bio-clicker-backend/internal/config"
	"bio-clicker-backend/internal/handlers"
	"bio-clicker-backend/internal/middleware"
	"bio-clicker-backend/internal/services"
	"bio-clicker-backend/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	redisStore, err := store.NewRedisStore(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisStore.Close()

	jwtService := services.NewJWTService(cfg)
	settingsService := services.NewSettingsService(redisStore)

	ctx := context.Background()

	adminService := services.NewAdminService(redisStore, settingsService)
	if err := adminService.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	authService := services.NewAuthService(redisStore, settingsService, jwtService)
	ledger := services.NewLedger(redisStore, settingsService)
	couponService := services.NewCouponService(redisStore, settingsService)
	withdrawService := services.NewWithdrawService(redisStore, settingsService)
	betService := services.NewBetService(redisStore, settingsService)
	chatService := services.NewChatService(redisStore, settingsService)

	go settingsService.RunScheduledActivation(ctx, 30*time.Second)

	wsHandler := handlers.NewWebSocketHandler(authService)
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(authService, settingsService)
	gameHandler := handlers.NewGameHandler(ledger, couponService, withdrawService, betService, chatService, wsHandler)
	adminHandler := handlers.NewAdminHandler(adminService, settingsService, wsHandler)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.POST("/auth/register", authHandler.Register)
	router.POST("/auth/login", authHandler.Login)
	router.GET("/settings/public", userHandler.Status)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	{
		protected.GET("/me", userHandler.GetCurrentUser)
		protected.PUT("/profile", userHandler.UpdateProfile)
		protected.POST("/presence", userHandler.Heartbeat)

		protected.GET("/online", userHandler.OnlineUsers)
		protected.GET("/leaderboard", userHandler.Leaderboard)

		protected.GET("/ws", wsHandler.HandleWebSocket)

		protected.POST("/click", gameHandler.Click)
		protected.POST("/coupons/apply", gameHandler.ApplyCoupon)

		protected.POST("/withdrawals", gameHandler.RequestWithdrawal)
		protected.GET("/withdrawals", gameHandler.WithdrawalHistory)

		protected.POST("/bets", gameHandler.PlaceBet)
		protected.GET("/bets", gameHandler.BetHistory)

		chat := protected.Group("/chat")
		{
			chat.GET("", gameHandler.ChatHistory)
			chat.POST("", gameHandler.SendChatMessage)
			chat.GET("/dm/:peer", gameHandler.DirectMessageHistory)
			chat.POST("/dm/:peer", gameHandler.SendDirectMessage)
		}
	}

	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(jwtService), middleware.RequireAdmin())
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.POST("/users/:username/ban", adminHandler.SetBanned)
		admin.POST("/users/:username/chat-ban", adminHandler.SetChatBanned)
		admin.POST("/users/:username/premium", adminHandler.SetPremium)
		admin.POST("/users/:username/balance", adminHandler.AdjustBalance)
		admin.POST("/users/:username/flashy", adminHandler.SetFlashy)

		admin.GET("/withdrawals", adminHandler.PendingWithdrawals)
		admin.POST("/withdrawals/:id/resolve", adminHandler.ResolveWithdrawal)
		admin.DELETE("/withdrawals/:id", adminHandler.RemoveWithdrawal)
		admin.GET("/bets", adminHandler.PendingBets)
		admin.POST("/bets/:id/resolve", adminHandler.ResolveBet)
		admin.DELETE("/bets/:id", adminHandler.RemoveBet)

		admin.GET("/settings", adminHandler.GetSettings)
		admin.PUT("/settings/limits", adminHandler.UpdateLimits)
		admin.PUT("/settings/maintenance", adminHandler.SetMaintenance)
		admin.PUT("/settings/server", adminHandler.SetServerClosed)

		admin.POST("/coupons", adminHandler.AddCoupon)
		admin.DELETE("/coupons/:code", adminHandler.DeleteCoupon)
		admin.POST("/announcements", adminHandler.AddAnnouncement)
		admin.DELETE("/announcements/:id", adminHandler.DeleteAnnouncement)
	}

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
