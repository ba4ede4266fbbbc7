package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/carteira/carteira-backend/internal/config"
	"github.com/carteira/carteira-backend/internal/handler"
	"github.com/carteira/carteira-backend/internal/middleware"
	"github.com/carteira/carteira-backend/internal/repository/postgres"
	"github.com/carteira/carteira-backend/internal/repository/storage"
	"github.com/carteira/carteira-backend/internal/service"
	"github.com/carteira/carteira-backend/internal/websocket"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	entryRepo := postgres.NewEntryRepository(pool)
	accountRepo := postgres.NewBankAccountRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	stateRepo := postgres.NewBudgetStateRepository(pool)
	receiptRepo := postgres.NewReceiptRepository(pool)

	// WebSocket hub doubles as the change-feed publisher
	hub := websocket.NewHub()

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	budgetService := service.NewBudgetService(entryRepo, accountRepo, stateRepo, hub)
	entryService := service.NewEntryService(entryRepo, stateRepo, budgetService, hub)
	accountService := service.NewBankAccountService(accountRepo, entryRepo, hub)
	categoryService := service.NewCategoryService(categoryRepo, hub)

	// Receipt storage is optional; without credentials the endpoints report
	// storage as disabled instead of failing startup
	var receiptStore storage.ReceiptRepository
	if cfg.S3.AccessKeyID != "" || cfg.S3.Endpoint != "" {
		store, err := storage.NewS3ReceiptRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize receipt storage")
		}
		receiptStore = store
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Receipt storage enabled")
	} else {
		log.Warn().Msg("Receipt storage not configured; receipt endpoints disabled")
	}
	receiptService := service.NewReceiptService(entryRepo, receiptRepo, receiptStore)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)
	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	entryHandler := handler.NewEntryHandler(entryService)
	accountHandler := handler.NewBankAccountHandler(accountService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	budgetHandler := handler.NewBudgetHandler(budgetService)
	receiptHandler := handler.NewReceiptHandler(receiptService)
	wsHandler := handler.NewWebSocketHandler(hub, websocket.NewJWTValidator(cfg.JWTSecret), cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter,
		authHandler, entryHandler, accountHandler, categoryHandler,
		budgetHandler, receiptHandler, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
