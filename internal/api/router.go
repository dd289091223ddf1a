package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/froker/lending-system/internal/api/handler"
	"github.com/froker/lending-system/internal/api/middleware"
	"github.com/froker/lending-system/internal/core/domain"
	"github.com/froker/lending-system/internal/core/service"
	"github.com/froker/lending-system/internal/infrastructure/config"
	mongodb "github.com/froker/lending-system/internal/infrastructure/db/mongo"
	redisdb "github.com/froker/lending-system/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("lending"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	hasher := service.NewPasswordHasher(cfg.Auth.BcryptCost)
	codec := service.NewTokenCodec(
		cfg.Auth.AccessTokenSecret,
		cfg.Auth.RefreshTokenSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)
	guard := redisdb.NewReplayGuard(rdb, codec.RefreshTTL())

	policy := domain.UnderwritingPolicy{
		MinAge:           cfg.Lending.MinAge,
		MinMonthlySalary: cfg.Lending.MinMonthlySalary,
	}
	terms := domain.LoanTerms{
		AnnualInterestRate:    cfg.Lending.AnnualInterestRate,
		SafeExpenseFraction:   cfg.Lending.SafeExpenseFraction(),
		RecommendTenureMonths: cfg.Lending.RecommendTenureMonths,
	}

	sessionService := service.NewSessionService(userRepo, hasher, codec, guard, policy, log)
	loanService := service.NewLoanService(userRepo, terms, log)

	authHandler := handler.NewAuthHandler(sessionService)
	userHandler := handler.NewUserHandler(loanService)
	loanHandler := handler.NewLoanHandler(loanService)
	authMiddleware := middleware.Auth(codec)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/refresh", authHandler.Refresh)

	// --- Protected routes ---
	e.POST("/auth/logout", authHandler.Logout, authMiddleware)
	e.POST("/auth/password", authHandler.ChangePassword, authMiddleware)
	e.GET("/users/me", userHandler.Me, authMiddleware)
	e.POST("/loans/borrow", loanHandler.Borrow, authMiddleware)
	e.POST("/loans/recommendation", loanHandler.Recommend, authMiddleware)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
