package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/negocehub/marketplace-api/docs"
	"github.com/negocehub/marketplace-api/internal/api/handler"
	"github.com/negocehub/marketplace-api/internal/api/middleware"
	"github.com/negocehub/marketplace-api/internal/core/service"
	mongodb "github.com/negocehub/marketplace-api/internal/infrastructure/db/mongo"
	redisdb "github.com/negocehub/marketplace-api/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("marketplace"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	productRepo := mongodb.NewProductRepository(db)
	productCache := redisdb.NewProductCache(rdb)

	authService := service.NewAuthService(userRepo, jwtSecret, tokenTTL, log)
	userService := service.NewUserService(userRepo, log)
	catalogService := service.NewCatalogService(productRepo, productCache, log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	productHandler := handler.NewProductHandler(catalogService)

	authRequired := middleware.Auth(jwtSecret)
	sellerOnly := middleware.RequireSeller()

	// --- Auth routes ---
	e.POST("/api/auth/register", authHandler.Register)
	e.POST("/api/auth/login", authHandler.Login)

	// --- Profile routes ---
	e.GET("/api/users/me", userHandler.Me, authRequired)
	e.PUT("/api/users/me", userHandler.UpdateMe, authRequired)

	// --- Catalog routes ---
	e.GET("/api/products", productHandler.List)
	e.GET("/api/products/mine", productHandler.ListMine, authRequired)
	e.GET("/api/products/:id", productHandler.Get)
	e.POST("/api/products", productHandler.Create, authRequired, sellerOnly)
	e.PUT("/api/products/:id", productHandler.Update, authRequired)
	e.DELETE("/api/products/:id", productHandler.Delete, authRequired)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
