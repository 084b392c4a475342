// Package router provides HTTP routing, middleware configuration, and server
// setup.
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/sellerpulse/recon-api/app/dto"
	"github.com/sellerpulse/recon-api/app/handlers"
	"github.com/sellerpulse/recon-api/app/middleware"
	"github.com/sellerpulse/recon-api/logger"
	"github.com/sellerpulse/recon-api/utils"
)

// Config carries the deployment-dependent pieces of the HTTP surface.
type Config struct {
	AppName      string
	AllowOrigins []string
	BodyLimit    int
	RequireAuth  bool
}

// Router interface for HTTP routing.
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3.
type FiberRouter struct {
	app             *fiber.App
	cfg             Config
	rateCardHandler handlers.RateCardHandlerInterface
	payoutHandler   handlers.PayoutHandlerInterface
	importHandler   handlers.ImportHandlerInterface
	authMiddleware  *middleware.AuthMiddleware
	log             *logger.Entry
}

// NewFiberRouter creates a new Fiber router.
func NewFiberRouter(
	cfg Config,
	rateCardHandler handlers.RateCardHandlerInterface,
	payoutHandler handlers.PayoutHandlerInterface,
	importHandler handlers.ImportHandlerInterface,
	authMiddleware *middleware.AuthMiddleware,
) Router {
	if cfg.AppName == "" {
		cfg.AppName = "SellerPulse Recon API"
	}
	if cfg.BodyLimit == 0 {
		cfg.BodyLimit = 12 * 1024 * 1024
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: "SellerPulse",
		ErrorHandler: errorHandler,
		BodyLimit:    cfg.BodyLimit,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:             app,
		cfg:             cfg,
		rateCardHandler: rateCardHandler,
		payoutHandler:   payoutHandler,
		importHandler:   importHandler,
		authMiddleware:  authMiddleware,
		log:             logger.GetLogger().WithComponent("router"),
	}
}

// SetupRoutes configures all application routes.
func (r *FiberRouter) SetupRoutes() {
	r.setupMiddleware()

	api := r.app.Group("/api/v1")

	// Health check stays outside rate limiting and auth.
	api.Get("/health", r.healthCheck)

	api.Use(limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	if r.cfg.RequireAuth && r.authMiddleware != nil {
		api.Use(r.authMiddleware.Authenticate())
	}

	rateCards := api.Group("/rate-cards")
	rateCards.Post("/", r.rateCardHandler.Create)
	rateCards.Get("/", r.rateCardHandler.List)

	// Imports are heavier than the rest of the API and get their own budget.
	imports := rateCards.Group("/import")
	imports.Use(limiter.New(limiter.Config{
		Max:        30,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
	}))
	imports.Post("/parse", r.importHandler.Parse)
	imports.Post("/", r.importHandler.Import)

	rateCards.Get("/:uuid", r.rateCardHandler.Get)
	rateCards.Get("/:uuid/settlement-date", r.rateCardHandler.SettlementDate)

	payouts := api.Group("/payouts")
	payouts.Post("/calculate", r.payoutHandler.Calculate)
}

func (r *FiberRouter) setupMiddleware() {
	// Request ID must come first so every later middleware sees it.
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		XDNSPrefetchControl:   "off",
		XDownloadOptions:      "noopen",
		XPermittedCrossDomain: "none",
	}))

	allowOrigins := r.cfg.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"https://dashboard.sellerpulse.io"}
	}
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
			"Cache-Control",
		},
		ExposeHeaders:    []string{"X-Request-ID", "X-Response-Time"},
		AllowCredentials: true,
		MaxAge:           utils.CORSMaxAge,
	}))

	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	r.app.Use(middleware.Metrics())

	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			r.log.WithFields(logger.Fields{
				"request_id": c.Locals("requestid"),
				"path":       c.Path(),
				"method":     c.Method(),
				"ip":         c.IP(),
				"panic":      e,
			}).Error("panic recovered")
		},
	}))
}

func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"service":   "recon-api",
		},
	})
}

func rateLimitReached(c fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
		Success: false,
		Message: "Too many requests. Please try again later.",
		Error:   dto.ErrorDetail{Code: "RATE_LIMIT_EXCEEDED"},
	})
}

func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	logger.GetLogger().WithError(err).WithFields(logger.Fields{
		"status": code,
		"path":   c.Path(),
	}).Error("request failed")

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": c.Locals("requestid"),
			},
		},
	})
}

// Start starts the HTTP server.
func (r *FiberRouter) Start(address string) error {
	r.log.WithFields(logger.Fields{"address": address}).Info("starting server")
	return r.app.Listen(address)
}

// GetApp returns the underlying Fiber app (used by tests).
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
