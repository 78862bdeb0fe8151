// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/fasehq/backoffice/app/dto"
	"github.com/fasehq/backoffice/app/handlers"
	"github.com/fasehq/backoffice/app/middleware"
	"github.com/fasehq/backoffice/models"
	"github.com/fasehq/backoffice/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cache"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// Handlers bundles every handler the router wires up
type Handlers struct {
	Member       handlers.MemberHandlerInterface
	Directory    handlers.DirectoryHandlerInterface
	AdminAuth    handlers.AdminAuthHandlerInterface
	AdminAccount handlers.AdminAccountHandlerInterface
	Roster       handlers.RosterHandlerInterface
	Task         handlers.TaskHandlerInterface
	Logo         handlers.LogoHandlerInterface
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app         *fiber.App
	handlers    Handlers
	authMW      *middleware.AuthMiddleware
	accessMW    *middleware.AccessMiddleware
	corsOrigins []string
	metricsPath string
}

// Options tunes router construction from configuration
type Options struct {
	CORSOrigins []string
	MetricsPath string
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(h Handlers, authMW *middleware.AuthMiddleware, accessMW *middleware.AccessMiddleware, opts Options) Router {
	app := fiber.New(fiber.Config{
		AppName:      "FASE Back Office API",
		ServerHeader: "FASE",
		ErrorHandler: errorHandler,
		BodyLimit:    8 * 1024 * 1024, // logo uploads
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	metricsPath := opts.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	return &FiberRouter{
		app:         app,
		handlers:    h,
		authMW:      authMW,
		accessMW:    accessMW,
		corsOrigins: opts.CORSOrigins,
		metricsPath: metricsPath,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	// Prometheus scrape endpoint, outside the API group and rate limits
	r.app.Get(r.metricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	// General rate limiting for all API routes
	api.Use(limiter.New(limiter.Config{
		Max:        2000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	// Member portal routes: anonymous requests continue as guests, the access
	// policy decides per tier
	members := api.Group("/members", r.authMW.OptionalAuth())
	members.Post("/access", r.handlers.Member.CheckAccess)
	members.Get("/:id", r.handlers.Member.ResolveMember, r.accessMW.RequireAccessLevel(models.AccessLevelMember))

	directory := api.Group("/directory", r.authMW.OptionalAuth(), r.accessMW.RequireAccessLevel(models.AccessLevelMember))
	directory.Get("/members", r.handlers.Directory.MembersByStatus)
	directory.Get("/accounts", r.handlers.Directory.AccountsByStatus)
	directory.Get("/access", r.handlers.Directory.MembersWithPortalAccess)
	directory.Get("/organizations", r.handlers.Directory.MembersByOrganizationType)
	directory.Get("/export", r.handlers.Directory.ExportDirectory)

	// Public logo download, guest tier
	api.Get("/accounts/:id/logo", r.handlers.Logo.DownloadLogo)

	// Admin auth with stricter rate limiting
	adminAuth := api.Group("/admin/auth")
	adminAuth.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
	}))
	adminAuth.Get("/captcha/init", r.handlers.AdminAuth.InitCaptcha)
	adminAuth.Post("/login", r.handlers.AdminAuth.VerifyLogin)
	adminAuth.Post("/logout", r.handlers.AdminAuth.Logout, r.authMW.AdminAuthenticate())

	// Back-office routes behind admin JWTs
	admin := api.Group("/admin", r.authMW.AdminAuthenticate())
	admin.Get("/accounts", r.handlers.AdminAccount.ListAccounts)
	admin.Get("/accounts/:id", r.handlers.AdminAccount.GetAccount)
	admin.Put("/accounts/status", r.handlers.AdminAccount.UpdateAccountStatus)
	admin.Get("/accounts/:id/activity", r.handlers.AdminAccount.ActivityFeed)
	admin.Post("/accounts/:id/logo", r.handlers.Logo.UploadLogo)

	admin.Get("/organizations/:id/members", r.handlers.Roster.GetRoster)
	admin.Post("/organizations/members", r.handlers.Roster.AddMember)
	admin.Put("/organizations/members", r.handlers.Roster.UpdateMember)
	admin.Delete("/organizations/members", r.handlers.Roster.RemoveMember)

	admin.Post("/tasks", r.handlers.Task.CreateTask)
	admin.Put("/tasks", r.handlers.Task.UpdateTask)
	admin.Post("/tasks/complete", r.handlers.Task.CompleteTask)
	admin.Get("/accounts/:id/tasks", r.handlers.Task.ListTasks)
	admin.Delete("/tasks/:id", r.handlers.Task.DeleteTask)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000, // 1 year
		ContentSecurityPolicy: "default-src 'self'; img-src 'self' data:; frame-ancestors 'none';",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// CORS middleware with production settings
	allowOrigins := r.corsOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"https://portal.fase.org.uk", "https://admin.fase.org.uk"}
	}
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
			"Cache-Control",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           utils.CORSMaxAge,
	}))

	// Compression middleware for performance
	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c fiber.Ctx) bool {
			contentType := c.Get("Content-Type")
			return strings.Contains(contentType, "image/") ||
				strings.Contains(contentType, "spreadsheetml")
		},
	}))

	// Cache middleware for the health endpoint only
	r.app.Use(cache.New(cache.Config{
		Next: func(c fiber.Ctx) bool {
			return c.Method() != "GET" || !strings.Contains(c.Path(), "/health")
		},
		Expiration: 30 * time.Minute,
	}))

	// Structured request logging
	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health" || c.Path() == r.metricsPath
		},
	}))

	// Prometheus request metrics
	r.app.Use(middleware.Metrics())

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   "1.0.0",
			"service":   "fase-backoffice-api",
		},
	})
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

func rateLimitReached(c fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
		Success: false,
		Message: "Too many requests. Please try again later.",
		Error: dto.ErrorDetail{
			Code: "RATE_LIMIT_EXCEEDED",
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error %d: %v", code, err)

	requestID := c.Locals("requestid")

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
