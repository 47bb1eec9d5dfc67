package http

import (
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/jhoicas/tours-api/internal/application/dto"
	"github.com/jhoicas/tours-api/internal/domain"
	"github.com/jhoicas/tours-api/internal/infrastructure/memory"
	"github.com/jhoicas/tours-api/pkg/config"
	"github.com/jhoicas/tours-api/pkg/logger"
)

// SwaggerFile documento OpenAPI servido en /docs, si existe.
const SwaggerFile = "./docs/swagger.json"

// AppOptions dependencias opcionales de NewApp.
type AppOptions struct {
	// LimiterStorage contadores del rate limiter; por defecto memory.NewStorage().
	LimiterStorage fiber.Storage
	// SwaggerFile ruta del documento OpenAPI; vacío usa SwaggerFile.
	SwaggerFile string
}

// NewApp arma la aplicación Fiber: pipeline de seguridad, rutas y manejo de errores.
func NewApp(cfg *config.Config, log *logger.Logger, deps RouterDeps, opts AppOptions) *fiber.App {
	dev := cfg.App.IsDevelopment()
	if opts.LimiterStorage == nil {
		opts.LimiterStorage = memory.NewStorage()
	}
	if opts.SwaggerFile == "" {
		opts.SwaggerFile = SwaggerFile
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.Security.BodyLimitBytes(),
		ErrorHandler: ErrorHandler(log, dev),
	})
	app.Use(recover.New(recover.Config{EnableStackTrace: dev}))
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(helmet.New())
	if dev {
		app.Use(RequestLogger(log))
	}

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(opts.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: opts.SwaggerFile,
			Path:     "docs",
			Title:    "Tours API",
		}))
	} else {
		log.Warn().Str("file", opts.SwaggerFile).Msg("swagger deshabilitado: documento OpenAPI no encontrado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok", Service: cfg.App.Name})
	})

	app.Use("/api",
		RateLimit(cfg.Security.RateLimitMax, cfg.Security.RateLimitWindow, opts.LimiterStorage),
		Sanitize(),
		HPP(HPPWhitelist...),
	)
	Router(app, deps)

	app.Use(func(c *fiber.Ctx) error {
		return domain.NotFound("Can't find " + c.OriginalURL() + " on this server!")
	})
	return app
}
