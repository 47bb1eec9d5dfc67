package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tours-api/pkg/logger"
)

// RequestLogger registra una línea por petición. Solo se monta en development.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// el ErrorHandler todavía no escribió la respuesta
			ae, _ := Normalize(err)
			status = ae.StatusCode
		}
		log.Debug().
			Str("method", c.Method()).
			Str("path", c.OriginalURL()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Msg("petición")
		return err
	}
}
