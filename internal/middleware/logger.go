package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Logger emits one structured line per request, but only for slow or failed
// requests so healthy traffic stays quiet.
func Logger() fiber.Handler {
	const slowThreshold = 500 * time.Millisecond
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		status := c.Response().StatusCode()
		if status < 400 && latency < slowThreshold {
			return err
		}

		log.Info().
			Int("status", status).
			Dur("latency", latency).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("request")
		return err
	}
}
