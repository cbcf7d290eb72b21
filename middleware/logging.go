package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const loggerKey = "logger"

// Logging logs one structured line per request. Query strings are left out
// because they carry user supplied URLs.
func Logging(logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		entry := logger.WithFields(logrus.Fields{
			"request_id": RequestID(c),
			"method":     c.Method(),
			"path":       c.Path(),
			"remote_ip":  c.IP(),
			"user_agent": c.Get(fiber.HeaderUserAgent),
		})
		c.Locals(loggerKey, entry)

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		entry = entry.WithFields(logrus.Fields{
			"status":   status,
			"duration": time.Since(start),
			"size":     len(c.Response().Body()),
		})

		switch {
		case status >= fiber.StatusInternalServerError:
			entry.Error("Request completed with server error")
		case status >= fiber.StatusBadRequest:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
		return nil
	}
}

// RequestID returns the id set by the requestid middleware, falling back to
// the inbound header.
func RequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok && id != "" {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}

// GetLogger returns the request scoped entry set by Logging, or a bare entry.
func GetLogger(c *fiber.Ctx) *logrus.Entry {
	if entry, ok := c.Locals(loggerKey).(*logrus.Entry); ok {
		return entry
	}
	return logrus.NewEntry(logrus.StandardLogger()).WithField("request_id", RequestID(c))
}
