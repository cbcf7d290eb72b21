package middleware

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/etag"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/nijaru/yt-summary/config"
	"github.com/nijaru/yt-summary/logger"
	"github.com/sirupsen/logrus"
)

// Setup registers the middleware stack selected by cfg.Middleware. Access
// lines go to accessLog; structured request logs go to the logrus logger.
// Request ids are assigned first so every log line carries one.
func Setup(app *fiber.App, cfg *config.Config, accessLog io.Writer) {
	if cfg.Middleware.EnableRequestID {
		app.Use(requestid.New(requestid.Config{
			Header: fiber.HeaderXRequestID,
			Generator: func() string {
				return uuid.New().String()
			},
		}))
	}

	if cfg.Middleware.EnableLogger {
		if accessLog != nil {
			app.Use(fiberLogger.New(logger.AccessLogConfig(accessLog)))
		}
		app.Use(Logging(logrus.StandardLogger()))
	}

	// Inside Logging so a recovered panic still gets its completion line.
	if cfg.Middleware.EnableRecover {
		app.Use(recover.New(recover.Config{
			EnableStackTrace: cfg.Debug,
		}))
	}

	if cfg.Middleware.EnableCORS {
		origins := strings.Join(cfg.CORS.AllowedOrigins, ",")
		app.Use(cors.New(cors.Config{
			AllowOrigins: origins,
			AllowMethods: strings.Join(cfg.CORS.AllowedMethods, ","),
			AllowHeaders: strings.Join(cfg.CORS.AllowedHeaders, ","),
			// fiber rejects credentials combined with a wildcard origin.
			AllowCredentials: false,
			MaxAge:           cfg.CORS.MaxAge,
		}))
	}

	if cfg.Middleware.EnableCompress {
		app.Use(compress.New(compress.Config{
			Level: compress.LevelDefault,
		}))
	}

	if cfg.Middleware.EnableETag {
		app.Use(etag.New())
	}
}
