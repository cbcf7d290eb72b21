package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/nijaru/yt-summary/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger, &buf
}

func TestLoggingMiddleware(t *testing.T) {
	logger, buf := newTestLogger()

	app := fiber.New()
	app.Use(Logging(logger))
	app.Get("/test", func(c *fiber.Ctx) error {
		GetLogger(c).Info("inside handler")
		return c.SendString("ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/test?url=secret", nil)
	req.Header.Set(fiber.HeaderXRequestID, "req-1")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", resp.StatusCode, http.StatusOK)
	}

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, "inside handler")
	assert.Contains(t, out, "Request completed successfully")
	assert.NotContains(t, out, "secret")
}

func TestLoggingMiddleware_HandlesErrors(t *testing.T) {
	logger, buf := newTestLogger()

	app := fiber.New()
	app.Use(Logging(logger))
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadGateway, "upstream")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, buf.String(), "Request completed with server error")
}

func TestSetup(t *testing.T) {
	cfg := config.Default()
	cfg.Middleware.EnableCompress = true
	cfg.Middleware.EnableETag = true

	var access bytes.Buffer
	app := fiber.New()
	Setup(app, cfg, &access)
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString(RequestID(c))
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)

	id := resp.Header.Get(fiber.HeaderXRequestID)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, string(body))
	assert.Contains(t, access.String(), "/ping")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestSetup_RecoveredPanicIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logrus.SetOutput(&buf)
	defer logrus.SetOutput(os.Stderr)

	app := fiber.New()
	Setup(app, config.Default(), nil)
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	out := buf.String()
	assert.Contains(t, out, "Request completed with server error")
	assert.Contains(t, out, "status=500")
	assert.Contains(t, out, "path=/panic")
}

func TestSetup_CORS(t *testing.T) {
	cfg := config.Default()

	app := fiber.New()
	Setup(app, cfg, nil)
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(fiber.HeaderOrigin, "https://example.com")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}
