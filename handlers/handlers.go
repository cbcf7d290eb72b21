package handlers

import (
	"context"
	"embed"
	"html/template"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/middleware"
	"github.com/nijaru/yt-summary/models"
	"github.com/nijaru/yt-summary/utils"
)

//go:embed templates/index.html
var templateFS embed.FS

var page = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Service is the fetch and summarize flow behind the handlers.
type Service interface {
	Preview(rawURL string) (*models.Video, error)
	Run(ctx context.Context, rawURL string) (*models.Result, error)
}

// RunLog is the read side of the run store.
type RunLog interface {
	RecentRuns(ctx context.Context, limit int) ([]*models.Run, error)
	GetRun(ctx context.Context, id string) (*models.Run, error)
	Ping(ctx context.Context) error
}

const healthPingTimeout = 2 * time.Second

type pageData struct {
	URL     string
	Video   *models.Video
	Notes   template.HTML
	Model   string
	Warning string
	Error   string
}

type Handler struct {
	service Service
	runs    RunLog
	debug   bool
}

// NewHandler wires the handlers. runs may be nil when the run log is disabled.
func NewHandler(service Service, runs RunLog, debug bool) *Handler {
	return &Handler{
		service: service,
		runs:    runs,
		debug:   debug,
	}
}

func (h *Handler) Register(app *fiber.App) {
	app.Get("/", h.Index)
	app.Post("/summarize", h.SummarizePage)

	api := app.Group("/api")
	api.Get("/video", h.Video)
	api.Post("/summarize", h.Summarize)
	api.Get("/runs", h.Runs)
	api.Get("/runs/:id", h.RunByID)

	app.Get("/health", h.Health)
}

// Index shows the form, and the thumbnail once ?url= yields a video id.
func (h *Handler) Index(c *fiber.Ctx) error {
	data := pageData{URL: c.Query("url")}
	if data.URL != "" {
		if video, err := h.service.Preview(data.URL); err == nil {
			data.Video = video
		}
	}
	return h.render(c, fiber.StatusOK, data)
}

func (h *Handler) SummarizePage(c *fiber.Ctx) error {
	data := pageData{URL: c.FormValue("url")}
	if video, err := h.service.Preview(data.URL); err == nil {
		data.Video = video
	}

	result, err := h.service.Run(c.UserContext(), data.URL)
	if err != nil {
		appErr, ok := errors.As(err)
		if !ok {
			appErr = errors.Internal("handlers.SummarizePage", err, "")
		}
		if appErr.Warning() {
			data.Warning = appErr.Message
		} else {
			data.Error = appErr.Message
			if detail := appErr.Detail(); h.debug && detail != "" {
				data.Error += " (" + detail + ")"
			}
		}
		middleware.GetLogger(c).WithError(err).WithField("kind", appErr.Kind).Warn("Summarize page failed")
		return h.render(c, appErr.Code, data)
	}

	notes, err := utils.RenderMarkdown(result.Summary)
	if err != nil {
		notes = template.HTML(template.HTMLEscapeString(result.Summary))
	}
	data.Notes = notes
	data.Model = result.Model
	return h.render(c, fiber.StatusOK, data)
}

func (h *Handler) Video(c *fiber.Ctx) error {
	video, err := h.service.Preview(c.Query("url"))
	if err != nil {
		return err
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, models.NewVideoResponse(video))
}

func (h *Handler) Summarize(c *fiber.Ctx) error {
	var req models.SummarizeRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return errors.InvalidURL("handlers.Summarize", err)
	}

	result, err := h.service.Run(c.UserContext(), req.URL)
	if err != nil {
		return err
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, models.NewSummaryResponse(result))
}

func (h *Handler) Runs(c *fiber.Ctx) error {
	runs := []*models.Run{}
	if h.runs != nil {
		limit, _ := strconv.Atoi(c.Query("limit"))
		found, err := h.runs.RecentRuns(c.UserContext(), limit)
		if err != nil {
			return err
		}
		runs = found
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"runs": runs,
	})
}

func (h *Handler) RunByID(c *fiber.Ctx) error {
	if h.runs == nil {
		return errors.NotFound("handlers.RunByID", nil)
	}
	run, err := h.runs.GetRun(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, run)
}

// Health reports 503 when the run log is enabled but unreachable.
func (h *Handler) Health(c *fiber.Ctx) error {
	if h.runs != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthPingTimeout)
		defer cancel()
		if err := h.runs.Ping(ctx); err != nil {
			middleware.GetLogger(c).WithError(err).Error("Run log ping failed")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":    "unavailable",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
		}
	}
	return HealthHandler(c)
}

func HealthHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ErrorHandler renders every error returned by a route as JSON.
func ErrorHandler(debug bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return utils.RespondWithError(c, err, debug)
	}
}

func (h *Handler) render(c *fiber.Ctx, status int, data pageData) error {
	c.Status(status)
	c.Type("html", "utf-8")
	return page.Execute(c.Response().BodyWriter(), data)
}
