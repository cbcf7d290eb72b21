package utils

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v2"
	"github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/middleware"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrorResponse is the JSON body for every failed API request.
type ErrorResponse struct {
	Success   bool        `json:"success"`
	Error     string      `json:"error"`
	Kind      errors.Kind `json:"kind"`
	RequestID string      `json:"request_id,omitempty"`
	Detail    string      `json:"detail,omitempty"`
}

// Raw HTML in model output is dropped by the renderer.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// RenderMarkdown converts summary text to HTML safe to embed in the page.
func RenderMarkdown(text string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return "", pkgerrors.Wrap(err, "render markdown")
	}
	return template.HTML(buf.String()), nil
}

func RespondWithJSON(c *fiber.Ctx, code int, payload interface{}) error {
	return c.Status(code).JSON(payload)
}

// RespondWithError writes err as an ErrorResponse. The cause is only
// included when withDetail is set.
func RespondWithError(c *fiber.Ctx, err error, withDetail bool) error {
	resp, code := NewErrorResponse(c, err, withDetail)

	entry := middleware.GetLogger(c).WithFields(logrus.Fields{
		"status": code,
		"kind":   resp.Kind,
	}).WithError(err)
	switch {
	case code >= fiber.StatusInternalServerError:
		entry.Error("Request failed")
	default:
		entry.Warn("Request rejected")
	}

	return RespondWithJSON(c, code, resp)
}

func NewErrorResponse(c *fiber.Ctx, err error, withDetail bool) (*ErrorResponse, int) {
	resp := &ErrorResponse{
		Success:   false,
		Error:     errors.MsgInternal,
		Kind:      errors.KindInternal,
		RequestID: middleware.RequestID(c),
	}
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if appErr, ok := errors.As(err); ok {
		code = errors.Code(err)
		resp.Error = appErr.Message
		resp.Kind = appErr.Kind
		if withDetail {
			resp.Detail = appErr.Detail()
		}
	} else if pkgerrors.As(err, &fiberErr) {
		code = fiberErr.Code
		resp.Error = fiberErr.Message
	} else if withDetail && err != nil {
		resp.Detail = err.Error()
	}
	return resp, code
}
