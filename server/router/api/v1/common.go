package v1

import (
	"github.com/labstack/echo/v4"

	apierrors "github.com/satchelhq/satchel/server/internal/errors"
	"github.com/satchelhq/satchel/server/internal/observability"
)

// writeError maps a handler error to its HTTP response. Internal causes are
// logged, never sent to the client.
func writeError(c echo.Context, err error) error {
	status := apierrors.HTTPStatus(err)
	if status >= 500 {
		observability.LoggerFromContext(c.Request().Context()).Error("request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"err", err,
		)
	}
	return c.JSON(status, map[string]string{
		"code":  string(apierrors.CodeOf(err)),
		"error": apierrors.PublicMessage(err),
	})
}

// wantsHTML reports whether the client asked for rendered markdown.
func wantsHTML(c echo.Context) bool {
	return c.QueryParam("render") == "html"
}

// renderHTML converts markdown to HTML, or returns "" when rendering fails.
// A render failure downgrades the response to markdown-only rather than
// failing the whole request.
func (s *APIV1Service) renderHTML(c echo.Context, text string) string {
	html, err := s.Markdown.Render(text)
	if err != nil {
		observability.LoggerFromContext(c.Request().Context()).Warn("failed to render markdown", "err", err)
		return ""
	}
	return html
}

// requireAssist guards endpoints that need the AI pipeline.
func (s *APIV1Service) requireAssist() error {
	if s.Assist == nil {
		return apierrors.FailedPrecondition("AI features are disabled")
	}
	return nil
}
