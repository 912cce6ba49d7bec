package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apierrors "github.com/satchelhq/satchel/server/internal/errors"
)

func (s *APIV1Service) getInstance(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"version":       s.Profile.Version,
		"mode":          s.Profile.Mode,
		"aiEnabled":     s.Profile.IsAIEnabled(),
		"canvasEnabled": s.Profile.IsCanvasEnabled(),
	})
}

func (s *APIV1Service) triggerSync(c echo.Context) error {
	if s.Syncer == nil {
		return writeError(c, apierrors.FailedPrecondition("Canvas sync is not configured"))
	}
	queued := s.Syncer.Trigger()
	return c.JSON(http.StatusAccepted, map[string]bool{"queued": queued})
}

func (s *APIV1Service) getUsage(c echo.Context) error {
	if s.Monitor == nil {
		return writeError(c, apierrors.FailedPrecondition("usage accounting is disabled"))
	}
	summary, err := s.Monitor.Summarize(c.Request().Context(), c.QueryParam("period"))
	if err != nil {
		return writeError(c, apierrors.Internal("failed to summarize usage", err))
	}
	return c.JSON(http.StatusOK, summary)
}
