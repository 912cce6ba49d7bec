package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apierrors "github.com/satchelhq/satchel/server/internal/errors"
	"github.com/satchelhq/satchel/store"
)

func (s *APIV1Service) listSettings(c echo.Context) error {
	settings, err := s.Store.ListUserSettings(c.Request().Context(), &store.FindUserSetting{})
	if err != nil {
		return writeError(c, apierrors.Internal("failed to list settings", err))
	}
	list := make([]*Setting, 0, len(settings))
	for _, setting := range settings {
		list = append(list, convertSetting(setting))
	}
	return c.JSON(http.StatusOK, list)
}

func (s *APIV1Service) getSetting(c echo.Context) error {
	key := c.Param("key")
	setting, err := s.Store.GetUserSetting(c.Request().Context(), &store.FindUserSetting{Key: key})
	if err != nil {
		return writeError(c, apierrors.Internal("failed to get setting", err))
	}
	if setting == nil {
		return writeError(c, apierrors.NotFound("setting not found: %s", key))
	}
	return c.JSON(http.StatusOK, convertSetting(setting))
}

func (s *APIV1Service) patchSetting(c echo.Context) error {
	var req struct {
		Value string `json:"value"`
	}
	if err := c.Bind(&req); err != nil {
		return writeError(c, apierrors.InvalidArgument("invalid request body"))
	}

	setting, err := s.Store.UpsertUserSetting(c.Request().Context(), &store.UserSetting{
		Key:   c.Param("key"),
		Value: req.Value,
	})
	if err != nil {
		return writeError(c, apierrors.Internal("failed to upsert setting", err))
	}
	return c.JSON(http.StatusOK, convertSetting(setting))
}

func (s *APIV1Service) deleteSetting(c echo.Context) error {
	if err := s.Store.DeleteUserSetting(c.Request().Context(), &store.DeleteUserSetting{
		Key: c.Param("key"),
	}); err != nil {
		return writeError(c, apierrors.Internal("failed to delete setting", err))
	}
	return c.NoContent(http.StatusNoContent)
}
