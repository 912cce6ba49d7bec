package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apierrors "github.com/satchelhq/satchel/server/internal/errors"
	"github.com/satchelhq/satchel/store"
)

func (s *APIV1Service) listCourses(c echo.Context) error {
	ctx := c.Request().Context()

	find := &store.FindCourse{}
	if state := c.QueryParam("state"); state != "" {
		rowStatus := store.RowStatus(strings.ToUpper(state))
		if rowStatus != store.Normal && rowStatus != store.Archived {
			return writeError(c, apierrors.InvalidArgument("unknown state: %s", state))
		}
		find.RowStatus = &rowStatus
	}

	courses, err := s.Store.ListCourses(ctx, find)
	if err != nil {
		return writeError(c, apierrors.Internal("failed to list courses", err))
	}

	var filter *rowFilter
	if expression := c.QueryParam("filter"); expression != "" {
		if filter, err = newRowFilter(courseFilterEnv, expression); err != nil {
			return writeError(c, err)
		}
	}

	list := make([]*Course, 0, len(courses))
	for _, course := range courses {
		if filter != nil {
			keep, err := filter.matches(courseFilterRow(course))
			if err != nil {
				return writeError(c, err)
			}
			if !keep {
				continue
			}
		}
		list = append(list, convertCourse(course))
	}
	return c.JSON(http.StatusOK, list)
}

func (s *APIV1Service) getCourse(c echo.Context) error {
	ctx := c.Request().Context()
	uid := c.Param("uid")

	course, err := s.Store.GetCourse(ctx, &store.FindCourse{UID: &uid})
	if err != nil {
		return writeError(c, apierrors.Internal("failed to get course", err))
	}
	if course == nil {
		return writeError(c, apierrors.NotFound("course not found: %s", uid))
	}
	return c.JSON(http.StatusOK, convertCourse(course))
}
