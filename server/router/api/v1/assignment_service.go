package v1

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/satchelhq/satchel/server/internal/errors"
	"github.com/satchelhq/satchel/store"
)

func (s *APIV1Service) listAssignments(c echo.Context) error {
	ctx := c.Request().Context()

	find := &store.FindAssignment{}
	if courseUID := c.QueryParam("courseUid"); courseUID != "" {
		course, err := s.Store.GetCourse(ctx, &store.FindCourse{UID: &courseUID})
		if err != nil {
			return writeError(c, apierrors.Internal("failed to get course", err))
		}
		if course == nil {
			return writeError(c, apierrors.NotFound("course not found: %s", courseUID))
		}
		find.CourseID = &course.ID
	}
	if state := c.QueryParam("state"); state != "" {
		rowStatus := store.RowStatus(strings.ToUpper(state))
		if rowStatus != store.Normal && rowStatus != store.Archived {
			return writeError(c, apierrors.InvalidArgument("unknown state: %s", state))
		}
		find.RowStatus = &rowStatus
	}
	if raw := c.QueryParam("dueWithin"); raw != "" {
		horizon, err := parseHorizon(raw)
		if err != nil {
			return writeError(c, err)
		}
		now := time.Now().Unix()
		before := now + int64(horizon.Seconds())
		find.DueAfter = &now
		find.DueBefore = &before
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return writeError(c, apierrors.InvalidArgument("invalid limit: %s", raw))
		}
		find.Limit = &limit
		if raw := c.QueryParam("offset"); raw != "" {
			offset, err := strconv.Atoi(raw)
			if err != nil || offset < 0 {
				return writeError(c, apierrors.InvalidArgument("invalid offset: %s", raw))
			}
			find.Offset = &offset
		}
	}

	assignments, err := s.Store.ListAssignments(ctx, find)
	if err != nil {
		return writeError(c, apierrors.Internal("failed to list assignments", err))
	}

	var filter *rowFilter
	if expression := c.QueryParam("filter"); expression != "" {
		if filter, err = newRowFilter(assignmentFilterEnv, expression); err != nil {
			return writeError(c, err)
		}
	}

	courseUIDs, err := s.courseUIDsByID(ctx)
	if err != nil {
		return writeError(c, apierrors.Internal("failed to list courses", err))
	}

	list := make([]*Assignment, 0, len(assignments))
	for _, assignment := range assignments {
		if filter != nil {
			keep, err := filter.matches(assignmentFilterRow(assignment))
			if err != nil {
				return writeError(c, err)
			}
			if !keep {
				continue
			}
		}
		list = append(list, convertAssignment(assignment, courseUIDs[assignment.CourseID]))
	}
	return c.JSON(http.StatusOK, list)
}

func (s *APIV1Service) getAssignment(c echo.Context) error {
	ctx := c.Request().Context()
	uid := c.Param("uid")

	assignment, err := s.Store.GetAssignment(ctx, &store.FindAssignment{UID: &uid})
	if err != nil {
		return writeError(c, apierrors.Internal("failed to get assignment", err))
	}
	if assignment == nil {
		return writeError(c, apierrors.NotFound("assignment not found: %s", uid))
	}

	var courseUID string
	if course, err := s.Store.GetCourse(ctx, &store.FindCourse{ID: &assignment.CourseID}); err == nil && course != nil {
		courseUID = course.UID
	}
	return c.JSON(http.StatusOK, convertAssignment(assignment, courseUID))
}

// courseUIDsByID maps course row ids to their uids for response conversion.
func (s *APIV1Service) courseUIDsByID(ctx context.Context) (map[int32]string, error) {
	courses, err := s.Store.ListCourses(ctx, &store.FindCourse{})
	if err != nil {
		return nil, err
	}
	uids := make(map[int32]string, len(courses))
	for _, course := range courses {
		uids[course.ID] = course.UID
	}
	return uids, nil
}

// parseHorizon parses a due-date horizon. A bare integer means days; anything
// else must be a Go duration such as "36h".
func parseHorizon(raw string) (time.Duration, error) {
	if days, err := strconv.Atoi(raw); err == nil {
		if days <= 0 {
			return 0, apierrors.InvalidArgument("dueWithin must be positive: %s", raw)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	horizon, err := time.ParseDuration(raw)
	if err != nil || horizon <= 0 {
		return 0, apierrors.InvalidArgument("invalid dueWithin: %s", raw)
	}
	return horizon, nil
}
