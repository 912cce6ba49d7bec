// Package feed serves an Atom feed of upcoming assignment deadlines so
// calendar and reader apps can subscribe without talking JSON.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"

	"github.com/satchelhq/satchel/internal/profile"
	"github.com/satchelhq/satchel/store"
)

// defaultHorizonDays bounds how far ahead the feed looks for deadlines.
const defaultHorizonDays = 14

// FeedService renders upcoming deadlines as Atom.
type FeedService struct {
	profile *profile.Profile
	store   *store.Store
}

// NewFeedService creates the feed service.
func NewFeedService(prof *profile.Profile, st *store.Store) *FeedService {
	return &FeedService{
		profile: prof,
		store:   st,
	}
}

// Register mounts the feed routes on the given group.
func (s *FeedService) Register(g *echo.Group) {
	g.GET("/assignments.atom", s.assignmentsFeed)
}

func (s *FeedService) assignmentsFeed(c echo.Context) error {
	ctx := c.Request().Context()

	horizonDays := defaultHorizonDays
	if raw := c.QueryParam("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			return c.String(http.StatusBadRequest, "invalid days")
		}
		horizonDays = days
	}

	now := time.Now()
	after := now.Unix()
	before := now.Add(time.Duration(horizonDays) * 24 * time.Hour).Unix()
	rowStatus := store.Normal
	assignments, err := s.store.ListAssignments(ctx, &store.FindAssignment{
		DueAfter:  &after,
		DueBefore: &before,
		RowStatus: &rowStatus,
	})
	if err != nil {
		return c.String(http.StatusInternalServerError, "failed to list assignments")
	}

	courseNames, err := s.courseNamesByID(ctx)
	if err != nil {
		return c.String(http.StatusInternalServerError, "failed to list courses")
	}

	base := s.baseURL()
	atomFeed := &feeds.Feed{
		Title:       "Satchel: upcoming assignments",
		Link:        &feeds.Link{Href: base},
		Description: fmt.Sprintf("Assignments due within the next %d days", horizonDays),
		Created:     now,
	}
	for _, assignment := range assignments {
		if assignment.DueTs == nil {
			continue
		}
		due := time.Unix(*assignment.DueTs, 0).UTC()
		title := assignment.Title
		if name := courseNames[assignment.CourseID]; name != "" {
			title = fmt.Sprintf("%s: %s", name, assignment.Title)
		}

		link := assignment.HTMLURL
		if link == "" {
			link = fmt.Sprintf("%s/api/v1/assignments/%s", base, assignment.UID)
		}
		description := fmt.Sprintf("Due %s.", due.Format("Mon, 02 Jan 2006 15:04 MST"))
		if assignment.PointsPossible > 0 {
			description += fmt.Sprintf(" Worth %g points.", assignment.PointsPossible)
		}

		atomFeed.Items = append(atomFeed.Items, &feeds.Item{
			Id:          fmt.Sprintf("%s/api/v1/assignments/%s", base, assignment.UID),
			Title:       title,
			Link:        &feeds.Link{Href: link},
			Description: description,
			Created:     due,
			Updated:     time.Unix(assignment.UpdatedTs, 0),
		})
	}

	atom, err := atomFeed.ToAtom()
	if err != nil {
		return c.String(http.StatusInternalServerError, "failed to render feed")
	}
	return c.Blob(http.StatusOK, "application/atom+xml; charset=utf-8", []byte(atom))
}

func (s *FeedService) courseNamesByID(ctx context.Context) (map[int32]string, error) {
	courses, err := s.store.ListCourses(ctx, &store.FindCourse{})
	if err != nil {
		return nil, err
	}
	names := make(map[int32]string, len(courses))
	for _, course := range courses {
		names[course.ID] = course.Name
	}
	return names, nil
}

func (s *FeedService) baseURL() string {
	if s.profile.InstanceURL != "" {
		return strings.TrimSuffix(s.profile.InstanceURL, "/")
	}
	return fmt.Sprintf("http://localhost:%d", s.profile.Port)
}
