// Package canvas is a typed client for the Canvas LMS REST API. It covers
// the read-only surface the sync runner needs: active courses, per-course
// assignments, and the current user's upcoming assignment deadlines.
package canvas

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// Config holds the Canvas API client configuration.
type Config struct {
	// BaseURL is the Canvas instance root, e.g. https://school.instructure.com.
	BaseURL string
	// Token is the Canvas API access token.
	Token string
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration
	// RetryMax is the number of retries for transient failures.
	RetryMax int
	// PerPage is the page size requested from Canvas.
	PerPage int
}

// DefaultConfig returns the default Canvas client configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout:  30 * time.Second,
		RetryMax: 2,
		PerPage:  50,
	}
}

// Client talks to a Canvas instance on behalf of one user token.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a Canvas API client. The token rides on every request
// via an oauth2 static token source under the retrying transport.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		return nil, errors.New("canvas base URL is required")
	}
	if config.Token == "" {
		return nil, errors.New("canvas access token is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.PerPage <= 0 {
		config.PerPage = 50
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: config.Token})

	rc := retryablehttp.NewClient()
	rc.RetryMax = config.RetryMax
	rc.Logger = nil
	rc.HTTPClient = oauth2.NewClient(context.Background(), ts)
	rc.HTTPClient.Timeout = config.Timeout

	return &Client{
		config:     config,
		httpClient: rc.StandardClient(),
	}, nil
}

// ListCourses returns the user's active courses across all pages. Terms are
// included so callers get the human-readable term name alongside the ID.
func (c *Client) ListCourses(ctx context.Context) ([]Course, error) {
	pageURL := c.apiURL("/courses", url.Values{
		"enrollment_state": {"active"},
		"include[]":        {"term"},
	})
	var courses []Course
	for pageURL != "" {
		var page []Course
		next, err := c.getJSON(ctx, pageURL, &page)
		if err != nil {
			return nil, errors.Wrap(err, "failed to list courses")
		}
		courses = append(courses, page...)
		pageURL = next
	}
	return courses, nil
}

// ListAssignments returns all assignments for a course, ordered by due date.
func (c *Client) ListAssignments(ctx context.Context, courseID int64) ([]Assignment, error) {
	path := "/courses/" + strconv.FormatInt(courseID, 10) + "/assignments"
	pageURL := c.apiURL(path, url.Values{"order_by": {"due_at"}})
	var assignments []Assignment
	for pageURL != "" {
		var page []Assignment
		next, err := c.getJSON(ctx, pageURL, &page)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list assignments for course %d", courseID)
		}
		assignments = append(assignments, page...)
		pageURL = next
	}
	return assignments, nil
}

// upcomingEvent is one entry from the upcoming_events endpoint. Only events
// backed by an assignment are of interest; calendar-only events carry nil.
type upcomingEvent struct {
	Title      string      `json:"title"`
	Assignment *Assignment `json:"assignment"`
}

// ListUpcoming returns the user's upcoming assignment deadlines.
func (c *Client) ListUpcoming(ctx context.Context) ([]Assignment, error) {
	pageURL := c.apiURL("/users/self/upcoming_events", nil)
	var assignments []Assignment
	for pageURL != "" {
		var page []upcomingEvent
		next, err := c.getJSON(ctx, pageURL, &page)
		if err != nil {
			return nil, errors.Wrap(err, "failed to list upcoming events")
		}
		for _, ev := range page {
			if ev.Assignment != nil {
				assignments = append(assignments, *ev.Assignment)
			}
		}
		pageURL = next
	}
	return assignments, nil
}

func (c *Client) apiURL(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("per_page", strconv.Itoa(c.config.PerPage))
	return c.config.BaseURL + "/api/v1" + path + "?" + query.Encode()
}

// getJSON fetches one page and returns the rel="next" URL, if any.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) (next string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", errors.Errorf("canvas returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return "", errors.Wrap(err, "failed to decode canvas response")
	}
	return parseNextLink(resp.Header.Get("Link")), nil
}

// parseNextLink extracts the rel="next" URL from a Canvas Link header.
// Canvas paginates every list endpoint this way.
func parseNextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		sections := strings.Split(part, ";")
		if len(sections) < 2 {
			continue
		}
		for _, attr := range sections[1:] {
			if strings.TrimSpace(attr) != `rel="next"` {
				continue
			}
			u := strings.TrimSpace(sections[0])
			u = strings.TrimPrefix(u, "<")
			u = strings.TrimSuffix(u, ">")
			return u
		}
	}
	return ""
}
