package v1

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/satchelhq/satchel/plugin/ai/assist"
	apierrors "github.com/satchelhq/satchel/server/internal/errors"
	"github.com/satchelhq/satchel/store"
)

// textResponse is the response for the markdown-bearing assist endpoints.
// HTML is present only when the client asked for render=html.
type textResponse struct {
	Text string `json:"text"`
	HTML string `json:"html,omitempty"`
}

// assistError surfaces an assist failure. Error messages from the AI proxy
// are already client-facing, so the cause text goes into the response.
func assistError(op string, err error) error {
	return apierrors.Unavailable(fmt.Sprintf("failed to %s: %v", op, err), err)
}

func (s *APIV1Service) assistSummarize(c echo.Context) error {
	if err := s.requireAssist(); err != nil {
		return writeError(c, err)
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&req); err != nil {
		return writeError(c, apierrors.InvalidArgument("invalid request body"))
	}
	if strings.TrimSpace(req.Text) == "" {
		return writeError(c, apierrors.InvalidArgument("text is required"))
	}

	text, err := s.Assist.Summarize(c.Request().Context(), req.Text)
	if err != nil {
		return writeError(c, assistError("summarize document", err))
	}
	resp := textResponse{Text: text}
	if wantsHTML(c) {
		resp.HTML = s.renderHTML(c, text)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *APIV1Service) assistSummarizePage(c echo.Context) error {
	if err := s.requireAssist(); err != nil {
		return writeError(c, err)
	}
	var req struct {
		URL string `json:"url"`
	}
	if err := c.Bind(&req); err != nil {
		return writeError(c, apierrors.InvalidArgument("invalid request body"))
	}
	if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		return writeError(c, apierrors.InvalidArgument("url must be http or https"))
	}

	text, err := s.Assist.SummarizePage(c.Request().Context(), req.URL)
	if err != nil {
		return writeError(c, assistError("summarize page", err))
	}
	resp := textResponse{Text: text}
	if wantsHTML(c) {
		resp.HTML = s.renderHTML(c, text)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *APIV1Service) assistEstimate(c echo.Context) error {
	if err := s.requireAssist(); err != nil {
		return writeError(c, err)
	}
	ctx := c.Request().Context()
	var req struct {
		AssignmentUID string `json:"assignmentUid"`
	}
	if err := c.Bind(&req); err != nil {
		return writeError(c, apierrors.InvalidArgument("invalid request body"))
	}

	assignment, err := s.assistAssignment(ctx, req.AssignmentUID)
	if err != nil {
		return writeError(c, err)
	}
	estimate, err := s.Assist.EstimateTime(ctx, *assignment)
	if err != nil {
		return writeError(c, assistError("estimate assignment time", err))
	}
	return c.JSON(http.StatusOK, map[string]string{"estimate": estimate})
}

func (s *APIV1Service) assistStudyPlan(c echo.Context) error {
	if err := s.requireAssist(); err != nil {
		return writeError(c, err)
	}
	ctx := c.Request().Context()
	var req struct {
		AssignmentUID string `json:"assignmentUid"`
	}
	if err := c.Bind(&req); err != nil {
		return writeError(c, apierrors.InvalidArgument("invalid request body"))
	}

	assignment, err := s.assistAssignment(ctx, req.AssignmentUID)
	if err != nil {
		return writeError(c, err)
	}
	plan, err := s.Assist.GenerateStudyPlan(ctx, *assignment)
	if err != nil {
		return writeError(c, assistError("generate study plan", err))
	}
	return c.JSON(http.StatusOK, map[string]*assist.StudyPlan{"plan": plan})
}

func (s *APIV1Service) assistFlashcards(c echo.Context) error {
	if err := s.requireAssist(); err != nil {
		return writeError(c, err)
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&req); err != nil {
		return writeError(c, apierrors.InvalidArgument("invalid request body"))
	}
	if strings.TrimSpace(req.Text) == "" {
		return writeError(c, apierrors.InvalidArgument("text is required"))
	}

	cards, err := s.Assist.GenerateFlashcards(c.Request().Context(), req.Text)
	if err != nil {
		return writeError(c, assistError("generate flashcards", err))
	}
	return c.JSON(http.StatusOK, map[string][]assist.Flashcard{"cards": cards})
}

func (s *APIV1Service) assistTutor(c echo.Context) error {
	if err := s.requireAssist(); err != nil {
		return writeError(c, err)
	}
	ctx := c.Request().Context()
	var req struct {
		Question  string `json:"question"`
		CourseUID string `json:"courseUid"`
	}
	if err := c.Bind(&req); err != nil {
		return writeError(c, apierrors.InvalidArgument("invalid request body"))
	}
	if strings.TrimSpace(req.Question) == "" {
		return writeError(c, apierrors.InvalidArgument("question is required"))
	}

	courseContext := ""
	if req.CourseUID != "" {
		var err error
		if courseContext, err = s.tutorContext(ctx, req.CourseUID); err != nil {
			return writeError(c, err)
		}
	}
	text, err := s.Assist.Tutor(ctx, req.Question, courseContext)
	if err != nil {
		return writeError(c, assistError("answer question", err))
	}
	resp := textResponse{Text: text}
	if wantsHTML(c) {
		resp.HTML = s.renderHTML(c, text)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *APIV1Service) assistImage(c echo.Context) error {
	if err := s.requireAssist(); err != nil {
		return writeError(c, err)
	}
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := c.Bind(&req); err != nil {
		return writeError(c, apierrors.InvalidArgument("invalid request body"))
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return writeError(c, apierrors.InvalidArgument("prompt is required"))
	}

	url, err := s.Assist.GenerateImage(c.Request().Context(), req.Prompt)
	if err != nil {
		return writeError(c, assistError("generate image", err))
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

func (s *APIV1Service) assistSpeech(c echo.Context) error {
	if err := s.requireAssist(); err != nil {
		return writeError(c, err)
	}
	var req struct {
		Text  string `json:"text"`
		Voice string `json:"voice"`
	}
	if err := c.Bind(&req); err != nil {
		return writeError(c, apierrors.InvalidArgument("invalid request body"))
	}
	if strings.TrimSpace(req.Text) == "" {
		return writeError(c, apierrors.InvalidArgument("text is required"))
	}

	audio, err := s.Assist.SynthesizeSpeech(c.Request().Context(), req.Text, req.Voice)
	if err != nil {
		return writeError(c, assistError("synthesize speech", err))
	}
	return c.Blob(http.StatusOK, "audio/mpeg", audio)
}

func (s *APIV1Service) assistInvalidate(c echo.Context) error {
	if err := s.requireAssist(); err != nil {
		return writeError(c, err)
	}
	s.Assist.Invalidate(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// assistAssignment loads an assignment by uid and shapes it for the AI
// prompts.
func (s *APIV1Service) assistAssignment(ctx context.Context, uid string) (*assist.Assignment, error) {
	if uid == "" {
		return nil, apierrors.InvalidArgument("assignmentUid is required")
	}
	assignment, err := s.Store.GetAssignment(ctx, &store.FindAssignment{UID: &uid})
	if err != nil {
		return nil, apierrors.Internal("failed to get assignment", err)
	}
	if assignment == nil {
		return nil, apierrors.NotFound("assignment not found: %s", uid)
	}

	courseName := ""
	if course, err := s.Store.GetCourse(ctx, &store.FindCourse{ID: &assignment.CourseID}); err == nil && course != nil {
		courseName = course.Name
	}

	shaped := &assist.Assignment{
		ID:          assignment.CanvasID,
		Course:      courseName,
		Title:       assignment.Title,
		Description: assignment.DescriptionText,
		Points:      assignment.PointsPossible,
	}
	if assignment.DueTs != nil {
		shaped.DueAt = time.Unix(*assignment.DueTs, 0).UTC().Format(time.RFC3339)
	}
	return shaped, nil
}

// tutorContext builds a short course summary the tutor prompt can ground on.
func (s *APIV1Service) tutorContext(ctx context.Context, courseUID string) (string, error) {
	course, err := s.Store.GetCourse(ctx, &store.FindCourse{UID: &courseUID})
	if err != nil {
		return "", apierrors.Internal("failed to get course", err)
	}
	if course == nil {
		return "", apierrors.NotFound("course not found: %s", courseUID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s (%s)", course.Name, course.Code)
	if course.Term != "" {
		fmt.Fprintf(&b, ", term %s", course.Term)
	}

	now := time.Now().Unix()
	limit := 5
	assignments, err := s.Store.ListAssignments(ctx, &store.FindAssignment{
		CourseID: &course.ID,
		DueAfter: &now,
		Limit:    &limit,
	})
	if err == nil && len(assignments) > 0 {
		b.WriteString("\nUpcoming assignments:")
		for _, assignment := range assignments {
			fmt.Fprintf(&b, "\n- %s", assignment.Title)
			if assignment.DueTs != nil {
				fmt.Fprintf(&b, " (due %s)", time.Unix(*assignment.DueTs, 0).UTC().Format("2006-01-02"))
			}
		}
	}
	return b.String(), nil
}
