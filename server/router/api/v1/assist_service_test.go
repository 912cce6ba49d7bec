package v1

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssistSummarize(t *testing.T) {
	svc, e := newTestService(t)
	fa := &fakeAssist{summarizeResult: "# Key points\n\n- one"}
	svc.Assist = fa

	t.Run("markdown only", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/api/v1/assist/summarize", `{"text":"lecture notes"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"text":"# Key points\n\n- one"}`, rec.Body.String())
	})

	t.Run("rendered html", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/api/v1/assist/summarize?render=html", `{"text":"lecture notes"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "<h1")
		assert.Contains(t, rec.Body.String(), "<li>one</li>")
	})

	t.Run("empty text", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/api/v1/assist/summarize", `{"text":"  "}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("upstream error passes through", func(t *testing.T) {
		fa.err = errors.New("rate limit exceeded")
		defer func() { fa.err = nil }()

		rec := doRequest(e, http.MethodPost, "/api/v1/assist/summarize", `{"text":"lecture notes"}`)
		require.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "rate limit exceeded")
	})
}

func TestAssistDisabled(t *testing.T) {
	_, e := newTestService(t)

	rec := doRequest(e, http.MethodPost, "/api/v1/assist/summarize", `{"text":"notes"}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "AI features are disabled")
}

func TestAssistSummarizePage(t *testing.T) {
	svc, e := newTestService(t)
	svc.Assist = &fakeAssist{}

	rec := doRequest(e, http.MethodPost, "/api/v1/assist/summarize-page", `{"url":"https://example.com/article"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "summary of page")

	rec = doRequest(e, http.MethodPost, "/api/v1/assist/summarize-page", `{"url":"ftp://example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssistEstimate(t *testing.T) {
	svc, e := newTestService(t)
	fa := &fakeAssist{}
	svc.Assist = fa

	bio := seedCourse(t, svc.Store, 101, "Intro Biology", "BIO101")
	due := time.Now().Add(72 * time.Hour).Unix()
	assignment := seedAssignment(t, svc.Store, bio, 2001, "Lab Report", &due, 25)

	rec := doRequest(e, http.MethodPost, "/api/v1/assist/estimate", `{"assignmentUid":"`+assignment.UID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"estimate":"about 2 hours"}`, rec.Body.String())

	// The prompt sees the Canvas id, the course name and an RFC3339 due date.
	assert.Equal(t, int64(2001), fa.lastAssignment.ID)
	assert.Equal(t, "Intro Biology", fa.lastAssignment.Course)
	assert.Equal(t, time.Unix(due, 0).UTC().Format(time.RFC3339), fa.lastAssignment.DueAt)

	rec = doRequest(e, http.MethodPost, "/api/v1/assist/estimate", `{"assignmentUid":"missing"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(e, http.MethodPost, "/api/v1/assist/estimate", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssistStudyPlan(t *testing.T) {
	svc, e := newTestService(t)
	svc.Assist = &fakeAssist{}

	bio := seedCourse(t, svc.Store, 101, "Intro Biology", "BIO101")
	assignment := seedAssignment(t, svc.Store, bio, 2002, "Final Essay", nil, 100)

	rec := doRequest(e, http.MethodPost, "/api/v1/assist/study-plan", `{"assignmentUid":"`+assignment.UID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"plan":{"steps":[{"title":"Outline","minutes":30}]}}`, rec.Body.String())
}

func TestAssistFlashcards(t *testing.T) {
	svc, e := newTestService(t)
	svc.Assist = &fakeAssist{}

	rec := doRequest(e, http.MethodPost, "/api/v1/assist/flashcards", `{"text":"cell biology notes"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"cards":[{"front":"Q","back":"A"}]}`, rec.Body.String())

	rec = doRequest(e, http.MethodPost, "/api/v1/assist/flashcards", `{"text":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssistTutor(t *testing.T) {
	svc, e := newTestService(t)
	fa := &fakeAssist{}
	svc.Assist = fa

	bio := seedCourse(t, svc.Store, 101, "Intro Biology", "BIO101")
	due := time.Now().Add(48 * time.Hour).Unix()
	seedAssignment(t, svc.Store, bio, 2001, "Lab Report", &due, 25)

	rec := doRequest(e, http.MethodPost, "/api/v1/assist/tutor",
		`{"question":"What is osmosis?","courseUid":"`+bio.UID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "answer to: What is osmosis?")
	assert.Contains(t, fa.lastTutorCtx, "Intro Biology")
	assert.Contains(t, fa.lastTutorCtx, "Lab Report")

	rec = doRequest(e, http.MethodPost, "/api/v1/assist/tutor", `{"question":"hm","courseUid":"missing"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(e, http.MethodPost, "/api/v1/assist/tutor", `{"question":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssistImageAndSpeech(t *testing.T) {
	svc, e := newTestService(t)
	svc.Assist = &fakeAssist{}

	rec := doRequest(e, http.MethodPost, "/api/v1/assist/image", `{"prompt":"a calm library"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"url":"https://img.example.com/study.png"}`, rec.Body.String())

	rec = doRequest(e, http.MethodPost, "/api/v1/assist/speech", `{"text":"read this"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "mp3-bytes", rec.Body.String())
}

func TestAssistInvalidate(t *testing.T) {
	svc, e := newTestService(t)
	fa := &fakeAssist{}
	svc.Assist = fa

	rec := doRequest(e, http.MethodPost, "/api/v1/assist/invalidate", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, fa.invalidated)
}
