// Package v1 implements the JSON REST API surface of the server.
package v1

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/satchelhq/satchel/internal/profile"
	"github.com/satchelhq/satchel/plugin/ai/assist"
	"github.com/satchelhq/satchel/plugin/markdown"
	"github.com/satchelhq/satchel/server/finops"
	"github.com/satchelhq/satchel/store"
)

// AssistService is the slice of the assist API the router calls. The concrete
// implementation lives in plugin/ai/assist; handler tests substitute a fake.
type AssistService interface {
	Summarize(ctx context.Context, text string) (string, error)
	SummarizePage(ctx context.Context, pageURL string) (string, error)
	EstimateTime(ctx context.Context, a assist.Assignment) (string, error)
	GenerateStudyPlan(ctx context.Context, a assist.Assignment) (*assist.StudyPlan, error)
	GenerateFlashcards(ctx context.Context, text string) ([]assist.Flashcard, error)
	Tutor(ctx context.Context, question, courseContext string) (string, error)
	Chat(ctx context.Context, messages []assist.ChatMessage) (string, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
	SynthesizeSpeech(ctx context.Context, text, voice string) ([]byte, error)
	Invalidate(ctx context.Context)
}

// Syncer triggers a Canvas sync pass outside the regular interval.
type Syncer interface {
	// Trigger requests a sync pass. It reports false when a pass is already
	// pending.
	Trigger() bool
}

// UsageMonitor summarizes recorded AI spend.
type UsageMonitor interface {
	Summarize(ctx context.Context, period string) (*finops.Summary, error)
}

// APIV1Service wires the v1 handlers to their collaborators.
type APIV1Service struct {
	Profile  *profile.Profile
	Store    *store.Store
	Assist   AssistService
	Markdown *markdown.Renderer
	Monitor  UsageMonitor
	Syncer   Syncer
}

// NewAPIV1Service creates the v1 API service. Assist, Monitor and Syncer may
// be nil when the corresponding feature is disabled; their endpoints then
// answer 503.
func NewAPIV1Service(prof *profile.Profile, st *store.Store) *APIV1Service {
	return &APIV1Service{
		Profile:  prof,
		Store:    st,
		Markdown: markdown.NewRenderer(),
	}
}

// Register mounts every v1 route on the given group.
func (s *APIV1Service) Register(g *echo.Group) {
	g.GET("/instance", s.getInstance)

	g.GET("/courses", s.listCourses)
	g.GET("/courses/:uid", s.getCourse)

	g.GET("/assignments", s.listAssignments)
	g.GET("/assignments/:uid", s.getAssignment)

	g.POST("/assist/summarize", s.assistSummarize)
	g.POST("/assist/summarize-page", s.assistSummarizePage)
	g.POST("/assist/estimate", s.assistEstimate)
	g.POST("/assist/study-plan", s.assistStudyPlan)
	g.POST("/assist/flashcards", s.assistFlashcards)
	g.POST("/assist/tutor", s.assistTutor)
	g.POST("/assist/image", s.assistImage)
	g.POST("/assist/speech", s.assistSpeech)
	g.POST("/assist/invalidate", s.assistInvalidate)

	g.POST("/conversations", s.createConversation)
	g.GET("/conversations", s.listConversations)
	g.GET("/conversations/:uid", s.getConversation)
	g.PATCH("/conversations/:uid", s.updateConversation)
	g.DELETE("/conversations/:uid", s.deleteConversation)
	g.GET("/conversations/:uid/messages", s.listMessages)
	g.POST("/conversations/:uid/messages", s.sendMessage)

	g.POST("/sync", s.triggerSync)
	g.GET("/usage", s.getUsage)

	g.GET("/settings", s.listSettings)
	g.GET("/settings/:key", s.getSetting)
	g.PATCH("/settings/:key", s.patchSetting)
	g.DELETE("/settings/:key", s.deleteSetting)
}
