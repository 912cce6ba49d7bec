// Package proxy implements the AI proxy endpoint: the single POST target the
// request batcher dispatches {action, payload} envelopes to. Each known
// action decodes its payload, calls the provider and answers the operation's
// JSON shape; failures answer a non-2xx status with {"error": message}.
package proxy

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/satchelhq/satchel/plugin/ai/assist"
	"github.com/satchelhq/satchel/server/ai"
	"github.com/satchelhq/satchel/server/finops"
)

// Flat per-request provider prices for the non-token-billed actions.
const (
	imageCostUSD      = 0.040
	speechCostPerChar = 15.0 / 1e6
)

// maxDocumentChars caps the document text forwarded to the provider on the
// summarize and flashcard actions. Pasted course material can be arbitrarily
// long; past this point extra input costs tokens without improving output.
const maxDocumentChars = 24000

// Provider is the generative backend the proxy fronts.
type Provider interface {
	Chat(ctx context.Context, messages []ai.Message) (string, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
	Speech(ctx context.Context, text, voice string) ([]byte, error)
	ChatModel() string
	ImageModel() string
	SpeechModel() string
}

// Handler serves the proxy endpoint.
type Handler struct {
	provider Provider
	monitor  *finops.Monitor
}

// NewHandler creates a proxy handler over the given provider. The monitor may
// be nil, in which case no usage is recorded.
func NewHandler(provider Provider, monitor *finops.Monitor) *Handler {
	return &Handler{
		provider: provider,
		monitor:  monitor,
	}
}

// Register mounts the proxy endpoint on the given group.
func (h *Handler) Register(g *echo.Group) {
	g.POST("", h.handle)
}

type envelope struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

func (h *Handler) handle(c echo.Context) error {
	var env envelope
	if err := json.NewDecoder(c.Request().Body).Decode(&env); err != nil {
		return c.JSON(http.StatusBadRequest, errBody("invalid request body"))
	}
	if env.Action == "" {
		return c.JSON(http.StatusBadRequest, errBody("action is required"))
	}

	start := time.Now()
	status, body := h.dispatch(c.Request().Context(), env.Action, env.Payload, start)

	proxyRequests.WithLabelValues(env.Action, statusLabel(status)).Inc()
	proxyDuration.WithLabelValues(env.Action).Observe(time.Since(start).Seconds())

	return c.JSON(status, body)
}

// dispatch routes one envelope to its action handler and returns the response
// status and body. Payload validation failures are the caller's fault (400);
// provider failures are the upstream's (502).
func (h *Handler) dispatch(ctx context.Context, action string, payload json.RawMessage, start time.Time) (int, any) {
	switch action {
	case assist.ActionSummarize:
		var p assist.SummarizePayload
		if err := json.Unmarshal(payload, &p); err != nil || p.Text == "" {
			return http.StatusBadRequest, errBody("text is required")
		}
		doc := ai.TruncateAtBoundary(p.Text, maxDocumentChars)
		text, err := h.chat(ctx, summarizeSystemPrompt, doc)
		if err != nil {
			return http.StatusBadGateway, errBody(err.Error())
		}
		h.record(ctx, action, doc, text, start)
		return http.StatusOK, assist.TextResult{Text: text}

	case assist.ActionEstimate:
		var p assist.AssignmentPayload
		if err := json.Unmarshal(payload, &p); err != nil || p.Assignment.Title == "" {
			return http.StatusBadRequest, errBody("assignment is required")
		}
		prompt := assignmentPrompt(p.Assignment)
		estimate, err := h.chat(ctx, estimateSystemPrompt, prompt)
		if err != nil {
			return http.StatusBadGateway, errBody(err.Error())
		}
		h.record(ctx, action, prompt, estimate, start)
		return http.StatusOK, assist.EstimateResult{Estimate: estimate}

	case assist.ActionStudyPlan:
		var p assist.AssignmentPayload
		if err := json.Unmarshal(payload, &p); err != nil || p.Assignment.Title == "" {
			return http.StatusBadRequest, errBody("assignment is required")
		}
		prompt := assignmentPrompt(p.Assignment)
		out, err := h.chat(ctx, studyPlanSystemPrompt, prompt)
		if err != nil {
			return http.StatusBadGateway, errBody(err.Error())
		}
		var plan assist.StudyPlan
		if err := json.Unmarshal([]byte(stripCodeFence(out)), &plan); err != nil || len(plan.Steps) == 0 {
			return http.StatusBadGateway, errBody("provider returned a malformed study plan")
		}
		h.record(ctx, action, prompt, out, start)
		return http.StatusOK, assist.StudyPlanResult{Plan: plan}

	case assist.ActionFlashcards:
		var p assist.FlashcardsPayload
		if err := json.Unmarshal(payload, &p); err != nil || p.Text == "" {
			return http.StatusBadRequest, errBody("text is required")
		}
		doc := ai.TruncateAtBoundary(p.Text, maxDocumentChars)
		out, err := h.chat(ctx, flashcardsSystemPrompt, doc)
		if err != nil {
			return http.StatusBadGateway, errBody(err.Error())
		}
		var cards assist.FlashcardsResult
		if err := json.Unmarshal([]byte(stripCodeFence(out)), &cards); err != nil || len(cards.Cards) == 0 {
			return http.StatusBadGateway, errBody("provider returned malformed flashcards")
		}
		h.record(ctx, action, doc, out, start)
		return http.StatusOK, cards

	case assist.ActionTutor:
		var p assist.TutorPayload
		if err := json.Unmarshal(payload, &p); err != nil || p.Question == "" {
			return http.StatusBadRequest, errBody("question is required")
		}
		prompt := p.Question
		if p.Context != "" {
			prompt = "Context:\n" + p.Context + "\n\nQuestion:\n" + p.Question
		}
		text, err := h.chat(ctx, tutorSystemPrompt, prompt)
		if err != nil {
			return http.StatusBadGateway, errBody(err.Error())
		}
		h.record(ctx, action, prompt, text, start)
		return http.StatusOK, assist.TextResult{Text: text}

	case assist.ActionChat:
		var p assist.ChatPayload
		if err := json.Unmarshal(payload, &p); err != nil || len(p.Messages) == 0 {
			return http.StatusBadRequest, errBody("messages are required")
		}
		messages := make([]ai.Message, 0, len(p.Messages))
		var promptText strings.Builder
		for _, m := range p.Messages {
			messages = append(messages, ai.Message{Role: m.Role, Content: m.Content})
			promptText.WriteString(m.Content)
			promptText.WriteString("\n")
		}
		text, err := h.provider.Chat(ctx, messages)
		if err != nil {
			return http.StatusBadGateway, errBody(err.Error())
		}
		h.record(ctx, action, promptText.String(), text, start)
		return http.StatusOK, assist.TextResult{Text: text}

	case assist.ActionImage:
		var p assist.ImagePayload
		if err := json.Unmarshal(payload, &p); err != nil || p.Prompt == "" {
			return http.StatusBadRequest, errBody("prompt is required")
		}
		url, err := h.provider.GenerateImage(ctx, p.Prompt)
		if err != nil {
			return http.StatusBadGateway, errBody(err.Error())
		}
		if h.monitor != nil {
			h.monitor.RecordFlatCost(ctx, action, h.provider.ImageModel(), imageCostUSD, time.Since(start))
		}
		return http.StatusOK, assist.ImageResult{URL: url}

	case assist.ActionSpeech:
		var p assist.SpeechPayload
		if err := json.Unmarshal(payload, &p); err != nil || p.Text == "" {
			return http.StatusBadRequest, errBody("text is required")
		}
		audio, err := h.provider.Speech(ctx, p.Text, p.Voice)
		if err != nil {
			return http.StatusBadGateway, errBody(err.Error())
		}
		if h.monitor != nil {
			cost := float64(len(p.Text)) * speechCostPerChar
			h.monitor.RecordFlatCost(ctx, action, h.provider.SpeechModel(), cost, time.Since(start))
		}
		return http.StatusOK, assist.SpeechResult{Audio: base64.StdEncoding.EncodeToString(audio)}

	default:
		return http.StatusBadRequest, errBody(fmt.Sprintf("unknown action: %s", action))
	}
}

// chat runs one system+user completion.
func (h *Handler) chat(ctx context.Context, system, user string) (string, error) {
	return h.provider.Chat(ctx, []ai.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	})
}

func (h *Handler) record(ctx context.Context, action, prompt, completion string, start time.Time) {
	if h.monitor == nil {
		return
	}
	h.monitor.Record(ctx, action, h.provider.ChatModel(), prompt, completion, time.Since(start))
}

func errBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// stripCodeFence unwraps a markdown code fence around a JSON answer. Models
// asked for raw JSON still fence it now and then.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
