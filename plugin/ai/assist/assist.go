// Package assist provides the consumer-facing AI operations. Each wrapper
// derives a cache key, consults the result cache, and on a miss enqueues the
// request into the batcher, decodes the operation-specific response and
// writes the result back with the operation's TTL. The cache and the batcher
// never touch each other; this package is the composition between them.
package assist

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/satchelhq/satchel/plugin/ai/batch"
	"github.com/satchelhq/satchel/plugin/ai/cache"
)

// Cache key operation prefixes. Distinct from the wire action names: two
// operations may share an action but cache under different prefixes.
const (
	opSummary     = "summary"
	opPageSummary = "pageSummary"
	opEstimate    = "estimate"
	opStudyPlan   = "studyPlan"
	opFlashcards  = "flashcards"
	opTutor       = "tutor"
)

// Freshness windows per operation. Cheap volatile lookups stay short; large
// structured generations are kept for hours.
const (
	summaryTTL     = 5 * time.Minute
	pageSummaryTTL = 30 * time.Minute
	estimateTTL    = 6 * time.Hour
	studyPlanTTL   = 24 * time.Hour
	flashcardsTTL  = 12 * time.Hour
	tutorTTL       = 10 * time.Minute
)

// PageExtractor pulls the readable text out of a web page.
type PageExtractor interface {
	ExtractText(ctx context.Context, url string) (string, error)
}

// Service composes the result cache, the request batcher and the page
// extractor into the assist operations. Construct one per server and inject
// it where needed; there are no package-level instances.
type Service struct {
	cache   cache.ResultCache
	batcher *batch.Batcher
	pages   PageExtractor
}

// NewService creates an assist service over explicit collaborator instances.
func NewService(c cache.ResultCache, b *batch.Batcher, pages PageExtractor) *Service {
	return &Service{
		cache:   c,
		batcher: b,
		pages:   pages,
	}
}

// Summarize returns a short summary of the given document text.
func (s *Service) Summarize(ctx context.Context, text string) (string, error) {
	key := cache.Key(opSummary, text)
	if data, ok := s.cache.Get(ctx, key); ok {
		return string(data), nil
	}

	data, err := s.batcher.Add(ctx, ActionSummarize, SummarizePayload{Text: text})
	if err != nil {
		return "", err
	}

	var res TextResult
	if err := json.Unmarshal(data, &res); err != nil {
		return "", fmt.Errorf("failed to decode summary response: %w", err)
	}
	if res.Text == "" {
		return "", errors.New("summary response missing text")
	}

	s.cache.Set(ctx, key, []byte(res.Text), summaryTTL)
	return res.Text, nil
}

// SummarizePage fetches a web page, extracts its readable text and
// summarizes it. The page URL is the cache key; page content is assumed
// stable within the TTL.
func (s *Service) SummarizePage(ctx context.Context, pageURL string) (string, error) {
	key := cache.Key(opPageSummary, pageURL)
	if data, ok := s.cache.Get(ctx, key); ok {
		return string(data), nil
	}

	text, err := s.pages.ExtractText(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract page text: %w", err)
	}

	data, err := s.batcher.Add(ctx, ActionSummarize, SummarizePayload{Text: text})
	if err != nil {
		return "", err
	}

	var res TextResult
	if err := json.Unmarshal(data, &res); err != nil {
		return "", fmt.Errorf("failed to decode summary response: %w", err)
	}
	if res.Text == "" {
		return "", errors.New("summary response missing text")
	}

	s.cache.Set(ctx, key, []byte(res.Text), pageSummaryTTL)
	return res.Text, nil
}

// EstimateTime returns a human-readable completion time estimate for an
// assignment, keyed by the assignment's stable id.
func (s *Service) EstimateTime(ctx context.Context, a Assignment) (string, error) {
	key := cache.EntityKey(opEstimate, a.ID)
	if data, ok := s.cache.Get(ctx, key); ok {
		return string(data), nil
	}

	data, err := s.batcher.Add(ctx, ActionEstimate, AssignmentPayload{Assignment: a})
	if err != nil {
		return "", err
	}

	var res EstimateResult
	if err := json.Unmarshal(data, &res); err != nil {
		return "", fmt.Errorf("failed to decode estimate response: %w", err)
	}
	if res.Estimate == "" {
		return "", errors.New("estimate response missing estimate")
	}

	s.cache.Set(ctx, key, []byte(res.Estimate), estimateTTL)
	return res.Estimate, nil
}

// GenerateStudyPlan returns a structured study plan for an assignment,
// keyed by the assignment's stable id.
func (s *Service) GenerateStudyPlan(ctx context.Context, a Assignment) (*StudyPlan, error) {
	key := cache.EntityKey(opStudyPlan, a.ID)
	if data, ok := s.cache.Get(ctx, key); ok {
		var plan StudyPlan
		if err := json.Unmarshal(data, &plan); err == nil {
			return &plan, nil
		}
		// Unreadable cached payload: fall through and regenerate
	}

	data, err := s.batcher.Add(ctx, ActionStudyPlan, AssignmentPayload{Assignment: a})
	if err != nil {
		return nil, err
	}

	var res StudyPlanResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to decode study plan response: %w", err)
	}
	if len(res.Plan.Steps) == 0 {
		return nil, errors.New("study plan response contained no steps")
	}

	if encoded, err := json.Marshal(res.Plan); err == nil {
		s.cache.Set(ctx, key, encoded, studyPlanTTL)
	}
	return &res.Plan, nil
}

// GenerateFlashcards returns front/back cards generated from the given text.
func (s *Service) GenerateFlashcards(ctx context.Context, text string) ([]Flashcard, error) {
	key := cache.Key(opFlashcards, text)
	if data, ok := s.cache.Get(ctx, key); ok {
		var cards []Flashcard
		if err := json.Unmarshal(data, &cards); err == nil {
			return cards, nil
		}
	}

	data, err := s.batcher.Add(ctx, ActionFlashcards, FlashcardsPayload{Text: text})
	if err != nil {
		return nil, err
	}

	var res FlashcardsResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to decode flashcards response: %w", err)
	}
	if len(res.Cards) == 0 {
		return nil, errors.New("flashcards response contained no cards")
	}

	if encoded, err := json.Marshal(res.Cards); err == nil {
		s.cache.Set(ctx, key, encoded, flashcardsTTL)
	}
	return res.Cards, nil
}

// Tutor answers a study question, optionally grounded in course context.
// The question text is the cache key.
func (s *Service) Tutor(ctx context.Context, question, courseContext string) (string, error) {
	key := cache.Key(opTutor, question)
	if data, ok := s.cache.Get(ctx, key); ok {
		return string(data), nil
	}

	data, err := s.batcher.Add(ctx, ActionTutor, TutorPayload{Question: question, Context: courseContext})
	if err != nil {
		return "", err
	}

	var res TextResult
	if err := json.Unmarshal(data, &res); err != nil {
		return "", fmt.Errorf("failed to decode tutor response: %w", err)
	}
	if res.Text == "" {
		return "", errors.New("tutor response missing text")
	}

	s.cache.Set(ctx, key, []byte(res.Text), tutorTTL)
	return res.Text, nil
}

// Chat runs one conversational completion. Chat responses are never cached:
// identical histories are rare and users expect a fresh reply.
func (s *Service) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	data, err := s.batcher.Add(ctx, ActionChat, ChatPayload{Messages: messages})
	if err != nil {
		return "", err
	}

	var res TextResult
	if err := json.Unmarshal(data, &res); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if res.Text == "" {
		return "", errors.New("chat response missing text")
	}
	return res.Text, nil
}

// GenerateImage returns the URL of a generated image. Not cached.
func (s *Service) GenerateImage(ctx context.Context, prompt string) (string, error) {
	data, err := s.batcher.Add(ctx, ActionImage, ImagePayload{Prompt: prompt})
	if err != nil {
		return "", err
	}

	var res ImageResult
	if err := json.Unmarshal(data, &res); err != nil {
		return "", fmt.Errorf("failed to decode image response: %w", err)
	}
	if res.URL == "" {
		return "", errors.New("image response missing url")
	}
	return res.URL, nil
}

// SynthesizeSpeech returns synthesized audio for the given text. Not cached.
func (s *Service) SynthesizeSpeech(ctx context.Context, text, voice string) ([]byte, error) {
	data, err := s.batcher.Add(ctx, ActionSpeech, SpeechPayload{Text: text, Voice: voice})
	if err != nil {
		return nil, err
	}

	var res SpeechResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to decode speech response: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(res.Audio)
	if err != nil {
		return nil, fmt.Errorf("failed to decode speech audio: %w", err)
	}
	return audio, nil
}

// Invalidate drops every cached result. Backs the user-facing "regenerate"
// action.
func (s *Service) Invalidate(ctx context.Context) {
	s.cache.Clear(ctx)
}
