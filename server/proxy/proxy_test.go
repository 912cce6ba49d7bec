package proxy

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satchelhq/satchel/plugin/ai/assist"
	"github.com/satchelhq/satchel/plugin/ai/batch"
	"github.com/satchelhq/satchel/plugin/ai/cache"
	"github.com/satchelhq/satchel/plugin/ai/dispatch"
	"github.com/satchelhq/satchel/server/ai"
)

type fakeProvider struct {
	mu       sync.Mutex
	chats    [][]ai.Message
	chatFn   func(messages []ai.Message) (string, error)
	imageFn  func(prompt string) (string, error)
	speechFn func(text, voice string) ([]byte, error)
}

func (f *fakeProvider) Chat(_ context.Context, messages []ai.Message) (string, error) {
	f.mu.Lock()
	f.chats = append(f.chats, messages)
	f.mu.Unlock()
	if f.chatFn != nil {
		return f.chatFn(messages)
	}
	return "ok", nil
}

func (f *fakeProvider) GenerateImage(_ context.Context, prompt string) (string, error) {
	if f.imageFn != nil {
		return f.imageFn(prompt)
	}
	return "https://img.example.com/out.png", nil
}

func (f *fakeProvider) Speech(_ context.Context, text, voice string) ([]byte, error) {
	if f.speechFn != nil {
		return f.speechFn(text, voice)
	}
	return []byte("audio-bytes"), nil
}

func (f *fakeProvider) ChatModel() string   { return "gpt-4o-mini" }
func (f *fakeProvider) ImageModel() string  { return "dall-e-3" }
func (f *fakeProvider) SpeechModel() string { return "tts-1" }

func (f *fakeProvider) chatCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chats)
}

func (f *fakeProvider) lastChat() []ai.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.chats) == 0 {
		return nil
	}
	return f.chats[len(f.chats)-1]
}

func newTestEcho(provider Provider, secret string) *echo.Echo {
	e := echo.New()
	g := e.Group("/api/ai", VerifyToken(secret))
	NewHandler(provider, nil).Register(g)
	return e
}

func post(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/ai", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Summarize(t *testing.T) {
	provider := &fakeProvider{chatFn: func([]ai.Message) (string, error) {
		return "A short summary.", nil
	}}
	e := newTestEcho(provider, "")

	rec := post(e, `{"action":"summarizeDocument","payload":{"text":"long lecture transcript"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":"A short summary."}`, rec.Body.String())

	messages := provider.lastChat()
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "long lecture transcript", messages[1].Content)
}

func TestHandler_UnknownAction(t *testing.T) {
	e := newTestEcho(&fakeProvider{}, "")

	rec := post(e, `{"action":"transcribeAudio","payload":{}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"unknown action: transcribeAudio"}`, rec.Body.String())
}

func TestHandler_BadRequests(t *testing.T) {
	e := newTestEcho(&fakeProvider{}, "")

	t.Run("invalid body", func(t *testing.T) {
		rec := post(e, `{not json`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"invalid request body"}`, rec.Body.String())
	})

	t.Run("missing action", func(t *testing.T) {
		rec := post(e, `{"payload":{"text":"x"}}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"action is required"}`, rec.Body.String())
	})

	t.Run("missing payload field", func(t *testing.T) {
		rec := post(e, `{"action":"summarizeDocument","payload":{}}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"text is required"}`, rec.Body.String())
	})
}

func TestHandler_ProviderErrorPropagates(t *testing.T) {
	provider := &fakeProvider{chatFn: func([]ai.Message) (string, error) {
		return "", fmt.Errorf("model overloaded")
	}}
	e := newTestEcho(provider, "")

	rec := post(e, `{"action":"summarizeDocument","payload":{"text":"x"}}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"model overloaded"}`, rec.Body.String())
}

func TestHandler_StudyPlan(t *testing.T) {
	t.Run("fenced json is unwrapped", func(t *testing.T) {
		provider := &fakeProvider{chatFn: func([]ai.Message) (string, error) {
			return "```json\n{\"steps\":[{\"title\":\"Read chapter 4\",\"minutes\":45}]}\n```", nil
		}}
		e := newTestEcho(provider, "")

		rec := post(e, `{"action":"generateStudyPlan","payload":{"assignment":{"id":7,"title":"Essay"}}}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var res assist.StudyPlanResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		require.Len(t, res.Plan.Steps, 1)
		assert.Equal(t, "Read chapter 4", res.Plan.Steps[0].Title)
		assert.Equal(t, 45, res.Plan.Steps[0].Minutes)
	})

	t.Run("malformed plan is the provider's fault", func(t *testing.T) {
		provider := &fakeProvider{chatFn: func([]ai.Message) (string, error) {
			return "Sure! Here is a study plan: first you should...", nil
		}}
		e := newTestEcho(provider, "")

		rec := post(e, `{"action":"generateStudyPlan","payload":{"assignment":{"id":7,"title":"Essay"}}}`)
		require.Equal(t, http.StatusBadGateway, rec.Code)
		assert.JSONEq(t, `{"error":"provider returned a malformed study plan"}`, rec.Body.String())
	})
}

func TestHandler_Flashcards(t *testing.T) {
	provider := &fakeProvider{chatFn: func([]ai.Message) (string, error) {
		return `{"cards":[{"front":"mitochondria","back":"powerhouse of the cell"}]}`, nil
	}}
	e := newTestEcho(provider, "")

	rec := post(e, `{"action":"generateFlashcards","payload":{"text":"cell biology notes"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res assist.FlashcardsResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Cards, 1)
	assert.Equal(t, "mitochondria", res.Cards[0].Front)
}

func TestHandler_Chat(t *testing.T) {
	provider := &fakeProvider{chatFn: func(messages []ai.Message) (string, error) {
		return "Hi " + messages[len(messages)-1].Content, nil
	}}
	e := newTestEcho(provider, "")

	rec := post(e, `{"action":"chatCompletion","payload":{"messages":[{"role":"user","content":"there"}]}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":"Hi there"}`, rec.Body.String())

	rec = post(e, `{"action":"chatCompletion","payload":{"messages":[]}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ImageAndSpeech(t *testing.T) {
	provider := &fakeProvider{}
	e := newTestEcho(provider, "")

	rec := post(e, `{"action":"imageGenerate","payload":{"prompt":"a calm library"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"url":"https://img.example.com/out.png"}`, rec.Body.String())

	rec = post(e, `{"action":"speechSynthesize","payload":{"text":"read this aloud"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var res assist.SpeechResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	audio, err := base64.StdEncoding.DecodeString(res.Audio)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio-bytes"), audio)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
}

// The full loop: assist service -> batcher -> dispatch client -> proxy
// endpoint -> provider, with the bearer token minted and verified along the
// way. A repeated request inside the TTL never reaches the provider again.
func TestProxyEndToEnd(t *testing.T) {
	const secret = "e2e-secret"

	provider := &fakeProvider{chatFn: func([]ai.Message) (string, error) {
		return "A fox runs.", nil
	}}
	srv := httptest.NewServer(newTestEcho(provider, secret))
	defer srv.Close()

	client := dispatch.NewClient(dispatch.Config{URL: srv.URL + "/api/ai", Secret: secret})
	c := cache.NewMemoryCache(cache.Config{DefaultTTL: time.Minute, SweepInterval: time.Hour})
	b := batch.NewBatcher(batch.Config{Window: 5 * time.Millisecond, MaxBatchSize: 5}, client.Do)
	defer func() {
		b.Close()
		c.Close()
	}()
	svc := assist.NewService(c, b, nil)

	ctx := context.Background()

	got, err := svc.Summarize(ctx, "long lecture transcript")
	require.NoError(t, err)
	assert.Equal(t, "A fox runs.", got)

	got, err = svc.Summarize(ctx, "long lecture transcript")
	require.NoError(t, err)
	assert.Equal(t, "A fox runs.", got)

	assert.Equal(t, 1, provider.chatCount())
}
