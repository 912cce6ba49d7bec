package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/satchelhq/satchel/plugin/ai/assist"
	apierrors "github.com/satchelhq/satchel/server/internal/errors"
	"github.com/satchelhq/satchel/store"
)

// chatSystemPrompt opens every conversation sent to the model. Conversation
// history itself is stored without it.
const chatSystemPrompt = "You are Satchel, a study assistant for a college student. " +
	"Be concise, accurate and encouraging. Use markdown when structure helps."

// chatHistoryLimit bounds how many stored messages are replayed to the model.
const chatHistoryLimit = 20

func (s *APIV1Service) createConversation(c echo.Context) error {
	ctx := c.Request().Context()
	var req struct {
		Title  string `json:"title"`
		Pinned bool   `json:"pinned"`
	}
	if err := c.Bind(&req); err != nil {
		return writeError(c, apierrors.InvalidArgument("invalid request body"))
	}

	conversation, err := s.Store.CreateAIConversation(ctx, &store.AIConversation{
		UID:    shortuuid.New(),
		Title:  req.Title,
		Pinned: req.Pinned,
	})
	if err != nil {
		return writeError(c, apierrors.Internal("failed to create conversation", err))
	}
	return c.JSON(http.StatusOK, convertConversation(conversation))
}

func (s *APIV1Service) listConversations(c echo.Context) error {
	ctx := c.Request().Context()

	conversations, err := s.Store.ListAIConversations(ctx, &store.FindAIConversation{})
	if err != nil {
		return writeError(c, apierrors.Internal("failed to list conversations", err))
	}
	list := make([]*Conversation, 0, len(conversations))
	for _, conversation := range conversations {
		list = append(list, convertConversation(conversation))
	}
	return c.JSON(http.StatusOK, list)
}

func (s *APIV1Service) getConversation(c echo.Context) error {
	conversation, err := s.findConversation(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, convertConversation(conversation))
}

func (s *APIV1Service) updateConversation(c echo.Context) error {
	ctx := c.Request().Context()
	conversation, err := s.findConversation(ctx, c.Param("uid"))
	if err != nil {
		return writeError(c, err)
	}

	var req struct {
		Title  *string `json:"title"`
		Pinned *bool   `json:"pinned"`
	}
	if err := c.Bind(&req); err != nil {
		return writeError(c, apierrors.InvalidArgument("invalid request body"))
	}
	if req.Title == nil && req.Pinned == nil {
		return writeError(c, apierrors.InvalidArgument("nothing to update"))
	}

	updated, err := s.Store.UpdateAIConversation(ctx, &store.UpdateAIConversation{
		ID:     conversation.ID,
		Title:  req.Title,
		Pinned: req.Pinned,
	})
	if err != nil {
		return writeError(c, apierrors.Internal("failed to update conversation", err))
	}
	return c.JSON(http.StatusOK, convertConversation(updated))
}

func (s *APIV1Service) deleteConversation(c echo.Context) error {
	ctx := c.Request().Context()
	conversation, err := s.findConversation(ctx, c.Param("uid"))
	if err != nil {
		return writeError(c, err)
	}

	if err := s.Store.DeleteAIConversation(ctx, &store.DeleteAIConversation{ID: conversation.ID}); err != nil {
		return writeError(c, apierrors.Internal("failed to delete conversation", err))
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) listMessages(c echo.Context) error {
	ctx := c.Request().Context()
	conversation, err := s.findConversation(ctx, c.Param("uid"))
	if err != nil {
		return writeError(c, err)
	}

	messages, err := s.Store.ListAIMessages(ctx, &store.FindAIMessage{ConversationID: &conversation.ID})
	if err != nil {
		return writeError(c, apierrors.Internal("failed to list messages", err))
	}
	list := make([]*Message, 0, len(messages))
	for _, message := range messages {
		list = append(list, convertMessage(message))
	}
	return c.JSON(http.StatusOK, list)
}

func (s *APIV1Service) sendMessage(c echo.Context) error {
	if err := s.requireAssist(); err != nil {
		return writeError(c, err)
	}
	ctx := c.Request().Context()
	conversation, err := s.findConversation(ctx, c.Param("uid"))
	if err != nil {
		return writeError(c, err)
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return writeError(c, apierrors.InvalidArgument("invalid request body"))
	}
	if strings.TrimSpace(req.Content) == "" {
		return writeError(c, apierrors.InvalidArgument("content is required"))
	}

	history, err := s.Store.ListAIMessages(ctx, &store.FindAIMessage{ConversationID: &conversation.ID})
	if err != nil {
		return writeError(c, apierrors.Internal("failed to list messages", err))
	}

	userMessage, err := s.Store.CreateAIMessage(ctx, &store.AIMessage{
		UID:            shortuuid.New(),
		ConversationID: conversation.ID,
		Role:           store.AIMessageRoleUser,
		Content:        req.Content,
	})
	if err != nil {
		return writeError(c, apierrors.Internal("failed to store message", err))
	}

	// First user message doubles as the conversation title.
	if conversation.Title == "" {
		title := truncateTitle(req.Content)
		if _, err := s.Store.UpdateAIConversation(ctx, &store.UpdateAIConversation{
			ID:    conversation.ID,
			Title: &title,
		}); err != nil {
			return writeError(c, apierrors.Internal("failed to update conversation", err))
		}
	}

	started := time.Now()
	reply, err := s.Assist.Chat(ctx, chatMessages(history, userMessage))
	if err != nil {
		return writeError(c, assistError("complete chat", err))
	}

	metadata, _ := json.Marshal(map[string]int64{"durationMs": time.Since(started).Milliseconds()})
	assistantMessage, err := s.Store.CreateAIMessage(ctx, &store.AIMessage{
		UID:            shortuuid.New(),
		ConversationID: conversation.ID,
		Role:           store.AIMessageRoleAssistant,
		Content:        reply,
		Metadata:       string(metadata),
	})
	if err != nil {
		return writeError(c, apierrors.Internal("failed to store message", err))
	}

	resp := convertMessage(assistantMessage)
	if wantsHTML(c) {
		// Reuse the textResponse shape clients already parse for assist calls.
		return c.JSON(http.StatusOK, struct {
			*Message
			HTML string `json:"html,omitempty"`
		}{resp, s.renderHTML(c, reply)})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *APIV1Service) findConversation(ctx context.Context, uid string) (*store.AIConversation, error) {
	conversation, err := s.Store.GetAIConversation(ctx, &store.FindAIConversation{UID: &uid})
	if err != nil {
		return nil, apierrors.Internal("failed to get conversation", err)
	}
	if conversation == nil {
		return nil, apierrors.NotFound("conversation not found: %s", uid)
	}
	return conversation, nil
}

// chatMessages assembles the model input: system preamble, then the most
// recent stored turns, then the new user message.
func chatMessages(history []*store.AIMessage, latest *store.AIMessage) []assist.ChatMessage {
	if len(history) > chatHistoryLimit {
		history = history[len(history)-chatHistoryLimit:]
	}
	messages := make([]assist.ChatMessage, 0, len(history)+2)
	messages = append(messages, assist.ChatMessage{Role: "system", Content: chatSystemPrompt})
	for _, message := range history {
		messages = append(messages, assist.ChatMessage{
			Role:    strings.ToLower(string(message.Role)),
			Content: message.Content,
		})
	}
	messages = append(messages, assist.ChatMessage{Role: "user", Content: latest.Content})
	return messages
}

func truncateTitle(content string) string {
	title := strings.Join(strings.Fields(content), " ")
	runes := []rune(title)
	if len(runes) > 48 {
		return string(runes[:48])
	}
	return title
}
