package teststore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/satchelhq/satchel/store"
)

func TestAIConversationStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	first, err := ts.CreateAIConversation(ctx, &store.AIConversation{
		UID:   "conversation-study-plan",
		Title: "Study plan for finals",
	})
	require.NoError(t, err)
	require.NotZero(t, first.ID)
	require.Equal(t, store.Normal, first.RowStatus)
	require.False(t, first.Pinned)

	second, err := ts.CreateAIConversation(ctx, &store.AIConversation{
		UID:   "conversation-essay-help",
		Title: "Essay outline help",
	})
	require.NoError(t, err)

	// Pinned conversations list first.
	pinned := true
	_, err = ts.UpdateAIConversation(ctx, &store.UpdateAIConversation{ID: second.ID, Pinned: &pinned})
	require.NoError(t, err)

	conversations, err := ts.ListAIConversations(ctx, &store.FindAIConversation{})
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	require.Equal(t, second.ID, conversations[0].ID)

	conversation, err := ts.GetAIConversation(ctx, &store.FindAIConversation{UID: &first.UID})
	require.NoError(t, err)
	require.NotNil(t, conversation)
	require.Equal(t, "Study plan for finals", conversation.Title)

	title := "Finals week game plan"
	conversation, err = ts.UpdateAIConversation(ctx, &store.UpdateAIConversation{ID: first.ID, Title: &title})
	require.NoError(t, err)
	require.Equal(t, title, conversation.Title)

	userMessage, err := ts.CreateAIMessage(ctx, &store.AIMessage{
		UID:            "message-1",
		ConversationID: first.ID,
		Role:           store.AIMessageRoleUser,
		Content:        "Help me plan my study schedule for finals week.",
	})
	require.NoError(t, err)
	require.NotZero(t, userMessage.ID)

	_, err = ts.CreateAIMessage(ctx, &store.AIMessage{
		UID:            "message-2",
		ConversationID: first.ID,
		Role:           store.AIMessageRoleAssistant,
		Content:        "Start with your hardest exam and work backwards.",
		Metadata:       `{"model":"gpt-4o-mini"}`,
	})
	require.NoError(t, err)

	messages, err := ts.ListAIMessages(ctx, &store.FindAIMessage{ConversationID: &first.ID})
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, store.AIMessageRoleUser, messages[0].Role)
	require.Equal(t, store.AIMessageRoleAssistant, messages[1].Role)
	require.Equal(t, `{"model":"gpt-4o-mini"}`, messages[1].Metadata)

	// Deleting the conversation cascades to its messages.
	err = ts.DeleteAIConversation(ctx, &store.DeleteAIConversation{ID: first.ID})
	require.NoError(t, err)
	messages, err = ts.ListAIMessages(ctx, &store.FindAIMessage{ConversationID: &first.ID})
	require.NoError(t, err)
	require.Empty(t, messages)

	conversations, err = ts.ListAIConversations(ctx, &store.FindAIConversation{})
	require.NoError(t, err)
	require.Len(t, conversations, 1)
}
