package store

import "context"

type AIConversation struct {
	ID        int32
	UID       string
	Title     string
	Pinned    bool
	CreatedTs int64
	UpdatedTs int64
	RowStatus RowStatus
}

type FindAIConversation struct {
	ID        *int32
	UID       *string
	Pinned    *bool
	RowStatus *RowStatus
	Limit     *int
}

type UpdateAIConversation struct {
	ID        int32
	Title     *string
	Pinned    *bool
	RowStatus *RowStatus
	UpdatedTs *int64
}

type DeleteAIConversation struct {
	ID int32
}

type AIMessageRole string

const (
	AIMessageRoleUser      AIMessageRole = "USER"
	AIMessageRoleAssistant AIMessageRole = "ASSISTANT"
	AIMessageRoleSystem    AIMessageRole = "SYSTEM"
)

type AIMessage struct {
	ID             int32
	UID            string
	ConversationID int32
	Role           AIMessageRole
	Content        string
	Metadata       string // JSON string
	CreatedTs      int64
}

type FindAIMessage struct {
	ID             *int32
	UID            *string
	ConversationID *int32
	Limit          *int
}

type DeleteAIMessage struct {
	ID             *int32
	ConversationID *int32
}

func (s *Store) CreateAIConversation(ctx context.Context, create *AIConversation) (*AIConversation, error) {
	return s.driver.CreateAIConversation(ctx, create)
}

func (s *Store) ListAIConversations(ctx context.Context, find *FindAIConversation) ([]*AIConversation, error) {
	return s.driver.ListAIConversations(ctx, find)
}

func (s *Store) GetAIConversation(ctx context.Context, find *FindAIConversation) (*AIConversation, error) {
	list, err := s.driver.ListAIConversations(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) UpdateAIConversation(ctx context.Context, update *UpdateAIConversation) (*AIConversation, error) {
	return s.driver.UpdateAIConversation(ctx, update)
}

func (s *Store) DeleteAIConversation(ctx context.Context, delete *DeleteAIConversation) error {
	return s.driver.DeleteAIConversation(ctx, delete)
}

func (s *Store) CreateAIMessage(ctx context.Context, create *AIMessage) (*AIMessage, error) {
	return s.driver.CreateAIMessage(ctx, create)
}

func (s *Store) ListAIMessages(ctx context.Context, find *FindAIMessage) ([]*AIMessage, error) {
	return s.driver.ListAIMessages(ctx, find)
}

func (s *Store) DeleteAIMessage(ctx context.Context, delete *DeleteAIMessage) error {
	return s.driver.DeleteAIMessage(ctx, delete)
}
