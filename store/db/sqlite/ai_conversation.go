package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/satchelhq/satchel/store"
)

func (d *DB) CreateAIConversation(ctx context.Context, create *store.AIConversation) (*store.AIConversation, error) {
	fields := []string{"uid", "title", "pinned"}
	placeholderValues := []any{create.UID, create.Title, create.Pinned}

	stmt := `INSERT INTO ai_conversation (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, row_status, created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.RowStatus,
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create ai conversation: %w", err)
	}

	return create, nil
}

func (d *DB) ListAIConversations(ctx context.Context, find *store.FindAIConversation) ([]*store.AIConversation, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "ai_conversation.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "ai_conversation.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Pinned; v != nil {
		where, args = append(where, "ai_conversation.pinned = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.RowStatus; v != nil {
		where, args = append(where, "ai_conversation.row_status = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, uid, row_status, created_ts, updated_ts, title, pinned
		FROM ai_conversation
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY ai_conversation.pinned DESC, ai_conversation.updated_ts DESC, ai_conversation.id DESC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ai conversations: %w", err)
	}
	defer rows.Close()

	list := make([]*store.AIConversation, 0)
	for rows.Next() {
		var conversation store.AIConversation
		if err := rows.Scan(
			&conversation.ID,
			&conversation.UID,
			&conversation.RowStatus,
			&conversation.CreatedTs,
			&conversation.UpdatedTs,
			&conversation.Title,
			&conversation.Pinned,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ai conversation: %w", err)
		}
		list = append(list, &conversation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ai conversations: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateAIConversation(ctx context.Context, update *store.UpdateAIConversation) (*store.AIConversation, error) {
	set, args := []string{}, []any{}

	if v := update.Title; v != nil {
		set, args = append(set, "title = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Pinned; v != nil {
		set, args = append(set, "pinned = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.RowStatus; v != nil {
		set, args = append(set, "row_status = "+placeholder(len(args)+1)), append(args, *v)
	}
	set = append(set, "updated_ts = strftime('%s', 'now')")
	args = append(args, update.ID)

	stmt := `UPDATE ai_conversation SET ` + strings.Join(set, ", ") + `
		WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, uid, row_status, created_ts, updated_ts, title, pinned`

	var conversation store.AIConversation
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&conversation.ID,
		&conversation.UID,
		&conversation.RowStatus,
		&conversation.CreatedTs,
		&conversation.UpdatedTs,
		&conversation.Title,
		&conversation.Pinned,
	); err != nil {
		return nil, fmt.Errorf("failed to update ai conversation: %w", err)
	}

	return &conversation, nil
}

func (d *DB) DeleteAIConversation(ctx context.Context, delete *store.DeleteAIConversation) error {
	// Messages cascade via the conversation_id foreign key.
	result, err := d.db.ExecContext(ctx, "DELETE FROM ai_conversation WHERE id = ?", delete.ID)
	if err != nil {
		return fmt.Errorf("failed to delete ai conversation: %w", err)
	}
	if _, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	return nil
}

func (d *DB) CreateAIMessage(ctx context.Context, create *store.AIMessage) (*store.AIMessage, error) {
	fields := []string{"uid", "conversation_id", "role", "content", "metadata"}
	placeholderValues := []any{create.UID, create.ConversationID, create.Role, create.Content, create.Metadata}

	stmt := `INSERT INTO ai_message (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create ai message: %w", err)
	}

	return create, nil
}

func (d *DB) ListAIMessages(ctx context.Context, find *store.FindAIMessage) ([]*store.AIMessage, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "ai_message.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "ai_message.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.ConversationID; v != nil {
		where, args = append(where, "ai_message.conversation_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, uid, conversation_id, role, content, metadata, created_ts
		FROM ai_message
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY ai_message.created_ts ASC, ai_message.id ASC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ai messages: %w", err)
	}
	defer rows.Close()

	list := make([]*store.AIMessage, 0)
	for rows.Next() {
		var message store.AIMessage
		if err := rows.Scan(
			&message.ID,
			&message.UID,
			&message.ConversationID,
			&message.Role,
			&message.Content,
			&message.Metadata,
			&message.CreatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ai message: %w", err)
		}
		list = append(list, &message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ai messages: %w", err)
	}

	return list, nil
}

func (d *DB) DeleteAIMessage(ctx context.Context, delete *store.DeleteAIMessage) error {
	where, args := []string{}, []any{}

	if v := delete.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := delete.ConversationID; v != nil {
		where, args = append(where, "conversation_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if len(where) == 0 {
		return fmt.Errorf("delete condition required")
	}

	stmt := `DELETE FROM ai_message WHERE ` + strings.Join(where, " AND ")
	result, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("failed to delete ai message: %w", err)
	}
	if _, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	return nil
}
