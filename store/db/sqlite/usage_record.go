package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/satchelhq/satchel/store"
)

func (d *DB) CreateUsageRecord(ctx context.Context, create *store.UsageRecord) (*store.UsageRecord, error) {
	fields := []string{"action", "model", "prompt_tokens", "completion_tokens", "cost_usd", "duration_ms"}
	placeholderValues := []any{
		create.Action, create.Model, create.PromptTokens, create.CompletionTokens,
		create.CostUSD, create.DurationMs,
	}

	stmt := `INSERT INTO usage_record (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create usage record: %w", err)
	}

	return create, nil
}

func (d *DB) ListUsageRecords(ctx context.Context, find *store.FindUsageRecord) ([]*store.UsageRecord, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.Action; v != nil {
		where, args = append(where, "usage_record.action = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Model; v != nil {
		where, args = append(where, "usage_record.model = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatedAfter; v != nil {
		where, args = append(where, "usage_record.created_ts >= "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatedBefore; v != nil {
		where, args = append(where, "usage_record.created_ts < "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, created_ts, action, model, prompt_tokens, completion_tokens, cost_usd, duration_ms
		FROM usage_record
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY usage_record.created_ts DESC, usage_record.id DESC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage records: %w", err)
	}
	defer rows.Close()

	list := make([]*store.UsageRecord, 0)
	for rows.Next() {
		var record store.UsageRecord
		if err := rows.Scan(
			&record.ID,
			&record.CreatedTs,
			&record.Action,
			&record.Model,
			&record.PromptTokens,
			&record.CompletionTokens,
			&record.CostUSD,
			&record.DurationMs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan usage record: %w", err)
		}
		list = append(list, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate usage records: %w", err)
	}

	return list, nil
}

func (d *DB) DeleteUsageRecords(ctx context.Context, delete *store.DeleteUsageRecords) error {
	if delete.CreatedBefore == nil {
		return fmt.Errorf("delete condition required")
	}

	result, err := d.db.ExecContext(ctx, "DELETE FROM usage_record WHERE created_ts < ?", *delete.CreatedBefore)
	if err != nil {
		return fmt.Errorf("failed to delete usage records: %w", err)
	}
	if _, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	return nil
}
