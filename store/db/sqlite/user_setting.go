package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/satchelhq/satchel/store"
)

func (d *DB) UpsertUserSetting(ctx context.Context, upsert *store.UserSetting) (*store.UserSetting, error) {
	stmt := `INSERT INTO user_setting (key, value)
		VALUES (` + placeholders(2) + `)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_ts = strftime('%s', 'now')
		RETURNING key, value, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, upsert.Key, upsert.Value).Scan(
		&upsert.Key,
		&upsert.Value,
		&upsert.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to upsert user setting: %w", err)
	}

	return upsert, nil
}

func (d *DB) ListUserSettings(ctx context.Context, find *store.FindUserSetting) ([]*store.UserSetting, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.Key; v != "" {
		where, args = append(where, "user_setting.key = "+placeholder(len(args)+1)), append(args, v)
	}

	query := `
		SELECT
			key, value, updated_ts
		FROM user_setting
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY user_setting.key ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query user settings: %w", err)
	}
	defer rows.Close()

	list := make([]*store.UserSetting, 0)
	for rows.Next() {
		var setting store.UserSetting
		if err := rows.Scan(
			&setting.Key,
			&setting.Value,
			&setting.UpdatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user setting: %w", err)
		}
		list = append(list, &setting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user settings: %w", err)
	}

	return list, nil
}

func (d *DB) DeleteUserSetting(ctx context.Context, delete *store.DeleteUserSetting) error {
	result, err := d.db.ExecContext(ctx, "DELETE FROM user_setting WHERE key = ?", delete.Key)
	if err != nil {
		return fmt.Errorf("failed to delete user setting: %w", err)
	}
	if _, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	return nil
}
