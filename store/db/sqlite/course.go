package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/satchelhq/satchel/store"
)

func (d *DB) UpsertCourse(ctx context.Context, upsert *store.Course) (*store.Course, error) {
	fields := []string{"uid", "canvas_id", "name", "code", "term", "synced_ts"}
	placeholderValues := []any{
		upsert.UID, upsert.CanvasID, upsert.Name, upsert.Code, upsert.Term, upsert.SyncedTs,
	}

	// Conflict on canvas_id keeps the existing row id and uid stable across syncs.
	stmt := `INSERT INTO course (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		ON CONFLICT (canvas_id) DO UPDATE SET
			name = excluded.name,
			code = excluded.code,
			term = excluded.term,
			synced_ts = excluded.synced_ts,
			updated_ts = strftime('%s', 'now')
		RETURNING id, uid, row_status, created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&upsert.ID,
		&upsert.UID,
		&upsert.RowStatus,
		&upsert.CreatedTs,
		&upsert.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to upsert course: %w", err)
	}

	return upsert, nil
}

func (d *DB) ListCourses(ctx context.Context, find *store.FindCourse) ([]*store.Course, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "course.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "course.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CanvasID; v != nil {
		where, args = append(where, "course.canvas_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.RowStatus; v != nil {
		where, args = append(where, "course.row_status = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, uid, canvas_id, row_status, created_ts, updated_ts,
			name, code, term, synced_ts
		FROM course
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY course.name ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Course, 0)
	for rows.Next() {
		var course store.Course
		if err := rows.Scan(
			&course.ID,
			&course.UID,
			&course.CanvasID,
			&course.RowStatus,
			&course.CreatedTs,
			&course.UpdatedTs,
			&course.Name,
			&course.Code,
			&course.Term,
			&course.SyncedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		list = append(list, &course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate courses: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateCourse(ctx context.Context, update *store.UpdateCourse) (*store.Course, error) {
	set, args := []string{}, []any{}

	if v := update.RowStatus; v != nil {
		set, args = append(set, "row_status = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Name; v != nil {
		set, args = append(set, "name = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Code; v != nil {
		set, args = append(set, "code = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Term; v != nil {
		set, args = append(set, "term = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.SyncedTs; v != nil {
		set, args = append(set, "synced_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	set = append(set, "updated_ts = strftime('%s', 'now')")
	args = append(args, update.ID)

	stmt := `UPDATE course SET ` + strings.Join(set, ", ") + `
		WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, uid, canvas_id, row_status, created_ts, updated_ts, name, code, term, synced_ts`

	var course store.Course
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&course.ID,
		&course.UID,
		&course.CanvasID,
		&course.RowStatus,
		&course.CreatedTs,
		&course.UpdatedTs,
		&course.Name,
		&course.Code,
		&course.Term,
		&course.SyncedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	return &course, nil
}

func (d *DB) DeleteCourse(ctx context.Context, delete *store.DeleteCourse) error {
	// Assignments cascade via the course_id foreign key.
	result, err := d.db.ExecContext(ctx, "DELETE FROM course WHERE id = ?", delete.ID)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	if _, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	return nil
}
