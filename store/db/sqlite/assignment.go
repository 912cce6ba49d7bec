package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/satchelhq/satchel/store"
)

func (d *DB) UpsertAssignment(ctx context.Context, upsert *store.Assignment) (*store.Assignment, error) {
	fields := []string{
		"uid", "canvas_id", "course_id", "title", "description_html", "description_text",
		"due_ts", "points_possible", "html_url", "submission_types", "status", "synced_ts",
	}
	placeholderValues := []any{
		upsert.UID, upsert.CanvasID, upsert.CourseID, upsert.Title, upsert.DescriptionHTML,
		upsert.DescriptionText, upsert.DueTs, upsert.PointsPossible, upsert.HTMLURL,
		upsert.SubmissionTypes, upsert.Status, upsert.SyncedTs,
	}

	stmt := `INSERT INTO assignment (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		ON CONFLICT (canvas_id) DO UPDATE SET
			course_id = excluded.course_id,
			title = excluded.title,
			description_html = excluded.description_html,
			description_text = excluded.description_text,
			due_ts = excluded.due_ts,
			points_possible = excluded.points_possible,
			html_url = excluded.html_url,
			submission_types = excluded.submission_types,
			status = excluded.status,
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
		return nil, fmt.Errorf("failed to upsert assignment: %w", err)
	}

	return upsert, nil
}

func (d *DB) ListAssignments(ctx context.Context, find *store.FindAssignment) ([]*store.Assignment, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "assignment.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "assignment.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CanvasID; v != nil {
		where, args = append(where, "assignment.canvas_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CourseID; v != nil {
		where, args = append(where, "assignment.course_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.RowStatus; v != nil {
		where, args = append(where, "assignment.row_status = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.DueAfter; v != nil {
		where, args = append(where, "assignment.due_ts >= "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.DueBefore; v != nil {
		where, args = append(where, "assignment.due_ts < "+placeholder(len(args)+1)), append(args, *v)
	}

	// Undated assignments sort after everything with a deadline.
	query := `
		SELECT
			id, uid, canvas_id, course_id, row_status, created_ts, updated_ts,
			title, description_html, description_text, due_ts, points_possible,
			html_url, submission_types, status, synced_ts
		FROM assignment
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY assignment.due_ts IS NULL ASC, assignment.due_ts ASC, assignment.id ASC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Assignment, 0)
	for rows.Next() {
		var assignment store.Assignment
		var dueTs sql.NullInt64
		if err := rows.Scan(
			&assignment.ID,
			&assignment.UID,
			&assignment.CanvasID,
			&assignment.CourseID,
			&assignment.RowStatus,
			&assignment.CreatedTs,
			&assignment.UpdatedTs,
			&assignment.Title,
			&assignment.DescriptionHTML,
			&assignment.DescriptionText,
			&dueTs,
			&assignment.PointsPossible,
			&assignment.HTMLURL,
			&assignment.SubmissionTypes,
			&assignment.Status,
			&assignment.SyncedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		if dueTs.Valid {
			value := dueTs.Int64
			assignment.DueTs = &value
		}
		list = append(list, &assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateAssignment(ctx context.Context, update *store.UpdateAssignment) (*store.Assignment, error) {
	set, args := []string{}, []any{}

	if v := update.RowStatus; v != nil {
		set, args = append(set, "row_status = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Title; v != nil {
		set, args = append(set, "title = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.DescriptionHTML; v != nil {
		set, args = append(set, "description_html = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.DescriptionText; v != nil {
		set, args = append(set, "description_text = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.DueTs; v != nil {
		set, args = append(set, "due_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.PointsPossible; v != nil {
		set, args = append(set, "points_possible = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Status; v != nil {
		set, args = append(set, "status = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.SyncedTs; v != nil {
		set, args = append(set, "synced_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	set = append(set, "updated_ts = strftime('%s', 'now')")
	args = append(args, update.ID)

	stmt := `UPDATE assignment SET ` + strings.Join(set, ", ") + `
		WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, uid, canvas_id, course_id, row_status, created_ts, updated_ts,
			title, description_html, description_text, due_ts, points_possible,
			html_url, submission_types, status, synced_ts`

	var assignment store.Assignment
	var dueTs sql.NullInt64
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&assignment.ID,
		&assignment.UID,
		&assignment.CanvasID,
		&assignment.CourseID,
		&assignment.RowStatus,
		&assignment.CreatedTs,
		&assignment.UpdatedTs,
		&assignment.Title,
		&assignment.DescriptionHTML,
		&assignment.DescriptionText,
		&dueTs,
		&assignment.PointsPossible,
		&assignment.HTMLURL,
		&assignment.SubmissionTypes,
		&assignment.Status,
		&assignment.SyncedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to update assignment: %w", err)
	}
	if dueTs.Valid {
		value := dueTs.Int64
		assignment.DueTs = &value
	}

	return &assignment, nil
}

func (d *DB) DeleteAssignment(ctx context.Context, delete *store.DeleteAssignment) error {
	result, err := d.db.ExecContext(ctx, "DELETE FROM assignment WHERE id = ?", delete.ID)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	if _, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	return nil
}
