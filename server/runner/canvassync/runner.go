// Package canvassync mirrors a student's Canvas courses and assignments into
// the local store. It runs a full pass on startup and then on a fixed
// interval; rows that disappear from Canvas are archived rather than deleted
// so chat history and AI context referencing them stay resolvable.
package canvassync

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/satchelhq/satchel/plugin/canvas"
	"github.com/satchelhq/satchel/store"
)

// courseConcurrency bounds how many courses pull assignments in parallel.
// Canvas throttles aggressive clients, so keep this small.
const courseConcurrency = 4

const defaultInterval = 30 * time.Minute

// CanvasClient is the slice of the Canvas API the runner needs.
type CanvasClient interface {
	ListCourses(ctx context.Context) ([]canvas.Course, error)
	ListAssignments(ctx context.Context, courseID int64) ([]canvas.Assignment, error)
}

type Runner struct {
	store    *store.Store
	client   CanvasClient
	interval time.Duration

	// kick wakes the loop for a manual sync. Buffered so Trigger never blocks.
	kick chan struct{}
}

// NewRunner creates a Canvas sync runner.
func NewRunner(store *store.Store, client CanvasClient, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Runner{
		store:    store,
		client:   client,
		interval: interval,
		kick:     make(chan struct{}, 1),
	}
}

// Trigger requests an immediate sync pass from the running loop. It returns
// false when a manual pass is already pending.
func (r *Runner) Trigger() bool {
	select {
	case r.kick <- struct{}{}:
		return true
	default:
		return false
	}
}

// Run starts the background task.
func (r *Runner) Run(ctx context.Context) {
	// Sync once on startup
	if err := r.RunOnce(ctx); err != nil {
		slog.Error("canvas sync failed", "error", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
		case <-r.kick:
		case <-ctx.Done():
			slog.Info("canvas sync runner stopped")
			return
		}
		if err := r.RunOnce(ctx); err != nil {
			slog.Error("canvas sync failed", "error", err)
		}
	}
}

// RunOnce performs a single full sync pass. Per-course failures are logged
// and skipped; only a failed course listing aborts the pass, since archiving
// against partial data would hide rows Canvas still has.
func (r *Runner) RunOnce(ctx context.Context) error {
	start := time.Now()

	courses, err := r.client.ListCourses(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list canvas courses")
	}

	seen := make(map[int64]struct{}, len(courses))
	for _, course := range courses {
		seen[course.ID] = struct{}{}
	}

	syncedTs := start.Unix()
	synced := make([]*store.Course, 0, len(courses))
	for _, course := range courses {
		row, err := r.upsertCourse(ctx, &course, syncedTs)
		if err != nil {
			slog.Error("failed to upsert course", "canvas_id", course.ID, "error", err)
			continue
		}
		synced = append(synced, row)
	}

	var assignmentCount atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(courseConcurrency)
	for _, row := range synced {
		row := row
		g.Go(func() error {
			n, err := r.syncAssignments(gctx, row, syncedTs)
			if err != nil {
				// One broken course must not stop the others.
				slog.Error("failed to sync assignments", "course", row.Code, "error", err)
				return nil
			}
			assignmentCount.Add(int64(n))
			return nil
		})
	}
	_ = g.Wait()

	archived := r.archiveMissingCourses(ctx, seen)

	slog.Info("canvas sync completed",
		"courses", len(synced),
		"assignments", assignmentCount.Load(),
		"archived_courses", archived,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// upsertCourse writes one Canvas course into the store. The upsert keys on
// canvas_id, so the uid only takes effect on first insert. A course that
// disappeared and came back is active again.
func (r *Runner) upsertCourse(ctx context.Context, course *canvas.Course, syncedTs int64) (*store.Course, error) {
	row, err := r.store.UpsertCourse(ctx, &store.Course{
		UID:      shortuuid.New(),
		CanvasID: course.ID,
		Name:     course.Name,
		Code:     course.CourseCode,
		Term:     course.TermName(),
		SyncedTs: syncedTs,
	})
	if err != nil {
		return nil, err
	}
	if row.RowStatus == store.Archived {
		rowStatus := store.Normal
		return r.store.UpdateCourse(ctx, &store.UpdateCourse{ID: row.ID, RowStatus: &rowStatus})
	}
	return row, nil
}

// syncAssignments pulls one course's assignments, upserts them, and archives
// the ones Canvas no longer returns. It reports how many rows were synced.
func (r *Runner) syncAssignments(ctx context.Context, course *store.Course, syncedTs int64) (int, error) {
	assignments, err := r.client.ListAssignments(ctx, course.CanvasID)
	if err != nil {
		return 0, err
	}

	seen := make(map[int64]struct{}, len(assignments))
	count := 0
	for _, assignment := range assignments {
		seen[assignment.ID] = struct{}{}
		row, err := r.store.UpsertAssignment(ctx, convertAssignment(&assignment, course.ID, syncedTs))
		if err != nil {
			slog.Error("failed to upsert assignment", "canvas_id", assignment.ID, "error", err)
			continue
		}
		if row.RowStatus == store.Archived {
			rowStatus := store.Normal
			if _, err := r.store.UpdateAssignment(ctx, &store.UpdateAssignment{ID: row.ID, RowStatus: &rowStatus}); err != nil {
				slog.Error("failed to restore assignment", "canvas_id", assignment.ID, "error", err)
			}
		}
		count++
	}

	r.archiveMissingAssignments(ctx, course, seen)
	return count, nil
}

// archiveMissingCourses archives active courses whose canvas_id was absent
// from the latest listing, along with their assignments. It returns how many
// courses were archived.
func (r *Runner) archiveMissingCourses(ctx context.Context, seen map[int64]struct{}) int {
	rowStatus := store.Normal
	existing, err := r.store.ListCourses(ctx, &store.FindCourse{RowStatus: &rowStatus})
	if err != nil {
		slog.Error("failed to list courses for archiving", "error", err)
		return 0
	}

	archivedStatus := store.Archived
	archived := 0
	for _, course := range existing {
		if _, ok := seen[course.CanvasID]; ok {
			continue
		}
		if _, err := r.store.UpdateCourse(ctx, &store.UpdateCourse{ID: course.ID, RowStatus: &archivedStatus}); err != nil {
			slog.Error("failed to archive course", "course", course.Code, "error", err)
			continue
		}
		r.archiveMissingAssignments(ctx, course, nil)
		archived++
	}
	return archived
}

// archiveMissingAssignments archives the course's active assignments whose
// canvas_id is not in seen. A nil seen map archives all of them.
func (r *Runner) archiveMissingAssignments(ctx context.Context, course *store.Course, seen map[int64]struct{}) {
	rowStatus := store.Normal
	existing, err := r.store.ListAssignments(ctx, &store.FindAssignment{
		CourseID:  &course.ID,
		RowStatus: &rowStatus,
	})
	if err != nil {
		slog.Error("failed to list assignments for archiving", "course", course.Code, "error", err)
		return
	}

	archivedStatus := store.Archived
	for _, assignment := range existing {
		if _, ok := seen[assignment.CanvasID]; ok {
			continue
		}
		if _, err := r.store.UpdateAssignment(ctx, &store.UpdateAssignment{ID: assignment.ID, RowStatus: &archivedStatus}); err != nil {
			slog.Error("failed to archive assignment", "canvas_id", assignment.CanvasID, "error", err)
		}
	}
}

func convertAssignment(assignment *canvas.Assignment, courseID int32, syncedTs int64) *store.Assignment {
	row := &store.Assignment{
		UID:             shortuuid.New(),
		CanvasID:        assignment.ID,
		CourseID:        courseID,
		Title:           assignment.Name,
		DescriptionHTML: assignment.Description,
		DescriptionText: assignment.DescriptionText(),
		PointsPossible:  assignment.PointsPossible,
		HTMLURL:         assignment.HTMLURL,
		SubmissionTypes: strings.Join(assignment.SubmissionTypes, ","),
		Status:          assignment.WorkflowState,
		SyncedTs:        syncedTs,
	}
	if assignment.DueAt != nil {
		due := assignment.DueAt.Unix()
		row.DueTs = &due
	}
	return row
}
