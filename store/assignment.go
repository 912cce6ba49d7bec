package store

import (
	"context"
	"time"
)

// Assignment is a Canvas assignment tracked by the sync runner.
type Assignment struct {
	ID        int32
	UID       string
	RowStatus RowStatus
	CreatedTs int64
	UpdatedTs int64

	// Canvas fields
	CanvasID        int64
	CourseID        int32
	Title           string
	DescriptionHTML string
	DescriptionText string
	DueTs           *int64
	PointsPossible  float64
	HTMLURL         string
	SubmissionTypes string // comma separated
	Status          string
	SyncedTs        int64
}

// FindAssignment is the find condition for assignment.
type FindAssignment struct {
	ID       *int32
	UID      *string
	CanvasID *int64
	CourseID *int32

	// Time range filters on the due date
	DueAfter  *int64
	DueBefore *int64

	RowStatus *RowStatus

	// Pagination
	Limit  *int
	Offset *int
}

// UpdateAssignment is the update request for assignment.
type UpdateAssignment struct {
	ID              int32
	RowStatus       *RowStatus
	Title           *string
	DescriptionHTML *string
	DescriptionText *string
	DueTs           *int64
	PointsPossible  *float64
	Status          *string
	SyncedTs        *int64
}

// DeleteAssignment is the delete request for assignment.
type DeleteAssignment struct {
	ID int32
}

// DueTime parses the assignment due timestamp to time.Time.
func (a *Assignment) DueTime() *time.Time {
	if a.DueTs == nil {
		return nil
	}
	t := time.Unix(*a.DueTs, 0)
	return &t
}

// IsDueWithin reports whether the assignment is due between now and the
// given horizon. Assignments without a due date never match.
func (a *Assignment) IsDueWithin(now time.Time, horizon time.Duration) bool {
	if a.DueTs == nil {
		return false
	}
	due := time.Unix(*a.DueTs, 0)
	return !due.Before(now) && due.Before(now.Add(horizon))
}

// UpsertAssignment creates or updates an assignment keyed by its Canvas ID.
func (s *Store) UpsertAssignment(ctx context.Context, upsert *Assignment) (*Assignment, error) {
	return s.driver.UpsertAssignment(ctx, upsert)
}

// ListAssignments lists assignments with filter, ordered by due date.
func (s *Store) ListAssignments(ctx context.Context, find *FindAssignment) ([]*Assignment, error) {
	return s.driver.ListAssignments(ctx, find)
}

// GetAssignment gets a single assignment matching the filter.
func (s *Store) GetAssignment(ctx context.Context, find *FindAssignment) (*Assignment, error) {
	list, err := s.driver.ListAssignments(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateAssignment updates an assignment.
func (s *Store) UpdateAssignment(ctx context.Context, update *UpdateAssignment) (*Assignment, error) {
	return s.driver.UpdateAssignment(ctx, update)
}

// DeleteAssignment deletes an assignment.
func (s *Store) DeleteAssignment(ctx context.Context, delete *DeleteAssignment) error {
	return s.driver.DeleteAssignment(ctx, delete)
}
