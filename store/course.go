package store

import "context"

// Course is a Canvas course tracked by the sync runner.
type Course struct {
	ID        int32
	UID       string
	RowStatus RowStatus
	CreatedTs int64
	UpdatedTs int64

	// Canvas fields
	CanvasID int64
	Name     string
	Code     string
	Term     string
	SyncedTs int64
}

// FindCourse is the find condition for course.
type FindCourse struct {
	ID        *int32
	UID       *string
	CanvasID  *int64
	RowStatus *RowStatus
}

// UpdateCourse is the update request for course.
type UpdateCourse struct {
	ID        int32
	RowStatus *RowStatus
	Name      *string
	Code      *string
	Term      *string
	SyncedTs  *int64
}

// DeleteCourse is the delete request for course.
type DeleteCourse struct {
	ID int32
}

// UpsertCourse creates or updates a course keyed by its Canvas ID.
func (s *Store) UpsertCourse(ctx context.Context, upsert *Course) (*Course, error) {
	return s.driver.UpsertCourse(ctx, upsert)
}

// ListCourses lists courses with filter.
func (s *Store) ListCourses(ctx context.Context, find *FindCourse) ([]*Course, error) {
	return s.driver.ListCourses(ctx, find)
}

// GetCourse gets a single course matching the filter.
func (s *Store) GetCourse(ctx context.Context, find *FindCourse) (*Course, error) {
	list, err := s.driver.ListCourses(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateCourse updates a course.
func (s *Store) UpdateCourse(ctx context.Context, update *UpdateCourse) (*Course, error) {
	return s.driver.UpdateCourse(ctx, update)
}

// DeleteCourse deletes a course and its assignments.
func (s *Store) DeleteCourse(ctx context.Context, delete *DeleteCourse) error {
	return s.driver.DeleteCourse(ctx, delete)
}
