package store

import "context"

// UsageRecord is the token and cost accounting row for one AI proxy call.
type UsageRecord struct {
	ID               int32
	CreatedTs        int64
	Action           string
	Model            string
	PromptTokens     int32
	CompletionTokens int32
	CostUSD          float64
	DurationMs       int64
}

// FindUsageRecord is the find condition for usage records.
type FindUsageRecord struct {
	Action *string
	Model  *string

	// Time range filters
	CreatedAfter  *int64
	CreatedBefore *int64

	// Pagination
	Limit  *int
	Offset *int
}

// DeleteUsageRecords deletes usage records older than CreatedBefore.
type DeleteUsageRecords struct {
	CreatedBefore *int64
}

// CreateUsageRecord records one AI call's usage.
func (s *Store) CreateUsageRecord(ctx context.Context, create *UsageRecord) (*UsageRecord, error) {
	return s.driver.CreateUsageRecord(ctx, create)
}

// ListUsageRecords lists usage records with filter, newest first.
func (s *Store) ListUsageRecords(ctx context.Context, find *FindUsageRecord) ([]*UsageRecord, error) {
	return s.driver.ListUsageRecords(ctx, find)
}

// DeleteUsageRecords prunes old usage records.
func (s *Store) DeleteUsageRecords(ctx context.Context, delete *DeleteUsageRecords) error {
	return s.driver.DeleteUsageRecords(ctx, delete)
}
