package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// Course model related methods.
	UpsertCourse(ctx context.Context, upsert *Course) (*Course, error)
	ListCourses(ctx context.Context, find *FindCourse) ([]*Course, error)
	UpdateCourse(ctx context.Context, update *UpdateCourse) (*Course, error)
	DeleteCourse(ctx context.Context, delete *DeleteCourse) error

	// Assignment model related methods.
	UpsertAssignment(ctx context.Context, upsert *Assignment) (*Assignment, error)
	ListAssignments(ctx context.Context, find *FindAssignment) ([]*Assignment, error)
	UpdateAssignment(ctx context.Context, update *UpdateAssignment) (*Assignment, error)
	DeleteAssignment(ctx context.Context, delete *DeleteAssignment) error

	// AIConversation model related methods.
	CreateAIConversation(ctx context.Context, create *AIConversation) (*AIConversation, error)
	ListAIConversations(ctx context.Context, find *FindAIConversation) ([]*AIConversation, error)
	UpdateAIConversation(ctx context.Context, update *UpdateAIConversation) (*AIConversation, error)
	DeleteAIConversation(ctx context.Context, delete *DeleteAIConversation) error

	// AIMessage model related methods.
	CreateAIMessage(ctx context.Context, create *AIMessage) (*AIMessage, error)
	ListAIMessages(ctx context.Context, find *FindAIMessage) ([]*AIMessage, error)
	DeleteAIMessage(ctx context.Context, delete *DeleteAIMessage) error

	// UsageRecord model related methods.
	CreateUsageRecord(ctx context.Context, create *UsageRecord) (*UsageRecord, error)
	ListUsageRecords(ctx context.Context, find *FindUsageRecord) ([]*UsageRecord, error)
	DeleteUsageRecords(ctx context.Context, delete *DeleteUsageRecords) error

	// UserSetting model related methods.
	UpsertUserSetting(ctx context.Context, upsert *UserSetting) (*UserSetting, error)
	ListUserSettings(ctx context.Context, find *FindUserSetting) ([]*UserSetting, error)
	DeleteUserSetting(ctx context.Context, delete *DeleteUserSetting) error

	// Schema version related methods, used by the migrator.
	GetSchemaVersion(ctx context.Context) (string, error)
	UpsertSchemaVersion(ctx context.Context, version string) error
}
