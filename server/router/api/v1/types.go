package v1

import (
	"strings"

	"github.com/satchelhq/satchel/store"
)

// Course is the API shape of a synced course.
type Course struct {
	UID       string `json:"uid"`
	CanvasID  int64  `json:"canvasId"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Term      string `json:"term"`
	RowStatus string `json:"rowStatus"`
	SyncedTs  int64  `json:"syncedTs"`
	CreatedTs int64  `json:"createdTs"`
	UpdatedTs int64  `json:"updatedTs"`
}

// Assignment is the API shape of a synced assignment. Description carries
// plain text; the Canvas HTML original stays server-side.
type Assignment struct {
	UID             string   `json:"uid"`
	CanvasID        int64    `json:"canvasId"`
	CourseUID       string   `json:"courseUid,omitempty"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	DueTs           *int64   `json:"dueTs,omitempty"`
	Points          float64  `json:"points"`
	HTMLURL         string   `json:"htmlUrl"`
	SubmissionTypes []string `json:"submissionTypes"`
	Status          string   `json:"status"`
	RowStatus       string   `json:"rowStatus"`
	SyncedTs        int64    `json:"syncedTs"`
}

// Conversation is the API shape of a chat conversation.
type Conversation struct {
	UID       string `json:"uid"`
	Title     string `json:"title"`
	Pinned    bool   `json:"pinned"`
	CreatedTs int64  `json:"createdTs"`
	UpdatedTs int64  `json:"updatedTs"`
}

// Message is the API shape of one chat message.
type Message struct {
	UID       string `json:"uid"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedTs int64  `json:"createdTs"`
}

// Setting is the API shape of one user setting.
type Setting struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedTs int64  `json:"updatedTs"`
}

func convertCourse(course *store.Course) *Course {
	return &Course{
		UID:       course.UID,
		CanvasID:  course.CanvasID,
		Name:      course.Name,
		Code:      course.Code,
		Term:      course.Term,
		RowStatus: string(course.RowStatus),
		SyncedTs:  course.SyncedTs,
		CreatedTs: course.CreatedTs,
		UpdatedTs: course.UpdatedTs,
	}
}

func convertAssignment(assignment *store.Assignment, courseUID string) *Assignment {
	var submissionTypes []string
	if assignment.SubmissionTypes != "" {
		submissionTypes = strings.Split(assignment.SubmissionTypes, ",")
	}
	return &Assignment{
		UID:             assignment.UID,
		CanvasID:        assignment.CanvasID,
		CourseUID:       courseUID,
		Title:           assignment.Title,
		Description:     assignment.DescriptionText,
		DueTs:           assignment.DueTs,
		Points:          assignment.PointsPossible,
		HTMLURL:         assignment.HTMLURL,
		SubmissionTypes: submissionTypes,
		Status:          assignment.Status,
		RowStatus:       string(assignment.RowStatus),
		SyncedTs:        assignment.SyncedTs,
	}
}

func convertConversation(conversation *store.AIConversation) *Conversation {
	return &Conversation{
		UID:       conversation.UID,
		Title:     conversation.Title,
		Pinned:    conversation.Pinned,
		CreatedTs: conversation.CreatedTs,
		UpdatedTs: conversation.UpdatedTs,
	}
}

func convertMessage(message *store.AIMessage) *Message {
	return &Message{
		UID:       message.UID,
		Role:      strings.ToLower(string(message.Role)),
		Content:   message.Content,
		CreatedTs: message.CreatedTs,
	}
}

func convertSetting(setting *store.UserSetting) *Setting {
	return &Setting{
		Key:       setting.Key,
		Value:     setting.Value,
		UpdatedTs: setting.UpdatedTs,
	}
}
