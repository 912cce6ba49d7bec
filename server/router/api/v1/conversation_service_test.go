package v1

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationFlow(t *testing.T) {
	svc, e := newTestService(t)
	fa := &fakeAssist{chatResult: "Osmosis moves water across a membrane."}
	svc.Assist = fa

	// Create an untitled conversation.
	rec := doRequest(e, http.MethodPost, "/api/v1/conversations", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var conversation Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conversation))
	require.NotEmpty(t, conversation.UID)

	// First message titles the conversation and returns the reply.
	rec = doRequest(e, http.MethodPost, "/api/v1/conversations/"+conversation.UID+"/messages",
		`{"content":"Explain osmosis please"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var reply Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, "assistant", reply.Role)
	assert.Equal(t, "Osmosis moves water across a membrane.", reply.Content)

	// The model saw the system preamble and then the user turn.
	require.Len(t, fa.lastChat, 2)
	assert.Equal(t, "system", fa.lastChat[0].Role)
	assert.Equal(t, "Explain osmosis please", fa.lastChat[1].Content)

	rec = doRequest(e, http.MethodGet, "/api/v1/conversations/"+conversation.UID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var titled Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &titled))
	assert.Equal(t, "Explain osmosis please", titled.Title)

	// Second message replays the stored history.
	rec = doRequest(e, http.MethodPost, "/api/v1/conversations/"+conversation.UID+"/messages",
		`{"content":"And reverse osmosis?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, fa.lastChat, 4)
	assert.Equal(t, "user", fa.lastChat[1].Role)
	assert.Equal(t, "assistant", fa.lastChat[2].Role)
	assert.Equal(t, "And reverse osmosis?", fa.lastChat[3].Content)

	rec = doRequest(e, http.MethodGet, "/api/v1/conversations/"+conversation.UID+"/messages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var messages []*Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &messages))
	require.Len(t, messages, 4)
	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, "assistant", messages[3].Role)
}

func TestConversationPinAndDelete(t *testing.T) {
	svc, e := newTestService(t)
	svc.Assist = &fakeAssist{}

	rec := doRequest(e, http.MethodPost, "/api/v1/conversations", `{"title":"Midterm prep"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var first Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))

	rec = doRequest(e, http.MethodPost, "/api/v1/conversations", `{"title":"Essay ideas"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var second Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))

	// Pinning floats the first conversation to the top.
	rec = doRequest(e, http.MethodPatch, "/api/v1/conversations/"+first.UID, `{"pinned":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/v1/conversations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []*Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Midterm prep", list[0].Title)
	assert.True(t, list[0].Pinned)

	// Empty patch is rejected.
	rec = doRequest(e, http.MethodPatch, "/api/v1/conversations/"+first.UID, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(e, http.MethodDelete, "/api/v1/conversations/"+second.UID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/v1/conversations/"+second.UID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
