package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satchelhq/satchel/server/finops"
)

type fakeSyncer struct {
	triggered int
	queued    bool
}

func (f *fakeSyncer) Trigger() bool {
	f.triggered++
	return f.queued
}

func TestTriggerSync(t *testing.T) {
	svc, e := newTestService(t)

	rec := doRequest(e, http.MethodPost, "/api/v1/sync", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	syncer := &fakeSyncer{queued: true}
	svc.Syncer = syncer
	rec = doRequest(e, http.MethodPost, "/api/v1/sync", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"queued":true}`, rec.Body.String())
	assert.Equal(t, 1, syncer.triggered)
}

func TestGetUsage(t *testing.T) {
	svc, e := newTestService(t)
	monitor := finops.NewMonitor(svc.Store)
	svc.Monitor = monitor

	monitor.Record(context.Background(), "summarizeDocument", "gpt-4o-mini",
		"summarize this lecture", "a short summary", 800*time.Millisecond)

	rec := doRequest(e, http.MethodGet, "/api/v1/usage?period=week", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary finops.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "week", summary.Period)
	require.Len(t, summary.ByAction, 1)
	assert.Equal(t, "summarizeDocument", summary.ByAction[0].Action)
	assert.Equal(t, 1, summary.ByAction[0].Requests)
}

func TestSettings(t *testing.T) {
	_, e := newTestService(t)

	rec := doRequest(e, http.MethodPatch, "/api/v1/settings/deadline_horizon_days", `{"value":"14"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/v1/settings/deadline_horizon_days", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var setting Setting
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &setting))
	assert.Equal(t, "14", setting.Value)

	rec = doRequest(e, http.MethodGet, "/api/v1/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []*Setting
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = doRequest(e, http.MethodDelete, "/api/v1/settings/deadline_horizon_days", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/v1/settings/deadline_horizon_days", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
