package teststore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/satchelhq/satchel/store"
)

func TestUsageRecordStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	first, err := ts.CreateUsageRecord(ctx, &store.UsageRecord{
		Action:           "summarize",
		Model:            "gpt-4o-mini",
		PromptTokens:     820,
		CompletionTokens: 210,
		CostUSD:          0.00025,
		DurationMs:       1840,
	})
	require.NoError(t, err)
	require.NotZero(t, first.ID)
	require.NotZero(t, first.CreatedTs)

	_, err = ts.CreateUsageRecord(ctx, &store.UsageRecord{
		Action:           "chat",
		Model:            "gpt-4o-mini",
		PromptTokens:     1200,
		CompletionTokens: 600,
		CostUSD:          0.00054,
		DurationMs:       2310,
	})
	require.NoError(t, err)

	_, err = ts.CreateUsageRecord(ctx, &store.UsageRecord{
		Action:           "chat",
		Model:            "gpt-4o",
		PromptTokens:     400,
		CompletionTokens: 180,
		CostUSD:          0.0028,
		DurationMs:       1520,
	})
	require.NoError(t, err)

	records, err := ts.ListUsageRecords(ctx, &store.FindUsageRecord{})
	require.NoError(t, err)
	require.Len(t, records, 3)

	action := "chat"
	records, err = ts.ListUsageRecords(ctx, &store.FindUsageRecord{Action: &action})
	require.NoError(t, err)
	require.Len(t, records, 2)

	model := "gpt-4o"
	records, err = ts.ListUsageRecords(ctx, &store.FindUsageRecord{Action: &action, Model: &model})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, int32(400), records[0].PromptTokens)

	limit := 1
	records, err = ts.ListUsageRecords(ctx, &store.FindUsageRecord{Limit: &limit})
	require.NoError(t, err)
	require.Len(t, records, 1)

	err = ts.DeleteUsageRecords(ctx, &store.DeleteUsageRecords{})
	require.Error(t, err)

	cutoff := time.Now().Unix() + 60
	err = ts.DeleteUsageRecords(ctx, &store.DeleteUsageRecords{CreatedBefore: &cutoff})
	require.NoError(t, err)
	records, err = ts.ListUsageRecords(ctx, &store.FindUsageRecord{})
	require.NoError(t, err)
	require.Empty(t, records)
}
