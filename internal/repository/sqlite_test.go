package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xiaot623/gogo/playground/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreSlots(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	got, err := store.LoadSlot(ctx, "s1", domain.StorageKeyConfig)
	require.NoError(t, err)
	assert.Nil(t, got, "empty slot should load as nil")

	require.NoError(t, store.SaveSlot(ctx, "s1", domain.StorageKeyConfig, []byte(`{"v":1}`)))
	require.NoError(t, store.SaveSlot(ctx, "s1", domain.StorageKeyConfig, []byte(`{"v":2}`)))
	require.NoError(t, store.SaveSlot(ctx, "s1", domain.StorageKeyMessages, []byte(`[]`)))
	require.NoError(t, store.SaveSlot(ctx, "s2", domain.StorageKeyConfig, []byte(`{"v":3}`)))

	got, err = store.LoadSlot(ctx, "s1", domain.StorageKeyConfig)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(got))

	require.NoError(t, store.DeleteSlots(ctx, "s1"))
	got, err = store.LoadSlot(ctx, "s1", domain.StorageKeyMessages)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.LoadSlot(ctx, "s2", domain.StorageKeyConfig)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":3}`, string(got), "other sessions are untouched")
}

func TestSQLiteStoreEvents(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	now := time.Now().UnixMilli()
	events := []*domain.Event{
		{EventID: "e1", SessionID: "s1", Ts: now, Type: domain.EventTypeMessageSubmitted, Payload: json.RawMessage(`{"user_message_id":"u1"}`)},
		{EventID: "e2", SessionID: "s1", Ts: now + 1, Type: domain.EventTypeLLMCallStarted},
		{EventID: "e3", SessionID: "s1", Ts: now + 2, Type: domain.EventTypeMessageCompleted},
		{EventID: "e4", SessionID: "s2", Ts: now, Type: domain.EventTypeMessageSubmitted},
	}
	for _, e := range events {
		require.NoError(t, store.CreateEvent(ctx, e))
	}

	all, err := store.GetEvents(ctx, "s1", 0, nil, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "e1", all[0].EventID)
	assert.JSONEq(t, `{"user_message_id":"u1"}`, string(all[0].Payload))
	assert.Nil(t, all[1].Payload)

	after, err := store.GetEvents(ctx, "s1", now, nil, 10)
	require.NoError(t, err)
	assert.Len(t, after, 2)

	typed, err := store.GetEvents(ctx, "s1", 0, []string{string(domain.EventTypeMessageCompleted)}, 10)
	require.NoError(t, err)
	require.Len(t, typed, 1)
	assert.Equal(t, "e3", typed[0].EventID)

	limited, err := store.GetEvents(ctx, "s1", 0, nil, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
