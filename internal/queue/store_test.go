package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"chatrelay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "queue.json"), filepath.Join(dir, "sent.json"))
	require.NoError(t, err)
	return store
}

func TestNewStoreCreatesEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	queuePath := filepath.Join(dir, "queue.json")
	sentPath := filepath.Join(dir, "sent.json")

	_, err := NewStore(queuePath, sentPath)
	require.NoError(t, err)

	for _, path := range []string{queuePath, sentPath} {
		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var msgs []models.QueuedMessage
		require.NoError(t, json.Unmarshal(data, &msgs), "file must hold a valid list")
		assert.Empty(t, msgs)
	}
}

func TestNewStorePreservesExistingContents(t *testing.T) {
	dir := t.TempDir()
	queuePath := filepath.Join(dir, "queue.json")
	existing := []models.QueuedMessage{{Platform: models.PlatformTelegram, Body: "pending"}}
	data, err := json.Marshal(existing)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(queuePath, data, 0o600))

	store, err := NewStore(queuePath, filepath.Join(dir, "sent.json"))
	require.NoError(t, err)

	snapshot, err := store.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, existing, snapshot)
}

func TestEnqueueSnapshotRoundTrip(t *testing.T) {
	store := newTestStore(t)
	msg := models.QueuedMessage{Platform: models.PlatformTelegram, Body: "hello"}

	before, err := store.Snapshot()
	require.NoError(t, err)

	require.NoError(t, store.Enqueue(msg))

	after, err := store.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, countOf(before, msg)+1, countOf(after, msg))
}

func TestSnapshotPreservesInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	msgs := []models.QueuedMessage{
		{Platform: models.PlatformTelegram, Body: "first"},
		{Platform: models.PlatformDiscord, Body: "second"},
		{Platform: models.PlatformTelegram, Body: "third"},
	}
	for _, msg := range msgs {
		require.NoError(t, store.Enqueue(msg))
	}

	snapshot, err := store.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, msgs, snapshot)
}

func TestRemoveDeletesAllDuplicates(t *testing.T) {
	store := newTestStore(t)
	dup := models.QueuedMessage{Platform: models.PlatformTelegram, Body: "dup"}
	other := models.QueuedMessage{Platform: models.PlatformDiscord, Body: "keep"}

	require.NoError(t, store.Enqueue(dup))
	require.NoError(t, store.Enqueue(other))
	require.NoError(t, store.Enqueue(dup))

	require.NoError(t, store.Remove(dup))

	snapshot, err := store.Snapshot()
	require.NoError(t, err)
	assert.Zero(t, countOf(snapshot, dup))
	assert.Equal(t, []models.QueuedMessage{other}, snapshot)
}

func TestRemoveMissingMessageIsNoop(t *testing.T) {
	store := newTestStore(t)
	kept := models.QueuedMessage{Platform: models.PlatformTelegram, Body: "kept"}
	require.NoError(t, store.Enqueue(kept))

	require.NoError(t, store.Remove(models.QueuedMessage{Platform: models.PlatformDiscord, Body: "absent"}))

	snapshot, err := store.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, []models.QueuedMessage{kept}, snapshot)
}

func TestAppendSentDoesNotTouchQueue(t *testing.T) {
	dir := t.TempDir()
	sentPath := filepath.Join(dir, "sent.json")
	store, err := NewStore(filepath.Join(dir, "queue.json"), sentPath)
	require.NoError(t, err)

	msg := models.QueuedMessage{Platform: models.PlatformDiscord, Body: "delivered"}
	require.NoError(t, store.AppendSent(msg))
	require.NoError(t, store.AppendSent(msg))

	snapshot, err := store.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snapshot)

	data, err := os.ReadFile(sentPath)
	require.NoError(t, err)
	var sent []models.QueuedMessage
	require.NoError(t, json.Unmarshal(data, &sent))
	assert.Equal(t, []models.QueuedMessage{msg, msg}, sent)
}

func TestFileAlwaysValidListAfterMutations(t *testing.T) {
	store := newTestStore(t)
	msg := models.QueuedMessage{Platform: models.PlatformTelegram, Body: "m"}

	require.NoError(t, store.Enqueue(msg))
	require.NoError(t, store.Remove(msg))

	data, err := os.ReadFile(store.QueuePath())
	require.NoError(t, err)

	var msgs []models.QueuedMessage
	require.NoError(t, json.Unmarshal(data, &msgs))
	assert.Empty(t, msgs)
}

func TestSnapshotCorruptFileFails(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.QueuePath(), []byte("not json"), 0o600))

	_, err := store.Snapshot()
	assert.Error(t, err)
}

func countOf(msgs []models.QueuedMessage, target models.QueuedMessage) int {
	count := 0
	for _, m := range msgs {
		if m == target {
			count++
		}
	}
	return count
}
