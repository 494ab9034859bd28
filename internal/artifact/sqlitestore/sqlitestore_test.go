package sqlitestore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/stagehand/internal/artifact"
)

const testFP = "ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ok, err := store.Exists(ctx, testFP)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Load(ctx, testFP)
	assert.True(t, artifact.IsNotFound(err))

	a := &artifact.Artifact{
		Key:         "doc.md|md",
		Fingerprint: testFP,
		Ext:         ".html",
		Input:       artifact.FromText("# hi"),
		Output:      artifact.FromText("<h1>hi</h1>"),
		NextHandler: "stagehand.htmltext",
	}
	require.NoError(t, store.Persist(ctx, a))

	ok, err = store.Exists(ctx, testFP)
	require.NoError(t, err)
	assert.True(t, ok)

	loaded, err := store.Load(ctx, testFP)
	require.NoError(t, err)
	assert.Equal(t, a.Key, loaded.Key)
	assert.Equal(t, a.Ext, loaded.Ext)
	assert.Equal(t, a.NextHandler, loaded.NextHandler)
	assert.True(t, a.Output.Equal(loaded.Output))
}

func TestSQLiteStorePersistIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := &artifact.Artifact{Fingerprint: testFP, Ext: ".txt", Output: artifact.FromText("x")}
	require.NoError(t, store.Persist(ctx, a))
	require.NoError(t, store.Persist(ctx, a))

	loaded, err := store.Load(ctx, testFP)
	require.NoError(t, err)
	assert.Equal(t, "x", loaded.OutputText())
}

func TestSQLiteStorePrune(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	old := &artifact.Artifact{
		Fingerprint: testFP,
		Ext:         ".txt",
		Output:      artifact.FromText("x"),
		CreatedAt:   time.Now().Add(-48 * time.Hour),
	}
	require.NoError(t, store.Persist(ctx, old))

	fresh := &artifact.Artifact{
		Fingerprint: "ff" + testFP[2:],
		Ext:         ".txt",
		Output:      artifact.FromText("y"),
	}
	require.NoError(t, store.Persist(ctx, fresh))

	removed, err := store.Prune(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	ok, err := store.Exists(ctx, testFP)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Exists(ctx, fresh.Fingerprint)
	require.NoError(t, err)
	assert.True(t, ok)
}
