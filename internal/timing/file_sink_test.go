package timing

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSinkAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timing.jsonl")
	sink, err := NewFileSink(path)
	require.NoError(t, err)

	ctx := context.Background()
	start := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	rec := Record{
		ArtifactKey: "doc.md|md",
		Fingerprint: "abc123",
		Document:    "doc.md",
		Stage:       "stagehand.markdown",
		Outcome:     OutcomeGenerated,
		Start:       start,
		Finish:      start.Add(42 * time.Millisecond),
		Elapsed:     42 * time.Millisecond,
	}
	require.NoError(t, sink.Report(ctx, rec))
	rec.Outcome = OutcomeCached
	require.NoError(t, sink.Report(ctx, rec))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)

	var first Record
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "doc.md|md", first.ArtifactKey)
	assert.Equal(t, OutcomeGenerated, first.Outcome)
	assert.Equal(t, 42*time.Millisecond, first.Elapsed)

	var second Record
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, OutcomeCached, second.Outcome)
}

func TestFileSinkReopensExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timing.jsonl")

	for i := 0; i < 2; i++ {
		sink, err := NewFileSink(path)
		require.NoError(t, err)
		require.NoError(t, sink.Report(context.Background(), Record{Document: "d"}))
		require.NoError(t, sink.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

type failSink struct{ err error }

func (f failSink) Report(context.Context, Record) error { return f.err }
func (f failSink) Close() error                         { return f.err }

func TestMultiReportsToAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timing.jsonl")
	file, err := NewFileSink(path)
	require.NoError(t, err)

	multi := Multi{failSink{err: os.ErrClosed}, file}
	err = multi.Report(context.Background(), Record{Document: "d"})
	assert.ErrorIs(t, err, os.ErrClosed)

	// The failing sink does not stop the others.
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Contains(t, string(data), `"d"`)

	assert.ErrorIs(t, multi.Close(), os.ErrClosed)
}
