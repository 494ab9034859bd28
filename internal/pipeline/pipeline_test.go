package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/stagehand/internal/artifact"
	"git.home.luguber.info/inful/stagehand/internal/document"
	"git.home.luguber.info/inful/stagehand/internal/stage"
	"git.home.luguber.info/inful/stagehand/internal/timing"
)

type upper struct{}

func (upper) ProcessText(_ context.Context, input string) (string, error) {
	return strings.ToUpper(input), nil
}

type countingUpper struct {
	mu    sync.Mutex
	calls int
}

func (c *countingUpper) ProcessText(_ context.Context, input string) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return strings.ToUpper(input), nil
}

// recordSink collects timing records across goroutines.
type recordSink struct {
	mu      sync.Mutex
	records []timing.Record
}

func (r *recordSink) Report(_ context.Context, rec timing.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *recordSink) Close() error { return nil }

func (r *recordSink) outcomes() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int{}
	for _, rec := range r.records {
		out[rec.Outcome]++
	}
	return out
}

func testRegistry(t *testing.T, specs ...stage.Spec) *stage.Registry {
	t.Helper()
	reg := stage.NewRegistry()
	for _, s := range specs {
		require.NoError(t, reg.Register(s))
	}
	return reg
}

func TestRunnerResolveChain(t *testing.T) {
	reg := testRegistry(t, stage.Spec{
		Aliases: []string{"test.upper", "upper"},
		Inputs:  []string{stage.Wildcard},
		Outputs: []string{stage.Wildcard},
		New:     func() stage.Processor { return upper{} },
	})
	r := NewRunner(reg, artifact.NewMemStore())

	chain, err := r.ResolveChain([]string{"upper"})
	require.NoError(t, err)
	require.Len(t, chain, 1)
	assert.Equal(t, "test.upper", chain[0].Name())

	_, err = r.ResolveChain([]string{"missing"})
	assert.Error(t, err)
	_, err = r.ResolveChain(nil)
	assert.Error(t, err)
}

func TestRunnerSingleDocumentChain(t *testing.T) {
	reg := testRegistry(t,
		stage.Spec{
			Aliases: []string{"test.upper"},
			Inputs:  []string{stage.Wildcard},
			Outputs: []string{stage.Wildcard},
			New:     func() stage.Processor { return upper{} },
		},
		stage.Spec{
			Aliases: []string{"test.copy"},
			Inputs:  []string{stage.Wildcard},
			Outputs: []string{stage.Wildcard},
		},
	)
	store := artifact.NewMemStore()
	r := NewRunner(reg, store)

	chain, err := r.ResolveChain([]string{"test.upper", "test.copy"})
	require.NoError(t, err)

	sink := &recordSink{}
	doc := document.New("notes.txt", ".txt", artifact.FromText("hello"), document.WithTimingSink(sink))

	result, err := r.Run(context.Background(), []*document.Document{doc}, chain)
	require.NoError(t, err)
	require.Len(t, result.Documents, 1)
	require.NoError(t, result.Documents[0].Err)

	final := result.Documents[0].Final
	assert.Equal(t, "HELLO", final.OutputText())
	assert.Equal(t, "notes.txt|test.upper|test.copy", final.Key)
	assert.Equal(t, ".txt", final.Ext)

	// One record per position.
	assert.Len(t, sink.records, 2)
	assert.Equal(t, map[string]int{timing.OutcomeGenerated: 2}, sink.outcomes())
}

func TestRunnerSecondRunIsCached(t *testing.T) {
	reg := testRegistry(t, stage.Spec{
		Aliases: []string{"test.upper"},
		Inputs:  []string{stage.Wildcard},
		Outputs: []string{stage.Wildcard},
		New:     func() stage.Processor { return upper{} },
	})
	store := artifact.NewMemStore()
	r := NewRunner(reg, store)
	chain, err := r.ResolveChain([]string{"test.upper"})
	require.NoError(t, err)

	sink := &recordSink{}
	newDoc := func() *document.Document {
		return document.New("a.txt", ".txt", artifact.FromText("x"), document.WithTimingSink(sink))
	}

	_, err = r.Run(context.Background(), []*document.Document{newDoc()}, chain)
	require.NoError(t, err)
	_, err = r.Run(context.Background(), []*document.Document{newDoc()}, chain)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		timing.OutcomeGenerated: 1,
		timing.OutcomeCached:    1,
	}, sink.outcomes())
}

func TestRunnerConcurrentSameContent(t *testing.T) {
	// Many documents with identical content and formats share one
	// fingerprint; the gate lock must ensure a single transformation.
	proc := &countingUpper{}
	reg := testRegistry(t, stage.Spec{
		Aliases: []string{"test.upper"},
		Inputs:  []string{stage.Wildcard},
		Outputs: []string{stage.Wildcard},
		New:     func() stage.Processor { return proc },
	})
	store := artifact.NewMemStore()
	r := NewRunner(reg, store, WithWorkers(8))
	chain, err := r.ResolveChain([]string{"test.upper"})
	require.NoError(t, err)

	docs := make([]*document.Document, 16)
	for i := range docs {
		docs[i] = document.New("same.txt", ".txt", artifact.FromText("shared"))
	}

	result, err := r.Run(context.Background(), docs, chain)
	require.NoError(t, err)
	for _, d := range result.Documents {
		require.NoError(t, d.Err)
		assert.Equal(t, "SHARED", d.Final.OutputText())
	}

	proc.mu.Lock()
	defer proc.mu.Unlock()
	assert.Equal(t, 1, proc.calls)
}

func TestRunnerDocumentFailureIsIsolated(t *testing.T) {
	reg := testRegistry(t, stage.Spec{
		Aliases: []string{"test.md"},
		Inputs:  []string{".md"},
		Outputs: []string{".html"},
		New:     func() stage.Processor { return upper{} },
	})
	store := artifact.NewMemStore()
	r := NewRunner(reg, store)
	chain, err := r.ResolveChain([]string{"test.md"})
	require.NoError(t, err)

	good := document.New("a.md", ".md", artifact.FromText("x"))
	bad := document.New("b.py", ".py", artifact.FromText("y"))

	result, err := r.Run(context.Background(), []*document.Document{good, bad}, chain)
	require.Error(t, err)
	require.Len(t, result.Documents, 2)
	assert.NoError(t, result.Documents[0].Err)
	assert.ErrorIs(t, result.Documents[1].Err, stage.ErrUnsupportedInput)
}
