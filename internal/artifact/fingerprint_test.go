package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeFingerprintDeterministic(t *testing.T) {
	input := Data{{ID: "1", Content: "hello"}, {ID: "2", Content: "world"}}

	first, err := ComputeFingerprint(input, ".md", ".html", "test.render")
	require.NoError(t, err)
	assert.Len(t, first, 64) // sha256 hex

	for range 5 {
		fp, err := ComputeFingerprint(input, ".md", ".html", "test.render")
		require.NoError(t, err)
		assert.Equal(t, first, fp)
	}
}

func TestComputeFingerprintSensitivity(t *testing.T) {
	input := Data{{ID: "1", Content: "hello"}}
	base, err := ComputeFingerprint(input, ".md", ".html", "test.render")
	require.NoError(t, err)

	// Content change.
	fp, err := ComputeFingerprint(Data{{ID: "1", Content: "hello!"}}, ".md", ".html", "test.render")
	require.NoError(t, err)
	assert.NotEqual(t, base, fp)

	// Fragment order change.
	two := Data{{ID: "1", Content: "a"}, {ID: "2", Content: "b"}}
	swapped := Data{{ID: "2", Content: "b"}, {ID: "1", Content: "a"}}
	fpA, err := ComputeFingerprint(two, ".md", ".html", "test.render")
	require.NoError(t, err)
	fpB, err := ComputeFingerprint(swapped, ".md", ".html", "test.render")
	require.NoError(t, err)
	assert.NotEqual(t, fpA, fpB)

	// Output extension change only.
	fp, err = ComputeFingerprint(input, ".md", ".tex", "test.render")
	require.NoError(t, err)
	assert.NotEqual(t, base, fp)

	// Input extension change only.
	fp, err = ComputeFingerprint(input, ".markdown", ".html", "test.render")
	require.NoError(t, err)
	assert.NotEqual(t, base, fp)

	// Stage identity change only.
	fp, err = ComputeFingerprint(input, ".md", ".html", "test.other")
	require.NoError(t, err)
	assert.NotEqual(t, base, fp)
}

func TestComputeFingerprintRequiresResolvedState(t *testing.T) {
	input := FromText("x")
	_, err := ComputeFingerprint(input, ".md", "", "test.render")
	assert.Error(t, err)
	_, err = ComputeFingerprint(input, ".md", ".html", "")
	assert.Error(t, err)
}
