package stage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOutputExt(t *testing.T) {
	tests := []struct {
		name    string
		ext     string
		spec    Spec
		next    *Spec
		want    string
		wantErr error
	}{
		{
			name: "wildcard pass-through",
			ext:  ".py",
			spec: Spec{Aliases: []string{"t"}, Inputs: []string{Wildcard}, Outputs: []string{Wildcard}},
			want: ".py",
		},
		{
			name:    "unsupported input",
			ext:     ".py",
			spec:    Spec{Aliases: []string{"t"}, Inputs: []string{".md"}, Outputs: []string{".html"}},
			wantErr: ErrUnsupportedInput,
		},
		{
			name: "first producible format accepted downstream wins",
			ext:  ".md",
			spec: Spec{Aliases: []string{"t"}, Inputs: []string{".md"}, Outputs: []string{".html", ".tex"}},
			next: &Spec{Aliases: []string{"n"}, Inputs: []string{".tex", ".txt"}},
			want: ".tex",
		},
		{
			name: "producer order beats consumer order",
			ext:  ".md",
			spec: Spec{Aliases: []string{"t"}, Inputs: []string{".md"}, Outputs: []string{".html", ".tex"}},
			next: &Spec{Aliases: []string{"n"}, Inputs: []string{".tex", ".html"}},
			want: ".html",
		},
		{
			name:    "no shared format",
			ext:     ".md",
			spec:    Spec{Aliases: []string{"t"}, Inputs: []string{".md"}, Outputs: []string{".html"}},
			next:    &Spec{Aliases: []string{"n"}, Inputs: []string{".tex"}},
			wantErr: ErrNoCompatibleFormat,
		},
		{
			name: "next accepts anything, first output wins",
			ext:  ".md",
			spec: Spec{Aliases: []string{"t"}, Inputs: []string{".md"}, Outputs: []string{".html", ".tex"}},
			next: &Spec{Aliases: []string{"n"}, Inputs: []string{Wildcard}},
			want: ".html",
		},
		{
			name: "no next stage, first output wins",
			ext:  ".md",
			spec: Spec{Aliases: []string{"t"}, Inputs: []string{".md"}, Outputs: []string{".tex", ".html"}},
			want: ".tex",
		},
		{
			name: "wildcard output ignores next stage",
			ext:  ".md",
			spec: Spec{Aliases: []string{"t"}, Inputs: []string{Wildcard}, Outputs: []string{Wildcard}},
			next: &Spec{Aliases: []string{"n"}, Inputs: []string{".tex"}},
			want: ".md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveOutputExt(tt.ext, tt.spec, tt.next)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveOutputExtDeterministic(t *testing.T) {
	spec := Spec{Aliases: []string{"t"}, Inputs: []string{".md"}, Outputs: []string{".html", ".tex"}}
	next := &Spec{Aliases: []string{"n"}, Inputs: []string{".tex", ".txt"}}

	first, err := ResolveOutputExt(".md", spec, next)
	require.NoError(t, err)
	for range 10 {
		got, err := ResolveOutputExt(".md", spec, next)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}
