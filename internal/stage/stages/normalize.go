package stages

import (
	"context"
	"strings"

	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/stagehand/internal/artifact"
	"git.home.luguber.info/inful/stagehand/internal/stage"
)

// NormalizeSpec canonicalizes fragment content: NFC unicode normalization
// and LF line endings. Dict style; accepts and produces any format.
func NormalizeSpec() stage.Spec {
	return stage.Spec{
		Aliases: []string{"stagehand.normalize", "normalize"},
		Inputs:  []string{stage.Wildcard},
		Outputs: []string{stage.Wildcard},
		New:     func() stage.Processor { return &Normalize{} },
	}
}

// Normalize rewrites each fragment in place, preserving fragment IDs and
// order. Byte-identical canonical form is what makes fingerprints stable
// across platforms and editors.
type Normalize struct{}

// ProcessData normalizes every fragment.
func (n *Normalize) ProcessData(_ context.Context, input artifact.Data) (artifact.Data, error) {
	out := input.Clone()
	for i := range out {
		content := strings.ReplaceAll(out[i].Content, "\r\n", "\n")
		content = strings.ReplaceAll(content, "\r", "\n")
		out[i].Content = norm.NFC.String(content)
	}
	return out, nil
}
