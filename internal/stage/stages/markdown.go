// Package stages provides the built-in stage implementations shipped with
// stagehand.
package stages

import (
	"bytes"
	"context"
	"fmt"

	"github.com/inful/mdfp"
	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/stagehand/internal/stage"
)

// MarkdownSpec converts markdown input into HTML. Text style.
func MarkdownSpec() stage.Spec {
	return stage.Spec{
		Aliases: []string{"stagehand.markdown", "md"},
		Inputs:  []string{".md", ".markdown"},
		Outputs: []string{".html"},
		New:     func() stage.Processor { return &Markdown{} },
	}
}

// Markdown renders CommonMark to HTML and stamps the source content
// fingerprint as a trailing comment, so downstream tooling can correlate
// rendered pages with their markdown source.
type Markdown struct{}

// ProcessText renders the markdown body.
func (m *Markdown) ProcessText(_ context.Context, input string) (string, error) {
	md := goldmark.New()
	var buf bytes.Buffer
	if err := md.Convert([]byte(input), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	fp := mdfp.CalculateFingerprintFromParts("", input)
	fmt.Fprintf(&buf, "<!-- %s: %s -->\n", mdfp.FingerprintField, fp)
	return buf.String(), nil
}
