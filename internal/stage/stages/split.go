package stages

import (
	"context"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/stagehand/internal/artifact"
	"git.home.luguber.info/inful/stagehand/internal/stage"
)

// SplitSpec splits a text unit into per-section fragments at top-level
// markdown headings. Text-to-dict style; format passes through.
func SplitSpec() stage.Spec {
	return stage.Spec{
		Aliases: []string{"stagehand.splitsections", "split"},
		Inputs:  []string{".md", ".markdown", ".txt"},
		Outputs: []string{stage.Wildcard},
		New:     func() stage.Processor { return &SectionSplit{} },
	}
}

// SectionSplit breaks a document at lines starting with "# ". Content
// before the first heading becomes the first fragment. Fragment IDs are
// 1-based ordinals, matching the single-fragment convention.
type SectionSplit struct{}

// ProcessTextToData splits the concatenated input into section fragments.
func (s *SectionSplit) ProcessTextToData(_ context.Context, input string) (artifact.Data, error) {
	lines := strings.SplitAfter(input, "\n")

	var out artifact.Data
	var section strings.Builder
	flush := func() {
		if section.Len() == 0 {
			return
		}
		out.Set(strconv.Itoa(len(out)+1), section.String())
		section.Reset()
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "# ") && section.Len() > 0 {
			flush()
		}
		section.WriteString(line)
	}
	flush()

	if len(out) == 0 {
		out = artifact.FromText(input)
	}
	return out, nil
}
