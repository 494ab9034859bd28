package stages

import "git.home.luguber.info/inful/stagehand/internal/stage"

// CopySpec is the pass-through stage: it implements no process style, so
// the dispatcher's identity default applies and the output fragments equal
// the input fragments.
func CopySpec() stage.Spec {
	return stage.Spec{
		Aliases: []string{"stagehand.copy", "copy"},
		Inputs:  []string{stage.Wildcard},
		Outputs: []string{stage.Wildcard},
	}
}

// RegisterBuiltins registers all built-in stages into the registry.
func RegisterBuiltins(r *stage.Registry) error {
	for _, spec := range []stage.Spec{
		MarkdownSpec(),
		SplitSpec(),
		NormalizeSpec(),
		HTMLTextSpec(),
		CopySpec(),
	} {
		if err := r.Register(spec); err != nil {
			return err
		}
	}
	return nil
}
