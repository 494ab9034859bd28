package stage

import (
	"fmt"
	"slices"
	"strings"
)

// ResolveOutputExt computes the stage's resolved output extension given
// the upstream format and, optionally, the next stage's spec.
//
// Rules, in order:
//  1. The upstream format must be accepted (or Inputs contains the
//     wildcard), otherwise ErrUnsupportedInput.
//  2. A wildcard in Outputs means pass-through: the output format equals
//     the input format.
//  3. With a next stage that does not accept any format: the first entry
//     of Outputs, in declared order, that the next stage accepts. None
//     matching is ErrNoCompatibleFormat.
//  4. Otherwise the first declared output.
//
// The result is always concrete (never the wildcard).
func ResolveOutputExt(ext string, spec Spec, next *Spec) (string, error) {
	if !spec.Accepts(ext) {
		return "", fmt.Errorf("%w: stage %s got %q, accepts %s",
			ErrUnsupportedInput, spec.Name(), ext, strings.Join(spec.Inputs, ", "))
	}

	if slices.Contains(spec.Outputs, Wildcard) {
		return ext, nil
	}

	if next != nil && !slices.Contains(next.Inputs, Wildcard) {
		for _, out := range spec.Outputs {
			if slices.Contains(next.Inputs, out) {
				return out, nil
			}
		}
		return "", fmt.Errorf("%w: stage %s produces %s, next stage %s accepts %s",
			ErrNoCompatibleFormat, spec.Name(), strings.Join(spec.Outputs, ", "),
			next.Name(), strings.Join(next.Inputs, ", "))
	}

	return spec.Outputs[0], nil
}
