// Package stage implements the handler lifecycle: extension negotiation
// with neighboring stages, process style dispatch, and the fingerprint
// gated cache decision.
package stage

import (
	"fmt"
	"slices"
)

// Wildcard is the extension tag meaning "any format" in accepted inputs
// and "pass the input format through" in produced outputs.
const Wildcard = ".*"

// Spec statically describes a concrete stage type: its identity aliases,
// the formats it accepts and produces, and a factory for processor
// instances. Output order is load-bearing: stage authors list preferred
// formats first and negotiation picks the first match.
type Spec struct {
	// Aliases identify the stage type. Namespaced, unique across a
	// registry; the first alias is the stage name used in fingerprints,
	// logs and timing records.
	Aliases []string

	// Inputs are the accepted input extensions, may contain Wildcard.
	Inputs []string

	// Outputs are the producible output extensions in preference order,
	// may contain Wildcard (pass-through).
	Outputs []string

	// New creates a processor instance for one invocation. May be nil for
	// pure pass-through stages (identity style).
	New func() Processor
}

// Name returns the primary alias.
func (s Spec) Name() string {
	if len(s.Aliases) == 0 {
		return ""
	}
	return s.Aliases[0]
}

// Accepts reports whether the stage accepts the given input extension.
func (s Spec) Accepts(ext string) bool {
	return slices.Contains(s.Inputs, ext) || slices.Contains(s.Inputs, Wildcard)
}

// Validate checks the static shape of the spec.
func (s Spec) Validate() error {
	if len(s.Aliases) == 0 || s.Aliases[0] == "" {
		return fmt.Errorf("stage spec requires at least one alias")
	}
	if len(s.Inputs) == 0 {
		return fmt.Errorf("stage %s declares no input extensions", s.Name())
	}
	if len(s.Outputs) == 0 {
		return fmt.Errorf("stage %s declares no output extensions", s.Name())
	}
	return nil
}

// newProcessor instantiates the stage's processor, or nil for identity.
func (s Spec) newProcessor() Processor {
	if s.New == nil {
		return nil
	}
	return s.New()
}
