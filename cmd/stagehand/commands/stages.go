package commands

import (
	"fmt"
	"strings"
)

// StagesCmd lists registered stages.
type StagesCmd struct{}

func (s *StagesCmd) Run(_ *Global, _ *CLI) error {
	reg, err := BuiltinRegistry()
	if err != nil {
		return err
	}
	for _, name := range reg.Names() {
		spec, _ := reg.Get(name)
		fmt.Printf("%-26s %s -> %s  (aliases: %s)\n",
			name,
			strings.Join(spec.Inputs, ","),
			strings.Join(spec.Outputs, ","),
			strings.Join(spec.Aliases[1:], ", "))
	}
	return nil
}
