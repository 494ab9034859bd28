package commands

import (
	"fmt"
	"os"
)

// InitCmd writes a starter configuration file.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

const defaultConfig = `# stagehand configuration
logging:
  level: info
  format: text

store:
  backend: fs # fs or sqlite
  path: .stagehand

timing:
  # file: timing.jsonl
  nats:
    enabled: false
    url: nats://localhost:4222
    subject: stagehand.timing

pipeline:
  chain: [normalize, md]
  workers: 4

source:
  dir: ./docs
  # git: ./some-repo

watch:
  debounce: 2s
  prune_interval: 1h
  prune_max_age: 720h

metrics:
  enabled: false
  listen: ":9100"
`

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	if _, err := os.Stat(root.Config); err == nil && !i.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", root.Config)
	}
	if err := os.WriteFile(root.Config, []byte(defaultConfig), 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("Wrote %s\n", root.Config)
	return nil
}
