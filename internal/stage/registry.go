package stage

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps stage aliases to specs. Style ambiguity is detected here,
// at registration time, so a misauthored stage never reaches an
// invocation.
type Registry struct {
	mu      sync.RWMutex
	byAlias map[string]Spec
	names   []string
}

// NewRegistry creates an empty stage registry.
func NewRegistry() *Registry {
	return &Registry{byAlias: make(map[string]Spec)}
}

// Register adds a spec under all of its aliases. Fails on invalid specs,
// duplicate aliases, and processors implementing more than one style.
func (r *Registry) Register(spec Spec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	if p := spec.newProcessor(); p != nil {
		if _, err := StyleOf(p); err != nil {
			return fmt.Errorf("stage %s: %w", spec.Name(), err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, alias := range spec.Aliases {
		if alias == "" {
			return fmt.Errorf("stage %s declares an empty alias", spec.Name())
		}
		if existing, ok := r.byAlias[alias]; ok {
			return fmt.Errorf("alias %q already registered by stage %s", alias, existing.Name())
		}
	}
	for _, alias := range spec.Aliases {
		r.byAlias[alias] = spec
	}
	r.names = append(r.names, spec.Name())
	return nil
}

// Get looks a spec up by any of its aliases.
func (r *Registry) Get(alias string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.byAlias[alias]
	return spec, ok
}

// Names returns the primary names of all registered stages, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.names))
	copy(out, r.names)
	sort.Strings(out)
	return out
}
