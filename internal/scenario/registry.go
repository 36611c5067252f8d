package scenario

import (
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Constructor builds a fresh scenario instance. Each (scenario, seed) run
// gets its own instance because scenario state is mutated during Setup and
// tool handling.
type Constructor func() Scenario

// Registry resolves scenario IDs to constructors. It is built once at
// process start from a static constructor table and passed by reference;
// there is no global registry.
type Registry struct {
	constructors map[string]Constructor
}

// NewRegistry creates a registry from a static constructor table. The
// table is keyed by scenario ID; each constructor is invoked once here to
// verify the ID matches its config.
func NewRegistry(table map[string]Constructor) (*Registry, error) {
	r := &Registry{constructors: make(map[string]Constructor, len(table))}
	for id, ctor := range table {
		cfg := ctor().Config()
		if cfg.ID != id {
			return nil, fmt.Errorf("scenario constructor registered under %q reports id %q", id, cfg.ID)
		}
		r.constructors[id] = ctor
	}
	return r, nil
}

// Get builds a fresh instance of the scenario with the given ID.
func (r *Registry) Get(scenarioID string) (Scenario, error) {
	ctor, ok := r.constructors[scenarioID]
	if !ok {
		return nil, fmt.Errorf("unknown scenario: %q", scenarioID)
	}
	return ctor(), nil
}

// IDs returns all registered scenario IDs, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.constructors))
	for id := range r.constructors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// List returns metadata for all registered scenarios, optionally filtered
// by family, sorted by (family, id).
func (r *Registry) List(family string) []Info {
	var infos []Info
	for _, id := range r.IDs() {
		cfg := r.constructors[id]().Config()
		if family != "" && string(cfg.Family) != family {
			continue
		}
		infos = append(infos, Info{
			ID:          cfg.ID,
			Family:      cfg.Family,
			Name:        cfg.Name,
			Description: cfg.Description,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Family != infos[j].Family {
			return infos[i].Family < infos[j].Family
		}
		return infos[i].ID < infos[j].ID
	})
	return infos
}

// Resolve expands scenario ID patterns to concrete IDs. Patterns may be
// exact IDs, globs ("constraint/*", "**"), or the literal "all". The
// result is sorted and de-duplicated.
func (r *Registry) Resolve(patterns []string) ([]string, error) {
	all := r.IDs()
	for _, p := range patterns {
		if p == "all" {
			return all, nil
		}
	}

	seen := make(map[string]struct{})
	for _, p := range patterns {
		if _, ok := r.constructors[p]; ok {
			seen[p] = struct{}{}
			continue
		}
		for _, id := range all {
			ok, err := doublestar.Match(p, id)
			if err != nil {
				return nil, fmt.Errorf("invalid scenario pattern %q: %w", p, err)
			}
			if ok {
				seen[id] = struct{}{}
			}
		}
	}

	matched := make([]string, 0, len(seen))
	for id := range seen {
		matched = append(matched, id)
	}
	sort.Strings(matched)
	return matched, nil
}
