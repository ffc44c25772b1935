package outputs

import (
	"sort"
	"strings"

	"github.com/flaviut/kibot/pkg/errors"
)

// Registry is the catalog of configured outputs for one configuration.
// Outputs are registered once, at configuration-load time; ordering by
// registration is preserved for priority tie-breaking and group listings.
type Registry struct {
	byName  map[string]*Output
	ordered []*Output
}

// NewRegistry creates an empty output registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Output)}
}

// Register adds an output. Names must be unique across outputs.
func (r *Registry) Register(out *Output) error {
	if out.Name == "" {
		return errors.New(errors.ErrInvalidInput, "output name cannot be empty")
	}
	if _, exists := r.byName[out.Name]; exists {
		return errors.Newf(errors.ErrAlreadyExists, "output `%s` is already defined", out.Name)
	}
	out.seq = len(r.ordered)
	r.byName[out.Name] = out
	r.ordered = append(r.ordered, out)
	return nil
}

// Get retrieves an output by name.
func (r *Registry) Get(name string) (*Output, bool) {
	out, ok := r.byName[name]
	return out, ok
}

// List returns all outputs in registration order.
func (r *Registry) List() []*Output {
	out := make([]*Output, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Groups maps each group name to its member output names, in registration
// order. A group name may be used anywhere an output name is accepted.
func (r *Registry) Groups() map[string][]string {
	groups := make(map[string][]string)
	for _, out := range r.ordered {
		for _, g := range out.Groups {
			groups[g] = append(groups[g], out.Name)
		}
	}
	return groups
}

// SolveGroups expands group names in targets to their member outputs,
// preserving order and dropping duplicates. Names that are neither an output
// nor a group are reported together in a single error.
func (r *Registry) SolveGroups(targets []string) ([]string, error) {
	groups := r.Groups()
	var solved []string
	var unknown []string
	seen := make(map[string]bool)

	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			solved = append(solved, name)
		}
	}

	for _, tgt := range targets {
		if _, ok := r.byName[tgt]; ok {
			add(tgt)
			continue
		}
		if members, ok := groups[tgt]; ok {
			for _, m := range members {
				add(m)
			}
			continue
		}
		unknown = append(unknown, tgt)
	}
	if len(unknown) > 0 {
		return nil, errors.Newf(errors.ErrUnknownTarget, "unknown output/group: `%s`",
			strings.Join(unknown, "`, `"))
	}
	return solved, nil
}

// Select resolves the targets of a run into an ordered sequence of outputs.
//
// Empty targets selects every run-by-default output (or nothing when
// inverted). Group names are expanded first. With invert the complement of
// the run-by-default outputs is selected. With cliOrder the sequence keeps
// the order targets were given; otherwise registration order is used and,
// unless noPriority is set, the result is sorted by ascending priority
// (stable on ties).
func (r *Registry) Select(targets []string, invert, cliOrder, noPriority bool) ([]*Output, error) {
	if cliOrder && invert {
		return nil, errors.New(errors.ErrInvalidInput,
			"CLI order and invert options can't be used simultaneously")
	}

	var selected []*Output
	if len(targets) == 0 {
		if !invert {
			for _, out := range r.ordered {
				if out.RunByDefault {
					selected = append(selected, out)
				}
			}
		}
		// Inverting an empty selection skips everything
	} else {
		solved, err := r.SolveGroups(targets)
		if err != nil {
			return nil, err
		}
		if cliOrder {
			for _, name := range solved {
				selected = append(selected, r.byName[name])
			}
		} else {
			wanted := make(map[string]bool, len(solved))
			for _, name := range solved {
				wanted[name] = true
			}
			for _, out := range r.ordered {
				if invert {
					if !wanted[out.Name] && out.RunByDefault {
						selected = append(selected, out)
					}
				} else if wanted[out.Name] {
					selected = append(selected, out)
				}
			}
		}
	}

	if !cliOrder && !noPriority {
		sort.SliceStable(selected, func(i, j int) bool {
			return selected[i].Priority < selected[j].Priority
		})
	}
	return selected, nil
}
