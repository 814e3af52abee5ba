package swarm

import (
	"github.com/BaSui01/swarmflow/types"
)

// Registry holds the session's actor set. Names are unique; registration
// order is preserved for selectors that iterate the full set.
type Registry struct {
	actors map[string]*Actor
	order  []string
}

// NewRegistry builds a registry from the given actors. Empty sets and
// duplicate names are validation errors.
func NewRegistry(actors ...*Actor) (*Registry, error) {
	if len(actors) == 0 {
		return nil, types.NewError(types.ErrValidation, "actor set must not be empty")
	}
	r := &Registry{actors: make(map[string]*Actor, len(actors))}
	for _, a := range actors {
		if a == nil {
			return nil, types.NewError(types.ErrValidation, "actor must not be nil")
		}
		if a.Name() == "" {
			return nil, types.NewError(types.ErrValidation, "actor name must not be empty")
		}
		if _, dup := r.actors[a.Name()]; dup {
			return nil, types.NewErrorf(types.ErrValidation, "duplicate actor name %q", a.Name())
		}
		r.actors[a.Name()] = a
		r.order = append(r.order, a.Name())
	}
	return r, nil
}

// Get looks up an actor by name.
func (r *Registry) Get(name string) (*Actor, bool) {
	a, ok := r.actors[name]
	return a, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.actors[name]
	return ok
}

// Names returns actor names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Actors returns the actors in registration order.
func (r *Registry) Actors() []*Actor {
	out := make([]*Actor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.actors[name])
	}
	return out
}

// Len returns the number of registered actors.
func (r *Registry) Len() int {
	return len(r.order)
}
