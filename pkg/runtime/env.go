package runtime

import "sort"

// Environment is the single flat variable scope of a running program.
// Loop bodies and branch arms read and write the same bindings, so values
// persist across frames.
type Environment struct {
	vars map[string]Value
}

func NewEnvironment() *Environment {
	return &Environment{vars: make(map[string]Value)}
}

// Get looks up a binding.
func (e *Environment) Get(name string) (Value, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Set creates or replaces a binding.
func (e *Environment) Set(name string, v Value) {
	e.vars[name] = v
}

// Len returns the number of bindings.
func (e *Environment) Len() int {
	return len(e.vars)
}

// Names returns the bound names in sorted order.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a deep copy of the bindings, safe to hand to another
// goroutine while execution continues.
func (e *Environment) Snapshot() map[string]Value {
	snap := make(map[string]Value, len(e.vars))
	for name, v := range e.vars {
		snap[name] = copyValue(v)
	}
	return snap
}
