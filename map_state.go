package vuet

// StateAccessor binds a single store path for components that read and write
// it directly.
type StateAccessor struct {
	path  string
	store *Store
}

// Path returns the bound store path.
func (a StateAccessor) Path() string {
	return a.path
}

// Get returns the stored state, or an empty State when unset.
func (a StateAccessor) Get() State {
	return a.store.Get(a.path)
}

// Set replaces the stored state wholesale.
func (a StateAccessor) Set(state State) {
	a.store.Put(a.path, state)
}

// MapState returns an accessor per binding name. Each value is the store path
// the name is bound to.
func (v *Vuet) MapState(bindings map[string]string) map[string]StateAccessor {
	out := make(map[string]StateAccessor, len(bindings))
	for name, path := range bindings {
		out[name] = StateAccessor{path: path, store: v.store}
	}
	return out
}
