package vuet

// Host is the reactive layer a Vuet instance binds to in Init.
type Host interface {
	// Observe starts observing store and returns the live binding.
	Observe(store *Store) (Binding, error)
}

// Binding is a live observation of a store.
type Binding interface {
	// SetKey announces a path that was added to the store. Fields merged into
	// an existing entry are not announced.
	SetKey(path string, state State)
	// Destroy releases the observation.
	Destroy() error
}

// HostFunc adapts a function to Host.
type HostFunc func(store *Store) (Binding, error)

// Observe implements Host.
func (fn HostFunc) Observe(store *Store) (Binding, error) {
	return fn(store)
}

// NopHost binds without observing anything.
type NopHost struct{}

// Observe implements Host.
func (NopHost) Observe(*Store) (Binding, error) {
	return nopBinding{}, nil
}

type nopBinding struct{}

func (nopBinding) SetKey(string, State) {}

func (nopBinding) Destroy() error { return nil }
