package vuet

import (
	"sort"
	"sync"
)

// Store maps module paths to state.
//
// The first write to a path stores the given map as the entry; later writes
// merge shallowly into it. Entries are handed out by reference, so callers
// that mutate a returned map mutate the store.
type Store struct {
	mu      sync.RWMutex
	entries map[string]State
	binding Binding
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{entries: map[string]State{}}
}

// Get returns the entry for path, or a fresh empty State when unset.
func (s *Store) Get(path string) State {
	if state, ok := s.Lookup(path); ok {
		return state
	}
	return State{}
}

// Lookup returns the entry for path and whether it exists.
func (s *Store) Lookup(path string) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.entries[path]
	if !ok || state == nil {
		return nil, false
	}
	return state, true
}

// Set writes state at path and reports whether a new entry was created. An
// absent path takes state as its entry and the bound host is told about the
// new key; an existing entry receives state's fields, other fields are kept.
func (s *Store) Set(path string, state State) bool {
	s.mu.Lock()
	existing, ok := s.entries[path]
	if ok && existing != nil {
		for key, value := range state {
			existing[key] = value
		}
		s.mu.Unlock()
		return false
	}
	if state == nil {
		state = State{}
	}
	s.entries[path] = state
	binding := s.binding
	s.mu.Unlock()

	if binding != nil {
		binding.SetKey(path, state)
	}
	return true
}

// Put replaces the entry at path wholesale.
func (s *Store) Put(path string, state State) {
	if state == nil {
		state = State{}
	}
	s.mu.Lock()
	s.entries[path] = state
	binding := s.binding
	s.mu.Unlock()

	if binding != nil {
		binding.SetKey(path, state)
	}
}

// Paths returns the stored paths in sorted order.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.entries))
	for path := range s.entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Len returns the number of stored paths.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Copy returns a shallow copy of the entry at path taken under the store
// lock, or a fresh empty State when unset. Use it instead of Get when another
// goroutine may be writing the same path.
func (s *Store) Copy(path string) State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyState(s.entries[path])
}

// Snapshot returns a copy of the path table with each entry shallow copied.
func (s *Store) Snapshot() map[string]State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]State, len(s.entries))
	for path, state := range s.entries {
		out[path] = copyState(state)
	}
	return out
}

func (s *Store) bind(binding Binding) {
	s.mu.Lock()
	s.binding = binding
	s.mu.Unlock()
}

func (s *Store) clear() {
	s.mu.Lock()
	s.entries = map[string]State{}
	s.mu.Unlock()
}

func copyState(state State) State {
	out := make(State, len(state))
	for key, value := range state {
		out[key] = value
	}
	return out
}

func stateKeys(state State) []string {
	keys := make([]string, 0, len(state))
	for key := range state {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
