package vuet

import (
	"sync"

	"github.com/rs/zerolog"
)

type registeredModule struct {
	path string
	leaf *Leaf
}

// discover walks root depth first, visiting names in sorted order, and
// returns every leaf with its joined path. The whole tree is validated before
// anything is returned, so a rejected declaration registers nothing.
func discover(root Namespace, separator string, logger zerolog.Logger) ([]registeredModule, error) {
	var found []registeredModule
	seen := map[string]struct{}{}

	var walk func(prefix []string, ns Namespace) error
	walk = func(prefix []string, ns Namespace) error {
		for _, name := range ns.Names() {
			child := ns[name]
			if child == nil {
				continue
			}
			segments := append(append(make([]string, 0, len(prefix)+1), prefix...), name)
			path := JoinPath(separator, segments...)
			if err := validateSegment(separator, name); err != nil {
				return &RegistrationError{Path: path, Err: err}
			}

			switch node := child.(type) {
			case *Leaf:
				if node == nil {
					continue
				}
				if node.Data == nil {
					logger.Debug().Str("path", path).Msg("vuet: leaf without data skipped")
					continue
				}
				if _, dup := seen[path]; dup {
					return &RegistrationError{Path: path, Err: ErrDuplicatePath}
				}
				seen[path] = struct{}{}
				found = append(found, registeredModule{path: path, leaf: node})
			case Namespace:
				if isReserved(name) {
					logger.Debug().Str("path", path).Msg("vuet: namespace under reserved name skipped")
					continue
				}
				if err := walk(segments, node); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := walk(nil, root); err != nil {
		return nil, err
	}
	return found, nil
}

// moduleTable is the path → leaf lookup filled once by Init.
type moduleTable struct {
	mu      sync.RWMutex
	modules map[string]*Leaf
	order   []string
}

func (t *moduleTable) add(path string, leaf *Leaf) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.modules == nil {
		t.modules = map[string]*Leaf{}
	}
	if _, exists := t.modules[path]; !exists {
		t.order = append(t.order, path)
	}
	t.modules[path] = leaf
}

func (t *moduleTable) get(path string) (*Leaf, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	leaf, ok := t.modules[path]
	return leaf, ok
}

func (t *moduleTable) paths() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.order...)
}
