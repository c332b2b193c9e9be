package vuet

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var errCallName = errors.New("vuet: call requires a function name")

// Function is a helper callable from rule expressions.
type Function func(args ...any) (any, error)

// FunctionRegistry maps case-insensitive names to rule helpers. Evaluators
// copy it when configured, so later registrations do not reach them.
type FunctionRegistry struct {
	mu    sync.RWMutex
	table map[string]Function
}

// NewFunctionRegistry returns an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{table: map[string]Function{}}
}

// Register adds fn under the lower-cased name. Empty names, nil functions and
// names already taken are rejected.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	key := strings.ToLower(strings.TrimSpace(name))
	switch {
	case key == "":
		return fmt.Errorf("vuet: function name must not be empty")
	case fn == nil:
		return fmt.Errorf("vuet: function %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.table == nil {
		r.table = map[string]Function{}
	}
	if _, taken := r.table[key]; taken {
		return fmt.Errorf("vuet: function %q already registered", name)
	}
	r.table[key] = fn
	return nil
}

// Clone copies the registry. Cloning nil yields nil.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := NewFunctionRegistry()
	for key, fn := range r.table {
		out.table[key] = fn
	}
	return out
}

// Call runs the helper registered under name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("vuet: no functions registered")
	}
	r.mu.RLock()
	fn, ok := r.table[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("vuet: function %q not registered", name)
	}
	return fn(args...)
}

// Names lists the registered names, sorted.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	names := make([]string, 0, len(r.table))
	for key := range r.table {
		names = append(names, key)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

func (r *FunctionRegistry) bound(name string) func(args ...any) (any, error) {
	return func(args ...any) (any, error) {
		return r.Call(name, args...)
	}
}

// splitCall separates the helper name from the arguments of call(name, ...).
func splitCall(args []any) (string, []any, error) {
	if len(args) == 0 {
		return "", nil, errCallName
	}
	name, ok := args[0].(string)
	if !ok || name == "" {
		return "", nil, errCallName
	}
	return name, args[1:], nil
}
