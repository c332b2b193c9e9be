package vuet

import (
	"context"
	"sort"

	"github.com/goliatone/go-vuet/internal/clone"
)

// Reserved names are leaf capabilities. A Namespace stored under one of them
// is never walked.
const (
	ReservedData       = "data"
	ReservedFetch      = "fetch"
	ReservedRouteWatch = "routeWatch"
)

func isReserved(name string) bool {
	switch name {
	case ReservedData, ReservedFetch, ReservedRouteWatch:
		return true
	default:
		return false
	}
}

// State is the value stored for one module path.
type State = map[string]any

// Module is a node in a declaration tree: a Namespace or a *Leaf.
type Module interface {
	module()
}

// DataFunc returns the module defaults for path. It must return a fresh map.
type DataFunc func(path string) State

// FetchFunc loads partial state for a module. The returned state is merged into
// the store unless a hook short-circuits or the caller passed WithoutApply.
type FetchFunc func(ctx context.Context, fc *FetchContext) (State, error)

// Namespace groups child modules by name. It never becomes a store entry.
type Namespace map[string]Module

func (Namespace) module() {}

// Lookup returns the leaf reached by following segments from n.
func (n Namespace) Lookup(segments ...string) (*Leaf, bool) {
	if len(segments) == 0 {
		return nil, false
	}
	child, ok := n[segments[0]]
	if !ok || child == nil {
		return nil, false
	}
	if len(segments) == 1 {
		leaf, ok := child.(*Leaf)
		return leaf, ok && leaf != nil
	}
	ns, ok := child.(Namespace)
	if !ok {
		return nil, false
	}
	return ns.Lookup(segments[1:]...)
}

// Names returns the child names in sorted order.
func (n Namespace) Names() []string {
	names := make([]string, 0, len(n))
	for name := range n {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Leaf is a module registered in the store under its joined path. A leaf
// without Data is not a module and is skipped at registration.
type Leaf struct {
	Data  DataFunc
	Fetch FetchFunc
	// RouteWatch is carried for host integrations; the store never reads it.
	RouteWatch any
}

func (*Leaf) module() {}

// StaticData wraps a plain defaults object. Each call returns a deep copy.
func StaticData(defaults State) DataFunc {
	frozen := clone.Map(defaults)
	return func(string) State {
		out := clone.Map(frozen)
		if out == nil {
			return State{}
		}
		return out
	}
}
