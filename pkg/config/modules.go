package config

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	vuet "github.com/goliatone/go-vuet"
)

// LoadModules decodes a module declaration tree.
//
// A mapping with a data key is a leaf: data becomes its static defaults and
// fetch names an entry of fetchers. Every other mapping is a namespace, and
// its fetch or routeWatch keys are ignored. A nil fetchers map leaves fetch
// names unbound, which is how inspection tools load declarations.
//
//	user:
//	  profile:
//	    data: {name: ""}
//	    fetch: profile
func LoadModules(r io.Reader, fetchers map[string]vuet.FetchFunc) (vuet.Namespace, error) {
	var raw map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return vuet.Namespace{}, nil
		}
		return nil, fmt.Errorf("parse modules: %w", err)
	}
	return buildNamespace(nil, raw, fetchers)
}

func buildNamespace(prefix []string, raw map[string]any, fetchers map[string]vuet.FetchFunc) (vuet.Namespace, error) {
	ns := make(vuet.Namespace, len(raw))
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := append(append([]string(nil), prefix...), name)
		value := raw[name]
		if value == nil || name == vuet.ReservedFetch || name == vuet.ReservedRouteWatch {
			continue
		}
		node, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("module %q must be a mapping, got %T", strings.Join(path, "."), value)
		}
		if isLeaf(node) {
			leaf, err := buildLeaf(path, node, fetchers)
			if err != nil {
				return nil, err
			}
			ns[name] = leaf
			continue
		}
		child, err := buildNamespace(path, node, fetchers)
		if err != nil {
			return nil, err
		}
		ns[name] = child
	}
	return ns, nil
}

func isLeaf(node map[string]any) bool {
	_, ok := node[vuet.ReservedData]
	return ok
}

func buildLeaf(path []string, node map[string]any, fetchers map[string]vuet.FetchFunc) (*vuet.Leaf, error) {
	label := strings.Join(path, ".")
	leaf := &vuet.Leaf{RouteWatch: node[vuet.ReservedRouteWatch]}

	switch data := node[vuet.ReservedData].(type) {
	case nil:
		leaf.Data = vuet.StaticData(nil)
	case map[string]any:
		leaf.Data = vuet.StaticData(data)
	default:
		return nil, fmt.Errorf("module %q: data must be a mapping, got %T", label, data)
	}

	switch fetch := node[vuet.ReservedFetch].(type) {
	case nil:
	case string:
		if fetchers == nil {
			break
		}
		fn, ok := fetchers[fetch]
		if !ok || fn == nil {
			return nil, fmt.Errorf("module %q: fetcher %q not provided", label, fetch)
		}
		leaf.Fetch = fn
	default:
		return nil, fmt.Errorf("module %q: fetch must name a fetcher, got %T", label, fetch)
	}
	return leaf, nil
}
