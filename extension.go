package vuet

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Extension is any value registered with Registry.Mixin. It takes part in a
// lifecycle event by implementing the matching interface below.
type Extension any

// Installer is notified every time an extension is added to the registry,
// including when another extension is added.
type Installer interface {
	Install(host Host, registry *Registry) error
}

// Initializer is notified when a Vuet instance using the registry binds.
type Initializer interface {
	Init(ctx context.Context, v *Vuet) error
}

// Destroyer is notified when a Vuet instance using the registry is destroyed.
type Destroyer interface {
	Destroy(ctx context.Context, v *Vuet) error
}

// MixinProvider builds a host specific binding for a store path.
type MixinProvider interface {
	Mixin(path string) any
}

// Plugin installs itself against a registry.
type Plugin interface {
	Install(host Host, registry *Registry, opt any) error
}

// PluginFunc adapts a function to Plugin.
type PluginFunc func(host Host, registry *Registry, opt any) error

// Install implements Plugin.
func (fn PluginFunc) Install(host Host, registry *Registry, opt any) error {
	if fn == nil {
		return nil
	}
	return fn(host, registry, opt)
}

// Registry holds named extensions in registration order. Create it, bind the
// host and register extensions before any Vuet instance using it calls Init.
type Registry struct {
	mu         sync.RWMutex
	host       Host
	names      []string
	extensions map[string]Extension
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{extensions: map[string]Extension{}}
}

// BindHost records the host handed to installers.
func (r *Registry) BindHost(host Host) *Registry {
	r.mu.Lock()
	r.host = host
	r.mu.Unlock()
	return r
}

// Host returns the bound host, nil when none was bound.
func (r *Registry) Host() Host {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.host
}

// Mixin registers ext under name. A name that is already taken is left alone
// and nil is returned. Otherwise every Installer in the registry, the new one
// included, is notified in registration order; the first error stops the
// broadcast and is returned as is.
func (r *Registry) Mixin(name string, ext Extension) error {
	if name == "" {
		return fmt.Errorf("vuet: extension name must not be empty")
	}
	if ext == nil {
		return fmt.Errorf("vuet: extension %q is nil", name)
	}

	r.mu.Lock()
	if r.extensions == nil {
		r.extensions = map[string]Extension{}
	}
	if _, exists := r.extensions[name]; exists {
		r.mu.Unlock()
		return nil
	}
	r.extensions[name] = ext
	r.names = append(r.names, name)
	r.mu.Unlock()

	host := r.Host()
	for _, current := range r.ordered() {
		if installer, ok := current.(Installer); ok {
			if err := installer.Install(host, r); err != nil {
				return err
			}
		}
	}
	return nil
}

// Use runs plugin against the registry.
func (r *Registry) Use(plugin Plugin, opt any) error {
	if plugin == nil {
		return nil
	}
	return plugin.Install(r.Host(), r, opt)
}

// Extension returns the extension registered under name.
func (r *Registry) Extension(name string) (Extension, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ext, ok := r.extensions[name]
	return ext, ok
}

// Names returns extension names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.names...)
}

// MapMixins asks each named extension for a binding per listed path.
// Extensions are visited in name order, paths in the order given.
func (r *Registry) MapMixins(targets map[string][]string) ([]any, error) {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []any
	for _, name := range names {
		ext, ok := r.Extension(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrExtensionNotFound, name)
		}
		provider, ok := ext.(MixinProvider)
		if !ok {
			return nil, fmt.Errorf("vuet: extension %q does not provide mixins", name)
		}
		for _, path := range targets[name] {
			out = append(out, provider.Mixin(path))
		}
	}
	return out, nil
}

func (r *Registry) ordered() []Extension {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Extension, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.extensions[name])
	}
	return out
}

func (r *Registry) broadcastInit(ctx context.Context, v *Vuet) error {
	for _, ext := range r.ordered() {
		if initializer, ok := ext.(Initializer); ok {
			if err := initializer.Init(ctx, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Registry) broadcastDestroy(ctx context.Context, v *Vuet) error {
	for _, ext := range r.ordered() {
		if destroyer, ok := ext.(Destroyer); ok {
			if err := destroyer.Destroy(ctx, v); err != nil {
				return err
			}
		}
	}
	return nil
}
