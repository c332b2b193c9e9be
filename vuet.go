package vuet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-vuet/pkg/activity"
)

// Vuet owns a store, its registered modules and the fetch hook chains.
type Vuet struct {
	cfg     config
	store   *Store
	modules moduleTable
	hooks   hookChain
	emitter *activity.Emitter

	mu        sync.Mutex
	host      Host
	binding   Binding
	destroyed bool
}

// New constructs an unbound instance. Invalid options are reported on the
// diagnostic logger and replaced with defaults; construction never fails.
func New(opts ...Option) *Vuet {
	cfg := applyOptions(opts)
	return &Vuet{
		cfg:     cfg,
		store:   NewStore(),
		emitter: activity.NewEmitter(cfg.activity, cfg.activityCfg),
	}
}

// BeforeEach appends a hook run before every module fetch.
func (v *Vuet) BeforeEach(hook BeforeHook) *Vuet {
	v.hooks.addBefore(hook)
	return v
}

// AfterEach appends a hook run after every module fetch.
func (v *Vuet) AfterEach(hook AfterHook) *Vuet {
	v.hooks.addAfter(hook)
	return v
}

// Init binds v to host, registers every leaf of the module tree, resets its
// state and notifies registry extensions. A nil host, an instance that is
// already bound, or one that was destroyed makes Init a no-op. A rejected
// declaration registers nothing and leaves v unbound.
func (v *Vuet) Init(ctx context.Context, host Host) error {
	if host == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	v.mu.Lock()
	if v.host != nil || v.destroyed {
		v.mu.Unlock()
		return nil
	}
	modules, err := discover(v.cfg.modules, v.cfg.pathJoin, v.cfg.logger)
	if err != nil {
		v.mu.Unlock()
		v.cfg.logger.Error().Err(err).Msg("vuet: module registration failed")
		return err
	}
	binding, err := host.Observe(v.store)
	if err != nil {
		v.mu.Unlock()
		return fmt.Errorf("vuet: observe store: %w", err)
	}
	if binding == nil {
		binding = nopBinding{}
	}
	v.host = host
	v.binding = binding
	v.mu.Unlock()

	v.store.bind(binding)
	for _, m := range modules {
		v.modules.add(m.path, m.leaf)
		v.reset(ctx, m.path)
	}
	v.cfg.logger.Debug().Int("modules", len(modules)).Msg("vuet: bound")

	return v.cfg.registry.broadcastInit(ctx, v)
}

// Destroy releases the host binding, notifies registry extensions and drops
// every store entry. Every step runs even when an earlier one fails; the
// errors are joined. Calling it again is a no-op.
func (v *Vuet) Destroy(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	v.mu.Lock()
	if v.destroyed {
		v.mu.Unlock()
		return nil
	}
	v.destroyed = true
	binding := v.binding
	v.binding = nil
	v.mu.Unlock()

	v.store.bind(nil)
	var errs []error
	if binding != nil {
		if err := binding.Destroy(); err != nil {
			errs = append(errs, fmt.Errorf("vuet: destroy binding: %w", err))
		}
	}
	if err := v.cfg.registry.broadcastDestroy(ctx, v); err != nil {
		errs = append(errs, err)
	}
	v.store.clear()
	return errors.Join(errs...)
}

// GetState returns the stored state for path, or a fresh empty State. The map
// is the live entry: reading it while another goroutine sets or fetches the
// same path is a data race, so concurrent readers should use Store().Copy.
func (v *Vuet) GetState(path string) State {
	return v.store.Get(path)
}

// SetState stores state at an absent path or merges its fields into the
// existing entry.
func (v *Vuet) SetState(path string, state State) *Vuet {
	v.setState(context.Background(), path, state)
	return v
}

// Reset restores path to the base defaults overlaid with the module defaults.
// The result is written with SetState, so fields absent from both defaults
// survive a reset.
func (v *Vuet) Reset(path string) *Vuet {
	v.reset(context.Background(), path)
	return v
}

// Store exposes the underlying store.
func (v *Vuet) Store() *Store {
	return v.store
}

// Registry returns the extension registry the instance notifies.
func (v *Vuet) Registry() *Registry {
	return v.cfg.registry
}

// PathJoin returns the configured path separator.
func (v *Vuet) PathJoin() string {
	return v.cfg.pathJoin
}

// Paths returns the registered module paths in registration order.
func (v *Vuet) Paths() []string {
	return v.modules.paths()
}

// Module returns the leaf registered at path.
func (v *Vuet) Module(path string) (*Leaf, bool) {
	return v.modules.get(path)
}

// Bound reports whether Init has bound the instance to a host.
func (v *Vuet) Bound() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.host != nil
}

func (v *Vuet) setState(ctx context.Context, path string, state State) {
	created := v.store.Set(path, state)
	input := activity.StoreEventInput{Path: path, Fields: stateKeys(state)}
	if created {
		v.emit(ctx, activity.BuildStateCreatedEvent(input))
		return
	}
	v.emit(ctx, activity.BuildStateMergedEvent(input))
}

func (v *Vuet) reset(ctx context.Context, path string) {
	state := v.cfg.data()
	if state == nil {
		state = State{}
	}
	if leaf, ok := v.modules.get(path); ok && leaf.Data != nil {
		for key, value := range leaf.Data(path) {
			state[key] = value
		}
	}
	v.setState(ctx, path, state)
	v.emit(ctx, activity.BuildStateResetEvent(activity.StoreEventInput{
		Path:   path,
		Fields: stateKeys(state),
	}))
}
