// Package reactive is an in-process vuet.Host that fans store key additions
// out to subscribers.
package reactive

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	vuet "github.com/goliatone/go-vuet"
)

// ChangeKind names what happened to an observed store.
type ChangeKind string

const (
	// KeyAdded: a new path was added to the store.
	KeyAdded ChangeKind = "key_added"
	// Destroyed: the observation was released.
	Destroyed ChangeKind = "destroyed"
)

// Change is delivered to subscribers.
type Change struct {
	Kind  ChangeKind
	Path  string
	State vuet.State
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the diagnostic logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Host) {
		h.logger = logger
	}
}

// Host observes any number of stores. Subscribers run synchronously, in
// subscription order, on the goroutine that changed the store.
type Host struct {
	mu     sync.RWMutex
	subs   map[int]func(Change)
	next   int
	active int
	logger zerolog.Logger
}

var _ vuet.Host = (*Host)(nil)

// New returns a host with no subscribers.
func New(opts ...Option) *Host {
	h := &Host{
		subs:   map[int]func(Change){},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Subscribe registers fn and returns a function removing it.
func (h *Host) Subscribe(fn func(Change)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// Active returns the number of live bindings.
func (h *Host) Active() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.active
}

// Observe implements vuet.Host. Paths already in the store are announced
// before Observe returns.
func (h *Host) Observe(store *vuet.Store) (vuet.Binding, error) {
	h.mu.Lock()
	h.active++
	h.mu.Unlock()

	b := &binding{host: h}
	for _, path := range store.Paths() {
		state, _ := store.Lookup(path)
		b.SetKey(path, state)
	}
	h.logger.Debug().Int("paths", store.Len()).Msg("reactive: store observed")
	return b, nil
}

func (h *Host) publish(change Change) {
	h.mu.RLock()
	ids := make([]int, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, h.subs[id])
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(change)
	}
}

type binding struct {
	host      *Host
	mu        sync.Mutex
	destroyed bool
}

func (b *binding) SetKey(path string, state vuet.State) {
	b.mu.Lock()
	destroyed := b.destroyed
	b.mu.Unlock()
	if destroyed {
		b.host.logger.Debug().Str("path", path).Msg("reactive: key added after destroy ignored")
		return
	}
	b.host.publish(Change{Kind: KeyAdded, Path: path, State: state})
}

func (b *binding) Destroy() error {
	b.mu.Lock()
	if b.destroyed {
		b.mu.Unlock()
		return nil
	}
	b.destroyed = true
	b.mu.Unlock()

	b.host.mu.Lock()
	b.host.active--
	b.host.mu.Unlock()
	b.host.publish(Change{Kind: Destroyed})
	return nil
}
