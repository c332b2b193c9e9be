package vuet

import (
	"context"
	"sync"
)

// HookResult is the verdict of a single hook call: Continue or ShortCircuit.
type HookResult struct {
	stop     bool
	override State
}

// Continue lets the chain proceed to the next hook.
func Continue() HookResult {
	return HookResult{}
}

// ShortCircuit stops the chain. The fetch resolves with override when it is
// non-nil and with the fetch context state otherwise.
func ShortCircuit(override State) HookResult {
	return HookResult{stop: true, override: override}
}

// Stopped reports whether the hook short-circuited.
func (r HookResult) Stopped() bool {
	return r.stop
}

// Override returns the state the hook asked the fetch to resolve with.
func (r HookResult) Override() State {
	return r.override
}

func (r HookResult) resolve(fc *FetchContext) State {
	if r.override != nil {
		return r.override
	}
	return fc.State
}

// BeforeHook runs ahead of a module fetch function.
type BeforeHook func(ctx context.Context, fc *FetchContext) HookResult

// AfterHook runs once the module fetch function returned. err is nil and
// result holds the fetched state on success; on failure result is nil.
type AfterHook func(ctx context.Context, err error, fc *FetchContext, result State) HookResult

// hookChain holds the append-only before and after lists. Hooks run on a
// copy of the list so a hook may register further hooks.
type hookChain struct {
	mu     sync.RWMutex
	before []BeforeHook
	after  []AfterHook
}

func (c *hookChain) addBefore(hook BeforeHook) {
	if hook == nil {
		return
	}
	c.mu.Lock()
	c.before = append(c.before, hook)
	c.mu.Unlock()
}

func (c *hookChain) addAfter(hook AfterHook) {
	if hook == nil {
		return
	}
	c.mu.Lock()
	c.after = append(c.after, hook)
	c.mu.Unlock()
}

func (c *hookChain) runBefore(ctx context.Context, fc *FetchContext) HookResult {
	c.mu.RLock()
	hooks := append([]BeforeHook(nil), c.before...)
	c.mu.RUnlock()
	for _, hook := range hooks {
		if res := hook(ctx, fc); res.stop {
			return res
		}
	}
	return Continue()
}

func (c *hookChain) runAfter(ctx context.Context, err error, fc *FetchContext, result State) HookResult {
	c.mu.RLock()
	hooks := append([]AfterHook(nil), c.after...)
	c.mu.RUnlock()
	for _, hook := range hooks {
		if res := hook(ctx, err, fc, result); res.stop {
			return res
		}
	}
	return Continue()
}
