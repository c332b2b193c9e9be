package activity

import (
	"context"
	"sync"
)

// CaptureHook keeps every event it is notified of. Err, when set, is returned
// from each Notify call.
type CaptureHook struct {
	mu     sync.Mutex
	Events []Event
	Err    error
}

// Notify implements Hook.
func (c *CaptureHook) Notify(_ context.Context, event Event) error {
	c.mu.Lock()
	c.Events = append(c.Events, event.Normalize())
	c.mu.Unlock()
	return c.Err
}

// Verbs lists the verbs seen so far, in notification order.
func (c *CaptureHook) Verbs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	verbs := make([]string, len(c.Events))
	for i, event := range c.Events {
		verbs[i] = event.Verb
	}
	return verbs
}
