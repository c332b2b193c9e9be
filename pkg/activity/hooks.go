// Package activity fans store writes and fetch outcomes out to hooks.
package activity

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"
)

// Event describes one store write or fetch outcome.
type Event struct {
	Verb       string
	ObjectType string
	// Path is the module path the event refers to.
	Path    string
	FetchID string
	// Fields lists the state keys written, sorted.
	Fields []string
	// Error holds the fetch error message on failure events.
	Error string

	ActorID    string
	UserID     string
	TenantID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Valid reports whether the event names a verb, an object type and a path.
func (e Event) Valid() bool {
	return e.Verb != "" && e.ObjectType != "" && e.Path != ""
}

// Normalize returns a trimmed copy whose slices and metadata are detached from
// e. A zero OccurredAt becomes the current time.
func (e Event) Normalize() Event {
	out := e
	out.Verb = strings.TrimSpace(e.Verb)
	out.ObjectType = strings.TrimSpace(e.ObjectType)
	out.Path = strings.TrimSpace(e.Path)
	out.FetchID = strings.TrimSpace(e.FetchID)
	out.ActorID = strings.TrimSpace(e.ActorID)
	out.UserID = strings.TrimSpace(e.UserID)
	out.TenantID = strings.TrimSpace(e.TenantID)
	out.Channel = strings.TrimSpace(e.Channel)
	out.Fields = slices.Clone(e.Fields)
	out.Metadata = cloneMap(e.Metadata)
	if out.OccurredAt.IsZero() {
		out.OccurredAt = time.Now()
	}
	return out
}

// Hook receives normalized events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, event Event) error

// Notify implements Hook.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks notifies every hook in order.
type Hooks []Hook

// Notify normalizes event once and hands it to each hook. Invalid events are
// dropped. A failing hook does not stop the others; their errors are joined.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}
	event = event.Normalize()
	if !event.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Only wraps hook so it sees just the events of the given object types.
func Only(hook Hook, objectTypes ...string) Hook {
	return HookFunc(func(ctx context.Context, event Event) error {
		if hook == nil || !slices.Contains(objectTypes, event.ObjectType) {
			return nil
		}
		return hook.Notify(ctx, event)
	})
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
