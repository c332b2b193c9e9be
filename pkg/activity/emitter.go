package activity

import (
	"context"
	"strings"
)

// DefaultChannel is stamped on events that carry no channel.
const DefaultChannel = "store"

// Config is the emitter configuration as loaded from settings.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter stamps the configured channel on events and notifies its hooks.
// A nil Emitter is disabled.
type Emitter struct {
	hooks   Hooks
	channel string
	on      bool
}

// NewEmitter returns an emitter over hooks. It is enabled only when cfg
// enables it and at least one non-nil hook remains.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	e := &Emitter{
		hooks:   CloneHooks(hooks),
		channel: strings.TrimSpace(cfg.Channel),
	}
	if e.channel == "" {
		e.channel = DefaultChannel
	}
	e.on = cfg.Enabled && len(e.hooks) > 0
	return e
}

// Enabled reports whether Emit reaches any hook.
func (e *Emitter) Enabled() bool {
	return e != nil && e.on
}

// Channel returns the channel stamped on events without one.
func (e *Emitter) Channel() string {
	if e == nil {
		return ""
	}
	return e.channel
}

// Hooks returns a copy of the emitter hooks.
func (e *Emitter) Hooks() Hooks {
	if e == nil {
		return nil
	}
	return CloneHooks(e.hooks)
}

// Emit notifies the hooks. It is a no-op on a disabled emitter.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	return e.hooks.Notify(ctx, event)
}

// CloneHooks copies hooks without their nil entries, returning nil when none
// remain.
func CloneHooks(hooks Hooks) Hooks {
	var out Hooks
	for _, hook := range hooks {
		if hook != nil {
			out = append(out, hook)
		}
	}
	return out
}
