package vuet

import (
	"context"

	"github.com/goliatone/go-vuet/pkg/activity"
)

// WithActivityHooks attaches hooks notified about store writes and fetch
// outcomes. Nil entries are dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := activity.CloneHooks(hooks)
	return func(cfg *config) {
		cfg.activity = normalized
	}
}

// WithActivityConfig overrides the emitter configuration. Emission is enabled
// by default whenever hooks are attached.
func WithActivityConfig(activityCfg activity.Config) Option {
	return func(cfg *config) {
		cfg.activityCfg = activityCfg
	}
}

// ActivityHooks returns a copy of the configured activity hooks.
func (v *Vuet) ActivityHooks() activity.Hooks {
	if v == nil {
		return nil
	}
	return v.emitter.Hooks()
}

// emit never fails the store operation that triggered it.
func (v *Vuet) emit(ctx context.Context, event activity.Event) {
	if !v.emitter.Enabled() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := v.emitter.Emit(ctx, event); err != nil {
		v.cfg.logger.Warn().Err(err).Str("verb", event.Verb).Str("path", event.Path).Msg("vuet: activity hook failed")
	}
}
