package vuet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-vuet/pkg/activity"
)

// FetchContext is built once per Fetch call and shared by reference with every
// hook and the module fetch function. State starts as a shallow copy of the
// stored entry and is what a short-circuited or applied fetch resolves with.
type FetchContext struct {
	ID     string
	Path   string
	Params map[string]any
	State  State
}

// FetchOption configures a single Fetch call.
type FetchOption func(*fetchConfig)

type fetchConfig struct {
	skipApply bool
}

// WithoutApply makes Fetch return the fetched state as is, without merging it
// into the store.
func WithoutApply() FetchOption {
	return func(cfg *fetchConfig) {
		cfg.skipApply = true
	}
}

// Fetch resolves the state for path, running the module fetch function between
// the before and after hook chains.
//
// A module without a fetch function resolves with its stored state and no
// hook runs. When a before hook short-circuits, neither the fetch function nor
// the after hooks run. After hooks see every outcome; short-circuiting a
// failed fetch suppresses its error. Unless WithoutApply is given, a
// successful result is merged into the store and Fetch returns the state
// captured before the fetch started.
//
// Concurrent fetches of one path are neither serialized nor coalesced; the
// store keeps whatever each of them merged last.
func (v *Vuet) Fetch(ctx context.Context, path string, params map[string]any, opts ...FetchOption) (State, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := fetchConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	leaf, ok := v.modules.get(path)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrModuleNotFound, path)
	}
	if leaf.Fetch == nil {
		v.cfg.fetchLogger.LogFetch(FetchLogEvent{Path: path, Outcome: FetchSkipped})
		return v.GetState(path), nil
	}

	fc := &FetchContext{
		ID:     uuid.NewString(),
		Path:   path,
		Params: copyState(params),
		State:  v.store.Copy(path),
	}

	ctx, span := v.cfg.tracer.Start(ctx, "vuet.fetch", trace.WithAttributes(
		attribute.String("vuet.path", path),
		attribute.String("vuet.fetch_id", fc.ID),
	))
	defer span.End()

	start := time.Now()
	state, outcome, err := v.runFetch(ctx, leaf, fc, cfg)
	duration := time.Since(start)

	span.SetAttributes(attribute.String("vuet.outcome", string(outcome)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	v.cfg.fetchLogger.LogFetch(FetchLogEvent{
		ID:       fc.ID,
		Path:     path,
		Outcome:  outcome,
		Duration: duration,
		Err:      err,
	})
	return state, err
}

func (v *Vuet) runFetch(ctx context.Context, leaf *Leaf, fc *FetchContext, cfg fetchConfig) (State, FetchOutcome, error) {
	if res := v.hooks.runBefore(ctx, fc); res.stop {
		return res.resolve(fc), FetchShortCircuitBefore, nil
	}

	result, err := leaf.Fetch(ctx, fc)
	if err != nil {
		if res := v.hooks.runAfter(ctx, err, fc, nil); res.stop {
			return res.resolve(fc), FetchRecovered, nil
		}
		v.emit(ctx, activity.BuildFetchFailedEvent(activity.StoreEventInput{
			Path:    fc.Path,
			FetchID: fc.ID,
			Err:     err,
		}))
		return nil, FetchFailed, err
	}

	if res := v.hooks.runAfter(ctx, nil, fc, result); res.stop {
		return res.resolve(fc), FetchShortCircuitAfter, nil
	}
	if cfg.skipApply {
		return result, FetchReturned, nil
	}

	v.setState(ctx, fc.Path, result)
	v.emit(ctx, activity.BuildFetchAppliedEvent(activity.StoreEventInput{
		Path:    fc.Path,
		FetchID: fc.ID,
		Fields:  stateKeys(result),
	}))
	return fc.State, FetchApplied, nil
}
