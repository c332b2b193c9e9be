package vuet

import (
	"fmt"
	"time"
)

// RuleContext carries the fetch inputs a rule expression is evaluated against.
type RuleContext struct {
	Path   string
	Params map[string]any
	State  State
	Result State
	Err    error
	Now    *time.Time
}

// RuleContextFromFetch builds the rule inputs for fc. result and err are the
// fetch outcome and are left empty for before hooks.
func RuleContextFromFetch(fc *FetchContext, result State, err error) RuleContext {
	if fc == nil {
		return RuleContext{Result: result, Err: err}
	}
	return RuleContext{
		Path:   fc.Path,
		Params: fc.Params,
		State:  fc.State,
		Result: result,
		Err:    err,
	}
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Params == nil {
		ctx.Params = map[string]any{}
	}
	if ctx.State == nil {
		ctx.State = State{}
	}
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	if ctx.Now == nil {
		return time.Now()
	}
	return *ctx.Now
}

func (ctx RuleContext) pathLabel() string {
	if ctx.Path == "" {
		return "unknown"
	}
	return ctx.Path
}

// errorValue is the message of Err, or nil when the fetch succeeded.
func (ctx RuleContext) errorValue() any {
	if ctx.Err == nil {
		return nil
	}
	return ctx.Err.Error()
}

func (ctx RuleContext) resultValue() any {
	if ctx.Result == nil {
		return nil
	}
	return map[string]any(ctx.Result)
}

// environment is the variable set shared by every engine.
func (ctx RuleContext) environment() map[string]any {
	return map[string]any{
		"path":   ctx.Path,
		"params": ctx.Params,
		"state":  map[string]any(ctx.State),
		"result": ctx.resultValue(),
		"error":  ctx.errorValue(),
		"now":    ctx.timestamp(),
	}
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct {
	skipCache bool
}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	f(cfg)
}

// CompileWithoutCache compiles a fresh program even when a cache is configured.
func CompileWithoutCache() CompileOption {
	return compileOptionFunc(func(cfg *compileConfig) {
		cfg.skipCache = true
	})
}

func applyCompileOptions(opts []CompileOption) compileConfig {
	cfg := compileConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt.applyCompileOption(&cfg)
		}
	}
	return cfg
}

func evaluatorEngineName(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return exprEngine
	case *celEvaluator:
		return celEngine
	default:
		if name := jsEngineName(e); name != "" {
			return name
		}
		return "custom"
	}
}

func emptyExpression(engine string) error {
	return wrapEvaluatorError(engine, fmt.Errorf("expression must not be empty"))
}
