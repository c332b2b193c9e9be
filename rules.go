package vuet

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RuleOption configures a rule hook.
type RuleOption func(*ruleConfig)

type ruleConfig struct {
	logger zerolog.Logger
	now    func() time.Time
}

// RuleWithLogger reports evaluation failures on logger.
func RuleWithLogger(logger zerolog.Logger) RuleOption {
	return func(cfg *ruleConfig) {
		cfg.logger = logger
	}
}

// RuleWithClock overrides the time bound to now.
func RuleWithClock(now func() time.Time) RuleOption {
	return func(cfg *ruleConfig) {
		if now != nil {
			cfg.now = now
		}
	}
}

type rule struct {
	engine     string
	expression string
	compiled   CompiledRule
	cfg        ruleConfig
}

func compileRule(evaluator Evaluator, expression string, opts []RuleOption) (*rule, error) {
	if evaluator == nil {
		evaluator = NewExprEvaluator()
	}
	cfg := ruleConfig{logger: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	compiled, err := evaluator.Compile(expression)
	if err != nil {
		return nil, err
	}
	if compiled == nil {
		return nil, ErrNoEvaluator
	}
	return &rule{
		engine:     evaluatorEngineName(evaluator),
		expression: expression,
		compiled:   compiled,
		cfg:        cfg,
	}, nil
}

// BeforeRule compiles expression into a before hook. The hook short-circuits
// when the expression yields true, and resolves with the value when it yields
// a map. Any other value, or an evaluation error, lets the chain continue.
// A nil evaluator selects the expr engine.
func BeforeRule(evaluator Evaluator, expression string, opts ...RuleOption) (BeforeHook, error) {
	r, err := compileRule(evaluator, expression, opts)
	if err != nil {
		return nil, err
	}
	return func(_ context.Context, fc *FetchContext) HookResult {
		return r.verdict(RuleContextFromFetch(fc, nil, nil))
	}, nil
}

// AfterRule is BeforeRule for after hooks; result and error are bound to the
// fetch outcome.
func AfterRule(evaluator Evaluator, expression string, opts ...RuleOption) (AfterHook, error) {
	r, err := compileRule(evaluator, expression, opts)
	if err != nil {
		return nil, err
	}
	return func(_ context.Context, err error, fc *FetchContext, result State) HookResult {
		return r.verdict(RuleContextFromFetch(fc, result, err))
	}, nil
}

func (r *rule) verdict(ctx RuleContext) HookResult {
	now := r.cfg.now()
	ctx.Now = &now
	value, err := r.compiled.Evaluate(ctx)
	if err != nil {
		err = wrapEvaluationError(r.engine, r.expression, ctx.pathLabel(), err)
		r.cfg.logger.Warn().Err(err).Str("engine", r.engine).Str("path", ctx.Path).Msg("vuet: rule evaluation failed")
		return Continue()
	}
	switch v := value.(type) {
	case bool:
		if v {
			return ShortCircuit(nil)
		}
	case map[string]any:
		return ShortCircuit(v)
	}
	return Continue()
}
