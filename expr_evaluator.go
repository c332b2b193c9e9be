package vuet

import (
	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

const exprEngine = "expr"

// ExprEvaluatorOption configures NewExprEvaluator.
type ExprEvaluatorOption func(*exprEvaluator)

// ExprWithProgramCache shares compiled programs through cache.
func ExprWithProgramCache(cache ProgramCache) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		e.cache = cache
	}
}

// ExprWithFunctionRegistry exposes the registry helpers by name and through
// call(name, args...). The registry is copied.
func ExprWithFunctionRegistry(registry *FunctionRegistry) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		e.functions = registry.Clone()
	}
}

type exprEvaluator struct {
	cache     ProgramCache
	functions *FunctionRegistry
}

// NewExprEvaluator returns an Evaluator for github.com/expr-lang/expr
// expressions. Unknown identifiers evaluate to nil.
func NewExprEvaluator(opts ...ExprEvaluatorOption) Evaluator {
	e := &exprEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *exprEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *exprEvaluator) Compile(expression string, opts ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, emptyExpression(exprEngine)
	}
	cfg := applyCompileOptions(opts)
	program, err := cachedProgram(e.cache, exprEngine, expression, !cfg.skipCache, func() (*exprvm.Program, error) {
		program, err := exprlang.Compile(expression, e.compilerOptions()...)
		if err != nil {
			return nil, wrapEvaluationError(exprEngine, expression, "", err)
		}
		return program, nil
	})
	if err != nil {
		return nil, err
	}
	return &exprRule{expression: expression, program: program}, nil
}

func (e *exprEvaluator) compilerOptions() []exprlang.Option {
	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	if e.functions == nil {
		return options
	}
	registry := e.functions
	options = append(options, exprlang.Function("call", func(args ...any) (any, error) {
		name, rest, err := splitCall(args)
		if err != nil {
			return nil, err
		}
		return registry.Call(name, rest...)
	}))
	for _, name := range registry.Names() {
		options = append(options, exprlang.Function(name, registry.bound(name)))
	}
	return options
}

type exprRule struct {
	expression string
	program    *exprvm.Program
}

func (r *exprRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaults()
	out, err := exprlang.Run(r.program, ctx.environment())
	if err != nil {
		return nil, wrapEvaluationError(exprEngine, r.expression, ctx.pathLabel(), err)
	}
	return out, nil
}
