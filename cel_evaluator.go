package vuet

import (
	"reflect"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

const celEngine = "cel"

// CELEvaluatorOption configures NewCELEvaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache shares compiled programs through cache.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry exposes the registry through call(name, [args]).
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.registry = registry.Clone()
	}
}

type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go. Expressions are
// type checked against path, params, state, result, error and now.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *celEvaluator) Compile(expression string, opts ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, emptyExpression(celEngine)
	}
	cfg := applyCompileOptions(opts)
	program, err := cachedProgram(e.cache, celEngine, expression, !cfg.skipCache, func() (celgo.Program, error) {
		return e.compile(expression)
	})
	if err != nil {
		return nil, err
	}
	return &celRule{evaluator: e, expression: expression, program: program}, nil
}

func (e *celEvaluator) compile(expression string) (celgo.Program, error) {
	env, err := e.buildEnv()
	if err != nil {
		return nil, wrapEvaluatorError(celEngine, err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrapEvaluationError(celEngine, expression, "", issues.Err())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, wrapEvaluationError(celEngine, expression, "", err)
	}
	return program, nil
}

func (e *celEvaluator) buildEnv() (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("path", celgo.StringType),
		celgo.Variable("params", celgo.MapType(celgo.StringType, celgo.DynType)),
		celgo.Variable("state", celgo.MapType(celgo.StringType, celgo.DynType)),
		celgo.Variable("result", celgo.DynType),
		celgo.Variable("error", celgo.DynType),
		celgo.Variable("now", celgo.TimestampType),
	}
	if e.registry != nil {
		opts = append(opts, celgo.Function("call",
			celgo.Overload("call_string_list",
				[]*celgo.Type{celgo.StringType, celgo.ListType(celgo.DynType)},
				celgo.DynType,
				celgo.BinaryBinding(e.callBinding),
			),
		))
	}
	return celgo.NewEnv(opts...)
}

func (e *celEvaluator) run(program celgo.Program, expression string, ctx RuleContext) (any, error) {
	ctx = ctx.withDefaults()
	activation := ctx.environment()
	for _, key := range []string{"result", "error"} {
		if activation[key] == nil {
			activation[key] = types.NullValue
		}
	}
	out, _, err := program.Eval(activation)
	if err != nil {
		return nil, wrapEvaluationError(celEngine, expression, ctx.pathLabel(), err)
	}
	value, err := celNative(out)
	if err != nil {
		return nil, wrapEvaluationError(celEngine, expression, ctx.pathLabel(), err)
	}
	return value, nil
}

func (e *celEvaluator) callBinding(name, arguments ref.Val) ref.Val {
	fn, ok := name.Value().(string)
	if !ok {
		return types.NewErr("%s", errCallName.Error())
	}
	native, err := arguments.ConvertToNative(reflect.TypeOf([]any{}))
	if err != nil {
		return types.NewErr("vuet: call arguments: %s", err.Error())
	}
	args, _ := native.([]any)
	result, err := e.registry.Call(fn, args...)
	if err != nil {
		return types.NewErr("%s", err.Error())
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}

// celNative unwraps CEL aggregates into plain Go maps and slices.
func celNative(out ref.Val) (any, error) {
	switch out.(type) {
	case traits.Mapper:
		return out.ConvertToNative(reflect.TypeOf(map[string]any{}))
	case traits.Lister:
		return out.ConvertToNative(reflect.TypeOf([]any{}))
	}
	if out == types.NullValue {
		return nil, nil
	}
	return out.Value(), nil
}

type celRule struct {
	evaluator  *celEvaluator
	expression string
	program    celgo.Program
}

func (r *celRule) Evaluate(ctx RuleContext) (any, error) {
	return r.evaluator.run(r.program, r.expression, ctx)
}
