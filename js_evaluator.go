//go:build js_eval

package vuet

import (
	"fmt"
	"time"

	"github.com/dop251/goja"
)

const jsEngine = "js"

type jsEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
	timeout  time.Duration
}

// NewJSEvaluator constructs an Evaluator backed by goja. Each evaluation runs
// in a fresh runtime.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	s := resolveJSSettings(opts)
	return &jsEvaluator{
		cache:    s.cache,
		registry: s.registry,
		timeout:  s.timeout,
	}
}

func (e *jsEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *jsEvaluator) Compile(expression string, opts ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, emptyExpression(jsEngine)
	}
	cfg := applyCompileOptions(opts)
	program, err := cachedProgram(e.cache, jsEngine, expression, !cfg.skipCache, func() (*goja.Program, error) {
		program, err := goja.Compile("", fmt.Sprintf("(function(){ return (%s); })()", expression), false)
		if err != nil {
			return nil, wrapEvaluationError(jsEngine, expression, "", err)
		}
		return program, nil
	})
	if err != nil {
		return nil, err
	}
	return &jsRule{evaluator: e, expression: expression, program: program}, nil
}

func (e *jsEvaluator) run(ctx RuleContext, expression string, program *goja.Program) (any, error) {
	ctx = ctx.withDefaults()
	vm := goja.New()
	if err := e.inject(vm, ctx); err != nil {
		return nil, wrapEvaluatorError(jsEngine, err)
	}
	if e.timeout > 0 {
		timer := time.AfterFunc(e.timeout, func() {
			vm.Interrupt(fmt.Sprintf("rule exceeded %s", e.timeout))
		})
		defer timer.Stop()
	}
	value, err := vm.RunProgram(program)
	if err != nil {
		return nil, wrapEvaluationError(jsEngine, expression, ctx.pathLabel(), err)
	}
	return value.Export(), nil
}

func (e *jsEvaluator) inject(vm *goja.Runtime, ctx RuleContext) error {
	for key, value := range ctx.environment() {
		if err := vm.Set(key, value); err != nil {
			return err
		}
	}
	if e.registry == nil {
		return nil
	}
	if err := vm.Set("call", func(args ...any) (any, error) {
		name, rest, err := splitCall(args)
		if err != nil {
			return nil, err
		}
		return e.registry.Call(name, rest...)
	}); err != nil {
		return err
	}
	for _, name := range e.registry.Names() {
		if err := vm.Set(name, e.registry.bound(name)); err != nil {
			return err
		}
	}
	return nil
}

type jsRule struct {
	evaluator  *jsEvaluator
	expression string
	program    *goja.Program
}

func (r *jsRule) Evaluate(ctx RuleContext) (any, error) {
	return r.evaluator.run(ctx, r.expression, r.program)
}

func jsEngineName(e Evaluator) string {
	if _, ok := e.(*jsEvaluator); ok {
		return jsEngine
	}
	return ""
}

// JSEvaluatorAvailable reports whether the binary was built with js_eval.
func JSEvaluatorAvailable() bool {
	return true
}
