package vuet

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func double(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, errors.New("double expects one argument")
	}
	switch n := args[0].(type) {
	case int:
		return n * 2, nil
	case int64:
		return n * 2, nil
	case float64:
		return n * 2, nil
	default:
		return nil, errors.New("double expects a number")
	}
}

func newRuleInstance(t *testing.T, fetch FetchFunc) (*Vuet, *int) {
	t.Helper()
	calls := 0
	v := New(WithModules(Namespace{
		"feed": &Leaf{
			Data: StaticData(State{"count": 3}),
			Fetch: func(ctx context.Context, fc *FetchContext) (State, error) {
				calls++
				return fetch(ctx, fc)
			},
		},
	}))
	mustInit(t, v)
	return v, &calls
}

func TestExprBeforeRule(t *testing.T) {
	hook, err := BeforeRule(NewExprEvaluator(), `params.cached == true && state.count > 2`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	v, calls := newRuleInstance(t, staticFetch(State{"count": 4}))
	v.BeforeEach(hook)

	ctx := context.Background()
	got, err := v.Fetch(ctx, "feed", map[string]any{"cached": true})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if *calls != 0 || got["count"] != 3 {
		t.Fatalf("rule should short-circuit, calls=%d state=%v", *calls, got)
	}

	if _, err := v.Fetch(ctx, "feed", map[string]any{"cached": false}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if *calls != 1 || v.GetState("feed")["count"] != 4 {
		t.Fatalf("rule should continue, calls=%d state=%v", *calls, v.GetState("feed"))
	}
}

func TestExprRuleMapResultOverrides(t *testing.T) {
	hook, err := BeforeRule(nil, `{"source": "rule", "path": path}`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	v, _ := newRuleInstance(t, staticFetch(State{}))
	v.BeforeEach(hook)

	got, err := v.Fetch(context.Background(), "feed", nil)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !reflect.DeepEqual(got, State{"source": "rule", "path": "feed"}) {
		t.Fatalf("unexpected override %v", got)
	}
}

func TestExprAfterRuleRecoversFailure(t *testing.T) {
	hook, err := AfterRule(NewExprEvaluator(), `error != nil && error contains "offline"`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	v, _ := newRuleInstance(t, failingFetch(errOffline))
	v.AfterEach(hook)

	got, err := v.Fetch(context.Background(), "feed", nil)
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if got["count"] != 3 {
		t.Fatalf("expected pre-fetch state, got %v", got)
	}
}

func TestExprAfterRuleSeesResult(t *testing.T) {
	hook, err := AfterRule(NewExprEvaluator(), `result.count > 10`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	v, _ := newRuleInstance(t, staticFetch(State{"count": 50}))
	v.AfterEach(hook)

	if _, err := v.Fetch(context.Background(), "feed", nil); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if v.GetState("feed")["count"] != 3 {
		t.Fatalf("rule should reject the oversized result, got %v", v.GetState("feed"))
	}
}

func TestExprRuleWithFunctions(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("double", double); err != nil {
		t.Fatalf("register: %v", err)
	}
	evaluator := NewExprEvaluator(ExprWithFunctionRegistry(registry))

	for _, expression := range []string{`double(state.count) == 6`, `call("double", state.count) == 6`} {
		value, err := evaluator.Evaluate(RuleContext{State: State{"count": 3}}, expression)
		if err != nil {
			t.Fatalf("%s: %v", expression, err)
		}
		if value != true {
			t.Fatalf("%s: expected true, got %v", expression, value)
		}
	}
}

func TestCELBeforeRule(t *testing.T) {
	hook, err := BeforeRule(NewCELEvaluator(), `path == "feed" && state.count > 2`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	v, calls := newRuleInstance(t, staticFetch(State{}))
	v.BeforeEach(hook)

	if _, err := v.Fetch(context.Background(), "feed", nil); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if *calls != 0 {
		t.Fatalf("rule should short-circuit")
	}
}

func TestCELAfterRuleRecoversFailure(t *testing.T) {
	hook, err := AfterRule(NewCELEvaluator(), `error != null`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	v, _ := newRuleInstance(t, failingFetch(errOffline))
	v.AfterEach(hook)

	if _, err := v.Fetch(context.Background(), "feed", nil); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
}

func TestCELRuleMapResultOverrides(t *testing.T) {
	evaluator := NewCELEvaluator()
	value, err := evaluator.Evaluate(RuleContext{Path: "feed"}, `{"path": path}`)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !reflect.DeepEqual(value, map[string]any{"path": "feed"}) {
		t.Fatalf("expected a plain map, got %#v", value)
	}
}

func TestCELRuleWithFunctions(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("double", double); err != nil {
		t.Fatalf("register: %v", err)
	}
	evaluator := NewCELEvaluator(CELWithFunctionRegistry(registry))

	value, err := evaluator.Evaluate(RuleContext{State: State{"count": 3}}, `call("double", [state.count]) == 6`)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if value != true {
		t.Fatalf("expected true, got %v", value)
	}
}

func TestCELCompileError(t *testing.T) {
	_, err := BeforeRule(NewCELEvaluator(), `state.count >`)
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) || evalErr.Engine != "cel" {
		t.Fatalf("expected cel evaluation error, got %v", err)
	}
}

func TestRuleEvaluationErrorContinues(t *testing.T) {
	var buf bytes.Buffer
	hook, err := BeforeRule(NewCELEvaluator(), `state.missing > 1`, RuleWithLogger(zerolog.New(&buf)))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	v, calls := newRuleInstance(t, staticFetch(State{}))
	v.BeforeEach(hook)

	if _, err := v.Fetch(context.Background(), "feed", nil); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if *calls != 1 {
		t.Fatalf("failed rule must let the fetch run")
	}
	if !strings.Contains(buf.String(), "rule evaluation failed") || !strings.Contains(buf.String(), `"engine":"cel"`) {
		t.Fatalf("expected a logged failure, got %s", buf.String())
	}
}

func TestRuleClock(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	hook, err := BeforeRule(NewCELEvaluator(), `now == timestamp("2024-01-02T03:04:05Z")`, RuleWithClock(func() time.Time { return fixed }))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if res := hook(context.Background(), &FetchContext{Path: "feed"}); !res.Stopped() {
		t.Fatalf("expected the rule to see the fixed clock")
	}
}

func TestEmptyExpression(t *testing.T) {
	for _, evaluator := range []Evaluator{NewExprEvaluator(), NewCELEvaluator()} {
		if _, err := BeforeRule(evaluator, ""); err == nil {
			t.Fatalf("%s: expected error for empty expression", evaluatorEngineName(evaluator))
		}
	}
}

func TestProgramCache(t *testing.T) {
	cache := NewMemoryProgramCache()
	evaluator := NewExprEvaluator(ExprWithProgramCache(cache))

	for i := 0; i < 3; i++ {
		if _, err := evaluator.Evaluate(RuleContext{}, `path == ""`); err != nil {
			t.Fatalf("evaluate: %v", err)
		}
	}
	if cache.Len() != 1 {
		t.Fatalf("expected one cached program, got %d", cache.Len())
	}

	if _, err := evaluator.Compile(`path != ""`, CompileWithoutCache()); err != nil {
		t.Fatalf("compile: %v", err)
	}
	if cache.Len() != 1 {
		t.Fatalf("uncached compile must not populate the cache")
	}

	cel := NewCELEvaluator(CELWithProgramCache(cache))
	if _, err := cel.Compile(`path == "x"`); err != nil {
		t.Fatalf("compile: %v", err)
	}
	if cache.Len() != 2 {
		t.Fatalf("expected the cel program to be cached, got %d", cache.Len())
	}
}

func TestEvaluatorEngineName(t *testing.T) {
	cases := map[string]Evaluator{
		"expr":    NewExprEvaluator(),
		"cel":     NewCELEvaluator(),
		"unknown": nil,
	}
	for want, evaluator := range cases {
		if got := evaluatorEngineName(evaluator); got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
}

func TestFunctionRegistry(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("Double", double); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("double", double); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := registry.Register("", double); err == nil {
		t.Fatalf("expected empty name to fail")
	}
	if err := registry.Register("nil", nil); err == nil {
		t.Fatalf("expected nil function to fail")
	}

	value, err := registry.Call("DOUBLE", 2)
	if err != nil || value != 4 {
		t.Fatalf("expected 4, got %v (%v)", value, err)
	}
	if _, err := registry.Call("missing"); err == nil {
		t.Fatalf("expected unknown function to fail")
	}

	clone := registry.Clone()
	if err := clone.Register("triple", double); err != nil {
		t.Fatalf("register on clone: %v", err)
	}
	if !reflect.DeepEqual(registry.Names(), []string{"double"}) {
		t.Fatalf("clone must not affect the original, got %v", registry.Names())
	}

	var nilRegistry *FunctionRegistry
	if _, err := nilRegistry.Call("x"); err == nil {
		t.Fatalf("expected nil registry to fail")
	}
}
