//go:build js_eval

package vuet

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestJSBeforeRule(t *testing.T) {
	functions := NewFunctionRegistry()
	if err := functions.Register("double", func(args ...any) (any, error) {
		return args[0].(int64) * 2, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	hook, err := BeforeRule(NewJSEvaluator(JSWithFunctionRegistry(functions)), `params.skip === true || double(2) === 5`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	if hook(context.Background(), &FetchContext{Path: "feed", Params: map[string]any{"skip": true}}).Stopped() != true {
		t.Fatalf("expected short-circuit")
	}
	if hook(context.Background(), &FetchContext{Path: "feed"}).Stopped() {
		t.Fatalf("expected continue")
	}
}

func TestJSTimeout(t *testing.T) {
	evaluator := NewJSEvaluator(JSWithTimeout(20 * time.Millisecond))
	_, err := evaluator.Evaluate(RuleContext{Path: "feed"}, `(function(){ while (true) {} })()`)
	if err == nil || !strings.Contains(err.Error(), "rule exceeded") {
		t.Fatalf("expected interrupt, got %v", err)
	}
}

func TestJSEngineName(t *testing.T) {
	if !JSEvaluatorAvailable() {
		t.Fatalf("expected js evaluator to be available")
	}
	if got := evaluatorEngineName(NewJSEvaluator()); got != "js" {
		t.Fatalf("expected js, got %s", got)
	}
}
