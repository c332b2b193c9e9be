//go:build !js_eval

package vuet

// NewJSEvaluator is unavailable without the js_eval build tag and returns nil.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	_ = resolveJSSettings(opts)
	return nil
}

func jsEngineName(Evaluator) string {
	return ""
}

// JSEvaluatorAvailable reports whether the binary was built with js_eval.
func JSEvaluatorAvailable() bool {
	return false
}
