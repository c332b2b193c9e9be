package vuet

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrModuleNotFound reports a Fetch for a path no leaf was registered at.
	ErrModuleNotFound = errors.New("vuet: module not found")
	// ErrInvalidModuleName reports an empty name in a module declaration.
	ErrInvalidModuleName = errors.New("vuet: module name must not be empty")
	// ErrSeparatorCollision reports a module name containing the path separator.
	ErrSeparatorCollision = errors.New("vuet: module name contains the path separator")
	// ErrDuplicatePath reports two leaves joining to the same store path.
	ErrDuplicatePath = errors.New("vuet: duplicate module path")
	// ErrExtensionNotFound reports a lookup for an unregistered extension.
	ErrExtensionNotFound = errors.New("vuet: extension not registered")
	// ErrNoEvaluator reports a rule built without a usable evaluator.
	ErrNoEvaluator = errors.New("vuet: evaluator not configured")
)

// RegistrationError reports a module declaration rejected by Init.
type RegistrationError struct {
	Path string
	Err  error
}

func (e *RegistrationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("vuet: register module %q: %s", e.Path, trimPrefix(e.Err))
}

func (e *RegistrationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// EvaluationError captures rule metadata alongside the originating error.
type EvaluationError struct {
	Engine string
	Expr   string
	Path   string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("vuet: %s evaluator %s path=%s: %s", e.Engine, describeExpression(e.Expr), e.Path, trimPrefix(e.Err))
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func trimPrefix(err error) string {
	if err == nil {
		return "<nil>"
	}
	return strings.TrimPrefix(err.Error(), "vuet: ")
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "vuet:") {
		return err
	}
	return fmt.Errorf("vuet: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr, path string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Path == "" {
			evalErr.Path = path
		}
		return evalErr
	}

	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Path:   path,
		Err:    err,
	}
}
