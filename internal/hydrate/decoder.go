// Package hydrate turns untyped module state into typed values through its
// JSON form.
package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Transform rewrites the state before it is decoded. It receives a detached
// copy and may return nil to keep it.
type Transform func(path string, state map[string]any) (map[string]any, error)

// Option configures Decode.
type Option func(*settings)

type settings struct {
	strict     bool
	useNumber  bool
	transforms []Transform
	checks     []func(path string, target any) error
}

// Strict rejects fields the target type does not declare.
func Strict() Option {
	return func(s *settings) { s.strict = true }
}

// UseNumber decodes numbers held in interface values as json.Number.
func UseNumber() Option {
	return func(s *settings) { s.useNumber = true }
}

// WithTransform runs fn ahead of decoding. Transforms run in the order given.
func WithTransform(fn Transform) Option {
	return func(s *settings) {
		if fn != nil {
			s.transforms = append(s.transforms, fn)
		}
	}
}

// Check runs fn on the decoded value. It is ignored when decoding into a type
// other than T.
func Check[T any](fn func(path string, v *T) error) Option {
	return func(s *settings) {
		if fn == nil {
			return
		}
		s.checks = append(s.checks, func(path string, target any) error {
			if v, ok := target.(*T); ok {
				return fn(path, v)
			}
			return nil
		})
	}
}

// Decode converts the state stored at path into T. state is never mutated and
// a nil state decodes from an empty object.
func Decode[T any](path string, state map[string]any, opts ...Option) (T, error) {
	var s settings
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}

	var out T
	if state == nil {
		state = map[string]any{}
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return out, fmt.Errorf("hydrate: marshal %q: %w", path, err)
	}
	if len(s.transforms) > 0 {
		if raw, err = s.transform(path, raw); err != nil {
			return out, err
		}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if s.strict {
		dec.DisallowUnknownFields()
	}
	if s.useNumber {
		dec.UseNumber()
	}
	if err := dec.Decode(&out); err != nil {
		return out, fmt.Errorf("hydrate: decode %q: %w", path, err)
	}

	for _, check := range s.checks {
		if err := check(path, &out); err != nil {
			return out, fmt.Errorf("hydrate: check %q: %w", path, err)
		}
	}
	return out, nil
}

func (s settings) transform(path string, raw []byte) ([]byte, error) {
	var current map[string]any
	if err := json.Unmarshal(raw, &current); err != nil {
		return nil, fmt.Errorf("hydrate: copy %q: %w", path, err)
	}
	for _, fn := range s.transforms {
		next, err := fn(path, current)
		if err != nil {
			return nil, fmt.Errorf("hydrate: transform %q: %w", path, err)
		}
		if next != nil {
			current = next
		}
	}
	out, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("hydrate: marshal %q: %w", path, err)
	}
	return out, nil
}
