package vuet

import "github.com/goliatone/go-vuet/internal/hydrate"

// DecodeOption configures StateAs.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	opts []hydrate.Option
}

// DecodeStrict rejects state fields that T does not declare.
func DecodeStrict() DecodeOption {
	return func(cfg *decodeConfig) {
		cfg.opts = append(cfg.opts, hydrate.Strict())
	}
}

// DecodeUseNumber decodes numbers held in interface fields as json.Number.
func DecodeUseNumber() DecodeOption {
	return func(cfg *decodeConfig) {
		cfg.opts = append(cfg.opts, hydrate.UseNumber())
	}
}

// StateAs decodes the state stored at path into T through its JSON form. An
// unset path decodes from an empty object.
func StateAs[T any](v *Vuet, path string, opts ...DecodeOption) (T, error) {
	cfg := decodeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return hydrate.Decode[T](path, v.GetState(path), cfg.opts...)
}
