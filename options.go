package vuet

import (
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-vuet/pkg/activity"
)

const instrumentationName = "github.com/goliatone/go-vuet"

// DefaultPathJoin joins nested module names when no separator is configured.
const DefaultPathJoin = "/"

// Option configures a Vuet instance.
type Option func(*config)

type config struct {
	data        func() State
	pathJoin    string
	modules     Namespace
	registry    *Registry
	logger      zerolog.Logger
	fetchLogger FetchLogger
	activity    activity.Hooks
	activityCfg activity.Config
	tracer      trace.Tracer
	issues      []configIssue
}

// configIssue is a misconfiguration reported on the diagnostic logger once
// every option has been applied, so WithLogger may appear anywhere.
type configIssue struct {
	option  string
	message string
}

func applyOptions(opts []Option) config {
	cfg := config{
		logger:      zerolog.Nop(),
		activityCfg: activity.Config{Enabled: true},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.data == nil {
		cfg.data = emptyState
	}
	if cfg.pathJoin == "" {
		cfg.pathJoin = DefaultPathJoin
	}
	if cfg.modules == nil {
		cfg.modules = Namespace{}
	}
	if cfg.registry == nil {
		cfg.registry = NewRegistry()
	}
	if cfg.fetchLogger == nil {
		cfg.fetchLogger = noopFetchLogger{}
	}
	if cfg.tracer == nil {
		cfg.tracer = otel.Tracer(instrumentationName)
	}
	for _, issue := range cfg.issues {
		cfg.logger.Warn().Str("option", issue.option).Msg(issue.message)
	}
	cfg.issues = nil
	return cfg
}

func (cfg *config) report(option, message string) {
	cfg.issues = append(cfg.issues, configIssue{option: option, message: message})
}

func emptyState() State {
	return State{}
}

// WithData sets the factory producing the base defaults for every module.
// The factory must return a fresh map on each call.
func WithData(factory func() State) Option {
	return func(cfg *config) {
		if factory == nil {
			cfg.report("data", "vuet: nil data factory, using empty defaults")
			return
		}
		cfg.data = factory
	}
}

// WithPathJoin sets the separator used to join nested module names.
func WithPathJoin(separator string) Option {
	return func(cfg *config) {
		if separator == "" {
			cfg.report("pathJoin", "vuet: empty path separator, using \""+DefaultPathJoin+"\"")
			return
		}
		cfg.pathJoin = separator
	}
}

// WithModules sets the root module declaration tree.
func WithModules(modules Namespace) Option {
	return func(cfg *config) {
		cfg.modules = modules
	}
}

// WithRegistry attaches the extension registry whose lifecycle hooks fire on
// Init and Destroy. Instances without one get a private, empty registry.
func WithRegistry(registry *Registry) Option {
	return func(cfg *config) {
		cfg.registry = registry
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithTracer overrides the tracer used for fetch spans. The global otel
// tracer provider is used otherwise.
func WithTracer(tracer trace.Tracer) Option {
	return func(cfg *config) {
		cfg.tracer = tracer
	}
}
