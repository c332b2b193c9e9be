package vuet

import (
	"time"

	"github.com/rs/zerolog"
)

// FetchOutcome names how a Fetch call ended.
type FetchOutcome string

const (
	// FetchSkipped: the module has no fetch function.
	FetchSkipped FetchOutcome = "skipped"
	// FetchShortCircuitBefore: a before hook stopped the fetch.
	FetchShortCircuitBefore FetchOutcome = "short_circuit_before"
	// FetchShortCircuitAfter: an after hook stopped a successful fetch.
	FetchShortCircuitAfter FetchOutcome = "short_circuit_after"
	// FetchApplied: the result was merged into the store.
	FetchApplied FetchOutcome = "applied"
	// FetchReturned: the result was returned without touching the store.
	FetchReturned FetchOutcome = "returned"
	// FetchRecovered: an after hook turned a failure into a success.
	FetchRecovered FetchOutcome = "recovered"
	// FetchFailed: the fetch error was returned to the caller.
	FetchFailed FetchOutcome = "failed"
)

// FetchLogEvent describes one completed Fetch call.
type FetchLogEvent struct {
	ID       string
	Path     string
	Outcome  FetchOutcome
	Duration time.Duration
	Err      error
}

// FetchLogger records fetch events.
type FetchLogger interface {
	LogFetch(FetchLogEvent)
}

// FetchLoggerFunc adapts a function to FetchLogger.
type FetchLoggerFunc func(FetchLogEvent)

// LogFetch implements FetchLogger.
func (f FetchLoggerFunc) LogFetch(event FetchLogEvent) {
	if f != nil {
		f(event)
	}
}

// FetchLoggers fans one event out to several loggers.
type FetchLoggers []FetchLogger

// LogFetch implements FetchLogger.
func (l FetchLoggers) LogFetch(event FetchLogEvent) {
	for _, logger := range l {
		if logger != nil {
			logger.LogFetch(event)
		}
	}
}

type noopFetchLogger struct{}

func (noopFetchLogger) LogFetch(FetchLogEvent) {}

// WithFetchLogger attaches a fetch logger.
func WithFetchLogger(logger FetchLogger) Option {
	return func(cfg *config) {
		if logger == nil {
			cfg.fetchLogger = noopFetchLogger{}
			return
		}
		cfg.fetchLogger = logger
	}
}

// ZerologFetchLogger writes fetch events to logger. Failures are logged at
// warn level, everything else at debug.
func ZerologFetchLogger(logger zerolog.Logger) FetchLogger {
	return FetchLoggerFunc(func(event FetchLogEvent) {
		entry := logger.Debug()
		if event.Err != nil {
			entry = logger.Warn().Err(event.Err)
		}
		entry.
			Str("fetch_id", event.ID).
			Str("path", event.Path).
			Str("outcome", string(event.Outcome)).
			Dur("duration", event.Duration).
			Msg("vuet: fetch")
	})
}
