package formstate

import "github.com/charmbracelet/log"

// Options configures a save or restore pass
type Options struct {
	// ExcludeHidden keeps hidden inputs out of the census, collection and restoration.
	ExcludeHidden bool
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() Options {
	return Options{ExcludeHidden: true}
}

type engineConfig struct {
	opts       Options
	logger     *log.Logger
	dispatcher Dispatcher
}

// Option configures an Engine
type Option func(*engineConfig)

// WithExcludeHidden sets whether hidden inputs take part in a pass
func WithExcludeHidden(exclude bool) Option {
	return func(cfg *engineConfig) {
		cfg.opts.ExcludeHidden = exclude
	}
}

// WithLogger logs pass progress and skipped work to logger
func WithLogger(logger *log.Logger) Option {
	return func(cfg *engineConfig) {
		cfg.logger = logger
	}
}

// WithDispatcher delivers synthetic UI events raised while restoring
func WithDispatcher(d Dispatcher) Option {
	return func(cfg *engineConfig) {
		if d == nil {
			return
		}
		cfg.dispatcher = d
	}
}

func applyOptions(opts []Option) engineConfig {
	cfg := engineConfig{opts: DefaultOptions()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
