package eventcore

import "github.com/charmbracelet/log"

// Option configures a Dispatcher.
type Option func(*config)

// config contains dispatcher configuration.
type config struct {
	// logger, when set, receives debug output for listener reclamation and
	// error output for recovered panics.
	logger *log.Logger

	// panicHandler is called after a listener callback panic is recovered.
	panicHandler PanicHandler
}

func defaultConfig() config {
	return config{}
}

// WithLogger sets a logger for dispatcher diagnostics. The dispatcher is
// silent by default.
func WithLogger(logger *log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithPanicHandler sets a handler invoked after a listener panic is
// recovered. Panics are always recovered and counted whether or not a
// handler is set.
func WithPanicHandler(h PanicHandler) Option {
	return func(c *config) {
		c.panicHandler = h
	}
}
