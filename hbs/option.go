package hbs

import "github.com/ardnew/hbs/log"

// options holds compiler configuration.
type options struct {
	root     string
	collapse bool
	logger   log.Logger
}

// Option configures compilation behavior.
type Option func(*options)

// WithRoot sets the root context qualifier, the expression prepended to
// variables that no enclosing block rebinds. Generated render methods use
// their receiver name here.
func WithRoot(root string) Option {
	return func(o *options) {
		o.root = root
	}
}

// WithCollapse controls whether whitespace between adjacent '>' and '<' in
// literal text is removed. It is enabled by default.
func WithCollapse(collapse bool) Option {
	return func(o *options) {
		o.collapse = collapse
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func makeOptions(opts ...Option) options {
	o := options{collapse: true}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
