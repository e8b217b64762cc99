package poller

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/quiniela-client/internal/metrics"
)

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 10 * time.Second

type options struct {
	name    string
	timeout time.Duration
	metrics metrics.Metrics
	logger  *log.Logger
}

// Option configures a Poller.
type Option func(*options)

// WithName labels the poller in logs and metrics.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithTimeout sets the per-fetch deadline. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

func WithMetrics(m metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func newOptions(opts []Option) options {
	o := options{
		name:    "poller",
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.WithPrefix(o.name)
	}
	return o
}
