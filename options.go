package taskpool

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/ygrebnov/taskpool/metrics"
)

// Option configures a Pool. Use New(opts ...Option) to construct one.
type Option func(*config)

// WithLimit caps the number of live workers. A value of zero or above the
// hardware-derived default is clamped.
func WithLimit(n uint) Option {
	return func(c *config) { c.Limit = n }
}

// WithIdleTimeout sets how long a ready worker waits before eviction.
// Zero (the default) disables eviction and enables pre-warming.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *config) { c.IdleTimeout = d }
}

// WithQueueCapacity bounds the overflow FIFO queue (design default 64).
func WithQueueCapacity(n uint) Option {
	return func(c *config) { c.QueueCapacity = n }
}

// WithLogger attaches a structured logger for operational events at the
// worker-process boundary (spawn, crash, idle-eviction, replacement). The
// default is a disabled logger: the core never logs application outcomes.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.Logger = l }
}

// WithMetricsProvider attaches an instrumentation seam (see package
// metrics). The default is a no-op provider.
func WithMetricsProvider(p metrics.Provider) Option {
	return func(c *config) { c.Provider = p }
}
