package taskpool

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/ygrebnov/taskpool/metrics"
)

// config holds Pool configuration, assembled by functional Options.
type config struct {
	// Limit caps the number of live workers. Zero means "use the default":
	// max(1, runtime.NumCPU()-1). A user-supplied value is clamped to
	// [1, defaultLimit].
	Limit uint

	// IdleTimeout is how long a ready worker waits before being evicted.
	// Zero disables eviction and enables pre-warming to Limit.
	IdleTimeout time.Duration

	// QueueCapacity bounds the overflow FIFO queue. Default 64.
	QueueCapacity uint

	Logger   zerolog.Logger
	Provider metrics.Provider
}

func defaultLimit() uint {
	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	return uint(n)
}

func defaultConfig() config {
	return config{
		Limit:         0, // resolved to defaultLimit() by validateConfig
		IdleTimeout:   0,
		QueueCapacity: 64,
		Logger:        zerolog.Nop(),
		Provider:      metrics.NewNoopProvider(),
	}
}

// validateConfig resolves defaults and clamps Limit to [1, defaultLimit()].
func validateConfig(cfg *config) error {
	dl := defaultLimit()
	switch {
	case cfg.Limit == 0:
		cfg.Limit = dl
	case cfg.Limit > dl:
		cfg.Limit = dl
	}
	if cfg.QueueCapacity == 0 {
		cfg.QueueCapacity = 64
	}
	if cfg.Provider == nil {
		cfg.Provider = metrics.NewNoopProvider()
	}
	return nil
}
