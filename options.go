package lloyd

import (
	"log/slog"

	"github.com/hupe1980/lloyd/codec"
	"github.com/hupe1980/lloyd/internal/kmeans"
)

const (
	// DefaultK is the cluster count of a fresh session.
	DefaultK = 3

	// DefaultSeed is the seed of a fresh session.
	DefaultSeed int64 = 42

	// DefaultEventLogSize is the number of events a session keeps.
	DefaultEventLogSize = 20
)

type options struct {
	k                int
	seed             int64
	initMethod       InitMethod
	maxIterations    int
	codec            codec.Codec
	metricsCollector MetricsCollector
	logger           *Logger
	eventLogSize     int
}

// Option configures a Session.
type Option func(*options)

// WithK sets the initial cluster count. Validation happens in Start.
func WithK(k int) Option {
	return func(o *options) {
		o.k = k
	}
}

// WithSeed sets the initial seed of the random cursor.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithInitMethod selects how Start places the first centroids.
func WithInitMethod(m InitMethod) Option {
	return func(o *options) {
		o.initMethod = m
	}
}

// WithMaxIterations overrides the iteration cap (default 100).
// Values below 1 keep the default.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = kmeans.MaxIterations
		}
		o.maxIterations = n
	}
}

// WithCodec configures the codec used by MarshalSnapshot.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &lloyd.BasicMetricsCollector{}
//	s := lloyd.New(lloyd.WithMetricsCollector(metrics))
//	// ... run ...
//	stats := metrics.GetStats()
//	fmt.Printf("Steps: %d, Avg step: %dns\n", stats.StepCount, stats.AvgStepNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for session operations.
// Pass nil to disable logging (default).
//
// Example with JSON logging:
//
//	logger := lloyd.NewJSONLogger(slog.LevelInfo)
//	s := lloyd.New(lloyd.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel is a convenience to enable text logging at the given level.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithEventLogSize sets how many events Events returns at most.
func WithEventLogSize(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = DefaultEventLogSize
		}
		o.eventLogSize = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		k:                DefaultK,
		seed:             DefaultSeed,
		initMethod:       InitKMeansPlusPlus,
		maxIterations:    kmeans.MaxIterations,
		codec:            codec.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		eventLogSize:     DefaultEventLogSize,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}
