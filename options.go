package exsave

import (
	"strings"
	"time"

	"github.com/goliatone/go-exsave/pkg/activity"
	"github.com/goliatone/go-exsave/pkg/storage"
)

// DefaultSideFileSuffix is appended to a host save path to name its side-file.
const DefaultSideFileSuffix = ".exsave.xml"

// Option configures a Manager.
type Option func(*config)

type config struct {
	store         storage.Store
	logger        Logger
	activityHooks activity.Hooks
	channel       string
	suffix        string
	clock         func() time.Time
}

func applyOptions(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.store == nil {
		cfg.store = storage.NewFileStore(nil)
	}
	if cfg.logger == nil {
		cfg.logger = noopLogger{}
	}
	if cfg.suffix == "" {
		cfg.suffix = DefaultSideFileSuffix
	}
	if cfg.clock == nil {
		cfg.clock = time.Now
	}
	return cfg
}

// WithStore sets where side-files are read and written. Defaults to the OS
// filesystem.
func WithStore(store storage.Store) Option {
	return func(cfg *config) {
		cfg.store = store
	}
}

// WithLogger attaches a hook logger.
func WithLogger(logger Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithActivityHooks attaches activity hooks. Hooks are cloned and nil entries
// dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := activity.CloneHooks(hooks)
	return func(cfg *config) {
		cfg.activityHooks = normalized
	}
}

// WithActivityChannel overrides the channel stamped on emitted events.
func WithActivityChannel(channel string) Option {
	return func(cfg *config) {
		cfg.channel = strings.TrimSpace(channel)
	}
}

// WithSideFileSuffix overrides DefaultSideFileSuffix.
func WithSideFileSuffix(suffix string) Option {
	return func(cfg *config) {
		cfg.suffix = suffix
	}
}

// WithClock overrides the time source used for hook timings and events.
func WithClock(clock func() time.Time) Option {
	return func(cfg *config) {
		cfg.clock = clock
	}
}
