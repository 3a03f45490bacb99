package preset

import (
	"strings"
	"time"

	exsave "github.com/goliatone/go-exsave"
	"github.com/goliatone/go-exsave/pkg/activity"
	"github.com/goliatone/go-exsave/pkg/rules"
	"github.com/goliatone/go-exsave/pkg/storage"
)

// Option configures a Transfer.
type Option func(*config)

type config struct {
	directory     string
	suffix        string
	store         storage.Store
	scene         Scene
	logger        exsave.Logger
	activityHooks activity.Hooks
	channel       string
	evaluator     rules.Evaluator
	functions     *rules.FunctionRegistry
	clock         func() time.Time
}

type nopLogger struct{}

func (nopLogger) LogHook(exsave.HookLogEvent) {}

func applyOptions(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.directory == "" {
		cfg.directory = DefaultDirectory
	}
	if cfg.suffix == "" {
		cfg.suffix = DefaultSuffix
	}
	if cfg.store == nil {
		cfg.store = storage.NewFileStore(nil)
	}
	if cfg.logger == nil {
		cfg.logger = nopLogger{}
	}
	if cfg.functions == nil {
		cfg.functions = NewFunctions()
	}
	if cfg.evaluator == nil {
		cfg.evaluator = rules.NewExprEvaluator(
			rules.ExprWithProgramCache(rules.NewMapCache()),
			rules.ExprWithFunctionRegistry(cfg.functions),
		)
	}
	if cfg.clock == nil {
		cfg.clock = time.Now
	}
	return cfg
}

// WithDirectory sets the preset directory.
func WithDirectory(dir string) Option {
	return func(cfg *config) {
		cfg.directory = dir
	}
}

// WithSuffix overrides DefaultSuffix.
func WithSuffix(suffix string) Option {
	return func(cfg *config) {
		cfg.suffix = suffix
	}
}

// WithStore sets where preset side-files are read and written.
func WithStore(store storage.Store) Option {
	return func(cfg *config) {
		cfg.store = store
	}
}

// WithScene sets the scene notified after Apply.
func WithScene(scene Scene) Option {
	return func(cfg *config) {
		cfg.scene = scene
	}
}

// WithLogger receives commit, apply, discard and condition log events.
func WithLogger(logger exsave.Logger) Option {
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

// WithActivityChannel overrides the activity channel.
func WithActivityChannel(channel string) Option {
	return func(cfg *config) {
		cfg.channel = strings.TrimSpace(channel)
	}
}

// WithEvaluator selects the engine that runs transfer conditions. Defaults to
// expr with a program cache and the property helpers. An evaluator passed
// here keeps whatever functions it was built with.
func WithEvaluator(evaluator rules.Evaluator) Option {
	return func(cfg *config) {
		cfg.evaluator = evaluator
	}
}

// WithFunctions exposes the functions of registry to the default expr
// evaluator, alongside the truthy and num property helpers. The registry is
// copied; later registrations on it are not seen.
func WithFunctions(registry *rules.FunctionRegistry) Option {
	functions := registry.Clone()
	if functions == nil {
		functions = rules.NewFunctionRegistry()
	}
	_ = RegisterFunctions(functions)
	return func(cfg *config) {
		cfg.functions = functions
	}
}

// WithClock overrides time.Now for durations and event timestamps.
func WithClock(clock func() time.Time) Option {
	return func(cfg *config) {
		cfg.clock = clock
	}
}

// RegisterOption configures one allow-listed plugin.
type RegisterOption func(*registration)

type registration struct {
	condition string
}

// WithCondition attaches a boolean expression that must hold for the plugin
// to be extracted. The expression sees props, plugin, entity and preset.
func WithCondition(expr string) RegisterOption {
	return func(reg *registration) {
		reg.condition = strings.TrimSpace(expr)
	}
}
