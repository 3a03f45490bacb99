package rules

import "time"

// RuleContext carries inputs needed when evaluating an expression.
type RuleContext struct {
	Props    map[string]any
	Plugin   string
	Entity   string
	Preset   string
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Props == nil {
		ctx.Props = map[string]any{}
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) withDefaults() RuleContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

// label identifies the evaluation in errors and logs.
func (ctx RuleContext) label() string {
	switch {
	case ctx.Plugin != "" && ctx.Entity != "":
		return ctx.Entity + "/" + ctx.Plugin
	case ctx.Plugin != "":
		return ctx.Plugin
	case ctx.Entity != "":
		return ctx.Entity
	default:
		return "unknown"
	}
}

// bindings returns the variables shared by every engine.
func (ctx RuleContext) bindings() map[string]any {
	return map[string]any{
		"props":    ctx.Props,
		"plugin":   ctx.Plugin,
		"entity":   ctx.Entity,
		"preset":   ctx.Preset,
		"now":      ctx.timestamp(),
		"args":     ctx.Args,
		"metadata": ctx.Metadata,
	}
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// PropsFromStrings lifts a string property map into the props binding.
func PropsFromStrings(values map[string]string) map[string]any {
	props := make(map[string]any, len(values))
	for key, value := range values {
		props[key] = value
	}
	return props
}
