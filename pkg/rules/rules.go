package rules

import (
	"fmt"
	"strings"
	"time"
)

// Engine names accepted by New.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// New resolves an evaluator by engine name. An empty name selects expr. The
// js engine is only available when built with the js_eval tag.
func New(engine string, cache ProgramCache, registry *FunctionRegistry) (Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineExpr:
		return NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(registry)), nil
	case EngineCEL:
		return NewCELEvaluator(CELWithProgramCache(cache), CELWithFunctionRegistry(registry)), nil
	case EngineJS:
		if !jsEvaluatorAvailable() {
			return nil, fmt.Errorf("%w: js requires the js_eval build tag", ErrNoEvaluator)
		}
		return NewJSEvaluator(JSWithProgramCache(cache), JSWithFunctionRegistry(registry)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
}

// EngineName reports which engine backs e.
func EngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch e.(type) {
	case *exprEvaluator:
		return EngineExpr
	case *celEvaluator:
		return EngineCEL
	}
	if isJSEvaluator(e) {
		return EngineJS
	}
	return "custom"
}

// Checker evaluates boolean conditions and logs every attempt.
type Checker struct {
	evaluator Evaluator
	logger    Logger
}

// NewChecker wraps evaluator. A nil evaluator falls back to expr and a nil
// logger discards events.
func NewChecker(evaluator Evaluator, logger Logger) *Checker {
	if evaluator == nil {
		evaluator = NewExprEvaluator()
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Checker{evaluator: evaluator, logger: logger}
}

// Evaluator returns the wrapped evaluator.
func (c *Checker) Evaluator() Evaluator {
	return c.evaluator
}

// Check evaluates expr and requires a boolean result. An empty expression is
// unconditionally true.
func (c *Checker) Check(ctx RuleContext, expr string) (bool, error) {
	if strings.TrimSpace(expr) == "" {
		return true, nil
	}
	ctx = ctx.withDefaults()
	engine := EngineName(c.evaluator)

	start := time.Now()
	value, err := c.evaluator.Evaluate(ctx, expr)
	duration := time.Since(start)

	var result bool
	if err == nil {
		var ok bool
		if result, ok = value.(bool); !ok {
			err = fmt.Errorf("%w: got %T", ErrNotBoolean, value)
		}
	}
	err = wrapEvaluationError(engine, expr, ctx.label(), err)

	c.logger.LogEvaluation(LogEvent{
		Engine:   engine,
		Expr:     expr,
		Scope:    ctx.label(),
		Result:   value,
		Duration: duration,
		Err:      err,
	})
	if err != nil {
		return false, err
	}
	return result, nil
}
