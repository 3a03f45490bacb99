package preset

import (
	"fmt"
	"slices"

	exsave "github.com/goliatone/go-exsave"
	"github.com/goliatone/go-exsave/pkg/rules"
)

// Property helpers available to transfer conditions. Both read a stored
// property the way the typed exsave accessors do.
const (
	// FuncTruthy is truthy(value[, fallback bool]) bool.
	FuncTruthy = "truthy"
	// FuncNum is num(value[, fallback number]) float.
	FuncNum = "num"
)

// NewFunctions returns a registry holding the property helpers.
func NewFunctions() *rules.FunctionRegistry {
	registry := rules.NewFunctionRegistry()
	_ = RegisterFunctions(registry)
	return registry
}

// RegisterFunctions adds the property helpers to registry. Names it already
// holds are left untouched.
func RegisterFunctions(registry *rules.FunctionRegistry) error {
	if registry == nil {
		return fmt.Errorf("preset: function registry is nil")
	}
	existing := registry.Names()
	helpers := []struct {
		name string
		fn   rules.Function
	}{
		{FuncTruthy, truthy},
		{FuncNum, num},
	}
	for _, helper := range helpers {
		if slices.Contains(existing, helper.name) {
			continue
		}
		if err := registry.Register(helper.name, helper.fn); err != nil {
			return err
		}
	}
	return nil
}

func truthy(args ...any) (any, error) {
	if len(args) == 0 || len(args) > 2 {
		return nil, fmt.Errorf("preset: %s expects 1 or 2 arguments, got %d", FuncTruthy, len(args))
	}
	fallback := false
	if len(args) == 2 {
		b, ok := args[1].(bool)
		if !ok {
			return nil, fmt.Errorf("preset: %s fallback must be bool, got %T", FuncTruthy, args[1])
		}
		fallback = b
	}
	switch v := args[0].(type) {
	case nil:
		return fallback, nil
	case bool:
		return v, nil
	case string:
		return exsave.ParseBool(v, fallback), nil
	default:
		return exsave.ParseBool(fmt.Sprint(v), fallback), nil
	}
}

func num(args ...any) (any, error) {
	if len(args) == 0 || len(args) > 2 {
		return nil, fmt.Errorf("preset: %s expects 1 or 2 arguments, got %d", FuncNum, len(args))
	}
	fallback := 0.0
	if len(args) == 2 {
		f, ok := toFloat(args[1])
		if !ok {
			return nil, fmt.Errorf("preset: %s fallback must be a number, got %T", FuncNum, args[1])
		}
		fallback = f
	}
	if args[0] == nil {
		return fallback, nil
	}
	if f, ok := toFloat(args[0]); ok {
		return f, nil
	}
	if s, ok := args[0].(string); ok {
		return exsave.ParseFloat(s, fallback), nil
	}
	return exsave.ParseFloat(fmt.Sprint(args[0]), fallback), nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
