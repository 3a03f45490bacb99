// Package rules evaluates the inclusion conditions attached to preset
// transfer plugins.
//
// Three engines share one Evaluator contract: expr-lang/expr (the default),
// cel-go, and goja behind the js_eval build tag. Every engine sees the same
// environment:
//
//	props     map[string]any of the plugin's properties for the entity
//	plugin    plugin name
//	entity    entity id (character guid)
//	preset    preset file name, empty for in-memory transfers
//	now       evaluation timestamp
//	args      caller supplied arguments
//	metadata  caller supplied metadata
//
// Registered functions are exposed by name and through call(name, ...).
package rules
