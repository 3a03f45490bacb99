// Package exsave keeps per-character plugin settings in an XML side-file
// that lives next to each host save slot.
//
// A Manager owns the in-memory save collection: it is replaced wholesale on
// Load, mutated through the accessors between events, and merged back into
// the side-file on Save so unrelated XML in the same file survives. Lifecycle
// binds a Manager to a Host and exposes the load/save/delete callbacks that a
// lifecycle.Registry fires.
//
// Every property is a string. The typed accessors parse on read and fall back
// to the caller default when parsing fails; booleans accept "true"/"false",
// then a float above 0.5, then an int above 0.
package exsave
