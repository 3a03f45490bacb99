// Package preset carries an allow-listed subset of plugin data along with a
// host character preset.
//
// The host saves presets in two phases: it first serialises the preset in
// memory (Capture), then writes it once a file name is chosen (Commit).
// Commit extracts again instead of reusing the captured buffer because the
// data may have changed in between; the buffer only serves presets that are
// applied straight from memory (Apply with an empty file name).
//
// A preset side-file is a <plugins> root holding one <plugin> element per
// transferred plugin, with no character wrapper or identity metadata.
package preset
