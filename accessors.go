package exsave

import "github.com/goliatone/go-exsave/pkg/savedata"

// WriteOption adjusts a single property write.
type WriteOption func(*writeConfig)

type writeConfig struct {
	overwrite bool
}

// KeepExisting turns a write into a no-op when the property already exists.
func KeepExisting() WriteOption {
	return func(cfg *writeConfig) {
		cfg.overwrite = false
	}
}

func applyWriteOptions(opts []WriteOption) writeConfig {
	cfg := writeConfig{overwrite: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Get returns the property value or fallback. It never registers entityID.
func (m *Manager) Get(entityID, plugin, prop, fallback string) string {
	if entityID == "" || plugin == "" || prop == "" {
		return fallback
	}
	e, ok := m.resolve(entityID)
	if !ok {
		return fallback
	}
	return e.Get(plugin, prop, fallback)
}

// GetBool parses the property as a bool, see the package doc for the order.
func (m *Manager) GetBool(entityID, plugin, prop string, fallback bool) bool {
	return ParseBool(m.Get(entityID, plugin, prop, ""), fallback)
}

// GetInt reads a property as an int, or returns fallback.
func (m *Manager) GetInt(entityID, plugin, prop string, fallback int) int {
	return ParseInt(m.Get(entityID, plugin, prop, ""), fallback)
}

// GetFloat reads a property as a float64, or returns fallback.
func (m *Manager) GetFloat(entityID, plugin, prop string, fallback float64) float64 {
	return ParseFloat(m.Get(entityID, plugin, prop, ""), fallback)
}

// Set writes value, registering entityID with blank metadata when unknown.
// It reports false for empty arguments and for KeepExisting writes that hit
// an existing property.
func (m *Manager) Set(entityID, plugin, prop, value string, opts ...WriteOption) bool {
	if entityID == "" || plugin == "" || prop == "" {
		return false
	}
	cfg := applyWriteOptions(opts)
	e := m.vivify(entityID)
	if !cfg.overwrite && e.Contains(plugin, prop) {
		return false
	}
	return e.Set(plugin, prop, value)
}

// SetBool writes a bool property.
func (m *Manager) SetBool(entityID, plugin, prop string, value bool, opts ...WriteOption) bool {
	return m.Set(entityID, plugin, prop, formatBool(value), opts...)
}

// SetInt writes an int property.
func (m *Manager) SetInt(entityID, plugin, prop string, value int, opts ...WriteOption) bool {
	return m.Set(entityID, plugin, prop, formatInt(value), opts...)
}

// SetFloat writes a float64 property.
func (m *Manager) SetFloat(entityID, plugin, prop string, value float64, opts ...WriteOption) bool {
	return m.Set(entityID, plugin, prop, formatFloat(value), opts...)
}

// Remove deletes the property and reports whether it existed.
func (m *Manager) Remove(entityID, plugin, prop string) bool {
	if entityID == "" || plugin == "" || prop == "" {
		return false
	}
	e, ok := m.resolve(entityID)
	return ok && e.Remove(plugin, prop)
}

// Contains reports whether the property exists.
func (m *Manager) Contains(entityID, plugin, prop string) bool {
	if entityID == "" || plugin == "" || prop == "" {
		return false
	}
	e, ok := m.resolve(entityID)
	return ok && e.Contains(plugin, prop)
}

// GlobalGet is Get on the global pseudo-character.
func (m *Manager) GlobalGet(plugin, prop, fallback string) string {
	return m.Get(savedata.GlobalID, plugin, prop, fallback)
}

// GlobalGetBool is GetBool on the global pseudo-character.
func (m *Manager) GlobalGetBool(plugin, prop string, fallback bool) bool {
	return m.GetBool(savedata.GlobalID, plugin, prop, fallback)
}

// GlobalGetInt is GetInt on the global pseudo-character.
func (m *Manager) GlobalGetInt(plugin, prop string, fallback int) int {
	return m.GetInt(savedata.GlobalID, plugin, prop, fallback)
}

// GlobalGetFloat is GetFloat on the global pseudo-character.
func (m *Manager) GlobalGetFloat(plugin, prop string, fallback float64) float64 {
	return m.GetFloat(savedata.GlobalID, plugin, prop, fallback)
}

// GlobalSet is Set on the global pseudo-character.
func (m *Manager) GlobalSet(plugin, prop, value string, opts ...WriteOption) bool {
	return m.Set(savedata.GlobalID, plugin, prop, value, opts...)
}

// GlobalSetBool is SetBool on the global pseudo-character.
func (m *Manager) GlobalSetBool(plugin, prop string, value bool, opts ...WriteOption) bool {
	return m.SetBool(savedata.GlobalID, plugin, prop, value, opts...)
}

// GlobalSetInt is SetInt on the global pseudo-character.
func (m *Manager) GlobalSetInt(plugin, prop string, value int, opts ...WriteOption) bool {
	return m.SetInt(savedata.GlobalID, plugin, prop, value, opts...)
}

// GlobalSetFloat is SetFloat on the global pseudo-character.
func (m *Manager) GlobalSetFloat(plugin, prop string, value float64, opts ...WriteOption) bool {
	return m.SetFloat(savedata.GlobalID, plugin, prop, value, opts...)
}

// GlobalRemove is Remove on the global pseudo-character.
func (m *Manager) GlobalRemove(plugin, prop string) bool {
	return m.Remove(savedata.GlobalID, plugin, prop)
}

// GlobalContains is Contains on the global pseudo-character.
func (m *Manager) GlobalContains(plugin, prop string) bool {
	return m.Contains(savedata.GlobalID, plugin, prop)
}
