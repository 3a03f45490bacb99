package exsave

// PluginData is a handle bound to one entity and plugin so callers do not
// repeat both on every access.
type PluginData struct {
	m        *Manager
	entityID string
	plugin   string
}

// Plugin returns a handle for entityID and plugin. Use GlobalID for settings
// not tied to a character.
func (m *Manager) Plugin(entityID, plugin string) *PluginData {
	return &PluginData{m: m, entityID: entityID, plugin: plugin}
}

// EntityID returns the entity the handle is bound to.
func (p *PluginData) EntityID() string { return p.entityID }

// Name returns the plugin name.
func (p *PluginData) Name() string { return p.plugin }

// Get reads prop, or fallback when it is missing.
func (p *PluginData) Get(prop, fallback string) string {
	return p.m.Get(p.entityID, p.plugin, prop, fallback)
}

// GetBool reads prop with the ParseBool fallback chain.
func (p *PluginData) GetBool(prop string, fallback bool) bool {
	return p.m.GetBool(p.entityID, p.plugin, prop, fallback)
}

// GetInt reads prop as an int.
func (p *PluginData) GetInt(prop string, fallback int) int {
	return p.m.GetInt(p.entityID, p.plugin, prop, fallback)
}

// GetFloat reads prop as a float64.
func (p *PluginData) GetFloat(prop string, fallback float64) float64 {
	return p.m.GetFloat(p.entityID, p.plugin, prop, fallback)
}

// Set writes prop, registering the entity if it is unknown.
func (p *PluginData) Set(prop, value string, opts ...WriteOption) bool {
	return p.m.Set(p.entityID, p.plugin, prop, value, opts...)
}

// SetBool writes prop as "true" or "false".
func (p *PluginData) SetBool(prop string, value bool, opts ...WriteOption) bool {
	return p.m.SetBool(p.entityID, p.plugin, prop, value, opts...)
}

// SetInt writes prop in base 10.
func (p *PluginData) SetInt(prop string, value int, opts ...WriteOption) bool {
	return p.m.SetInt(p.entityID, p.plugin, prop, value, opts...)
}

// SetFloat writes prop in the shortest form that reads back exactly.
func (p *PluginData) SetFloat(prop string, value float64, opts ...WriteOption) bool {
	return p.m.SetFloat(p.entityID, p.plugin, prop, value, opts...)
}

// Remove deletes prop and reports whether it existed.
func (p *PluginData) Remove(prop string) bool {
	return p.m.Remove(p.entityID, p.plugin, prop)
}

// Contains reports whether prop is stored.
func (p *PluginData) Contains(prop string) bool {
	return p.m.Contains(p.entityID, p.plugin, prop)
}

// Values returns a copy of every property of the plugin.
func (p *PluginData) Values() map[string]string {
	values, _ := p.m.PluginProperties(p.entityID, p.plugin)
	return values
}
