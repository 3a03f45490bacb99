package savedata

import (
	"sort"

	"github.com/beevik/etree"
	"github.com/goliatone/go-exsave/internal/xmlnode"
)

// Kind selects how an entity is identified in the side-file.
type Kind int

const (
	// KindCharacter records are keyed by guid and carry name metadata.
	KindCharacter Kind = iota
	// KindNPC records are keyed by the NPC unique name only.
	KindNPC
)

func (k Kind) idAttr() string {
	if k == KindNPC {
		return attrUniqueName
	}
	return attrGUID
}

func (k Kind) String() string {
	if k == KindNPC {
		return "npc"
	}
	return "character"
}

// Identity is the bookkeeping metadata stored next to a character record.
// None of it takes part in lookups.
type Identity struct {
	LastName  string
	FirstName string
	CreatedAt string
}

// Entity owns the plugin property bags of one character (or the global
// pseudo-character).
type Entity struct {
	ID       string
	Identity Identity
	Kind     Kind

	plugins map[string]*Properties
}

// NewEntity returns an empty character record.
func NewEntity(id string, identity Identity) *Entity {
	e := &Entity{Kind: KindCharacter}
	e.Identify(id, identity)
	return e
}

// NewNPCEntity returns an empty NPC record keyed by uniqueName.
func NewNPCEntity(uniqueName string) *Entity {
	e := &Entity{Kind: KindNPC}
	e.Identify(uniqueName, Identity{})
	return e
}

// Identify resets identity metadata and drops every plugin bag.
func (e *Entity) Identify(id string, identity Identity) {
	e.ID = id
	e.Identity = identity
	e.plugins = map[string]*Properties{}
}

// Rename updates the metadata and keeps plugin data.
func (e *Entity) Rename(identity Identity) bool {
	if e == nil {
		return false
	}
	e.Identity = identity
	return true
}

// Plugin returns the bag for pluginName.
func (e *Entity) Plugin(pluginName string) (*Properties, bool) {
	if e == nil {
		return nil, false
	}
	p, ok := e.plugins[pluginName]
	return p, ok
}

// ReplacePlugin installs props as the bag for pluginName. The bag is renamed
// to pluginName so the element it serialises to stays addressable.
func (e *Entity) ReplacePlugin(pluginName string, props *Properties) {
	if props == nil {
		props = NewProperties(pluginName)
	}
	props.name = pluginName
	if e.plugins == nil {
		e.plugins = map[string]*Properties{}
	}
	e.plugins[pluginName] = props
}

// PluginNames returns the owned plugin names sorted ascending.
func (e *Entity) PluginNames() []string {
	if e == nil || len(e.plugins) == 0 {
		return nil
	}
	names := make([]string, 0, len(e.plugins))
	for name := range e.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Contains reports whether the plugin bag holds propName.
func (e *Entity) Contains(pluginName, propName string) bool {
	p, ok := e.Plugin(pluginName)
	return ok && p.Contains(propName)
}

// Get reads propName from the plugin bag, or returns fallback.
func (e *Entity) Get(pluginName, propName, fallback string) string {
	p, ok := e.Plugin(pluginName)
	if !ok {
		return fallback
	}
	return p.Get(propName, fallback)
}

// Set writes a value, creating the plugin bag on demand.
func (e *Entity) Set(pluginName, propName, value string) bool {
	p, ok := e.Plugin(pluginName)
	if !ok {
		p = NewProperties(pluginName)
		e.ReplacePlugin(pluginName, p)
	}
	return p.Set(propName, value)
}

// Remove deletes propName from the plugin bag and reports whether it existed.
func (e *Entity) Remove(pluginName, propName string) bool {
	p, ok := e.Plugin(pluginName)
	return ok && p.Remove(propName)
}

// LoadFrom reads identity attributes then every plugins/plugin child. Plugin
// elements without a name are ignored; duplicates overwrite.
func (e *Entity) LoadFrom(el *etree.Element) {
	id := xmlnode.AttrOr(el, e.Kind.idAttr(), "")
	identity := Identity{}
	if e.Kind == KindCharacter {
		identity = Identity{
			LastName:  xmlnode.AttrOr(el, attrLastName, ""),
			FirstName: xmlnode.AttrOr(el, attrFirstName, ""),
			CreatedAt: xmlnode.AttrOr(el, attrCreateTime, ""),
		}
	}
	e.Identify(id, identity)
	if el == nil {
		return
	}

	plugins := el.SelectElement(tagPlugins)
	if plugins == nil {
		return
	}
	for _, node := range plugins.SelectElements(tagPlugin) {
		name, ok := xmlnode.Attr(node, attrName)
		if !ok {
			continue
		}
		e.ReplacePlugin(name, LoadProperties(node))
	}
}

// SaveTo writes identity attributes and rewrites each owned plugin element in
// full. Plugin elements this entity does not own are preserved.
func (e *Entity) SaveTo(el *etree.Element) {
	if e == nil || el == nil {
		return
	}
	xmlnode.SetAttr(el, e.Kind.idAttr(), e.ID)
	if e.Kind == KindCharacter {
		xmlnode.SetAttr(el, attrLastName, e.Identity.LastName)
		xmlnode.SetAttr(el, attrFirstName, e.Identity.FirstName)
		xmlnode.SetAttr(el, attrCreateTime, e.Identity.CreatedAt)
	}

	plugins := xmlnode.SelectOrCreate(el, tagPlugins)
	for _, name := range e.PluginNames() {
		node := xmlnode.FindByAttr(plugins, tagPlugin, attrName, name)
		if node == nil {
			node = plugins.CreateElement(tagPlugin)
		} else {
			xmlnode.Clear(node)
		}
		e.plugins[name].SaveTo(node)
	}
}

// Clone returns a deep copy of the record.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	out := &Entity{ID: e.ID, Identity: e.Identity, Kind: e.Kind, plugins: make(map[string]*Properties, len(e.plugins))}
	for name, props := range e.plugins {
		out.plugins[name] = props.Clone()
	}
	return out
}
