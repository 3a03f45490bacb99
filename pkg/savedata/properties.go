package savedata

import (
	"sort"

	"github.com/beevik/etree"
	"github.com/goliatone/go-exsave/internal/xmlnode"
)

// Properties is the string property bag one plugin owns for one entity.
type Properties struct {
	name   string
	values map[string]string
}

// NewProperties returns an empty bag for pluginName.
func NewProperties(pluginName string) *Properties {
	return &Properties{name: pluginName, values: map[string]string{}}
}

// Name returns the owning plugin name.
func (p *Properties) Name() string {
	if p == nil {
		return ""
	}
	return p.name
}

// Len returns the number of stored properties.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.values)
}

// Contains reports whether propName is stored.
func (p *Properties) Contains(propName string) bool {
	if p == nil {
		return false
	}
	_, ok := p.values[propName]
	return ok
}

// Get returns the stored value or fallback.
func (p *Properties) Get(propName, fallback string) string {
	if p == nil {
		return fallback
	}
	if value, ok := p.values[propName]; ok {
		return value
	}
	return fallback
}

// Lookup returns the stored value and whether it exists.
func (p *Properties) Lookup(propName string) (string, bool) {
	if p == nil {
		return "", false
	}
	value, ok := p.values[propName]
	return value, ok
}

// Set upserts a value. It always succeeds.
func (p *Properties) Set(propName, value string) bool {
	if p.values == nil {
		p.values = map[string]string{}
	}
	p.values[propName] = value
	return true
}

// Remove deletes propName, reporting whether it existed.
func (p *Properties) Remove(propName string) bool {
	if p == nil {
		return false
	}
	if _, ok := p.values[propName]; !ok {
		return false
	}
	delete(p.values, propName)
	return true
}

// Keys returns the property names sorted ascending.
func (p *Properties) Keys() []string {
	if p == nil || len(p.values) == 0 {
		return nil
	}
	keys := make([]string, 0, len(p.values))
	for key := range p.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a detached copy of the values.
func (p *Properties) Snapshot() map[string]string {
	out := make(map[string]string, p.Len())
	if p == nil {
		return out
	}
	for key, value := range p.values {
		out[key] = value
	}
	return out
}

// Clone returns a deep copy.
func (p *Properties) Clone() *Properties {
	if p == nil {
		return nil
	}
	return &Properties{name: p.name, values: p.Snapshot()}
}

// LoadFrom replaces the bag with the contents of a <plugin> element. Later
// <prop> entries with the same name win; entries without a name are skipped.
func (p *Properties) LoadFrom(el *etree.Element) {
	p.name = xmlnode.AttrOr(el, attrName, "")
	p.values = map[string]string{}
	if el == nil {
		return
	}
	for _, prop := range el.SelectElements(tagProp) {
		name, ok := xmlnode.Attr(prop, attrName)
		if !ok {
			continue
		}
		p.values[name] = xmlnode.AttrOr(prop, attrValue, "")
	}
}

// SaveTo writes the plugin name and upserts one <prop> per property. Children
// that do not match a stored property are left alone.
func (p *Properties) SaveTo(el *etree.Element) {
	if p == nil || el == nil {
		return
	}
	xmlnode.SetAttr(el, attrName, p.name)
	for _, key := range p.Keys() {
		prop, _ := xmlnode.FindOrCreateByAttr(el, tagProp, attrName, key)
		xmlnode.SetAttr(prop, attrName, key)
		xmlnode.SetAttr(prop, attrValue, p.values[key])
	}
}

// LoadProperties builds a bag from a <plugin> element.
func LoadProperties(el *etree.Element) *Properties {
	p := &Properties{}
	p.LoadFrom(el)
	return p
}
