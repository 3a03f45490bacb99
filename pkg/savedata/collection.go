package savedata

import (
	"sort"

	"github.com/beevik/etree"
	"github.com/goliatone/go-exsave/internal/xmlnode"
)

// recordSet is one keyed container of <maid> elements.
type recordSet struct {
	container string
	kind      Kind
	records   map[string]*Entity
}

func newRecordSet(container string, kind Kind) *recordSet {
	return &recordSet{container: container, kind: kind, records: map[string]*Entity{}}
}

func (s *recordSet) ids() []string {
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *recordSet) load(root *etree.Element) {
	container := root.SelectElement(s.container)
	if container == nil {
		return
	}
	for _, node := range container.SelectElements(tagMaid) {
		id, ok := xmlnode.Attr(node, s.kind.idAttr())
		if !ok {
			continue
		}
		entity := &Entity{Kind: s.kind}
		entity.LoadFrom(node)
		s.records[id] = entity
	}
}

func (s *recordSet) save(root *etree.Element, always bool) {
	container := root.SelectElement(s.container)
	if container == nil {
		if !always && len(s.records) == 0 {
			return
		}
		container = root.CreateElement(s.container)
	}

	for _, node := range container.SelectElements(tagMaid) {
		id, ok := xmlnode.Attr(node, s.kind.idAttr())
		if ok {
			if _, known := s.records[id]; known {
				continue
			}
		}
		container.RemoveChild(node)
	}

	for _, id := range s.ids() {
		node, _ := xmlnode.FindOrCreateByAttr(container, tagMaid, s.kind.idAttr(), id)
		s.records[id].SaveTo(node)
	}
}

// Collection is the whole side-file: the host save it belongs to plus every
// character and NPC record.
type Collection struct {
	// Target names the primary save file this data is attached to.
	Target string

	maids *recordSet
	npcs  *recordSet
}

// NewCollection returns a collection holding only the global entity.
func NewCollection() *Collection {
	c := &Collection{}
	c.Reset()
	return c
}

// Reset drops every record and re-registers the global entity.
func (c *Collection) Reset() {
	c.maids = newRecordSet(tagMaids, KindCharacter)
	c.npcs = newRecordSet(tagNPCMaids, KindNPC)
	c.Identify(GlobalID, Identity{})
}

// LoadFrom replaces the collection with the content of a <savedata> element.
// A nil root leaves a freshly reset collection.
func (c *Collection) LoadFrom(root *etree.Element) {
	c.Target = xmlnode.AttrOr(root, attrTarget, "")
	c.Reset()
	if root == nil {
		return
	}
	c.maids.load(root)
	c.npcs.load(root)
	if _, ok := c.maids.records[GlobalID]; !ok {
		c.Identify(GlobalID, Identity{})
	}
}

// SaveTo merges the collection into a <savedata> element. <maid> elements
// whose id is not held in memory are removed first.
func (c *Collection) SaveTo(root *etree.Element) {
	if root == nil {
		return
	}
	xmlnode.SetAttr(root, attrTarget, c.Target)
	c.maids.save(root, true)
	c.npcs.save(root, false)
}

// Cleanup keeps only the character records listed in liveIDs plus the global
// record. NPC records are not affected.
func (c *Collection) Cleanup(liveIDs []string) {
	live := make(map[string]struct{}, len(liveIDs)+1)
	for _, id := range liveIDs {
		live[id] = struct{}{}
	}
	live[GlobalID] = struct{}{}
	for id := range c.maids.records {
		if _, ok := live[id]; !ok {
			delete(c.maids.records, id)
		}
	}
}

// EntityIDs returns the character record ids sorted ascending.
func (c *Collection) EntityIDs() []string {
	return c.maids.ids()
}

// ContainsEntity reports whether a character record exists for id.
func (c *Collection) ContainsEntity(id string) bool {
	_, ok := c.maids.records[id]
	return ok
}

// Entity returns the character record for id.
func (c *Collection) Entity(id string) (*Entity, bool) {
	e, ok := c.maids.records[id]
	return e, ok
}

// Identify registers id, or resets it when it already exists.
func (c *Collection) Identify(id string, identity Identity) *Entity {
	e, ok := c.maids.records[id]
	if !ok {
		e = &Entity{Kind: KindCharacter}
		c.maids.records[id] = e
	}
	e.Identify(id, identity)
	return e
}

// Rename updates metadata of an existing record. It reports false when id is
// unknown.
func (c *Collection) Rename(id string, identity Identity) bool {
	e, ok := c.maids.records[id]
	return ok && e.Rename(identity)
}

// Contains reports whether character id stores the property.
func (c *Collection) Contains(id, pluginName, propName string) bool {
	e, ok := c.Entity(id)
	return ok && e.Contains(pluginName, propName)
}

// Get reads a property of character id, or returns fallback.
func (c *Collection) Get(id, pluginName, propName, fallback string) string {
	e, ok := c.Entity(id)
	if !ok {
		return fallback
	}
	return e.Get(pluginName, propName, fallback)
}

// Set writes through to an existing record; it never creates one.
func (c *Collection) Set(id, pluginName, propName, value string) bool {
	e, ok := c.Entity(id)
	return ok && e.Set(pluginName, propName, value)
}

// Remove deletes a property of character id and reports whether it existed.
func (c *Collection) Remove(id, pluginName, propName string) bool {
	e, ok := c.Entity(id)
	return ok && e.Remove(pluginName, propName)
}

// NPC returns the NPC record for uniqueName.
func (c *Collection) NPC(uniqueName string) (*Entity, bool) {
	e, ok := c.npcs.records[uniqueName]
	return e, ok
}

// ContainsNPC reports whether an NPC record exists.
func (c *Collection) ContainsNPC(uniqueName string) bool {
	_, ok := c.npcs.records[uniqueName]
	return ok
}

// EnsureNPC returns the NPC record for uniqueName, creating it when missing.
// Existing plugin data is kept.
func (c *Collection) EnsureNPC(uniqueName string) *Entity {
	if e, ok := c.npcs.records[uniqueName]; ok {
		return e
	}
	e := NewNPCEntity(uniqueName)
	c.npcs.records[uniqueName] = e
	return e
}

// NPCNames returns the NPC unique names sorted ascending.
func (c *Collection) NPCNames() []string {
	return c.npcs.ids()
}
