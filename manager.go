package exsave

import (
	"context"
	"fmt"

	"github.com/beevik/etree"
	"github.com/goliatone/go-exsave/internal/xmlnode"
	"github.com/goliatone/go-exsave/pkg/activity"
	"github.com/goliatone/go-exsave/pkg/savedata"
)

// GlobalID is the entity id of settings not tied to any character.
const GlobalID = savedata.GlobalID

// Identity is the bookkeeping metadata of a character.
type Identity = savedata.Identity

// Manager owns one save collection and the side-file it came from.
type Manager struct {
	cfg     config
	emitter *activity.Emitter
	data    *savedata.Collection
	// npcGUIDs routes a live character guid to an NPC record.
	npcGUIDs map[string]string
}

// New constructs a Manager holding only the global entity.
func New(opts ...Option) *Manager {
	cfg := applyOptions(opts)
	m := &Manager{
		cfg: cfg,
		emitter: activity.NewEmitter(cfg.activityHooks, activity.Config{
			Enabled: true,
			Channel: cfg.channel,
		}),
	}
	m.Reset()
	return m
}

// Reset drops every record and NPC binding.
func (m *Manager) Reset() {
	m.data = savedata.NewCollection()
	m.npcGUIDs = map[string]string{}
}

// Collection exposes the underlying collection for read-only tooling.
func (m *Manager) Collection() *savedata.Collection {
	return m.data
}

// Target returns the host save file the loaded data belongs to.
func (m *Manager) Target() string {
	return m.data.Target
}

// SideFilePath derives the side-file path of a host save path.
func (m *Manager) SideFilePath(savePath string) string {
	return savePath + m.cfg.suffix
}

// Load resets the manager and reads the side-file at path. A missing file
// leaves the fresh default and is not an error.
func (m *Manager) Load(ctx context.Context, path string) error {
	m.Reset()
	doc, ok, err := m.cfg.store.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("exsave: load %s: %w", path, err)
	}
	if !ok {
		return nil
	}
	m.data.LoadFrom(doc.SelectElement(savedata.RootTag))
	return nil
}

// Save merges the collection into the side-file at path and writes it back.
// Content of the existing file that the collection does not own is kept.
func (m *Manager) Save(ctx context.Context, path, target string) error {
	doc, ok, err := m.cfg.store.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("exsave: save %s: %w", path, err)
	}
	if !ok {
		doc = xmlnode.NewDocument()
	}
	if existing := doc.Root(); existing != nil && existing.Tag != savedata.RootTag {
		return fmt.Errorf("exsave: save %s: found <%s>: %w", path, existing.Tag, ErrForeignDocument)
	}
	root := xmlnode.SelectOrCreate(&doc.Element, savedata.RootTag)
	m.data.Target = target
	m.data.SaveTo(root)
	if err := m.cfg.store.Save(ctx, path, doc); err != nil {
		return fmt.Errorf("exsave: save %s: %w", path, err)
	}
	return nil
}

// Delete removes the side-file at path. It reports whether a file existed.
func (m *Manager) Delete(ctx context.Context, path string) (bool, error) {
	deleted, err := m.cfg.store.Delete(ctx, path)
	if err != nil {
		return false, fmt.Errorf("exsave: delete %s: %w", path, err)
	}
	return deleted, nil
}

// BindNPC routes guid to the NPC record uniqueName until the next Reset or
// UnbindNPC.
func (m *Manager) BindNPC(guid, uniqueName string) {
	if guid == "" || uniqueName == "" {
		return
	}
	m.npcGUIDs[guid] = uniqueName
}

// UnbindNPC removes the NPC routing of guid.
func (m *Manager) UnbindNPC(guid string) {
	delete(m.npcGUIDs, guid)
}

// IsNPC reports whether guid is currently routed to an NPC record.
func (m *Manager) IsNPC(guid string) bool {
	_, ok := m.npcGUIDs[guid]
	return ok
}

func (m *Manager) resolve(id string) (*savedata.Entity, bool) {
	if name, ok := m.npcGUIDs[id]; ok {
		if e, ok := m.data.NPC(name); ok {
			return e, true
		}
	}
	return m.data.Entity(id)
}

// vivify returns the record for id, registering it with blank metadata when
// it does not exist yet.
func (m *Manager) vivify(id string) *savedata.Entity {
	if e, ok := m.resolve(id); ok {
		return e
	}
	if name, ok := m.npcGUIDs[id]; ok {
		return m.data.EnsureNPC(name)
	}
	return m.data.Identify(id, Identity{})
}

// RegisterEntity registers id, or resets its metadata and plugin data when it
// already exists.
func (m *Manager) RegisterEntity(id, lastName, firstName, createdAt string) {
	if id == "" {
		return
	}
	if name, ok := m.npcGUIDs[id]; ok {
		m.data.EnsureNPC(name).Identify(name, Identity{})
		return
	}
	m.data.Identify(id, Identity{LastName: lastName, FirstName: firstName, CreatedAt: createdAt})
}

// Rename updates the metadata of a known character and keeps its data.
func (m *Manager) Rename(id, lastName, firstName, createdAt string) bool {
	if id == "" {
		return false
	}
	return m.data.Rename(id, Identity{LastName: lastName, FirstName: firstName, CreatedAt: createdAt})
}

// ContainsEntity reports whether a record exists for id.
func (m *Manager) ContainsEntity(id string) bool {
	if id == "" {
		return false
	}
	_, ok := m.resolve(id)
	return ok
}

// EntityIDs returns the character ids, global included, sorted ascending.
func (m *Manager) EntityIDs() []string {
	return m.data.EntityIDs()
}

// Cleanup drops every character not in liveIDs. The global entity is kept.
func (m *Manager) Cleanup(liveIDs []string) {
	m.data.Cleanup(liveIDs)
}

// CleanupHost runs Cleanup with the characters the host currently tracks.
func (m *Manager) CleanupHost(host Host) {
	if host == nil {
		return
	}
	m.Cleanup(host.LiveEntityIDs())
}

// ExportPlugin writes the properties of plugin for entityID into el. It
// reports false when there is nothing to export.
func (m *Manager) ExportPlugin(entityID, plugin string, el *etree.Element) bool {
	if entityID == "" || plugin == "" || el == nil {
		return false
	}
	e, ok := m.resolve(entityID)
	if !ok {
		return false
	}
	props, ok := e.Plugin(plugin)
	if !ok {
		return false
	}
	props.SaveTo(el)
	return true
}

// ImportPlugin replaces the properties of plugin for entityID with the
// content of el, registering the entity when needed.
func (m *Manager) ImportPlugin(entityID, plugin string, el *etree.Element) {
	if entityID == "" || plugin == "" || el == nil {
		return
	}
	m.vivify(entityID).ReplacePlugin(plugin, savedata.LoadProperties(el))
}

// PluginProperties returns a copy of the properties of plugin for entityID.
func (m *Manager) PluginProperties(entityID, plugin string) (map[string]string, bool) {
	e, ok := m.resolve(entityID)
	if !ok {
		return nil, false
	}
	props, ok := e.Plugin(plugin)
	if !ok {
		return nil, false
	}
	return props.Snapshot(), true
}

func (m *Manager) emit(ctx context.Context, event activity.Event) {
	if err := m.emitter.Emit(ctx, event); err != nil {
		m.cfg.logger.LogHook(HookLogEvent{Hook: "activity", Slot: -1, Detail: event.Verb, Err: err})
	}
}
