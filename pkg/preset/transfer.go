package preset

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/beevik/etree"
	exsave "github.com/goliatone/go-exsave"
	"github.com/goliatone/go-exsave/internal/xmlnode"
	"github.com/goliatone/go-exsave/pkg/activity"
	"github.com/goliatone/go-exsave/pkg/rules"
	"github.com/goliatone/go-exsave/pkg/savedata"
)

const (
	// DefaultSuffix is appended to a preset file name to name its side-file.
	DefaultSuffix = ".expreset.xml"
	// DefaultDirectory is where preset side-files live unless configured.
	DefaultDirectory = "Preset"
)

// Kind is the host preset type.
type Kind int

const (
	KindAll Kind = iota
	KindWear
	KindBody
)

func (k Kind) String() string {
	switch k {
	case KindWear:
		return "wear"
	case KindBody:
		return "body"
	default:
		return "all"
	}
}

// Source exports and imports the plugin data of one entity.
// *exsave.Manager satisfies it.
type Source interface {
	ExportPlugin(entityID, plugin string, el *etree.Element) bool
	ImportPlugin(entityID, plugin string, el *etree.Element)
}

// Scene reports the host scene and receives the applied notification.
type Scene interface {
	IsEditScene() bool
	NotifyPresetApplied()
}

type entry struct {
	condition string
}

// Transfer moves allow-listed plugin data between a Source and preset
// side-files.
type Transfer struct {
	cfg     config
	source  Source
	checker *rules.Checker
	emitter *activity.Emitter
	plugins map[string]entry
	buffer  *etree.Document
}

// New constructs a Transfer reading from and writing to source.
func New(source Source, opts ...Option) *Transfer {
	cfg := applyOptions(opts)
	t := &Transfer{
		cfg:     cfg,
		source:  source,
		plugins: map[string]entry{},
		emitter: activity.NewEmitter(cfg.activityHooks, activity.Config{
			Enabled: true,
			Channel: cfg.channel,
		}),
	}
	t.checker = rules.NewChecker(cfg.evaluator, rules.LoggerFunc(t.logCondition))
	return t
}

// Register adds name to the allow-list. Registering a name again replaces its
// condition.
func (t *Transfer) Register(name string, opts ...RegisterOption) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("preset: plugin name must not be empty")
	}
	reg := registration{}
	for _, opt := range opts {
		if opt != nil {
			opt(&reg)
		}
	}
	if reg.condition != "" {
		if _, err := t.checker.Evaluator().Compile(reg.condition); err != nil {
			return fmt.Errorf("preset: condition for %q: %w", name, err)
		}
	}
	t.plugins[name] = entry{condition: reg.condition}
	return nil
}

// Plugins returns the allow-listed plugin names sorted ascending.
func (t *Transfer) Plugins() []string {
	names := make([]string, 0, len(t.plugins))
	for name := range t.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Path returns the side-file path of a preset file name.
func (t *Transfer) Path(filename string) string {
	return filepath.Join(t.cfg.directory, filename+t.cfg.suffix)
}

// Buffered reports whether a captured fragment is waiting to be applied.
func (t *Transfer) Buffered() bool {
	return t.buffer != nil
}

// Extract builds the fragment for entityID. It returns nil when no plugin
// contributed data, which is a normal outcome.
func (t *Transfer) Extract(entityID string, kind Kind) *etree.Document {
	doc, _ := t.extract(entityID, "", kind)
	return doc
}

func (t *Transfer) extract(entityID, filename string, kind Kind) (*etree.Document, []string) {
	if kind == KindWear || entityID == "" {
		return nil, nil
	}
	doc, root := xmlnode.NewFragment(savedata.PluginsTag)
	var included []string
	for _, name := range t.Plugins() {
		el := etree.NewElement(savedata.PluginTag)
		if !t.source.ExportPlugin(entityID, name, el) {
			continue
		}
		if !t.allowed(entityID, filename, name, el) {
			continue
		}
		root.AddChild(el)
		included = append(included, name)
	}
	if len(included) == 0 {
		return nil, nil
	}
	return doc, included
}

func (t *Transfer) allowed(entityID, filename, name string, el *etree.Element) bool {
	condition := t.plugins[name].condition
	if condition == "" {
		return true
	}
	ok, err := t.checker.Check(rules.RuleContext{
		Props:  rules.PropsFromStrings(savedata.LoadProperties(el).Snapshot()),
		Plugin: name,
		Entity: entityID,
		Preset: filename,
	}, condition)
	return err == nil && ok
}

// Capture buffers the fragment of entityID for a preset that has no file
// name yet. An empty extract leaves the previous buffer untouched.
func (t *Transfer) Capture(entityID string, kind Kind) {
	if doc := t.Extract(entityID, kind); doc != nil {
		t.buffer = doc
	}
}

// Commit extracts the fragment of entityID again and writes it next to the
// preset filename. An empty filename means the host cancelled the save.
func (t *Transfer) Commit(ctx context.Context, entityID, filename string, kind Kind) error {
	if filename == "" {
		return nil
	}
	start := t.cfg.clock()
	doc, included := t.extract(entityID, filename, kind)
	if doc == nil {
		return nil
	}
	path := t.Path(filename)
	err := t.cfg.store.Save(ctx, path, doc)
	if err != nil {
		err = fmt.Errorf("preset: commit %s: %w", path, err)
	}
	t.log("preset.commit", path, entityID, start, err)
	if err != nil {
		return err
	}
	t.emit(ctx, activity.BuildPresetCommittedEvent(activity.PresetEventInput{
		EntityID:   entityID,
		Preset:     filename,
		Path:       path,
		Plugins:    included,
		OccurredAt: t.cfg.clock(),
	}))
	return nil
}

// Apply imports the allow-listed plugins of a preset into entityID. An empty
// filename consumes the captured buffer. The scene is notified only when it
// is the edit scene.
func (t *Transfer) Apply(ctx context.Context, entityID, filename string) error {
	start := t.cfg.clock()
	var (
		doc  *etree.Document
		path string
	)
	if filename == "" {
		doc, t.buffer = t.buffer, nil
	} else {
		path = t.Path(filename)
		loaded, ok, err := t.cfg.store.Load(ctx, path)
		if err != nil {
			err = fmt.Errorf("preset: apply %s: %w", path, err)
			t.log("preset.apply", path, entityID, start, err)
			return err
		}
		if ok {
			doc = loaded
		}
	}
	if doc == nil {
		return nil
	}

	var applied []string
	for _, name := range t.Plugins() {
		node := findPlugin(doc, name)
		if node == nil {
			continue
		}
		t.source.ImportPlugin(entityID, name, node)
		applied = append(applied, name)
	}

	if t.cfg.scene != nil && t.cfg.scene.IsEditScene() {
		t.cfg.scene.NotifyPresetApplied()
	}
	t.log("preset.apply", path, entityID, start, nil)
	t.emit(ctx, activity.BuildPresetAppliedEvent(activity.PresetEventInput{
		EntityID:   entityID,
		Preset:     filename,
		Path:       path,
		Plugins:    applied,
		OccurredAt: t.cfg.clock(),
	}))
	return nil
}

// Discard deletes the side-file of a preset when present.
func (t *Transfer) Discard(ctx context.Context, filename string) error {
	if filename == "" {
		return nil
	}
	start := t.cfg.clock()
	path := t.Path(filename)
	deleted, err := t.cfg.store.Delete(ctx, path)
	if err != nil {
		err = fmt.Errorf("preset: discard %s: %w", path, err)
	}
	t.log("preset.discard", path, "", start, err)
	if err != nil || !deleted {
		return err
	}
	t.emit(ctx, activity.BuildPresetDiscardedEvent(activity.PresetEventInput{
		Preset:     filename,
		Path:       path,
		OccurredAt: t.cfg.clock(),
	}))
	return nil
}

// findPlugin looks for a <plugin name=...> anywhere in the fragment.
func findPlugin(doc *etree.Document, name string) *etree.Element {
	for _, el := range doc.FindElements("//" + savedata.PluginTag) {
		if value, ok := xmlnode.Attr(el, "name"); ok && value == name {
			return el
		}
	}
	return nil
}

func (t *Transfer) log(hook, path, entityID string, start time.Time, err error) {
	t.cfg.logger.LogHook(exsave.HookLogEvent{
		Hook:     hook,
		Slot:     -1,
		Path:     path,
		Detail:   entityID,
		Duration: t.cfg.clock().Sub(start),
		Err:      err,
	})
}

func (t *Transfer) logCondition(event rules.LogEvent) {
	if event.Err == nil {
		return
	}
	t.cfg.logger.LogHook(exsave.HookLogEvent{
		Hook:     "preset.condition",
		Slot:     -1,
		Detail:   event.Scope,
		Duration: event.Duration,
		Err:      event.Err,
	})
}

func (t *Transfer) emit(ctx context.Context, event activity.Event) {
	if err := t.emitter.Emit(ctx, event); err != nil {
		t.cfg.logger.LogHook(exsave.HookLogEvent{Hook: "activity", Slot: -1, Detail: event.Verb, Err: err})
	}
}
