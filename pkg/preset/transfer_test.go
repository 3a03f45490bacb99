package preset_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	exsave "github.com/goliatone/go-exsave"
	"github.com/goliatone/go-exsave/internal/xmlnode"
	"github.com/goliatone/go-exsave/pkg/activity"
	"github.com/goliatone/go-exsave/pkg/preset"
	"github.com/goliatone/go-exsave/pkg/rules"
	"github.com/goliatone/go-exsave/pkg/storage"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScene struct {
	edit     bool
	notified int
}

func (s *fakeScene) IsEditScene() bool    { return s.edit }
func (s *fakeScene) NotifyPresetApplied() { s.notified++ }

type fixture struct {
	manager  *exsave.Manager
	transfer *preset.Transfer
	store    *storage.FileStore
	scene    *fakeScene
	capture  *activity.CaptureHook
	logged   []exsave.HookLogEvent
}

func newFixture(t *testing.T, opts ...preset.Option) *fixture {
	t.Helper()
	f := &fixture{
		manager: exsave.New(exsave.WithStore(storage.NewMemoryStore())),
		store:   storage.NewMemoryStore(),
		scene:   &fakeScene{edit: true},
		capture: &activity.CaptureHook{},
	}
	base := []preset.Option{
		preset.WithStore(f.store),
		preset.WithDirectory("Preset"),
		preset.WithScene(f.scene),
		preset.WithActivityHooks(activity.Hooks{f.capture}),
		preset.WithLogger(exsave.LoggerFunc(func(event exsave.HookLogEvent) {
			f.logged = append(f.logged, event)
		})),
	}
	f.transfer = preset.New(f.manager, append(base, opts...)...)
	return f
}

func (f *fixture) read(t *testing.T, path string) string {
	t.Helper()
	data, err := afero.ReadFile(f.store.Fs(), path)
	require.NoError(t, err)
	return string(data)
}

func TestPresetRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.transfer.Register("P"))
	require.True(t, f.manager.Set("E1", "P", "x", "42"))

	f.transfer.Capture("E1", preset.KindAll)
	require.True(t, f.transfer.Buffered())
	require.NoError(t, f.transfer.Commit(ctx, "E1", "slot1", preset.KindAll))

	path := f.transfer.Path("slot1")
	assert.Equal(t, "Preset/slot1.expreset.xml", path)
	doc, err := xmlnode.Parse([]byte(f.read(t, path)))
	require.NoError(t, err)
	root := doc.Root()
	require.Equal(t, "plugins", root.Tag)
	plugins := root.SelectElements("plugin")
	require.Len(t, plugins, 1)
	assert.Equal(t, "P", plugins[0].SelectAttrValue("name", ""))
	prop := plugins[0].SelectElement("prop")
	require.NotNil(t, prop)
	assert.Equal(t, "x", prop.SelectAttrValue("name", ""))
	assert.Equal(t, "42", prop.SelectAttrValue("value", ""))

	f.manager.RegisterEntity("E1", "", "", "")
	require.Equal(t, "", f.manager.Get("E1", "P", "x", ""))

	require.NoError(t, f.transfer.Apply(ctx, "E1", "slot1"))
	assert.Equal(t, "42", f.manager.Get("E1", "P", "x", ""))
	assert.Equal(t, 1, f.scene.notified)

	require.Len(t, f.capture.Events, 2)
	assert.Equal(t, activity.VerbPresetCommitted, f.capture.Events[0].Verb)
	assert.Equal(t, activity.VerbPresetApplied, f.capture.Events[1].Verb)
	assert.Equal(t, "E1", f.capture.Events[1].ActorID)
}

func TestEmptyPreset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.transfer.Register("P"))
	require.True(t, f.manager.Set("E1", "Other", "x", "1"))

	assert.Nil(t, f.transfer.Extract("E1", preset.KindAll))
	require.NoError(t, f.transfer.Commit(ctx, "E1", "empty", preset.KindAll))
	exists, err := afero.Exists(f.store.Fs(), f.transfer.Path("empty"))
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, f.transfer.Apply(ctx, "E1", "empty"))
	assert.Equal(t, "1", f.manager.Get("E1", "Other", "x", ""))
	assert.False(t, f.manager.Contains("E1", "P", "x"))
	assert.Equal(t, 0, f.scene.notified)
	assert.Empty(t, f.capture.Events)
}

func TestApplyFromMemoryConsumesBuffer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.transfer.Register("P"))
	require.True(t, f.manager.Set("E1", "P", "x", "captured"))

	f.transfer.Capture("E1", preset.KindBody)
	require.True(t, f.manager.Set("E1", "P", "x", "changed"))

	require.NoError(t, f.transfer.Apply(ctx, "E2", ""))
	assert.Equal(t, "captured", f.manager.Get("E2", "P", "x", ""), "applies the buffered copy and auto-vivifies")
	assert.False(t, f.transfer.Buffered())

	require.NoError(t, f.transfer.Apply(ctx, "E3", ""))
	assert.False(t, f.manager.ContainsEntity("E3"))
}

func TestCaptureKeepsBufferOnEmptyExtract(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.transfer.Register("P"))
	require.True(t, f.manager.Set("E1", "P", "x", "1"))

	f.transfer.Capture("E1", preset.KindAll)
	f.transfer.Capture("nobody", preset.KindAll)
	assert.True(t, f.transfer.Buffered())
}

func TestCommitReExtracts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.transfer.Register("P"))
	require.True(t, f.manager.Set("E1", "P", "x", "old"))

	f.transfer.Capture("E1", preset.KindAll)
	require.True(t, f.manager.Set("E1", "P", "x", "new"))
	require.NoError(t, f.transfer.Commit(ctx, "E1", "slot", preset.KindAll))

	assert.Contains(t, f.read(t, f.transfer.Path("slot")), `value="new"`)
}

func TestCommitWithoutFilenameIsNoop(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.transfer.Register("P"))
	require.True(t, f.manager.Set("E1", "P", "x", "1"))

	require.NoError(t, f.transfer.Commit(context.Background(), "E1", "", preset.KindAll))
	exists, err := afero.DirExists(f.store.Fs(), "Preset")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWearPresetsCarryNoPluginData(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.transfer.Register("P"))
	require.True(t, f.manager.Set("E1", "P", "x", "1"))

	assert.Nil(t, f.transfer.Extract("E1", preset.KindWear))
	assert.NotNil(t, f.transfer.Extract("E1", preset.KindBody))
}

func TestOnlyAllowListedPluginsTransfer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.transfer.Register("B"))
	require.NoError(t, f.transfer.Register("A"))
	require.NoError(t, f.transfer.Register("A"))
	assert.Equal(t, []string{"A", "B"}, f.transfer.Plugins())

	f.manager.Set("E1", "A", "k", "1")
	f.manager.Set("E1", "B", "k", "2")
	f.manager.Set("E1", "Private", "k", "3")
	require.NoError(t, f.transfer.Commit(ctx, "E1", "slot", preset.KindAll))

	out := f.read(t, f.transfer.Path("slot"))
	assert.NotContains(t, out, "Private")
	assert.Less(t, strings.Index(out, `name="A"`), strings.Index(out, `name="B"`))

	require.NoError(t, f.transfer.Apply(ctx, "E2", "slot"))
	assert.Equal(t, "1", f.manager.Get("E2", "A", "k", ""))
	assert.False(t, f.manager.Contains("E2", "Private", "k"))
}

func TestApplyIgnoresUnregisteredPluginsInFile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.transfer.Register("P"))
	fragment := `<plugins><plugin name="P"><prop name="x" value="1"/></plugin><plugin name="Q"><prop name="y" value="2"/></plugin></plugins>`
	require.NoError(t, afero.WriteFile(f.store.Fs(), f.transfer.Path("hand"), []byte(fragment), 0o644))

	require.NoError(t, f.transfer.Apply(ctx, "E1", "hand"))
	assert.Equal(t, "1", f.manager.Get("E1", "P", "x", ""))
	assert.False(t, f.manager.Contains("E1", "Q", "y"))
}

func TestSceneNotifiedOnlyInEditScene(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.scene.edit = false
	require.NoError(t, f.transfer.Register("P"))
	f.manager.Set("E1", "P", "x", "1")
	require.NoError(t, f.transfer.Commit(ctx, "E1", "slot", preset.KindAll))

	require.NoError(t, f.transfer.Apply(ctx, "E1", "slot"))
	assert.Equal(t, 0, f.scene.notified)

	f.scene.edit = true
	require.NoError(t, f.transfer.Apply(ctx, "E1", "slot"))
	assert.Equal(t, 1, f.scene.notified)
}

func TestDiscard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.transfer.Register("P"))
	f.manager.Set("E1", "P", "x", "1")
	require.NoError(t, f.transfer.Commit(ctx, "E1", "slot", preset.KindAll))

	require.NoError(t, f.transfer.Discard(ctx, "slot"))
	exists, err := afero.Exists(f.store.Fs(), f.transfer.Path("slot"))
	require.NoError(t, err)
	assert.False(t, exists)
	require.NoError(t, f.transfer.Discard(ctx, "slot"))

	verbs := []string{}
	for _, evt := range f.capture.Events {
		verbs = append(verbs, evt.Verb)
	}
	assert.Equal(t, []string{activity.VerbPresetCommitted, activity.VerbPresetDiscarded}, verbs)
}

func TestConditionsFilterPlugins(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.transfer.Register("Voice", preset.WithCondition(`props.enabled == "true"`)))
	require.NoError(t, f.transfer.Register("Pose", preset.WithCondition(`int(props.level) > 2`)))

	f.manager.Set("E1", "Voice", "enabled", "false")
	f.manager.Set("E1", "Pose", "level", "3")

	doc := f.transfer.Extract("E1", preset.KindAll)
	require.NotNil(t, doc)
	plugins := doc.Root().SelectElements("plugin")
	require.Len(t, plugins, 1)
	assert.Equal(t, "Pose", plugins[0].SelectAttrValue("name", ""))
}

func TestConditionFailuresExcludeAndLog(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.transfer.Register("P", preset.WithCondition(`props.x`)))
	f.manager.Set("E1", "P", "x", "1")

	assert.Nil(t, f.transfer.Extract("E1", preset.KindAll))
	require.Len(t, f.logged, 1)
	assert.Equal(t, "preset.condition", f.logged[0].Hook)
	assert.ErrorIs(t, f.logged[0].Err, rules.ErrNotBoolean)
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	assert.Error(t, f.transfer.Register(" "))
	assert.Error(t, f.transfer.Register("P", preset.WithCondition(`props.x ==`)))
	assert.Empty(t, f.transfer.Plugins())
}

func TestCELConditions(t *testing.T) {
	f := newFixture(t, preset.WithEvaluator(rules.NewCELEvaluator()))
	require.NoError(t, f.transfer.Register("P", preset.WithCondition(`entity == "E1" && props.x == "1"`)))
	f.manager.Set("E1", "P", "x", "1")
	f.manager.Set("E2", "P", "x", "1")

	assert.NotNil(t, f.transfer.Extract("E1", preset.KindAll))
	assert.Nil(t, f.transfer.Extract("E2", preset.KindAll))
}

func TestPropertyHelpersInConditions(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.transfer.Register("Voice", preset.WithCondition(`truthy(props.enabled)`)))
	require.NoError(t, f.transfer.Register("Pose", preset.WithCondition(`num(props.level) > 2`)))
	require.NoError(t, f.transfer.Register("Face", preset.WithCondition(`num(props.missing, 5) == 5 && truthy(props.missing, true)`)))

	f.manager.Set("E1", "Voice", "enabled", "0")
	f.manager.Set("E1", "Pose", "level", "2.5")
	f.manager.Set("E1", "Face", "blink", "yes")

	doc := f.transfer.Extract("E1", preset.KindAll)
	require.NotNil(t, doc)
	var names []string
	for _, plugin := range doc.Root().SelectElements("plugin") {
		names = append(names, plugin.SelectAttrValue("name", ""))
	}
	assert.Equal(t, []string{"Face", "Pose"}, names)
	assert.Empty(t, f.logged)
}

func TestWithFunctionsAddsCustomHelpers(t *testing.T) {
	registry := rules.NewFunctionRegistry()
	require.NoError(t, registry.Register("tagged", func(args ...any) (any, error) {
		return len(args) == 1 && strings.HasPrefix(fmt.Sprint(args[0]), "#"), nil
	}))
	f := newFixture(t, preset.WithFunctions(registry))
	require.NoError(t, f.transfer.Register("P", preset.WithCondition(`tagged(props.note) && truthy(props.on)`)))

	f.manager.Set("E1", "P", "note", "#keep")
	f.manager.Set("E1", "P", "on", "true")
	f.manager.Set("E2", "P", "note", "drop")
	f.manager.Set("E2", "P", "on", "true")

	assert.NotNil(t, f.transfer.Extract("E1", preset.KindAll))
	assert.Nil(t, f.transfer.Extract("E2", preset.KindAll))
	assert.ElementsMatch(t, []string{"tagged"}, registry.Names())
}

func TestCELConditionsCallPropertyHelpers(t *testing.T) {
	evaluator := rules.NewCELEvaluator(rules.CELWithFunctionRegistry(preset.NewFunctions()))
	f := newFixture(t, preset.WithEvaluator(evaluator))
	require.NoError(t, f.transfer.Register("P", preset.WithCondition(`call("num", [props.level]) > 2.0`)))

	f.manager.Set("E1", "P", "level", "3")
	f.manager.Set("E2", "P", "level", "1")

	assert.NotNil(t, f.transfer.Extract("E1", preset.KindAll))
	assert.Nil(t, f.transfer.Extract("E2", preset.KindAll))
}
