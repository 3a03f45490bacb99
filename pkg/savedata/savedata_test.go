package savedata

import (
	"fmt"
	"testing"

	"github.com/beevik/etree"
	"github.com/goliatone/go-exsave/internal/xmlnode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeCollection(t *testing.T, c *Collection) string {
	t.Helper()
	doc := xmlnode.NewDocument()
	c.SaveTo(doc.CreateElement(RootTag))
	data, err := xmlnode.Encode(doc)
	require.NoError(t, err)
	return string(data)
}

func decodeCollection(t *testing.T, raw string) *Collection {
	t.Helper()
	doc, err := xmlnode.Parse([]byte(raw))
	require.NoError(t, err)
	c := NewCollection()
	c.LoadFrom(doc.SelectElement(RootTag))
	return c
}

func contents(c *Collection) map[string]map[string]map[string]string {
	out := map[string]map[string]map[string]string{}
	for _, id := range c.EntityIDs() {
		e, _ := c.Entity(id)
		plugins := map[string]map[string]string{}
		for _, name := range e.PluginNames() {
			p, _ := e.Plugin(name)
			plugins[name] = p.Snapshot()
		}
		out[id] = plugins
	}
	return out
}

func TestPropertiesBasics(t *testing.T) {
	p := NewProperties("P")

	assert.False(t, p.Contains("x"))
	assert.Equal(t, "d", p.Get("x", "d"))
	assert.True(t, p.Set("x", "1"))
	assert.True(t, p.Set("x", "2"))
	assert.Equal(t, "2", p.Get("x", "d"))
	assert.True(t, p.Remove("x"))
	assert.False(t, p.Remove("x"))

	var missing *Properties
	assert.Equal(t, "d", missing.Get("x", "d"))
	assert.False(t, missing.Contains("x"))
}

func TestPropertiesLoadLastWinsAndSkipsUnnamed(t *testing.T) {
	doc, err := xmlnode.Parse([]byte(`<plugin name="P">
		<prop name="a" value="1"/>
		<prop value="orphan"/>
		<prop name="a" value="2"/>
		<prop name="b"/>
	</plugin>`))
	require.NoError(t, err)

	p := LoadProperties(doc.Root())

	assert.Equal(t, "P", p.Name())
	assert.Equal(t, map[string]string{"a": "2", "b": ""}, p.Snapshot())
}

func TestPropertiesSaveKeepsUnrelatedChildren(t *testing.T) {
	el := etree.NewElement("plugin")
	el.CreateElement("note").CreateAttr("text", "keep me")
	stale := el.CreateElement("prop")
	stale.CreateAttr("name", "x")
	stale.CreateAttr("value", "old")

	p := NewProperties("P")
	p.Set("x", "new")
	p.Set("y", "fresh")
	p.SaveTo(el)
	p.SaveTo(el)

	assert.NotNil(t, el.SelectElement("note"))
	assert.Len(t, el.SelectElements("prop"), 2)
	assert.Equal(t, "new", xmlnode.FindByAttr(el, "prop", "name", "x").SelectAttrValue("value", ""))
}

func TestEntityIdentifyClearsAndRenameKeeps(t *testing.T) {
	e := NewEntity("E1", Identity{LastName: "L"})
	e.Set("P", "x", "1")

	assert.True(t, e.Rename(Identity{LastName: "L2", FirstName: "F2", CreatedAt: "now"}))
	assert.Equal(t, "1", e.Get("P", "x", ""))
	assert.Equal(t, "L2", e.Identity.LastName)

	e.Identify("E1", Identity{})
	assert.False(t, e.Contains("P", "x"))
	assert.Empty(t, e.PluginNames())
}

func TestEntitySaveRewritesOwnedPluginsOnly(t *testing.T) {
	doc, err := xmlnode.Parse([]byte(`<maid guid="E1">
		<plugins>
			<plugin name="P"><prop name="gone" value="1"/></plugin>
			<plugin name="Other"><prop name="k" value="v"/></plugin>
		</plugins>
		<extra/>
	</maid>`))
	require.NoError(t, err)

	e := NewEntity("E1", Identity{FirstName: "Ann"})
	e.Set("P", "kept", "2")
	e.SaveTo(doc.Root())

	plugins := doc.Root().SelectElement("plugins")
	p := xmlnode.FindByAttr(plugins, "plugin", "name", "P")
	require.NotNil(t, p)
	assert.Nil(t, xmlnode.FindByAttr(p, "prop", "name", "gone"))
	assert.NotNil(t, xmlnode.FindByAttr(p, "prop", "name", "kept"))
	assert.NotNil(t, xmlnode.FindByAttr(plugins, "plugin", "name", "Other"))
	assert.NotNil(t, doc.Root().SelectElement("extra"))
	assert.Equal(t, "Ann", doc.Root().SelectAttrValue("firstname", ""))
}

func TestCollectionAlwaysHasGlobal(t *testing.T) {
	c := NewCollection()
	assert.True(t, c.ContainsEntity(GlobalID))

	c.LoadFrom(nil)
	assert.True(t, c.ContainsEntity(GlobalID))

	c.Cleanup(nil)
	assert.True(t, c.ContainsEntity(GlobalID))
}

func TestCollectionSetDoesNotCreate(t *testing.T) {
	c := NewCollection()
	assert.False(t, c.Set("nobody", "P", "x", "1"))
	assert.False(t, c.ContainsEntity("nobody"))
	assert.False(t, c.Rename("nobody", Identity{}))
}

func TestCollectionRoundTrip(t *testing.T) {
	c := NewCollection()
	c.Target = "SaveData001.save"
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("id-%d", i)
		c.Identify(id, Identity{LastName: "L", FirstName: fmt.Sprint(i), CreatedAt: "2024"})
		for j := 0; j < 2; j++ {
			plugin := fmt.Sprintf("plugin.%d", j)
			c.Set(id, plugin, "empty", "")
			c.Set(id, plugin, "special", `<a & "b"> 'c'`)
			c.Set(id, plugin, "n", fmt.Sprint(i*j))
		}
	}
	c.Set(GlobalID, "settings", "volume", "0.5")

	loaded := decodeCollection(t, encodeCollection(t, c))

	assert.Equal(t, "SaveData001.save", loaded.Target)
	assert.Equal(t, contents(c), contents(loaded))
	e, ok := loaded.Entity("id-2")
	require.True(t, ok)
	assert.Equal(t, Identity{LastName: "L", FirstName: "2", CreatedAt: "2024"}, e.Identity)
}

func TestCollectionDeterministicOrdering(t *testing.T) {
	ids := []string{"b", "c", "a"}

	forward := NewCollection()
	for _, id := range ids {
		forward.Identify(id, Identity{})
		forward.Set(id, "P2", "y", "2")
		forward.Set(id, "P1", "x", "1")
	}

	backward := NewCollection()
	for i := len(ids) - 1; i >= 0; i-- {
		backward.Identify(ids[i], Identity{})
		backward.Set(ids[i], "P1", "x", "1")
		backward.Set(ids[i], "P2", "y", "2")
	}

	assert.Equal(t, encodeCollection(t, forward), encodeCollection(t, backward))
}

func TestCollectionLoadSkipsRecordsWithoutID(t *testing.T) {
	c := decodeCollection(t, `<savedata target="t">
		<maids>
			<maid lastname="nobody"><plugins><plugin name="P"><prop name="x" value="1"/></plugin></plugins></maid>
			<maid guid="A"/>
		</maids>
	</savedata>`)

	assert.Equal(t, []string{"A", GlobalID}, c.EntityIDs())
}

func TestCollectionCleanup(t *testing.T) {
	c := NewCollection()
	for _, id := range []string{"A", "B", "C"} {
		c.Identify(id, Identity{})
	}

	c.Cleanup([]string{"B", "unknown"})

	assert.Equal(t, []string{"B", GlobalID}, c.EntityIDs())
}

func TestCollectionSavePrunesUnknownRecords(t *testing.T) {
	doc, err := xmlnode.Parse([]byte(`<savedata>
		<maids>
			<maid guid="Z"/>
			<maid/>
			<maid guid="A" lastname="stale"/>
			<comment-like keep="yes"/>
		</maids>
		<unrelated/>
	</savedata>`))
	require.NoError(t, err)

	c := NewCollection()
	c.Identify("A", Identity{LastName: "fresh"})
	c.Identify("B", Identity{})
	c.SaveTo(doc.Root())

	maids := doc.Root().SelectElement("maids")
	var got []string
	for _, m := range maids.SelectElements("maid") {
		got = append(got, m.SelectAttrValue("guid", "?"))
	}
	assert.Equal(t, []string{"A", "B", GlobalID}, got)
	assert.Equal(t, "fresh", xmlnode.FindByAttr(maids, "maid", "guid", "A").SelectAttrValue("lastname", ""))
	assert.NotNil(t, maids.SelectElement("comment-like"))
	assert.NotNil(t, doc.Root().SelectElement("unrelated"))
}

func TestCollectionNPCRecords(t *testing.T) {
	c := NewCollection()
	npc := c.EnsureNPC("npc_a")
	npc.Set("P", "x", "1")
	assert.Same(t, npc, c.EnsureNPC("npc_a"))

	raw := encodeCollection(t, c)
	assert.Contains(t, raw, `uniqueName="npc_a"`)

	loaded := decodeCollection(t, raw)
	got, ok := loaded.NPC("npc_a")
	require.True(t, ok)
	assert.Equal(t, "1", got.Get("P", "x", ""))
	assert.Equal(t, []string{"npc_a"}, loaded.NPCNames())

	loaded.Cleanup(nil)
	assert.True(t, loaded.ContainsNPC("npc_a"))
}

func TestCollectionOmitsEmptyNPCContainer(t *testing.T) {
	raw := encodeCollection(t, NewCollection())
	assert.NotContains(t, raw, "npcMaids")
	assert.Contains(t, raw, `<maid guid="global"`)
}
