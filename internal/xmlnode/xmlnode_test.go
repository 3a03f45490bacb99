package xmlnode

import (
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectOrCreateIsIdempotent(t *testing.T) {
	root := etree.NewElement("savedata")

	first := SelectOrCreate(root, "maids")
	second := SelectOrCreate(root, "maids")

	assert.Same(t, first, second)
	assert.Len(t, root.SelectElements("maids"), 1)
}

func TestFindOrCreateByAttr(t *testing.T) {
	parent := etree.NewElement("maids")

	created, isNew := FindOrCreateByAttr(parent, "maid", "guid", `a'b"c`)
	require.True(t, isNew)
	assert.Equal(t, `a'b"c`, AttrOr(created, "guid", ""))

	found, isNew := FindOrCreateByAttr(parent, "maid", "guid", `a'b"c`)
	assert.False(t, isNew)
	assert.Same(t, created, found)
	assert.Len(t, parent.ChildElements(), 1)

	assert.Nil(t, FindByAttr(parent, "maid", "guid", "missing"))
}

func TestAttrReportsPresence(t *testing.T) {
	el := etree.NewElement("prop")
	_, ok := Attr(el, "value")
	assert.False(t, ok)

	SetAttr(el, "value", "")
	value, ok := Attr(el, "value")
	assert.True(t, ok)
	assert.Equal(t, "", value)

	SetAttr(el, "value", "x")
	assert.Equal(t, "x", AttrOr(el, "value", "fallback"))
	assert.Len(t, el.Attr, 1)
}

func TestClearRemovesAttributesAndChildren(t *testing.T) {
	el := etree.NewElement("plugin")
	el.CreateAttr("name", "p")
	el.CreateElement("prop")
	el.CreateText("noise")

	Clear(el)

	assert.Empty(t, el.Attr)
	assert.Empty(t, el.Child)
}

func TestEncodeIsStable(t *testing.T) {
	doc, root := NewFragment("plugins")
	root.CreateElement("plugin").CreateAttr("name", "p")

	first, err := Encode(doc)
	require.NoError(t, err)

	reparsed, err := Parse(first)
	require.NoError(t, err)
	second, err := Encode(reparsed)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.True(t, strings.HasPrefix(string(first), "<?xml"))
}

func TestEncodeAddsMissingDeclaration(t *testing.T) {
	doc := etree.NewDocument()
	doc.CreateElement("savedata")

	data, err := Encode(doc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<?xml"))
}

func TestEncodeKeepsLineBreaksInAttributes(t *testing.T) {
	doc, root := NewFragment("plugins")
	root.CreateAttr("value", "a\r\nb")

	data, err := Encode(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `value="a&#xD;&#xA;b"`)

	reparsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "a\r\nb", reparsed.Root().SelectAttrValue("value", ""))
}
