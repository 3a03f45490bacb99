// Package savedata is the in-memory model of an external save side-file and
// its XML mapping.
//
// Shape on disk:
//
//	<savedata target="{host save file}">
//	  <maids>
//	    <maid guid="{id}" lastname="" firstname="" createtime="">
//	      <plugins>
//	        <plugin name="{plugin}">
//	          <prop name="{prop}" value="{value}"/>
//	        </plugin>
//	      </plugins>
//	    </maid>
//	  </maids>
//	  <npcMaids>
//	    <maid uniqueName="{npc}">...</maid>
//	  </npcMaids>
//	</savedata>
//
// Collection owns Entity records, each Entity owns one Properties bag per
// plugin. Loading is tolerant: records or properties missing their key
// attribute are skipped. Saving merges into an existing tree so unrelated
// elements survive, while <maid> elements for ids no longer held in memory are
// pruned. Entities are written in ascending id order so identical content
// always encodes to identical bytes.
package savedata

// GlobalID is the reserved entity id for settings not tied to a character.
const GlobalID = "global"

const (
	tagRoot     = "savedata"
	tagMaids    = "maids"
	tagNPCMaids = "npcMaids"
	tagMaid     = "maid"
	tagPlugins  = "plugins"
	tagPlugin   = "plugin"
	tagProp     = "prop"

	attrTarget     = "target"
	attrGUID       = "guid"
	attrUniqueName = "uniqueName"
	attrLastName   = "lastname"
	attrFirstName  = "firstname"
	attrCreateTime = "createtime"
	attrName       = "name"
	attrValue      = "value"
)

// RootTag is the element name of the document root.
const RootTag = tagRoot

// PluginTag is the element name of one plugin bag, shared with preset fragments.
const PluginTag = tagPlugin

// PluginsTag is the element name wrapping plugin bags.
const PluginsTag = tagPlugins
