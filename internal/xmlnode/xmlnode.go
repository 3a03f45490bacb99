// Package xmlnode holds the small attribute/child helpers the save-data model
// uses on top of etree. Every helper is idempotent: calling it twice with the
// same arguments never creates a second child.
package xmlnode

import (
	"fmt"

	"github.com/beevik/etree"
)

const (
	indentSpaces = 2
	declaration  = `version="1.0" encoding="utf-8"`
)

// Attr returns the value of the named attribute and whether it was present.
func Attr(el *etree.Element, name string) (string, bool) {
	if el == nil {
		return "", false
	}
	attr := el.SelectAttr(name)
	if attr == nil {
		return "", false
	}
	return attr.Value, true
}

// AttrOr returns the named attribute or fallback when it is missing.
func AttrOr(el *etree.Element, name, fallback string) string {
	if value, ok := Attr(el, name); ok {
		return value
	}
	return fallback
}

// SetAttr creates or overwrites an attribute.
func SetAttr(el *etree.Element, name, value string) {
	if el == nil {
		return
	}
	el.CreateAttr(name, value)
}

// SelectOrCreate returns the first child element named tag, appending a new
// one when none exists.
func SelectOrCreate(parent *etree.Element, tag string) *etree.Element {
	if parent == nil {
		return nil
	}
	if child := parent.SelectElement(tag); child != nil {
		return child
	}
	return parent.CreateElement(tag)
}

// FindByAttr returns the first child element named tag whose attr equals value.
func FindByAttr(parent *etree.Element, tag, attr, value string) *etree.Element {
	if parent == nil {
		return nil
	}
	for _, child := range parent.SelectElements(tag) {
		if got, ok := Attr(child, attr); ok && got == value {
			return child
		}
	}
	return nil
}

// FindOrCreateByAttr is FindByAttr with an append fallback. A created element
// already carries attr=value.
func FindOrCreateByAttr(parent *etree.Element, tag, attr, value string) (*etree.Element, bool) {
	if parent == nil {
		return nil, false
	}
	if child := FindByAttr(parent, tag, attr, value); child != nil {
		return child, false
	}
	child := parent.CreateElement(tag)
	child.CreateAttr(attr, value)
	return child, true
}

// Clear drops every attribute and child token of el.
func Clear(el *etree.Element) {
	if el == nil {
		return
	}
	for _, token := range append([]etree.Token(nil), el.Child...) {
		el.RemoveChild(token)
	}
	el.Attr = nil
}

// NewDocument returns an empty document with a UTF-8 declaration.
func NewDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", declaration)
	return doc
}

// NewFragment returns a declared document whose root element is tag.
func NewFragment(tag string) (*etree.Document, *etree.Element) {
	doc := NewDocument()
	return doc, doc.CreateElement(tag)
}

// Parse reads a document from raw bytes.
func Parse(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("xmlnode: parse: %w", err)
	}
	return doc, nil
}

// Encode renders doc with stable two-space indentation. Existing whitespace
// is normalised so repeated encodes of the same tree are byte-identical.
// Attribute values are written with character references for tabs and line
// breaks so they read back unchanged.
func Encode(doc *etree.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("xmlnode: encode: nil document")
	}
	if doc.Root() != nil && !hasDeclaration(doc) {
		doc.InsertChildAt(0, etree.NewProcInst("xml", declaration))
	}
	doc.Indent(indentSpaces)
	doc.WriteSettings.CanonicalAttrVal = true
	data, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("xmlnode: encode: %w", err)
	}
	return data, nil
}

func hasDeclaration(doc *etree.Document) bool {
	for _, token := range doc.Child {
		if inst, ok := token.(*etree.ProcInst); ok && inst.Target == "xml" {
			return true
		}
	}
	return false
}
