package oxml

import (
	"bytes"
	"fmt"

	"github.com/beevik/etree"
)

// ParseXml parses XML bytes into an *etree.Element, detached from its
// owning document so it can be adopted elsewhere.
func ParseXml(xmlBytes []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		return nil, fmt.Errorf("oxml: parsing xml: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("oxml: parsing xml: no root element")
	}
	doc.RemoveChild(root)
	return root, nil
}

// SerializeXml serializes el to bytes with a standalone="yes" XML
// declaration and no insignificant whitespace, matching OOXML part
// conventions.
func SerializeXml(el *etree.Element) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	doc.SetRoot(el.Copy())
	doc.WriteSettings.CanonicalEndTags = true

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("oxml: serializing xml: %w", err)
	}
	return buf.Bytes(), nil
}

// SerializeForReading pretty-prints el without an XML declaration, for
// tests and debug output.
func SerializeForReading(el *etree.Element) string {
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	doc.Indent(2)

	var buf bytes.Buffer
	_, _ = doc.WriteTo(&buf)
	return buf.String()
}

// TryOxmlElement creates a detached element for the given namespace-prefixed
// tag (e.g. "w:p"), with xmlns declarations for its own prefix plus any
// additional prefixes in nsDecls.
func TryOxmlElement(nspTag string, nsDecls ...string) (*etree.Element, error) {
	nspt, err := ParseNSPTag(nspTag)
	if err != nil {
		return nil, err
	}

	el := etree.NewElement(nspt.LocalPart())
	el.Space = nspt.Prefix()

	prefixes := map[string]bool{nspt.Prefix(): true}
	for _, pfx := range nsDecls {
		prefixes[pfx] = true
	}
	for pfx := range prefixes {
		if uri, ok := Nsmap[pfx]; ok {
			el.CreateAttr("xmlns:"+pfx, uri)
		}
	}
	return el, nil
}

// OxmlElement creates an element as TryOxmlElement does, panicking on an
// unknown or malformed tag. Use only with compile-time constant tags.
func OxmlElement(nspTag string, nsDecls ...string) *etree.Element {
	el, err := TryOxmlElement(nspTag, nsDecls...)
	if err != nil {
		panic(err)
	}
	return el
}

// HasNsDecl reports whether el declares a namespace for prefix, returning
// its URI.
func HasNsDecl(el *etree.Element, prefix string) (string, bool) {
	for _, attr := range el.Attr {
		if attr.Space == "xmlns" && attr.Key == prefix {
			return attr.Value, true
		}
		if attr.Space == "" && attr.Key == "xmlns:"+prefix {
			return attr.Value, true
		}
	}
	return "", false
}

// OxmlElementWithAttrs creates an element via OxmlElement and sets the
// given attributes on it.
func OxmlElementWithAttrs(nspTag string, attrs map[string]string, nsDecls ...string) *etree.Element {
	el := OxmlElement(nspTag, nsDecls...)
	for name, value := range attrs {
		el.CreateAttr(name, value)
	}
	return el
}
