// Package oxml provides low-level XML element manipulation for Office Open XML documents.
package oxml

import (
	"fmt"
	"strings"
)

// Nsmap maps namespace prefixes to their URIs.
var Nsmap = map[string]string{
	"a":        "http://schemas.openxmlformats.org/drawingml/2006/main",
	"c":        "http://schemas.openxmlformats.org/drawingml/2006/chart",
	"cp":       "http://schemas.openxmlformats.org/package/2006/metadata/core-properties",
	"dc":       "http://purl.org/dc/elements/1.1/",
	"dcmitype": "http://purl.org/dc/dcmitype/",
	"dcterms":  "http://purl.org/dc/terms/",
	"dgm":      "http://schemas.openxmlformats.org/drawingml/2006/diagram",
	"m":        "http://schemas.openxmlformats.org/officeDocument/2006/math",
	"pic":      "http://schemas.openxmlformats.org/drawingml/2006/picture",
	"r":        "http://schemas.openxmlformats.org/officeDocument/2006/relationships",
	"sl":       "http://schemas.openxmlformats.org/schemaLibrary/2006/main",
	"w":        "http://schemas.openxmlformats.org/wordprocessingml/2006/main",
	"w14":      "http://schemas.microsoft.com/office/word/2010/wordml",
	"wp":       "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing",
	"xml":      "http://www.w3.org/XML/1998/namespace",
	"xsi":      "http://www.w3.org/2001/XMLSchema-instance",
}

// NamespacePrefixedTag is a value object that knows the semantics of an XML tag
// with a namespace prefix, such as "w:p".
type NamespacePrefixedTag struct {
	prefix    string
	localPart string
}

// ParseNSPTag parses a prefixed tag string like "w:p" into a NamespacePrefixedTag.
// Returns an error if the tag format is invalid or the prefix is unknown.
func ParseNSPTag(nstag string) (NamespacePrefixedTag, error) {
	prefix, local, ok := strings.Cut(nstag, ":")
	if !ok {
		return NamespacePrefixedTag{}, fmt.Errorf("oxml: invalid namespace-prefixed tag %q", nstag)
	}
	if _, exists := Nsmap[prefix]; !exists {
		return NamespacePrefixedTag{}, fmt.Errorf("oxml: unknown namespace prefix %q in tag %q", prefix, nstag)
	}
	return NamespacePrefixedTag{prefix: prefix, localPart: local}, nil
}

// LocalPart returns the local part of the tag, e.g. "p" for "w:p".
func (t NamespacePrefixedTag) LocalPart() string { return t.localPart }

// Prefix returns the namespace prefix, e.g. "w" for "w:p".
func (t NamespacePrefixedTag) Prefix() string { return t.prefix }
