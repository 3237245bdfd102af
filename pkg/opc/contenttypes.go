package opc

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
)

const contentTypesNamespace = "http://schemas.openxmlformats.org/package/2006/content-types"

// relsContentType is the fixed content type of every .rels part.
const relsContentType = "application/vnd.openxmlformats-package.relationships+xml"

// ContentTypeMap resolves a part name to its declared content type, per the
// Default/Override rules of [Content_Types].xml: an Override entry for the
// exact part name wins; otherwise the Default for the part's extension
// applies (extensions are matched case-insensitively, per the OPC spec).
type ContentTypeMap struct {
	defaults  map[string]string // lowercased extension -> content type
	overrides map[PackURI]string
}

type ctTypesXML struct {
	XMLName  xml.Name       `xml:"Types"`
	Xmlns    string         `xml:"xmlns,attr"`
	Defaults []ctDefaultXML `xml:"Default"`
	Override []ctOverrideXML `xml:"Override"`
}

type ctDefaultXML struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type ctOverrideXML struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// ParseContentTypes parses a [Content_Types].xml blob.
func ParseContentTypes(blob []byte) (*ContentTypeMap, error) {
	var doc ctTypesXML
	if err := xml.Unmarshal(blob, &doc); err != nil {
		return nil, NewMalformedPackageError(err, "opc: parsing [Content_Types].xml: %v", err)
	}
	m := &ContentTypeMap{
		defaults:  make(map[string]string, len(doc.Defaults)),
		overrides: make(map[PackURI]string, len(doc.Override)),
	}
	for _, d := range doc.Defaults {
		m.defaults[strings.ToLower(d.Extension)] = d.ContentType
	}
	for _, o := range doc.Override {
		m.overrides[PackURI(o.PartName)] = o.ContentType
	}
	return m, nil
}

// ContentType returns the content type for partname, or an error if neither
// an Override nor a matching Default exists.
func (m *ContentTypeMap) ContentType(partname PackURI) (string, error) {
	if ct, ok := m.overrides[partname]; ok {
		return ct, nil
	}
	ext := strings.ToLower(partname.Ext())
	if ct, ok := m.defaults[ext]; ok {
		return ct, nil
	}
	return "", fmt.Errorf("opc: no content type declared for part %q", partname)
}

// NewContentTypeMapForParts builds a [Content_Types].xml model for the given
// parts: a single Default for the "rels" extension, and one Override per
// part using its own declared content type. Using overrides exclusively
// (rather than guessing an XML default by extension) keeps the written
// content types exact regardless of a part's actual extension.
func NewContentTypeMapForParts(parts []Part) *ContentTypeMap {
	m := &ContentTypeMap{
		defaults:  map[string]string{"rels": relsContentType},
		overrides: make(map[PackURI]string, len(parts)),
	}
	for _, part := range parts {
		m.overrides[part.PartName()] = part.ContentType()
	}
	return m
}

// Serialize renders the content type map as [Content_Types].xml bytes.
func (m *ContentTypeMap) Serialize() ([]byte, error) {
	doc := ctTypesXML{Xmlns: contentTypesNamespace}

	exts := make([]string, 0, len(m.defaults))
	for ext := range m.defaults {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		doc.Defaults = append(doc.Defaults, ctDefaultXML{Extension: ext, ContentType: m.defaults[ext]})
	}

	partnames := make([]string, 0, len(m.overrides))
	for pn := range m.overrides {
		partnames = append(partnames, string(pn))
	}
	sort.Strings(partnames)
	for _, pn := range partnames {
		doc.Override = append(doc.Override, ctOverrideXML{PartName: pn, ContentType: m.overrides[PackURI(pn)]})
	}

	out, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("opc: serializing [Content_Types].xml: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
