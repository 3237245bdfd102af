package opc

import (
	"fmt"

	"github.com/beevik/etree"
)

// xmlProcInst is the standard XML declaration for OPC parts.
const xmlProcInst = `version="1.0" encoding="UTF-8" standalone="yes"`

// XmlPart extends BasePart with a parsed XML document.
//
// Internally it stores the owning *etree.Document rather than a bare
// *etree.Element. This lets Blob() serialize the tree directly without
// the deep-copy that would be required if we had to re-parent the element
// into a temporary Document via SetRoot on every call.
type XmlPart struct {
	BasePart
	doc *etree.Document
}

// newXmlDoc creates a Document pre-configured with the standard OPC XML
// processing instruction and compact write settings.
func newXmlDoc() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", xmlProcInst)
	doc.WriteSettings.CanonicalEndTags = true
	return doc
}

// ensureProcInst normalizes the XML processing instruction to the standard
// OPC form (version="1.0" encoding="UTF-8" standalone="yes").
func ensureProcInst(doc *etree.Document) {
	for _, tok := range doc.Child {
		if pi, ok := tok.(*etree.ProcInst); ok && pi.Target == "xml" {
			pi.Inst = xmlProcInst
			return
		}
	}
	pi := &etree.ProcInst{Target: "xml", Inst: xmlProcInst}
	doc.Child = append([]etree.Token{pi}, doc.Child...)
}

// NewXmlPart creates an XmlPart by parsing the blob as XML.
func NewXmlPart(partName PackURI, contentType string, blob []byte, pkg *OpcPackage) (*XmlPart, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	doc.WriteSettings.CanonicalEndTags = true
	if err := doc.ReadFromBytes(blob); err != nil {
		return nil, err
	}
	// Normalize the declaration so Blob() output always has a standalone="yes"
	// header regardless of what the source part declared.
	ensureProcInst(doc)
	return &XmlPart{
		BasePart: *NewBasePart(partName, contentType, nil, pkg),
		doc:      doc,
	}, nil
}

// NewXmlPartFromElement creates an XmlPart from an existing element.
// The element is adopted into a new Document — it will be detached
// from any previous parent.
func NewXmlPartFromElement(partName PackURI, contentType string, element *etree.Element, pkg *OpcPackage) *XmlPart {
	doc := newXmlDoc()
	doc.SetRoot(element)
	return &XmlPart{
		BasePart: *NewBasePart(partName, contentType, nil, pkg),
		doc:      doc,
	}
}

// Element returns the root XML element, or nil if the document is empty.
func (p *XmlPart) Element() *etree.Element {
	if p.doc == nil {
		return nil
	}
	return p.doc.Root()
}

// SetElement replaces the root XML element.
// The element is adopted by the internal Document.
func (p *XmlPart) SetElement(el *etree.Element) {
	if p.doc == nil {
		p.doc = newXmlDoc()
	}
	p.doc.SetRoot(el)
}

// Blob serializes the XML document to bytes: compact (no insignificant
// whitespace), with a standard XML declaration.
func (p *XmlPart) Blob() ([]byte, error) {
	if p.doc == nil || p.doc.Root() == nil {
		return nil, nil
	}
	b, err := p.doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("opc: serializing XML part %q: %w", p.partName, err)
	}
	b = escapeAttrWhitespace(b)
	return b, nil
}

// escapeAttrWhitespace re-encodes literal \n, \r, and \t inside XML
// attribute values to their character-reference forms (&#10; &#13; &#9;).
//
// etree (and most Go XML encoders) do not escape these, which is technically
// valid XML but breaks roundtrip fidelity: the XML spec's attribute-value
// normalization replaces them with spaces on the next parse, corrupting
// data such as VML textpath multiline strings.
//
// The function is a simple state machine over the serialized bytes; it only
// modifies bytes that appear between quote characters inside tags.
func escapeAttrWhitespace(b []byte) []byte {
	hasSpecial := false
	for _, c := range b {
		if c == '\n' || c == '\r' || c == '\t' {
			hasSpecial = true
			break
		}
	}
	if !hasSpecial {
		return b
	}

	out := make([]byte, 0, len(b)+64)
	inTag := false // inside < ... >
	var quote byte // 0 = not in attr value, '"' or '\'' = inside

	for _, c := range b {
		if !inTag {
			if c == '<' {
				inTag = true
				quote = 0
			}
			out = append(out, c)
			continue
		}

		if quote == 0 {
			switch c {
			case '>':
				inTag = false
				out = append(out, c)
			case '"', '\'':
				quote = c
				out = append(out, c)
			default:
				out = append(out, c)
			}
			continue
		}

		if c == quote {
			quote = 0
			out = append(out, c)
			continue
		}

		switch c {
		case '\n':
			out = append(out, []byte("&#10;")...)
		case '\r':
			out = append(out, []byte("&#13;")...)
		case '\t':
			out = append(out, []byte("&#9;")...)
		default:
			out = append(out, c)
		}
	}
	return out
}
