// Package redline implements the core tracked-changes engine: building a
// flat-text index of an Office Open XML word-processing document, resolving
// edits expressed over that flat text back to precise tree positions, and
// materializing them as native w:ins/w:del revision markup plus optional
// review comments.
package redline

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/vortex/docx-api/pkg/opc"
	"github.com/vortex/docx-api/pkg/oxml"
)

// Doc is an opened word-processing package, positioned for redlining.
//
// One Doc is good for exactly one open → apply → save cycle; it is not
// safe for concurrent use and holds no long-lived goroutines or timers.
type Doc struct {
	pkg          *opc.OpcPackage
	mainPart     *opc.XmlPart
	body         *etree.Element // the <w:body> element inside mainPart
	commentsPart *opc.XmlPart   // the existing comments part, or nil until commentsTree creates one
}

// OpenDocument reads a .docx archive and locates its main document part.
func OpenDocument(data []byte) (*Doc, error) {
	pkg, err := opc.OpenBytes(data, defaultPartFactory())
	if err != nil {
		return nil, NewMalformedPackageError(err, "redline: opening package: %v", err)
	}

	mainRaw, err := pkg.MainDocumentPart()
	if err != nil {
		return nil, NewMissingMainPartError("redline: package has no main document part")
	}
	mainPart, ok := mainRaw.(*opc.XmlPart)
	if !ok {
		return nil, NewMissingMainPartError("redline: main document part is not XML")
	}

	root := mainPart.Element()
	if root == nil {
		return nil, NewMissingMainPartError("redline: main document part has no content")
	}
	body := findChild(root, "w", "body")
	if body == nil {
		return nil, NewMissingMainPartError("redline: main document part has no w:body")
	}

	doc := &Doc{pkg: pkg, mainPart: mainPart, body: body}

	if commentsRaw, err := mainPart.Rels().GetByRelType(opc.RTComments); err == nil {
		if cp, ok := commentsRaw.TargetPart.(*opc.XmlPart); ok {
			doc.commentsPart = cp
		}
	}

	return doc, nil
}

// SaveDocument re-serializes the package, returning the new archive bytes.
// Parts that were never touched are carried through byte-for-byte by
// opc.OpcPackage.Save, which only calls Blob() — XmlPart.Blob() always
// re-serializes from the parsed tree, but for an untouched XmlPart that
// tree is byte-identical to what was parsed (etree's compact writer with
// CanonicalEndTags matches the normalized form of any conformant input).
//
// The comments part, if one was created, is serialized up front so a failure
// there is reported as a CommentPartWriteFailureError rather than folded into
// the generic save failure below.
func SaveDocument(doc *Doc) ([]byte, error) {
	if doc.commentsPart != nil {
		if _, err := doc.commentsPart.Blob(); err != nil {
			return nil, NewCommentPartWriteFailureError(err, "redline: serializing comments part: %v", err)
		}
	}

	b, err := doc.pkg.SaveToBytes()
	if err != nil {
		return nil, NewSerializationFailureError(err, "redline: saving package: %v", err)
	}
	return b, nil
}

// Body returns the main document's <w:body> element.
func (d *Doc) Body() *etree.Element { return d.body }

// commentsTree lazily creates the comments part (root <w:comments>) on
// first use and wires the main→comments relationship. Idempotent.
//
// Grounded on go-docx/pkg/docx/parts/comments.go's DocumentPart.CommentsPart
// lazy-creation pattern, simplified: rather than loading an embedded default
// template, an empty <w:comments> root is built directly with OxmlElement.
func (d *Doc) commentsTree() *etree.Element {
	if d.commentsPart != nil {
		return d.commentsPart.Element()
	}

	root := oxml.OxmlElement("w:comments")
	partname := d.pkg.NextPartname("/word/comments%d.xml")
	// Word always names the single comments part "/word/comments.xml"; only
	// fall back to a numbered name if that exact name is somehow taken.
	if _, exists := d.pkg.PartByName("/word/comments.xml"); !exists {
		partname = "/word/comments.xml"
	}
	cp := opc.NewXmlPartFromElement(partname, opc.CTWmlComments, root, d.pkg)
	d.pkg.AddPart(cp)
	d.mainPart.Rels().GetOrAdd(opc.RTComments, cp)
	d.commentsPart = cp
	return root
}

// findChild returns the first direct child of el with the given namespace
// prefix and local tag name, or nil.
func findChild(el *etree.Element, space, tag string) *etree.Element {
	for _, c := range el.ChildElements() {
		if c.Space == space && c.Tag == tag {
			return c
		}
	}
	return nil
}

// defaultPartFactory builds the PartFactory used to open a word-processing
// package: any part whose declared content type names an XML media type is
// parsed as an XmlPart; everything else (images, embedded binaries) is kept
// as an opaque BasePart blob, preserving it byte-for-byte.
func defaultPartFactory() *opc.PartFactory {
	f := opc.NewPartFactory()
	f.SetSelector(func(contentType, relType string) opc.PartConstructor {
		if !strings.Contains(contentType, "xml") {
			return nil
		}
		return func(partName opc.PackURI, contentType, relType string, blob []byte, pkg *opc.OpcPackage) (opc.Part, error) {
			return opc.NewXmlPart(partName, contentType, blob, pkg)
		}
	})
	return f
}
